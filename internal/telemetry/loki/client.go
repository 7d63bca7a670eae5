// Package loki ships telemetry events to Grafana Loki's push API.
package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Client pushes log lines to a Loki instance. The zero value is not usable;
// construct with NewClient.
type Client struct {
	pushURL string
	httpc   *http.Client
}

// NewClient returns a client for the Loki instance at baseURL
// (e.g. http://localhost:3100).
func NewClient(baseURL string) *Client {
	return &Client{
		pushURL: strings.TrimSuffix(baseURL, "/") + "/loki/api/v1/push",
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// pushRequest is the Loki push API v1 body.
type pushRequest struct {
	Streams []stream `json:"streams"`
}

// stream carries one label set and its entries; each value is
// [timestamp_ns, line].
type stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

// labelValue strips characters Loki label values should not carry.
var labelValue = regexp.MustCompile(`[^a-zA-Z0-9_\-:]`)

// eventLabels are the fields pulled out of an event's JSON to become stream
// labels and the entry timestamp. Field names follow the wire format in
// telemetry/domain.
type eventLabels struct {
	EventType string `json:"eventType"`
	Source    string `json:"source"`
	CreatedAt string `json:"createdAt"`
}

// PushEventJSON pushes one telemetry event, as read off the Kafka topic.
// The event's type and source become labels and its createdAt becomes the
// entry timestamp; an unparseable payload is still pushed as a raw line
// stamped with the current time.
func (c *Client) PushEventJSON(ctx context.Context, rawJSON []byte) error {
	labels := map[string]string{}
	ts := time.Now().UTC()
	var ev eventLabels
	if err := json.Unmarshal(rawJSON, &ev); err == nil {
		if ev.EventType != "" {
			labels["event_type"] = ev.EventType
		}
		if ev.Source != "" {
			labels["source"] = ev.Source
		}
		if t, err := time.Parse(time.RFC3339Nano, ev.CreatedAt); err == nil {
			ts = t
		}
	}
	return c.Push(ctx, ts, string(rawJSON), labels)
}

// Push sends a single line with the given labels. The job label is always
// set so portal streams are separable from anything else in the instance.
// Returns an error on transport failure or a non-2xx response.
func (c *Client) Push(ctx context.Context, timestamp time.Time, line string, labels map[string]string) error {
	streamLabels := map[string]string{"job": "roster"}
	for k, v := range labels {
		if clean := labelValue.ReplaceAllString(strings.TrimSpace(v), "_"); clean != "" {
			streamLabels[k] = clean
		}
	}
	body, err := json.Marshal(pushRequest{
		Streams: []stream{{
			Stream: streamLabels,
			Values: [][]string{{strconv.FormatInt(timestamp.UnixNano(), 10), line}},
		}},
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pushURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("loki push: %s", resp.Status)
	}
	return nil
}
