package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendCode_NoAPIKey(t *testing.T) {
	c := NewSMSLocalClient("", "", "")
	if err := c.SendCode(context.Background(), "09120000000", "123456"); err == nil {
		t.Fatal("SendCode without API key should return error")
	}
}

func TestSendCode_Success(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewSMSLocalClient("test-key", srv.URL, "ROSTER")
	if err := c.SendCode(context.Background(), "09120000000", "654321"); err != nil {
		t.Fatalf("SendCode: %v", err)
	}
	if gotAuth != "test-key" {
		t.Errorf("Authorization = %q, want test-key", gotAuth)
	}
	if gotBody["numbers"] != "09120000000" || gotBody["variables"] != "654321" {
		t.Errorf("body = %v, want phone and code", gotBody)
	}
	if gotBody["sender"] != "ROSTER" {
		t.Errorf("sender = %v, want ROSTER", gotBody["sender"])
	}
}

func TestSendCode_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewSMSLocalClient("test-key", srv.URL, "")
	if err := c.SendCode(context.Background(), "09120000000", "123456"); err == nil {
		t.Fatal("SendCode should surface non-200 responses as errors")
	}
}
