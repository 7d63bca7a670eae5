package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.JWTIssuer != "roster-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "roster-auth")
	}
	if cfg.JWTAudience != "roster-api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "roster-api")
	}
	if cfg.JWTAccessTTL != "15m" {
		t.Errorf("JWTAccessTTL = %q, want %q", cfg.JWTAccessTTL, "15m")
	}
	if cfg.JWTRefreshTTL != "168h" {
		t.Errorf("JWTRefreshTTL = %q, want %q", cfg.JWTRefreshTTL, "168h")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.OTPTTLSeconds != 60 {
		t.Errorf("OTPTTLSeconds = %d, want 60", cfg.OTPTTLSeconds)
	}
	if cfg.NamePattern == "" {
		t.Error("NamePattern should have a default")
	}
	if cfg.OTPReturnToClient {
		t.Error("OTPReturnToClient should default to false")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("BCRYPT_COST", "14")
	os.Setenv("NAME_PATTERN", `^[A-Za-z]{2,}$`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
	if cfg.NamePattern != `^[A-Za-z]{2,}$` {
		t.Errorf("NamePattern = %q, want override", cfg.NamePattern)
	}
}

func TestLoad_BCRYPT_COSTRange(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  int
		err   bool
	}{
		{"valid min", "4", 4, false},
		{"valid max", "31", 31, false},
		{"valid middle", "12", 12, false},
		{"too low", "3", 0, true},
		{"too high", "32", 0, true},
		{"zero", "0", 12, false}, // Should default to 12
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("HTTP_ADDR", ":8080")
			os.Setenv("BCRYPT_COST", tc.value)

			cfg, err := Load()
			if tc.err {
				if err == nil {
					t.Fatal("Load should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.BcryptCost != tc.want {
				t.Errorf("BcryptCost = %d, want %d", cfg.BcryptCost, tc.want)
			}
		})
	}
}

func TestLoad_OTPReturnToClientProduction(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("OTP_RETURN_TO_CLIENT", "true")
	os.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load should return error when OTP_RETURN_TO_CLIENT=true and APP_ENV=production")
	}
	if cfg != nil {
		t.Error("Load should return nil config on error")
	}
}

func TestLoad_OTPReturnToClientDevelopment(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("OTP_RETURN_TO_CLIENT", "true")
	os.Setenv("APP_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.OTPReturnToClient {
		t.Error("OTPReturnToClient should be true")
	}
}

func TestLoad_OTPTTLInvalid(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("OTP_TTL_SECONDS", "-5")

	if _, err := Load(); err == nil {
		t.Fatal("Load should return error for non-positive OTP_TTL_SECONDS")
	}
}

func TestAccessTTL(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"valid", "30m", 30 * time.Minute},
		{"invalid", "invalid", 15 * time.Minute},
		{"zero", "0", 15 * time.Minute},
		{"negative", "-5m", 15 * time.Minute},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("HTTP_ADDR", ":8080")
			os.Setenv("JWT_ACCESS_TTL", tc.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := cfg.AccessTTL(); got != tc.want {
				t.Errorf("AccessTTL = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRefreshTTL(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"valid", "336h", 14 * 24 * time.Hour},
		{"invalid", "invalid", 168 * time.Hour},
		{"zero", "0", 168 * time.Hour},
		{"negative", "-1h", 168 * time.Hour},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("HTTP_ADDR", ":8080")
			os.Setenv("JWT_REFRESH_TTL", tc.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := cfg.RefreshTTL(); got != tc.want {
				t.Errorf("RefreshTTL = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTelemetryKafkaBrokersList(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("KAFKA_BROKERS", "localhost:9092, broker2:9092 ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := cfg.TelemetryKafkaBrokersList()
	if len(got) != 2 || got[0] != "localhost:9092" || got[1] != "broker2:9092" {
		t.Errorf("TelemetryKafkaBrokersList = %v, want two trimmed brokers", got)
	}
}
