package remote

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestCheckLeaseNonTerminal(t *testing.T) {
	srv := newPlatform(t, func(path string, body map[string]any) (int, any) {
		if path != DefaultStatusPath {
			t.Errorf("unexpected path %s", path)
		}
		if body["lease_code"] != "ABCD" || body["nonce"] != "n1" || body["game_key"] != "dev_key" {
			t.Errorf("unexpected body %v", body)
		}
		return http.StatusOK, map[string]any{"lease_status": "Claimed"}
	})

	out, err := NewStatusClient(testConfig(srv)).CheckLease(context.Background(), "ABCD", "n1")
	if err != nil {
		t.Fatalf("check lease: %v", err)
	}
	if out.Status != StatusClaimed || out.Credentials != nil {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestCheckLeaseAuthorized(t *testing.T) {
	srv := newPlatform(t, func(string, map[string]any) (int, any) {
		return http.StatusOK, map[string]any{
			"lease_status":      "Authorized",
			"session_token":     "sess",
			"refresh_token":     "ref",
			"player_identifier": "player-1",
			"player_id":         7,
			"player_name":       "ada",
		}
	})

	out, err := NewStatusClient(testConfig(srv)).CheckLease(context.Background(), "ABCD", "n1")
	if err != nil {
		t.Fatalf("check lease: %v", err)
	}
	if out.Status != StatusAuthorized || out.Credentials == nil {
		t.Fatalf("unexpected outcome %+v", out)
	}
	c := out.Credentials
	if c.SessionToken != "sess" || c.RefreshToken != "ref" || c.PlayerIdentifier != "player-1" || c.PlayerID != 7 {
		t.Fatalf("unexpected credentials %+v", c)
	}
	if c.ReceivedAt.IsZero() {
		t.Fatal("expected ReceivedAt to be set")
	}
}

func TestCheckLeaseAuthorizedWithoutTokenIsMalformed(t *testing.T) {
	srv := newPlatform(t, func(string, map[string]any) (int, any) {
		return http.StatusOK, map[string]any{"lease_status": "Authorized"}
	})
	_, err := NewStatusClient(testConfig(srv)).CheckLease(context.Background(), "A", "n")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestCheckLeaseUnknownStatusIsMalformed(t *testing.T) {
	srv := newPlatform(t, func(string, map[string]any) (int, any) {
		return http.StatusOK, map[string]any{"lease_status": "Exploded"}
	})
	_, err := NewStatusClient(testConfig(srv)).CheckLease(context.Background(), "A", "n")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestCheckLeaseServerSideTerminalIsRejected(t *testing.T) {
	srv := newPlatform(t, func(string, map[string]any) (int, any) {
		return http.StatusOK, map[string]any{"lease_status": "TimedOut"}
	})
	_, err := NewStatusClient(testConfig(srv)).CheckLease(context.Background(), "A", "n")
	if !errors.Is(err, ErrLeaseRejected) {
		t.Fatalf("expected ErrLeaseRejected, got %v", err)
	}
	if Classify(err, 0, DefaultRetryLimit) != RetryPermanent {
		t.Fatal("expected rejected lease to be permanent")
	}
}

func TestCheckLeaseServerErrorIsTransient(t *testing.T) {
	srv := newPlatform(t, func(string, map[string]any) (int, any) {
		return http.StatusBadGateway, "upstream down"
	})
	_, err := NewStatusClient(testConfig(srv)).CheckLease(context.Background(), "A", "n")
	if Classify(err, 0, DefaultRetryLimit) != RetryTransient {
		t.Fatalf("expected 502 to be transient, got %v", err)
	}
}
