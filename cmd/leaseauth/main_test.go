package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newPlatform(t *testing.T, final map[string]any) *httptest.Server {
	t.Helper()
	var checks atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/game/session/remote/lease":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"code":         "ABC123",
				"nonce":        "nonce-value",
				"redirect_url": "https://example.test/remote/ABC123",
				"status":       "created",
			})
		case "/game/session/remote":
			if checks.Add(1) == 1 {
				_ = json.NewEncoder(w).Encode(map[string]any{"lease_status": "claimed"})
				return
			}
			_ = json.NewEncoder(w).Encode(final)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCLIWithLogs(t, args...)
	return out, err
}

func runCLIWithLogs(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestLoginPrintsCodeAndPlayer(t *testing.T) {
	srv := newPlatform(t, map[string]any{
		"lease_status":      "authorized",
		"session_token":     "opaque",
		"player_identifier": "player-1",
		"player_name":       "Ada",
	})

	out, err := runCLI(t, "login", "--base-url", srv.URL, "--game-key", "dev_key", "--poll-interval", "100ms", "--log-level", "error")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !strings.Contains(out, "code: ABC123") {
		t.Fatalf("expected lease code in output, got:\n%s", out)
	}
	if !strings.Contains(out, "open: https://example.test/remote/ABC123") {
		t.Fatalf("expected redirect URL in output, got:\n%s", out)
	}
	if !strings.Contains(out, "authorized: player-1 (Ada)") {
		t.Fatalf("expected authorized player in output, got:\n%s", out)
	}
}

func TestLoginLogsToCommandStderr(t *testing.T) {
	srv := newPlatform(t, map[string]any{
		"lease_status":      "authorized",
		"session_token":     "opaque",
		"player_identifier": "player-2",
	})

	out, logs, err := runCLIWithLogs(t, "login", "--base-url", srv.URL, "--game-key", "dev_key", "--poll-interval", "100ms", "--log-level", "info")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !strings.Contains(logs, "lease created") || !strings.Contains(logs, "leaseauth") {
		t.Fatalf("expected structured engine logs on stderr, got:\n%s", logs)
	}
	if strings.Contains(out, "lease created") {
		t.Fatalf("logs leaked to stdout:\n%s", out)
	}
}

func TestLoginReportsRejectedLease(t *testing.T) {
	srv := newPlatform(t, map[string]any{"lease_status": "cancelled"})

	_, err := runCLI(t, "login", "--base-url", srv.URL, "--game-key", "dev_key", "--poll-interval", "100ms", "--log-level", "error")
	if err == nil || !strings.Contains(err.Error(), "Failed") {
		t.Fatalf("expected failed login error, got %v", err)
	}
}

func TestLoginRequiresPlatformIdentity(t *testing.T) {
	if _, err := runCLI(t, "login", "--log-level", "error"); err == nil {
		t.Fatal("expected error without base URL")
	}
}

func TestSessionShowsStoredPlayer(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()
	srv := newPlatform(t, map[string]any{
		"lease_status":      "authorized",
		"session_token":     "opaque",
		"player_identifier": "player-7",
	})

	if _, err := runCLI(t, "login",
		"--base-url", srv.URL,
		"--game-key", "dev_key",
		"--poll-interval", "100ms",
		"--redis-addr", mr.Addr(),
		"--redis-prefix", "cli",
		"--log-level", "error",
	); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	out, err := runCLI(t, "session", "--redis-addr", mr.Addr(), "--redis-prefix", "cli")
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}
	if !strings.Contains(out, "player: player-7") {
		t.Fatalf("expected stored player, got:\n%s", out)
	}
}

func TestSessionRequiresRedis(t *testing.T) {
	if _, err := runCLI(t, "session"); err == nil {
		t.Fatal("expected error without --redis-addr")
	}
}
