package remote

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type platformStub struct {
	t       *testing.T
	handler func(path string, body map[string]any) (int, any)
}

func newPlatform(t *testing.T, handler func(path string, body map[string]any) (int, any)) *httptest.Server {
	t.Helper()
	stub := &platformStub{t: t, handler: handler}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	return srv
}

func (p *platformStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		p.t.Errorf("decode request body: %v", err)
	}
	code, resp := p.handler(r.URL.Path, body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if raw, ok := resp.(string); ok {
		_, _ = w.Write([]byte(raw))
		return
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func testConfig(srv *httptest.Server) Config {
	return Config{
		BaseURL:     srv.URL,
		GameKey:     "dev_key",
		GameVersion: "1.2.3",
		HTTPClient:  srv.Client(),
	}
}
