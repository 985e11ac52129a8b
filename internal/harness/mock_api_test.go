package harness

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/techwiz-hq/api-smoke-harness/internal/api"
	"github.com/techwiz-hq/api-smoke-harness/pkg/httpclient"
)

// recordedCall captures one request seen by mockAPI.
type recordedCall struct {
	Method        string
	Path          string
	Authorization string
	ContentLength int64
	Body          []byte
}

// mockAPI serves canned bodies keyed by "METHOD /path" and records every call.
type mockAPI struct {
	mu     sync.Mutex
	calls  []recordedCall
	bodies map[string]string
	srv    *httptest.Server
}

func newMockAPI(t *testing.T, bodies map[string]string) *mockAPI {
	t.Helper()
	m := &mockAPI{bodies: bodies}
	m.srv = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.srv.Close)
	return m
}

func (m *mockAPI) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	m.mu.Lock()
	m.calls = append(m.calls, recordedCall{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		ContentLength: r.ContentLength,
		Body:          raw,
	})
	body, ok := m.bodies[r.Method+" "+r.URL.Path]
	m.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (m *mockAPI) Calls() []recordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedCall(nil), m.calls...)
}

func (m *mockAPI) client() *api.Client {
	return api.NewClient(httpclient.NewRestyClient(m.srv.URL+"/api", 2*time.Second), nil)
}

func decodeBody(t *testing.T, raw []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode request body %q: %v", raw, err)
	}
}
