package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"toolshelf/internal/catalog"
	"toolshelf/internal/ingest"
	"toolshelf/internal/memstore"
	"toolshelf/internal/tools"
)

const testSecret = "letmein"

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

// storeSpy counts store round trips so tests can assert none happened.
type storeSpy struct {
	*memstore.Store
	calls int
}

func (s *storeSpy) FindByName(ctx context.Context, name string) (*tools.Tool, error) {
	s.calls++
	return s.Store.FindByName(ctx, name)
}

func (s *storeSpy) Insert(ctx context.Context, tool *tools.Tool) error {
	s.calls++
	return s.Store.Insert(ctx, tool)
}

func (s *storeSpy) Count(ctx context.Context, filter tools.Filter) (int64, error) {
	s.calls++
	return s.Store.Count(ctx, filter)
}

func (s *storeSpy) Find(ctx context.Context, filter tools.Filter, opts tools.FindOptions) ([]tools.Tool, error) {
	s.calls++
	return s.Store.Find(ctx, filter, opts)
}

func (s *storeSpy) Categories(ctx context.Context) ([]string, error) {
	s.calls++
	return s.Store.Categories(ctx)
}

func newTestApp(t *testing.T, seed ...tools.Tool) (*httptest.Server, *storeSpy) {
	t.Helper()
	store := &storeSpy{Store: memstore.New(seed...)}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	srv := New(
		ingest.New(store, ingest.WithSecret(testSecret), ingest.WithClock(func() time.Time { return now })),
		catalog.New(store, 20),
		WithMaxUploadBytes(64<<10),
	)
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func uploadForm(t *testing.T, filename, content string) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	return writer.FormDataContentType(), buf.Bytes()
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, headers map[string]string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}
