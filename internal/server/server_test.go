package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newSite(t *testing.T, liveReload bool) *Server {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "index.html", "<html><body><h1>home</h1></body></html>")
	writeFile(t, root, "blog/index.html", "<html><body>blog</body></html>")
	writeFile(t, root, "css/site.css", "body{}")
	writeFile(t, root, "public/content/posts.json", "[]")
	writeFile(t, root, "public/css/site.css", "stale{}")
	return New(Config{
		Port:       0,
		SiteDir:    root,
		PublishDir: filepath.Join(root, "public"),
		LiveReload: liveReload,
	}, nil)
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	srv := newSite(t, false)
	w := get(t, srv, "/healthz")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := New(Config{AllowAll: true}, nil)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestStaticServing(t *testing.T) {
	srv := newSite(t, false)

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/css/site.css", http.StatusOK, "body{}"},
		{"/content/posts.json", http.StatusOK, "[]"},
		{"/blog/", http.StatusOK, "blog"},
		{"/missing.html", http.StatusNotFound, ""},
		{"/../../etc/passwd", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		w := get(t, srv, tt.path)
		if w.Code != tt.wantCode {
			t.Errorf("GET %s: code = %d, want %d", tt.path, w.Code, tt.wantCode)
			continue
		}
		if tt.wantBody != "" && !strings.Contains(w.Body.String(), tt.wantBody) {
			t.Errorf("GET %s: body = %q, want it to contain %q", tt.path, w.Body.String(), tt.wantBody)
		}
		if got := w.Header().Get("Cache-Control"); !strings.Contains(got, "no-cache") {
			t.Errorf("GET %s: Cache-Control = %q", tt.path, got)
		}
	}
}

func TestReloadScriptInjected(t *testing.T) {
	srv := newSite(t, true)

	w := get(t, srv, "/")
	body := w.Body.String()
	if !strings.Contains(body, "data-livereload") {
		t.Fatalf("expected reload script, got %s", body)
	}
	if strings.Index(body, "data-livereload") > strings.Index(body, "</body>") {
		t.Error("reload script should come before </body>")
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}

	css := get(t, srv, "/css/site.css").Body.String()
	if strings.Contains(css, "data-livereload") {
		t.Error("non-HTML files must not be modified")
	}
}

func TestInjectReloadWithoutBody(t *testing.T) {
	out := string(InjectReload([]byte("<p>fragment</p>")))
	if !strings.HasPrefix(out, "<p>fragment</p>") || !strings.Contains(out, "data-livereload") {
		t.Errorf("unexpected output %q", out)
	}
	upper := string(InjectReload([]byte("<BODY>x</BODY>")))
	if !strings.HasSuffix(upper, "</BODY>") {
		t.Errorf("script should be inserted before </BODY>: %q", upper)
	}
}

func TestLiveReloadBroadcast(t *testing.T) {
	srv := newSite(t, true)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + LiveReloadPath
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Hub().Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := srv.Hub().Broadcast("reload"); n != 1 {
		t.Fatalf("expected 1 client, broadcast reached %d", n)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != "reload" {
		t.Errorf("got %q, want reload", msg)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	srv := newSite(t, false)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}
}

func TestWatcherDebounces(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "content/posts.json", "[]")
	writeFile(t, root, "public/content/posts.json", "[]")

	var calls atomic.Int32
	w := &Watcher{
		Roots:    []string{root},
		Ignore:   []string{filepath.Join(root, "public")},
		Debounce: 100 * time.Millisecond,
		OnChange: func() { calls.Add(1) },
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)
	time.Sleep(200 * time.Millisecond)

	// Ignored directory: no callback.
	writeFile(t, root, "public/content/posts.json", `[{"title":"x"}]`)
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Fatalf("changes in ignored dirs should not trigger, got %d calls", n)
	}

	for i := 0; i < 5; i++ {
		writeFile(t, root, "content/posts.json", strings.Repeat("[]", i+1))
	}
	deadline := time.Now().Add(3 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("expected one debounced call, got %d", n)
	}
}

func TestWatcherRequiresOnChange(t *testing.T) {
	w := &Watcher{Roots: []string{t.TempDir()}}
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected an error for a watcher without OnChange")
	}
}
