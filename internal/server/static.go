package server

import (
	"bytes"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// reloadScript reconnects to the live reload endpoint and reloads the page
// on every "reload" message.
const reloadScript = `<script data-livereload>
(() => {
  const proto = location.protocol === "https:" ? "wss:" : "ws:";
  const ws = new WebSocket(proto + "//" + location.host + "` + LiveReloadPath + `");
  ws.onmessage = (ev) => { if (ev.data === "reload") location.reload(); };
})();
</script>`

// staticHandler serves files from the first directory that has them.
type staticHandler struct {
	dirs   []string
	inject bool
	logger *zap.Logger
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Prevent caching during development.
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	name, ok := h.resolve(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if h.inject && strings.EqualFold(filepath.Ext(name), ".html") {
		h.serveHTML(w, r, name)
		return
	}
	http.ServeFile(w, r, name)
}

// resolve maps a URL path to a file, trying each directory in turn.
// Directory paths map to their index.html.
func (h *staticHandler) resolve(urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	if strings.HasSuffix(urlPath, "/") {
		clean = path.Join(clean, "index.html")
	}
	for _, dir := range h.dirs {
		if dir == "" {
			continue
		}
		name := filepath.Join(dir, filepath.FromSlash(clean))
		info, err := os.Stat(name)
		if err != nil {
			continue
		}
		if info.IsDir() {
			index := filepath.Join(name, "index.html")
			if fi, err := os.Stat(index); err == nil && !fi.IsDir() {
				return index, true
			}
			continue
		}
		return name, true
	}
	return "", false
}

func (h *staticHandler) serveHTML(w http.ResponseWriter, r *http.Request, name string) {
	body, err := os.ReadFile(name)
	if err != nil {
		h.logger.Error("failed to read page", zap.String("file", name), zap.Error(err))
		http.Error(w, "failed to read page", http.StatusInternalServerError)
		return
	}
	body = InjectReload(body)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	if r.Method == http.MethodHead {
		return
	}
	w.Write(body)
}

// InjectReload inserts the live reload script before the last </body>, or
// appends it when the page has none.
func InjectReload(page []byte) []byte {
	idx := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if idx < 0 {
		return append(append([]byte{}, page...), reloadScript...)
	}
	out := make([]byte, 0, len(page)+len(reloadScript))
	out = append(out, page[:idx]...)
	out = append(out, reloadScript...)
	return append(out, page[idx:]...)
}
