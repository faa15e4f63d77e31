// Package httpd renders the fingerprint report produced for a
// connection as HTML or JSON, serves the embedded static assets, and
// exposes the prometheus metrics endpoint.
package httpd

import (
	"embed"
	"encoding/hex"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/picohz/fingerprintd/internal/h2parse"
	"github.com/picohz/fingerprintd/internal/identicon"
	"github.com/picohz/fingerprintd/internal/report"
	"github.com/picohz/fingerprintd/internal/server"
	"github.com/picohz/fingerprintd/internal/tlsparse"
)

//go:embed templates/index.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var indexTemplate = template.Must(
	template.New("index.html").Funcs(sprig.FuncMap()).Funcs(template.FuncMap{
		"bytes": func(n int) string { return humanize.Bytes(uint64(n)) },
	}).ParseFS(templateFS, "templates/index.html"),
)

// mimeByExt mirrors the rust original's path_to_mime table exactly,
// including its debatable choice of application/xml for webmanifest.
var mimeByExt = map[string]string{
	".css":         "text/css",
	".png":         "image/png",
	".svg":         "image/svg+xml",
	".ico":         "image/x-icon",
	".xml":         "application/xml",
	".webmanifest": "application/xml",
}

// Handler builds the root http.Handler served over the fingerprinted
// TLS connections: "/" and "/index.json" render the requesting
// connection's Report, "/identicon.png" renders an identicon from its
// hex "seed" query parameter, and everything else falls back to the
// embedded static assets or a 404. /metrics lives on its own handler (see
// MetricsHandler) since it's served on a separate, unsniffed address.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", handleIndex)
	mux.HandleFunc("/index.json", handleIndexJSON)
	mux.HandleFunc("/identicon.png", handleIdenticon)
	return mux
}

// MetricsHandler exposes the prometheus registry, served on the
// operator-facing metrics address rather than the public TLS port.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func buildReport(r *http.Request) report.Report {
	session := server.SessionFromRequest(r)
	var hello *tlsparse.ClientHello
	var frames []h2parse.Frame
	if session != nil {
		hello = session.ClientHello()
		frames = session.Frames()
	}
	return report.Build(hello, frames)
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		serveStaticOr404(w, r)
		return
	}

	rep := buildReport(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, struct{ Report report.Report }{rep}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func handleIndexJSON(w http.ResponseWriter, r *http.Request) {
	rep := buildReport(r)
	body, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func handleIdenticon(w http.ResponseWriter, r *http.Request) {
	seed, err := hex.DecodeString(r.URL.Query().Get("seed"))
	if err != nil {
		http.Error(w, "seed must be hex-encoded", http.StatusBadRequest)
		return
	}

	img, err := identicon.Render(string(seed))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(img)
}

func serveStaticOr404(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/")
	data, err := fs.ReadFile(staticFS, path.Join("static", name))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", mimeFor(r.URL.Path))
	_, _ = w.Write(data)
}

func mimeFor(p string) string {
	if m, ok := mimeByExt[path.Ext(p)]; ok {
		return m
	}
	return "application/octet-stream"
}
