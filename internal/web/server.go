// Package web serves the daemon's status page and its JSON form.
package web

import (
	"context"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/button-sensor/internal/status"
)

// Server renders tracker snapshots over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	refresh    func()
}

// New returns a Server for addr. Nothing listens until ListenAndServe or Serve.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.readOnly(s.handleIndex))
	mux.HandleFunc("/index.html", s.readOnly(s.handleIndex))
	mux.HandleFunc("/index.json", s.readOnly(s.handleJSON))

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// SetRefresh installs fn to run before every snapshot, for state the tracker
// does not see change on its own (e.g. broker connectivity).
func (s *Server) SetRefresh(fn func()) { s.refresh = fn }

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) readOnly(h func(http.ResponseWriter, status.Snapshot)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Path != "/" && r.URL.Path != "/index.html" && r.URL.Path != "/index.json" {
			http.NotFound(w, r)
			return
		}
		log.WithFields(log.Fields{"path": r.URL.Path, "remote": r.RemoteAddr}).Debug("web: request")

		if s.refresh != nil {
			s.refresh()
		}
		w.Header().Set("Cache-Control", "no-store")
		h(w, s.tracker.Snapshot())
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, snap status.Snapshot) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, snap status.Snapshot) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(status.FormatJSON(snap)); err != nil {
		log.Debugf("web: write json: %v", err)
	}
}
