// Package web provides an HTTP status server for the acquisition loop.
package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sweeney/shiftreg/internal/status"
)

const httpTimeout = 5 * time.Second

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
}

// New creates a Server that reads state from the given tracker.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	router := httprouter.New()
	router.GET("/", s.handleIndex)
	router.GET("/index.html", s.handleIndex)
	router.GET("/index.json", s.handleJSON)
	router.GET("/inputs/:input", s.handleInput)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       httpTimeout,
		ReadHeaderTimeout: httpTimeout,
		WriteTimeout:      httpTimeout,
		IdleTimeout:       2 * httpTimeout,
	}
	return s
}

// Handler returns the router. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// InputJSON is the response of /inputs/:input.
type InputJSON struct {
	Input    int    `json:"input"`
	State    string `json:"state"`
	Acquired string `json:"acquired"`
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	n, err := strconv.Atoi(p.ByName("input"))
	if err != nil {
		http.Error(w, "input must be a number", http.StatusBadRequest)
		return
	}

	snap := s.tracker.Snapshot()
	state, ok := snap.Input(n)
	if !ok {
		http.Error(w, "input not available", http.StatusNotFound)
		return
	}

	data, _ := json.Marshal(InputJSON{
		Input:    n,
		State:    string(state),
		Acquired: snap.LastAcquired.UTC().Format(time.RFC3339Nano),
	})
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
