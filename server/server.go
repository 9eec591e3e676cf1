// Package server exposes a running simulation: the live page, its websocket
// update feed, a JSON status probe, and the prometheus scrape endpoint.
// One page, one websocket: the update stream has a single consumer, so this
// serves a single watching client, which is all a local run needs.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"coopmas/atomic_float"
	"coopmas/server/chain_views"
	"coopmas/server/fastview"
	"coopmas/server/root_view"
	"coopmas/simulation"
)

// Server serves the chain views for one simulation run.
type Server struct {
	addr      string
	log       *zap.Logger
	rootView  *root_view.RootView
	lastBoard chain_views.Board
	gauge     *atomic_float.AtomicFloat64
	metricsH  http.Handler
}

// NewServer builds the view pipeline over the snapshot stream. The initial
// snapshot renders the page before any update arrives; the gauge feeds the
// status endpoint without touching the run loop.
func NewServer(
	ctx context.Context,
	addr string,
	initial simulation.Snapshot,
	snapshots <-chan simulation.Snapshot,
	gauge *atomic_float.AtomicFloat64,
	metricsHandler http.Handler,
	log *zap.Logger,
) (*Server, error) {
	rootView, err := root_view.NewRootView(ctx, snapshots)
	if err != nil {
		return nil, fmt.Errorf("build root view: %w", err)
	}

	return &Server{
		addr:      addr,
		log:       log,
		rootView:  rootView,
		lastBoard: chain_views.Convert(initial),
		gauge:     gauge,
		metricsH:  metricsHandler,
	}, nil
}

// Serve blocks on the listener.
func (s *Server) Serve() error {
	router := mux.NewRouter()
	router.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.serveWebsocket)
	router.HandleFunc("/status", s.serveStatus).Methods(http.MethodGet)
	if s.metricsH != nil {
		router.Handle("/metrics", s.metricsH).Methods(http.MethodGet)
	}

	s.log.Info("serving", zap.String("addr", s.addr))
	if err := http.ListenAndServe(s.addr, router); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// serveWebsocket attaches the watching client to the view update stream.
func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := fastview.NewClient(s.rootView.Updates(), w, r)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	if err := cli.Sync(); err != nil {
		s.log.Info("websocket client detached", zap.Error(err))
	}
}

// serveIndex renders the main page from the board of the initial snapshot;
// later rounds reach an open page only through websocket updates.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if err := renderTemplate(w, s.rootView, s.lastBoard); err != nil {
		s.log.Error("render index", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// serveStatus reports the latest max criticality as JSON.
func (s *Server) serveStatus(w http.ResponseWriter, r *http.Request) {
	maxCrit := s.gauge.Load()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"maxCriticality": maxCrit,
		"synchronized":   maxCrit == 0,
	})
}

func renderTemplate(
	w io.Writer,
	vc fastview.ViewComponent,
	data interface{},
) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}

	err = t.Execute(w, data)
	return
}
