package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ymurakami/suumowatcher/internal/scraper"
	"ymurakami/suumowatcher/logger"
	"ymurakami/suumowatcher/services/store"
)

// Server exposes a read-only HTTP view over the listing store: health,
// configured criteria, and the seen listings per criterion.
type Server struct {
	store    store.ListingStore
	criteria []scraper.Criterion
	srv      *http.Server
	log      *logger.Logger
}

// NewServer creates a new API server listening on addr.
func NewServer(addr string, st store.ListingStore, criteria []scraper.Criterion) *Server {
	s := &Server{
		store:    st,
		criteria: criteria,
		log:      logger.ForComponent("api"),
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/criteria", s.handleCriteria).Methods("GET")
	r.HandleFunc("/criteria/{name}/listings", s.handleListings).Methods("GET")

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("API server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleCriteria(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.criteria))
	for _, c := range s.criteria {
		names = append(names, c.Name)
	}
	s.writeJSON(w, names)
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	listings, err := s.store.Load(name)
	if err != nil {
		s.log.Error().Err(err).Str("criterion", name).Msg("Store load failed")
		http.Error(w, "failed to load listings", http.StatusInternalServerError)
		return
	}
	if listings == nil {
		listings = []scraper.Listing{}
	}
	s.writeJSON(w, listings)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("Response encoding failed")
	}
}
