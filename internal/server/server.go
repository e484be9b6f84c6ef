// Package server exposes the fixer over HTTP for browser front-ends.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/cbegin/mmlfix"
	"github.com/cbegin/mmlfix/internal/mml"
	"github.com/cbegin/mmlfix/internal/sequencer"
)

const maxBodyBytes = 1 << 20

type Config struct {
	// Rate is the sustained requests per second across all clients; zero
	// disables limiting.
	Rate        float64
	Burst       int
	CORSOrigins []string
	Logger      *log.Logger
}

func DefaultConfig() Config {
	return Config{
		Rate:        5,
		Burst:       10,
		CORSOrigins: []string{"*"},
		Logger:      log.Default(),
	}
}

type Server struct {
	cfg     Config
	limiter *rate.Limiter
	handler http.Handler
}

func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	s := &Server{cfg: cfg}
	if cfg.Rate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), max(cfg.Burst, 1))
	}

	router := mux.NewRouter().StrictSlash(true)
	router.Use(s.requestID, s.rateLimit)
	router.HandleFunc("/fix", s.handleFix).Methods(http.MethodPost)
	router.HandleFunc("/check", s.handleCheck).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	s.handler = cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{requestIDHeader},
	}).Handler(router)
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Printf("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	id := RequestID(r.Context())
	var req FixRequest
	if !s.decode(w, r, &req) {
		return
	}
	opts := []mmlfix.Option{mmlfix.WithStrict(req.Strict), mmlfix.WithVerbose(req.Verbose)}
	if len(req.Strategies) > 0 {
		strategies := make([]mmlfix.Strategy, 0, len(req.Strategies))
		for _, name := range req.Strategies {
			st, err := mmlfix.ParseStrategy(name)
			if err != nil {
				s.writeError(w, r, http.StatusBadRequest, err)
				return
			}
			strategies = append(strategies, st)
		}
		opts = append(opts, mmlfix.WithStrategies(strategies...))
	}

	res, err := mmlfix.Fix(req.MML, opts...)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	resp := FixResponse{
		ID:          id,
		MML:         res.MML,
		TempoPoints: res.TempoPoints,
		Segments:    res.Segments,
		Log:         res.Log(),
		ElapsedMS:   res.Elapsed.Milliseconds(),
	}
	for _, tr := range res.Tracks {
		lengths := make(map[string]int, len(tr.Lengths))
		for st, n := range tr.Lengths {
			lengths[string(st)] = n
		}
		resp.Tracks = append(resp.Tracks, TrackResponse{
			Index:      tr.Index,
			Before:     tr.Before,
			After:      tr.After,
			Strategy:   string(tr.Strategy),
			Lengths:    lengths,
			Shortfalls: tr.Shortfalls,
		})
	}
	s.cfg.Logger.Printf("[%s] fixed %d tracks in %s", id, len(res.Tracks), res.Elapsed)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	id := RequestID(r.Context())
	var req FixRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, err := mmlfix.Analyze(req.MML)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	doc, err := mml.Parse(req.MML)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	resp := CheckResponse{
		ID:          id,
		Lengths:     a.Lengths,
		TempoPoints: a.TempoPoints,
		Invalid:     string(a.Invalid),
		NeedsFix:    a.NeedsFix(),
		DurationMS:  sequencer.Duration(sequencer.BuildDocument(doc)).Milliseconds(),
	}
	for _, seg := range a.Segments {
		resp.Segments = append(resp.Segments, SegmentResponse{
			Start:   seg.Start,
			End:     seg.End,
			Tempo:   seg.Tempo,
			Counts:  seg.Counts,
			Target:  seg.Target,
			Aligned: seg.Aligned(),
			Final:   seg.Final,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return false
	}
	return true
}

func statusFor(err error) int {
	var ice *mml.InvalidCharsError
	switch {
	case errors.Is(err, mmlfix.ErrEmptyInput), errors.Is(err, mmlfix.ErrMalformedInput), errors.As(err, &ice):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	id := RequestID(r.Context())
	if status >= http.StatusInternalServerError {
		s.cfg.Logger.Printf("[%s] %s %s: %v", id, r.Method, r.URL.Path, err)
	}
	s.writeJSON(w, status, ErrorResponse{ID: id, Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.cfg.Logger.Printf("encode response: %v", err)
	}
}
