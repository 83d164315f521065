// Package server exposes the voice assistant over HTTP: a websocket endpoint
// speaking the turn protocol (hello, audio in; pipeline events, transcripts,
// tool traces, and assistant messages out), plus health and Prometheus
// metrics endpoints.
//
// A turn is strictly sequential within one websocket connection, matching
// the one-utterance-one-reply conversation model. Different connections are
// independent.
package server

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smarathe/yojanasetu/internal/dialogue"
	"github.com/smarathe/yojanasetu/internal/extract"
	"github.com/smarathe/yojanasetu/internal/health"
	"github.com/smarathe/yojanasetu/internal/observe"
	"github.com/smarathe/yojanasetu/internal/sessionstore"
	"github.com/smarathe/yojanasetu/pkg/provider/stt"
	"github.com/smarathe/yojanasetu/pkg/provider/tts"
)

// isoLanguages maps session language labels to the ISO 639-1 codes the
// speech providers take.
var isoLanguages = map[string]string{
	"Marathi": "mr",
	"Hindi":   "hi",
	"English": "en",
}

// Server wires the turn pipeline to HTTP. Construct with [New], mount via
// [Server.Handler].
type Server struct {
	store     sessionstore.Store
	stt       stt.Provider
	tts       tts.Provider
	extractor *extract.Extractor

	// engine is swappable so a corpus hot-reload can replace the ranker
	// mid-flight without dropping websocket connections.
	engine atomic.Pointer[dialogue.Engine]

	language string
	isoLang  string
	metrics  *observe.Metrics
	health   *health.Handler
	log      *slog.Logger
}

// Option customizes a [Server].
type Option func(*Server)

// WithLanguage sets the session language label (default "Marathi").
func WithLanguage(language string) Option {
	return func(s *Server) {
		if language != "" {
			s.language = language
		}
	}
}

// WithMetrics sets the metrics instance. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithHealth sets the health handler mounted at /healthz and /readyz.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) {
		if h != nil {
			s.health = h
		}
	}
}

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a [Server]. store, sttProvider, ttsProvider, extractor, and
// engine are required.
func New(
	store sessionstore.Store,
	sttProvider stt.Provider,
	ttsProvider tts.Provider,
	extractor *extract.Extractor,
	engine *dialogue.Engine,
	opts ...Option,
) *Server {
	s := &Server{
		store:     store,
		stt:       sttProvider,
		tts:       ttsProvider,
		extractor: extractor,
		language:  sessionstore.DefaultLanguage,
		health:    health.New(nil),
		log:       slog.Default(),
	}
	s.engine.Store(engine)
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	s.isoLang = isoLanguages[s.language]
	if s.isoLang == "" {
		s.isoLang = "mr"
	}
	return s
}

// SetEngine swaps the dialogue engine. Turns already in progress finish on
// the old engine.
func (s *Server) SetEngine(engine *dialogue.Engine) {
	s.engine.Store(engine)
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(observe.Middleware(s.metrics))
		r.Get("/healthz", s.health.Healthz)
		r.Get("/readyz", s.health.Readyz)
		r.Handle("/metrics", promhttp.Handler())
	})

	// The websocket route skips the observe middleware: the wrapped
	// response writer would hide the http.Hijacker the upgrade needs.
	r.Get("/ws", s.handleWS)

	return r
}
