package resilience

import (
	"context"
	"errors"

	"github.com/smarathe/yojanasetu/pkg/provider/oracle"
	"github.com/smarathe/yojanasetu/pkg/provider/stt"
	"github.com/smarathe/yojanasetu/pkg/provider/tts"
)

// STTGuard implements [stt.Provider] behind a circuit breaker. When the
// breaker is open, Transcribe fails fast with [ErrCircuitOpen] and the server
// answers with its retry prompt instead of waiting for a dead whisper-server.
type STTGuard struct {
	provider stt.Provider
	breaker  *CircuitBreaker
}

var _ stt.Provider = (*STTGuard)(nil)

// NewSTTGuard wraps provider with a dedicated breaker.
func NewSTTGuard(provider stt.Provider, cfg CircuitBreakerConfig) *STTGuard {
	if cfg.Name == "" {
		cfg.Name = "stt"
	}
	return &STTGuard{
		provider: provider,
		breaker:  NewCircuitBreaker(cfg),
	}
}

// Transcribe forwards to the wrapped provider when the breaker allows it.
func (g *STTGuard) Transcribe(ctx context.Context, audio []byte, language string) (stt.Transcript, error) {
	var t stt.Transcript
	err := g.breaker.Execute(func() error {
		var innerErr error
		t, innerErr = g.provider.Transcribe(ctx, audio, language)
		return innerErr
	})
	if err != nil {
		return stt.Transcript{}, err
	}
	return t, nil
}

// TTSGuard implements [tts.Provider] behind a circuit breaker. A failed or
// open-breaker synthesis degrades the turn to text-only: the caller still
// sends the assistant message, just without audio.
type TTSGuard struct {
	provider tts.Provider
	breaker  *CircuitBreaker
}

var _ tts.Provider = (*TTSGuard)(nil)

// NewTTSGuard wraps provider with a dedicated breaker.
func NewTTSGuard(provider tts.Provider, cfg CircuitBreakerConfig) *TTSGuard {
	if cfg.Name == "" {
		cfg.Name = "tts"
	}
	return &TTSGuard{
		provider: provider,
		breaker:  NewCircuitBreaker(cfg),
	}
}

// Synthesize forwards to the wrapped provider when the breaker allows it.
func (g *TTSGuard) Synthesize(ctx context.Context, text, language string) (tts.Audio, error) {
	var a tts.Audio
	err := g.breaker.Execute(func() error {
		var innerErr error
		a, innerErr = g.provider.Synthesize(ctx, text, language)
		return innerErr
	})
	if err != nil {
		return tts.Audio{}, err
	}
	return a, nil
}

// OracleGuard implements [oracle.Provider] behind a circuit breaker. An open
// breaker surfaces as [oracle.ErrNoOpinion], so the ranker silently keeps its
// deterministic top pick while the LLM backend recovers.
type OracleGuard struct {
	provider oracle.Provider
	breaker  *CircuitBreaker
}

var _ oracle.Provider = (*OracleGuard)(nil)

// NewOracleGuard wraps provider with a dedicated breaker.
func NewOracleGuard(provider oracle.Provider, cfg CircuitBreakerConfig) *OracleGuard {
	if cfg.Name == "" {
		cfg.Name = "oracle"
	}
	return &OracleGuard{
		provider: provider,
		breaker:  NewCircuitBreaker(cfg),
	}
}

// Rank forwards to the wrapped oracle. [ErrCircuitOpen] is translated to
// [oracle.ErrNoOpinion].
func (g *OracleGuard) Rank(ctx context.Context, query string, candidates []oracle.Candidate) (string, error) {
	var answer string
	err := g.breaker.Execute(func() error {
		var innerErr error
		answer, innerErr = g.provider.Rank(ctx, query, candidates)
		return innerErr
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			return "", oracle.ErrNoOpinion
		}
		return "", err
	}
	return answer, nil
}
