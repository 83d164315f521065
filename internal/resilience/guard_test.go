package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smarathe/yojanasetu/internal/resilience"
	"github.com/smarathe/yojanasetu/pkg/provider/oracle"
	oraclemock "github.com/smarathe/yojanasetu/pkg/provider/oracle/mock"
	"github.com/smarathe/yojanasetu/pkg/provider/stt"
	sttmock "github.com/smarathe/yojanasetu/pkg/provider/stt/mock"
	ttsmock "github.com/smarathe/yojanasetu/pkg/provider/tts/mock"
)

var errBackend = errors.New("backend down")

func TestSTTGuardPassesThrough(t *testing.T) {
	t.Parallel()
	inner := &sttmock.Provider{
		TranscribeResult: stt.Transcript{Text: "माझे वय चाळीस आहे", Confidence: 0.9},
	}
	guard := resilience.NewSTTGuard(inner, resilience.CircuitBreakerConfig{})

	got, err := guard.Transcribe(context.Background(), []byte{1, 2, 3}, "mr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "माझे वय चाळीस आहे" {
		t.Errorf("text: got %q", got.Text)
	}
	if len(inner.TranscribeCalls) != 1 {
		t.Fatalf("inner calls: got %d, want 1", len(inner.TranscribeCalls))
	}
	if inner.TranscribeCalls[0].Language != "mr" {
		t.Errorf("language: got %q, want mr", inner.TranscribeCalls[0].Language)
	}
}

func TestSTTGuardOpensAfterFailures(t *testing.T) {
	t.Parallel()
	inner := &sttmock.Provider{TranscribeErr: errBackend}
	guard := resilience.NewSTTGuard(inner, resilience.CircuitBreakerConfig{
		MaxFailures:  2,
		ResetTimeout: time.Hour,
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := guard.Transcribe(ctx, nil, "mr"); !errors.Is(err, errBackend) {
			t.Fatalf("call %d: got %v, want backend error", i, err)
		}
	}

	// Breaker is open now; the inner provider must not be hit again.
	_, err := guard.Transcribe(ctx, nil, "mr")
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("got %v, want ErrCircuitOpen", err)
	}
	if len(inner.TranscribeCalls) != 2 {
		t.Errorf("inner calls: got %d, want 2", len(inner.TranscribeCalls))
	}
}

func TestTTSGuardReturnsAudio(t *testing.T) {
	t.Parallel()
	inner := &ttsmock.Provider{}
	inner.SynthesizeResult.Data = []byte("RIFF")
	inner.SynthesizeResult.MIMEType = "audio/wav"
	guard := resilience.NewTTSGuard(inner, resilience.CircuitBreakerConfig{})

	got, err := guard.Synthesize(context.Background(), "नमस्कार", "mr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MIMEType != "audio/wav" {
		t.Errorf("mime: got %q", got.MIMEType)
	}
}

func TestTTSGuardPropagatesError(t *testing.T) {
	t.Parallel()
	inner := &ttsmock.Provider{SynthesizeErr: errBackend}
	guard := resilience.NewTTSGuard(inner, resilience.CircuitBreakerConfig{MaxFailures: 5})

	_, err := guard.Synthesize(context.Background(), "नमस्कार", "mr")
	if !errors.Is(err, errBackend) {
		t.Fatalf("got %v, want backend error", err)
	}
}

func TestOracleGuardOpenBecomesNoOpinion(t *testing.T) {
	t.Parallel()
	inner := &oraclemock.Oracle{RankErr: errBackend}
	guard := resilience.NewOracleGuard(inner, resilience.CircuitBreakerConfig{
		MaxFailures:  1,
		ResetTimeout: time.Hour,
	})

	ctx := context.Background()
	candidates := []oracle.Candidate{{SchemeID: "pm_kisan"}}

	if _, err := guard.Rank(ctx, "शेतकरी", candidates); !errors.Is(err, errBackend) {
		t.Fatalf("first call: got %v, want backend error", err)
	}

	// Open breaker reads as "no opinion" so ranking stays deterministic.
	_, err := guard.Rank(ctx, "शेतकरी", candidates)
	if !errors.Is(err, oracle.ErrNoOpinion) {
		t.Fatalf("got %v, want ErrNoOpinion", err)
	}
	if len(inner.RankCalls) != 1 {
		t.Errorf("inner calls: got %d, want 1", len(inner.RankCalls))
	}
}

func TestOracleGuardPassesAnswer(t *testing.T) {
	t.Parallel()
	inner := &oraclemock.Oracle{RankResult: "ladli_bahin"}
	guard := resilience.NewOracleGuard(inner, resilience.CircuitBreakerConfig{})

	got, err := guard.Rank(context.Background(), "महिला योजना", []oracle.Candidate{{SchemeID: "ladli_bahin"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ladli_bahin" {
		t.Errorf("answer: got %q, want ladli_bahin", got)
	}
}
