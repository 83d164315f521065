// Package mock provides a test double for the stt.Provider interface.
//
// Use Provider to feed controlled transcripts to the turn pipeline and to
// inspect the audio and language each call delivered.
//
// Example:
//
//	p := &mock.Provider{TranscribeResult: stt.Transcript{Text: "माझे वय चाळीस", Confidence: 0.9}}
//	tr, _ := p.Transcribe(ctx, audio, "mr")
package mock

import (
	"context"
	"sync"

	"github.com/smarathe/yojanasetu/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Transcribe.
type TranscribeCall struct {
	// Audio is the audio blob passed to Transcribe.
	Audio []byte
	// Language is the language hint passed to Transcribe.
	Language string
}

// Provider is a mock implementation of stt.Provider.
// Zero values cause Transcribe to return an empty Transcript and nil error.
type Provider struct {
	mu sync.Mutex

	// TranscribeResult is returned from Transcribe.
	TranscribeResult stt.Transcript

	// TranscribeResults, when non-empty, is consumed one element per call
	// before falling back to TranscribeResult. Useful for multi-turn tests.
	TranscribeResults []stt.Transcript

	// TranscribeErr, if non-nil, is returned as the error from Transcribe.
	TranscribeErr error

	// TranscribeCalls records every invocation, in order.
	TranscribeCalls []TranscribeCall
}

// Compile-time interface check.
var _ stt.Provider = (*Provider)(nil)

// Transcribe implements stt.Provider.
func (p *Provider) Transcribe(_ context.Context, audio []byte, language string) (stt.Transcript, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.TranscribeCalls = append(p.TranscribeCalls, TranscribeCall{Audio: audio, Language: language})
	if p.TranscribeErr != nil {
		return stt.Transcript{}, p.TranscribeErr
	}
	if len(p.TranscribeResults) > 0 {
		tr := p.TranscribeResults[0]
		p.TranscribeResults = p.TranscribeResults[1:]
		return tr, nil
	}
	return p.TranscribeResult, nil
}
