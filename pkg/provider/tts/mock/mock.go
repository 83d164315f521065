// Package mock provides a test double for the tts.Provider interface.
//
// Use Provider to feed controlled audio clips to the turn pipeline and to
// verify the text each call was asked to speak.
//
// Example:
//
//	p := &mock.Provider{SynthesizeResult: tts.Audio{Data: []byte("wav"), MIMEType: "audio/wav"}}
//	clip, _ := p.Synthesize(ctx, "नमस्कार", "mr")
package mock

import (
	"context"
	"sync"

	"github.com/smarathe/yojanasetu/pkg/provider/tts"
)

// SynthesizeCall records a single invocation of Synthesize.
type SynthesizeCall struct {
	// Text is the text passed to Synthesize.
	Text string
	// Language is the language hint passed to Synthesize.
	Language string
}

// Provider is a mock implementation of tts.Provider.
// Zero values cause Synthesize to return an empty Audio and nil error.
type Provider struct {
	mu sync.Mutex

	// SynthesizeResult is returned from Synthesize.
	SynthesizeResult tts.Audio

	// SynthesizeErr, if non-nil, is returned as the error from Synthesize.
	SynthesizeErr error

	// SynthesizeCalls records every invocation, in order.
	SynthesizeCalls []SynthesizeCall
}

// Compile-time interface check.
var _ tts.Provider = (*Provider)(nil)

// Synthesize implements tts.Provider.
func (p *Provider) Synthesize(_ context.Context, text, language string) (tts.Audio, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SynthesizeCalls = append(p.SynthesizeCalls, SynthesizeCall{Text: text, Language: language})
	if p.SynthesizeErr != nil {
		return tts.Audio{}, p.SynthesizeErr
	}
	return p.SynthesizeResult, nil
}
