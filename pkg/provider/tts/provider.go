// Package tts defines the Provider interface for Text-to-Speech backends.
//
// A TTS provider wraps a speech synthesis service (e.g. a local Coqui TTS
// server) and turns one assistant reply into one encoded audio clip. The turn
// engine speaks whole replies, so the abstraction is a batch Synthesize call:
// text in, a complete playable audio blob out.
//
// Implementations must be safe for concurrent use.
package tts

import "context"

// Audio is one synthesized clip.
type Audio struct {
	// Data is the complete encoded audio file.
	Data []byte

	// MIMEType describes Data (e.g. "audio/wav").
	MIMEType string
}

// Provider is the Text-to-Speech abstraction.
type Provider interface {
	// Synthesize renders text as speech. language is an ISO 639-1 hint
	// (e.g. "mr"); an empty string uses the provider's configured default.
	// Empty or whitespace-only text is not an error: providers return a
	// short silent clip so the client's playback path stays uniform.
	Synthesize(ctx context.Context, text, language string) (Audio, error)
}
