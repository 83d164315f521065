// Package stt defines the Provider interface for Speech-to-Text backends.
//
// The turn engine works on whole utterances: the client records one spoken
// answer and ships it as a single audio blob, so the abstraction is a batch
// Transcribe call rather than a streaming session. A provider wraps a
// transcription service (e.g. a local whisper-server) and returns the
// recognized text together with a confidence estimate the dialogue layer uses
// to reject unintelligible audio.
//
// Implementations must be safe for concurrent use.
package stt

import "context"

// Transcript is the result of transcribing one utterance.
type Transcript struct {
	// Text is the recognized utterance, trimmed. Empty when the provider
	// judged the audio to contain no usable speech.
	Text string

	// Confidence is the provider's estimate in [0, 1] that Text is what was
	// actually said. Providers that cannot estimate confidence report 1.0
	// for non-empty text. A Transcript with empty Text always carries 0.0.
	Confidence float64
}

// Provider is the Speech-to-Text abstraction.
type Provider interface {
	// Transcribe converts one utterance of encoded audio into text.
	// language is an ISO 639-1 hint (e.g. "mr"); an empty string uses the
	// provider's configured default. Unintelligible audio is not an error:
	// providers return a zero Transcript and reserve errors for transport
	// and decoding failures.
	Transcribe(ctx context.Context, audio []byte, language string) (Transcript, error)
}
