// Package coqui provides a Coqui TTS-backed speech synthesis provider.
//
// It targets the standard Coqui TTS server (ghcr.io/coqui-ai/tts-cpu):
// synthesis is one GET /api/tts call per reply, returning a complete WAV
// clip. Empty text short-circuits to a locally generated second of silence,
// mirroring what the rest of the pipeline expects: every assistant turn has
// a playable audio payload.
//
// Typical usage:
//
//	p := coqui.New("http://localhost:5002",
//	    coqui.WithLanguage("mr"),
//	    coqui.WithTimeout(15*time.Second),
//	)
//	clip, err := p.Synthesize(ctx, "नमस्कार", "")
package coqui

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smarathe/yojanasetu/pkg/provider/tts"
)

// Compile-time interface assertion.
var _ tts.Provider = (*Provider)(nil)

const (
	defaultLanguage = "mr"
	defaultTimeout  = 30 * time.Second
	apiTTSEndpoint  = "/api/tts"

	mimeWAV = "audio/wav"

	// silenceSampleRate and silenceSamples shape the clip returned for empty
	// text: one second of 16 kHz mono silence.
	silenceSampleRate = 16000
	silenceSamples    = 16000
)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithLanguage sets the default language id sent to the TTS server.
// Defaults to "mr".
func WithLanguage(lang string) Option {
	return func(p *Provider) {
		p.language = lang
	}
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.httpClient.Timeout = d
		}
	}
}

// WithSpeaker sets the speaker id forwarded to multi-speaker models. Empty
// (the default) omits the parameter.
func WithSpeaker(id string) Option {
	return func(p *Provider) {
		p.speakerID = id
	}
}

// Provider implements tts.Provider backed by a Coqui TTS server. Safe for
// concurrent use; multiple Synthesize calls may run in parallel.
type Provider struct {
	serverURL  string
	language   string
	speakerID  string
	httpClient *http.Client
}

// New creates a Provider targeting the Coqui TTS server at serverURL
// (e.g. "http://localhost:5002").
func New(serverURL string, opts ...Option) *Provider {
	p := &Provider{
		serverURL:  strings.TrimRight(serverURL, "/"),
		language:   defaultLanguage,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Synthesize implements tts.Provider.
func (p *Provider) Synthesize(ctx context.Context, text, language string) (tts.Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return tts.Audio{Data: silenceWAV(), MIMEType: mimeWAV}, nil
	}
	lang := language
	if lang == "" {
		lang = p.language
	}

	q := url.Values{}
	q.Set("text", text)
	q.Set("language_id", lang)
	if p.speakerID != "" {
		q.Set("speaker_id", p.speakerID)
	}
	endpoint := p.serverURL + apiTTSEndpoint + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return tts.Audio{}, fmt.Errorf("coqui: create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return tts.Audio{}, fmt.Errorf("coqui: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tts.Audio{}, fmt.Errorf("coqui: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return tts.Audio{}, fmt.Errorf("coqui: read response body: %w", err)
	}
	if len(data) == 0 {
		return tts.Audio{}, fmt.Errorf("coqui: server returned empty audio")
	}
	return tts.Audio{Data: data, MIMEType: mimeWAV}, nil
}

// silenceWAV builds one second of 16-bit mono silence in a RIFF/WAV
// container.
func silenceWAV() []byte {
	const bps = 16
	dataSize := silenceSamples * bps / 8
	byteRate := silenceSampleRate * bps / 8

	buf := make([]byte, 44+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], 1)
	binary.LittleEndian.PutUint32(buf[24:28], silenceSampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], bps/8)
	binary.LittleEndian.PutUint16(buf[34:36], bps)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	return buf
}
