// Package whisper provides a whisper-server backed STT provider.
//
// It talks to a running whisper-server binary (REST API at POST /inference),
// submitting each utterance as a multipart batch request with
// response_format=verbose_json so the reply carries per-segment log
// probabilities. Those are folded into the single confidence value the
// dialogue layer thresholds on; audio below the provider's own confidence
// floor is reported as an empty transcript rather than an error.
//
// Usage:
//
//	p, err := whisper.New("http://localhost:8080",
//	    whisper.WithLanguage("mr"),
//	)
//	tr, err := p.Transcribe(ctx, wavBytes, "")
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/smarathe/yojanasetu/pkg/provider/stt"
)

const (
	defaultLanguage = "mr"
	defaultTimeout  = 30 * time.Second

	// defaultConfidenceFloor is the confidence below which a transcription
	// is treated as no speech at all. Whisper reliably hallucinates short
	// Marathi phrases on noise; anything this uncertain is worthless.
	defaultConfidenceFloor = 0.18

	// fallbackLogProb stands in for a segment that carries no avg_logprob.
	fallbackLogProb = -2.5
)

// Compile-time assertion that Provider implements stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithModel sets the model identifier forwarded to the whisper server
// (e.g. "small", "large-v3"). When empty the server uses whichever model it
// was started with — this is the default.
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithLanguage sets the default ISO 639-1 language code sent to the server.
// Defaults to "mr" (Marathi).
func WithLanguage(lang string) Option {
	return func(p *Provider) {
		p.language = lang
	}
}

// WithTimeout bounds a single inference request. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.httpClient.Timeout = d
		}
	}
}

// WithConfidenceFloor sets the confidence below which a transcription is
// reported as empty. Defaults to 0.18.
func WithConfidenceFloor(floor float64) Option {
	return func(p *Provider) {
		p.confidenceFloor = floor
	}
}

// Provider implements stt.Provider backed by a whisper-server HTTP endpoint.
type Provider struct {
	serverURL       string
	model           string
	language        string
	confidenceFloor float64
	httpClient      *http.Client
}

// New creates a Provider that connects to the whisper server at serverURL
// (e.g. "http://localhost:8080"). serverURL must be non-empty.
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, errors.New("whisper: serverURL must not be empty")
	}
	p := &Provider{
		serverURL:       strings.TrimRight(serverURL, "/"),
		language:        defaultLanguage,
		confidenceFloor: defaultConfidenceFloor,
		httpClient:      &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// inferenceResponse is the verbose_json reply shape of whisper-server.
type inferenceResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Text         string  `json:"text"`
		AvgLogProb   float64 `json:"avg_logprob"`
		NoSpeechProb float64 `json:"no_speech_prob"`
	} `json:"segments"`
}

// Transcribe implements stt.Provider. audio must be a complete encoded file
// the server can decode (WAV is always safe).
func (p *Provider) Transcribe(ctx context.Context, audio []byte, language string) (stt.Transcript, error) {
	if len(audio) == 0 {
		return stt.Transcript{}, nil
	}
	lang := language
	if lang == "" {
		lang = p.language
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: create form file: %w", err)
	}
	if _, err := fw.Write(audio); err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: write audio data: %w", err)
	}

	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: write response_format field: %w", err)
	}
	if err := mw.WriteField("temperature", "0.0"); err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: write temperature field: %w", err)
	}
	if err := mw.WriteField("language", lang); err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: write language field: %w", err)
	}
	if p.model != "" {
		if err := mw.WriteField("model", p.model); err != nil {
			return stt.Transcript{}, fmt.Errorf("whisper: write model field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.serverURL+"/inference", &body)
	if err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return stt.Transcript{}, fmt.Errorf("whisper: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: read response body: %w", err)
	}

	var result inferenceResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: parse JSON response: %w", err)
	}

	text := strings.TrimSpace(result.Text)
	conf := confidence(result)
	if text == "" || conf < p.confidenceFloor {
		return stt.Transcript{}, nil
	}
	return stt.Transcript{Text: text, Confidence: conf}, nil
}

// confidence folds per-segment log probabilities into a single [0, 1] score:
// for each segment, exp(avg_logprob) discounted by the no-speech probability,
// then the mean over segments. A reply without segments (plain json format,
// or an old server) scores 1.0 for non-empty text so the floor never rejects
// it on missing metadata alone.
func confidence(r inferenceResponse) float64 {
	if len(r.Segments) == 0 {
		if strings.TrimSpace(r.Text) == "" {
			return 0
		}
		return 1
	}
	sum := 0.0
	for _, seg := range r.Segments {
		lp := seg.AvgLogProb
		if lp == 0 {
			lp = fallbackLogProb
		}
		pLP := 1.0
		if lp < 0 {
			pLP = math.Exp(lp)
		}
		p := pLP * (1.0 - seg.NoSpeechProb)
		sum += math.Max(0, math.Min(1, p))
	}
	return sum / float64(len(r.Segments))
}
