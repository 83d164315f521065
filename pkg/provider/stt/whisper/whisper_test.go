package whisper_test

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/smarathe/yojanasetu/pkg/provider/stt/whisper"
)

type segment struct {
	Text         string  `json:"text"`
	AvgLogProb   float64 `json:"avg_logprob"`
	NoSpeechProb float64 `json:"no_speech_prob"`
}

type inferenceReply struct {
	Text     string    `json:"text"`
	Segments []segment `json:"segments"`
}

// newMockServer responds to POST /inference with the given reply and records
// the last submitted form fields.
func newMockServer(t *testing.T, reply inferenceReply, callCount *atomic.Int32, lastFields *map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/inference" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if callCount != nil {
			callCount.Add(1)
		}
		if lastFields != nil {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			fields := map[string]string{}
			for k, vs := range r.MultipartForm.Value {
				if len(vs) > 0 {
					fields[k] = vs[0]
				}
			}
			*lastFields = fields
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply)
	}))
}

func TestNewEmptyServerURL(t *testing.T) {
	t.Parallel()
	if _, err := whisper.New(""); err == nil {
		t.Fatal("expected error for empty serverURL, got nil")
	}
}

func TestTranscribeHappyPath(t *testing.T) {
	t.Parallel()
	reply := inferenceReply{
		Text: " माझे वय चाळीस आहे ",
		Segments: []segment{
			{Text: "माझे वय चाळीस आहे", AvgLogProb: -0.2, NoSpeechProb: 0.05},
		},
	}
	var fields map[string]string
	srv := newMockServer(t, reply, nil, &fields)
	defer srv.Close()

	p, err := whisper.New(srv.URL, whisper.WithModel("small"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr, err := p.Transcribe(context.Background(), []byte("fake-wav"), "")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if tr.Text != "माझे वय चाळीस आहे" {
		t.Errorf("Text = %q, want trimmed transcript", tr.Text)
	}
	wantConf := math.Exp(-0.2) * 0.95
	if math.Abs(tr.Confidence-wantConf) > 1e-9 {
		t.Errorf("Confidence = %v, want %v", tr.Confidence, wantConf)
	}
	if fields["language"] != "mr" {
		t.Errorf("language field = %q, want default %q", fields["language"], "mr")
	}
	if fields["response_format"] != "verbose_json" {
		t.Errorf("response_format field = %q, want verbose_json", fields["response_format"])
	}
	if fields["model"] != "small" {
		t.Errorf("model field = %q, want small", fields["model"])
	}
}

func TestTranscribeLanguageOverride(t *testing.T) {
	t.Parallel()
	var fields map[string]string
	srv := newMockServer(t, inferenceReply{Text: "hello"}, nil, &fields)
	defer srv.Close()

	p, _ := whisper.New(srv.URL)
	if _, err := p.Transcribe(context.Background(), []byte("x"), "hi"); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if fields["language"] != "hi" {
		t.Errorf("language field = %q, want %q", fields["language"], "hi")
	}
}

func TestTranscribeLowConfidenceRejected(t *testing.T) {
	t.Parallel()
	// exp(-3.0) ≈ 0.05, far below the 0.18 floor.
	reply := inferenceReply{
		Text:     "काहीतरी",
		Segments: []segment{{Text: "काहीतरी", AvgLogProb: -3.0, NoSpeechProb: 0.4}},
	}
	srv := newMockServer(t, reply, nil, nil)
	defer srv.Close()

	p, _ := whisper.New(srv.URL)
	tr, err := p.Transcribe(context.Background(), []byte("noise"), "")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if tr.Text != "" || tr.Confidence != 0 {
		t.Errorf("Transcript = %+v, want zero value for low-confidence audio", tr)
	}
}

func TestTranscribeEmptyTextRejected(t *testing.T) {
	t.Parallel()
	srv := newMockServer(t, inferenceReply{Text: "  "}, nil, nil)
	defer srv.Close()

	p, _ := whisper.New(srv.URL)
	tr, err := p.Transcribe(context.Background(), []byte("noise"), "")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if tr.Text != "" || tr.Confidence != 0 {
		t.Errorf("Transcript = %+v, want zero value for empty text", tr)
	}
}

func TestTranscribeEmptyAudioSkipsRequest(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := newMockServer(t, inferenceReply{Text: "never"}, &calls, nil)
	defer srv.Close()

	p, _ := whisper.New(srv.URL)
	tr, err := p.Transcribe(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if tr.Text != "" || calls.Load() != 0 {
		t.Errorf("empty audio: transcript %+v, server calls %d; want zero transcript and no calls", tr, calls.Load())
	}
}

func TestTranscribeServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, _ := whisper.New(srv.URL)
	if _, err := p.Transcribe(context.Background(), []byte("x"), ""); err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
}

func TestTranscribeNoSegmentsDefaultsConfident(t *testing.T) {
	t.Parallel()
	srv := newMockServer(t, inferenceReply{Text: "नमस्कार"}, nil, nil)
	defer srv.Close()

	p, _ := whisper.New(srv.URL)
	tr, err := p.Transcribe(context.Background(), []byte("x"), "")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if tr.Text != "नमस्कार" || tr.Confidence != 1.0 {
		t.Errorf("Transcript = %+v, want text with confidence 1.0", tr)
	}
}
