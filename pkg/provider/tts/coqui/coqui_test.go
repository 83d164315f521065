package coqui

import (
	"context"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSynthesizeHappyPath(t *testing.T) {
	t.Parallel()
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tts" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		gotQuery = map[string]string{
			"text":        r.URL.Query().Get("text"),
			"language_id": r.URL.Query().Get("language_id"),
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFF-fake-wav"))
	}))
	defer srv.Close()

	p := New(srv.URL)
	clip, err := p.Synthesize(context.Background(), " नमस्कार ", "")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(clip.Data) != "RIFF-fake-wav" {
		t.Errorf("Data = %q, want server bytes", clip.Data)
	}
	if clip.MIMEType != "audio/wav" {
		t.Errorf("MIMEType = %q, want audio/wav", clip.MIMEType)
	}
	if gotQuery["text"] != "नमस्कार" {
		t.Errorf("text query = %q, want trimmed input", gotQuery["text"])
	}
	if gotQuery["language_id"] != "mr" {
		t.Errorf("language_id query = %q, want default mr", gotQuery["language_id"])
	}
}

func TestSynthesizeEmptyTextReturnsSilence(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("server must not be called for empty text")
	}))
	defer srv.Close()

	p := New(srv.URL)
	clip, err := p.Synthesize(context.Background(), "   ", "")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if clip.MIMEType != "audio/wav" {
		t.Errorf("MIMEType = %q, want audio/wav", clip.MIMEType)
	}
	if len(clip.Data) != 44+silenceSamples*2 {
		t.Fatalf("silence clip length = %d, want header + %d PCM bytes", len(clip.Data), silenceSamples*2)
	}
	if string(clip.Data[0:4]) != "RIFF" || string(clip.Data[8:12]) != "WAVE" {
		t.Error("silence clip is not a RIFF/WAVE container")
	}
	if sr := binary.LittleEndian.Uint32(clip.Data[24:28]); sr != silenceSampleRate {
		t.Errorf("silence sample rate = %d, want %d", sr, silenceSampleRate)
	}
	for _, b := range clip.Data[44:] {
		if b != 0 {
			t.Fatal("silence clip contains non-zero PCM")
		}
	}
}

func TestSynthesizeServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := New(srv.URL)
	if _, err := p.Synthesize(context.Background(), "मजकूर", ""); err == nil {
		t.Fatal("expected error for HTTP 502, got nil")
	}
}

func TestSynthesizeLanguageOverrideAndSpeaker(t *testing.T) {
	t.Parallel()
	var lang, speaker string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang = r.URL.Query().Get("language_id")
		speaker = r.URL.Query().Get("speaker_id")
		_, _ = w.Write([]byte("wav"))
	}))
	defer srv.Close()

	p := New(srv.URL, WithSpeaker("p225"))
	if _, err := p.Synthesize(context.Background(), "hello", "hi"); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if lang != "hi" {
		t.Errorf("language_id = %q, want hi", lang)
	}
	if speaker != "p225" {
		t.Errorf("speaker_id = %q, want p225", speaker)
	}
}
