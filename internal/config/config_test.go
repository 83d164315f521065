package config_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/smarathe/yojanasetu/internal/config"
	"github.com/smarathe/yojanasetu/pkg/provider/oracle"
	oraclemock "github.com/smarathe/yojanasetu/pkg/provider/oracle/mock"
	"github.com/smarathe/yojanasetu/pkg/provider/stt"
	sttmock "github.com/smarathe/yojanasetu/pkg/provider/stt/mock"
	"github.com/smarathe/yojanasetu/pkg/provider/tts"
	ttsmock "github.com/smarathe/yojanasetu/pkg/provider/tts/mock"
)

// ── helpers ──────────────────────────────────────────────────────────────────

const sampleYAML = `
server:
  listen_addr: ":8090"
  log_level: info

providers:
  stt:
    name: whisper
    base_url: http://localhost:8080
    language: mr
    timeout: 30s
  tts:
    name: coqui
    base_url: http://localhost:5002
    language: mr
  oracle:
    name: groq
    api_key: gsk-test
    model: llama-3.1-8b-instant

store:
  driver: sqlite
  sqlite_path: /var/lib/yojanasetu/sessions.db

corpus:
  path: data/schemes.yaml
  watch_interval: 30s

dialogue:
  confidence_floor: 0.35
  retrieve_k: 5
  language: Marathi

extract:
  income_floor: 10000
  fuzzy_cutoff: 0.84
  fuzzy_max_len: 18

rank:
  oracle_timeout: 8s
`

// ── YAML loading ──────────────────────────────────────────────────────────────

func TestLoadFromReader_Valid(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.ListenAddr != ":8090" {
		t.Errorf("server.listen_addr: got %q, want %q", cfg.Server.ListenAddr, ":8090")
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("server.log_level: got %q, want %q", cfg.Server.LogLevel, config.LogInfo)
	}
	if cfg.Providers.STT.Name != "whisper" {
		t.Errorf("providers.stt.name: got %q, want %q", cfg.Providers.STT.Name, "whisper")
	}
	if cfg.Providers.STT.Timeout != 30*time.Second {
		t.Errorf("providers.stt.timeout: got %v, want 30s", cfg.Providers.STT.Timeout)
	}
	if cfg.Providers.Oracle.Model != "llama-3.1-8b-instant" {
		t.Errorf("providers.oracle.model: got %q", cfg.Providers.Oracle.Model)
	}
	if cfg.Store.Driver != config.StoreSQLite {
		t.Errorf("store.driver: got %q, want sqlite", cfg.Store.Driver)
	}
	if cfg.Corpus.Path != "data/schemes.yaml" {
		t.Errorf("corpus.path: got %q", cfg.Corpus.Path)
	}
	if cfg.Corpus.WatchInterval != 30*time.Second {
		t.Errorf("corpus.watch_interval: got %v, want 30s", cfg.Corpus.WatchInterval)
	}
	if cfg.Dialogue.ConfidenceFloor != 0.35 {
		t.Errorf("dialogue.confidence_floor: got %.2f, want 0.35", cfg.Dialogue.ConfidenceFloor)
	}
	if cfg.Extract.IncomeFloor != 10000 {
		t.Errorf("extract.income_floor: got %d, want 10000", cfg.Extract.IncomeFloor)
	}
	if cfg.Rank.OracleTimeout != 8*time.Second {
		t.Errorf("rank.oracle_timeout: got %v, want 8s", cfg.Rank.OracleTimeout)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	yaml := `
corpus:
  path: data/schemes.yaml
  watch_intervall: 30s
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

// ── Validation ────────────────────────────────────────────────────────────────

func TestValidate_InvalidLogLevel(t *testing.T) {
	yaml := `
server:
  log_level: verbose
corpus:
  path: data/schemes.yaml
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log_level, got nil")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error should mention log_level, got: %v", err)
	}
}

func TestValidate_TLSRequiresBothFiles(t *testing.T) {
	yaml := `
server:
  tls:
    cert_file: /etc/ssl/server.crt
corpus:
  path: data/schemes.yaml
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for TLS cert without key, got nil")
	}
	if !strings.Contains(err.Error(), "key_file") {
		t.Errorf("error should mention key_file, got: %v", err)
	}
}

func TestValidate_InvalidConfidenceFloor(t *testing.T) {
	yaml := `
corpus:
  path: data/schemes.yaml
dialogue:
  confidence_floor: 1.5
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for confidence_floor > 1, got nil")
	}
	if !strings.Contains(err.Error(), "confidence_floor") {
		t.Errorf("error should mention confidence_floor, got: %v", err)
	}
}

func TestValidate_InvalidRetrieveK(t *testing.T) {
	yaml := `
corpus:
  path: data/schemes.yaml
dialogue:
  retrieve_k: 50
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for retrieve_k out of range, got nil")
	}
}

func TestValidate_NegativeIncomeFloor(t *testing.T) {
	yaml := `
corpus:
  path: data/schemes.yaml
extract:
  income_floor: -1
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for negative income_floor, got nil")
	}
}

// ── Registry ─────────────────────────────────────────────────────────────────

func TestRegistry_UnknownSTT(t *testing.T) {
	reg := config.NewRegistry()
	_, err := reg.CreateSTT(config.ProviderEntry{Name: "nonexistent"})
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("expected ErrProviderNotRegistered, got: %v", err)
	}
}

func TestRegistry_UnknownTTS(t *testing.T) {
	reg := config.NewRegistry()
	_, err := reg.CreateTTS(config.ProviderEntry{Name: "nonexistent"})
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("expected ErrProviderNotRegistered, got: %v", err)
	}
}

func TestRegistry_UnknownOracle(t *testing.T) {
	reg := config.NewRegistry()
	_, err := reg.CreateOracle(config.ProviderEntry{Name: "nonexistent"})
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("expected ErrProviderNotRegistered, got: %v", err)
	}
}

func TestRegistry_EmptyOracleNameIsDisabled(t *testing.T) {
	reg := config.NewRegistry()
	got, err := reg.CreateOracle(config.ProviderEntry{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got.(oracle.Disabled); !ok {
		t.Errorf("expected oracle.Disabled, got %T", got)
	}
}

// ── Registry with registered factories ───────────────────────────────────────

func TestRegistry_RegisteredSTT(t *testing.T) {
	reg := config.NewRegistry()
	want := &sttmock.Provider{}
	reg.RegisterSTT("stub", func(e config.ProviderEntry) (stt.Provider, error) {
		return want, nil
	})
	got, err := reg.CreateSTT(config.ProviderEntry{Name: "stub"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Error("returned provider is not the expected instance")
	}
}

func TestRegistry_RegisteredTTS(t *testing.T) {
	reg := config.NewRegistry()
	want := &ttsmock.Provider{}
	reg.RegisterTTS("stub", func(e config.ProviderEntry) (tts.Provider, error) {
		return want, nil
	})
	got, err := reg.CreateTTS(config.ProviderEntry{Name: "stub"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Error("returned provider is not the expected instance")
	}
}

func TestRegistry_RegisteredOracle(t *testing.T) {
	reg := config.NewRegistry()
	want := &oraclemock.Oracle{}
	reg.RegisterOracle("stub", func(e config.ProviderEntry) (oracle.Provider, error) {
		return want, nil
	})
	got, err := reg.CreateOracle(config.ProviderEntry{Name: "stub"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Error("returned provider is not the expected instance")
	}
}

func TestRegistry_FactoryError(t *testing.T) {
	reg := config.NewRegistry()
	wantErr := errors.New("factory boom")
	reg.RegisterSTT("broken", func(e config.ProviderEntry) (stt.Provider, error) {
		return nil, wantErr
	})
	_, err := reg.CreateSTT(config.ProviderEntry{Name: "broken"})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected factory error %v, got %v", wantErr, err)
	}
}

func TestRegistry_FactoryReceivesEntry(t *testing.T) {
	reg := config.NewRegistry()
	var got config.ProviderEntry
	reg.RegisterTTS("stub", func(e config.ProviderEntry) (tts.Provider, error) {
		got = e
		return &ttsmock.Provider{}, nil
	})
	entry := config.ProviderEntry{Name: "stub", BaseURL: "http://localhost:5002", Language: "mr"}
	if _, err := reg.CreateTTS(entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != entry {
		t.Errorf("factory entry: got %+v, want %+v", got, entry)
	}
}
