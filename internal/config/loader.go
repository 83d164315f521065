package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"stt":    {"whisper"},
	"tts":    {"coqui"},
	"oracle": {"openai", "anthropic", "gemini", "ollama", "groq", "mistral"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.TLS != nil {
		if cfg.Server.TLS.CertFile == "" || cfg.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
		}
	}

	validateProviderName("stt", cfg.Providers.STT.Name)
	validateProviderName("tts", cfg.Providers.TTS.Name)
	validateProviderName("oracle", cfg.Providers.Oracle.Name)

	if cfg.Providers.STT.Name == "whisper" && cfg.Providers.STT.BaseURL == "" {
		errs = append(errs, errors.New("providers.stt.base_url is required for the whisper provider"))
	}
	if cfg.Providers.TTS.Name == "coqui" && cfg.Providers.TTS.BaseURL == "" {
		errs = append(errs, errors.New("providers.tts.base_url is required for the coqui provider"))
	}
	if cfg.Providers.Oracle.Name != "" && cfg.Providers.Oracle.Model == "" {
		errs = append(errs, fmt.Errorf("providers.oracle.model is required when oracle %q is configured", cfg.Providers.Oracle.Name))
	}

	switch cfg.Store.Driver {
	case "":
		slog.Warn("store.driver is empty; sessions will be kept in memory and lost on restart")
	case StorePostgres:
		if cfg.Store.PostgresDSN == "" {
			errs = append(errs, errors.New("store.postgres_dsn is required when store.driver is postgres"))
		}
	case StoreSQLite:
		if cfg.Store.SQLitePath == "" {
			errs = append(errs, errors.New("store.sqlite_path is required when store.driver is sqlite"))
		}
	case StoreMemory:
		// nothing to configure
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is invalid; valid values: postgres, sqlite, memory", cfg.Store.Driver))
	}

	if cfg.Corpus.Path == "" {
		errs = append(errs, errors.New("corpus.path is required"))
	}

	if cfg.Dialogue.ConfidenceFloor < 0 || cfg.Dialogue.ConfidenceFloor > 1 {
		errs = append(errs, fmt.Errorf("dialogue.confidence_floor %.2f is out of range [0, 1]", cfg.Dialogue.ConfidenceFloor))
	}
	if cfg.Dialogue.RetrieveK < 0 || cfg.Dialogue.RetrieveK > 10 {
		errs = append(errs, fmt.Errorf("dialogue.retrieve_k %d is out of range [0, 10]", cfg.Dialogue.RetrieveK))
	}
	if cfg.Extract.FuzzyCutoff < 0 || cfg.Extract.FuzzyCutoff > 1 {
		errs = append(errs, fmt.Errorf("extract.fuzzy_cutoff %.2f is out of range [0, 1]", cfg.Extract.FuzzyCutoff))
	}
	if cfg.Extract.IncomeFloor < 0 {
		errs = append(errs, fmt.Errorf("extract.income_floor %d must not be negative", cfg.Extract.IncomeFloor))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
