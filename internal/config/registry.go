package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/smarathe/yojanasetu/pkg/provider/oracle"
	"github.com/smarathe/yojanasetu/pkg/provider/stt"
	"github.com/smarathe/yojanasetu/pkg/provider/tts"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory has
// been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// provider type. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	stt    map[string]func(ProviderEntry) (stt.Provider, error)
	tts    map[string]func(ProviderEntry) (tts.Provider, error)
	oracle map[string]func(ProviderEntry) (oracle.Provider, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		stt:    make(map[string]func(ProviderEntry) (stt.Provider, error)),
		tts:    make(map[string]func(ProviderEntry) (tts.Provider, error)),
		oracle: make(map[string]func(ProviderEntry) (oracle.Provider, error)),
	}
}

// RegisterSTT registers an STT provider factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterSTT(name string, factory func(ProviderEntry) (stt.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stt[name] = factory
}

// RegisterTTS registers a TTS provider factory under name.
func (r *Registry) RegisterTTS(name string, factory func(ProviderEntry) (tts.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tts[name] = factory
}

// RegisterOracle registers a ranking-oracle factory under name.
func (r *Registry) RegisterOracle(name string, factory func(ProviderEntry) (oracle.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.oracle[name] = factory
}

// CreateSTT builds the STT provider selected by entry.Name.
func (r *Registry) CreateSTT(entry ProviderEntry) (stt.Provider, error) {
	r.mu.RLock()
	factory, ok := r.stt[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: stt %q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateTTS builds the TTS provider selected by entry.Name.
func (r *Registry) CreateTTS(entry ProviderEntry) (tts.Provider, error) {
	r.mu.RLock()
	factory, ok := r.tts[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: tts %q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateOracle builds the ranking oracle selected by entry.Name. An empty
// name yields [oracle.Disabled]: ranking stays deterministic.
func (r *Registry) CreateOracle(entry ProviderEntry) (oracle.Provider, error) {
	if entry.Name == "" {
		return oracle.Disabled{}, nil
	}
	r.mu.RLock()
	factory, ok := r.oracle[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: oracle %q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}
