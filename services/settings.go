package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
)

// Settings keys read by the planner.
const (
	AIKeySetting     = "AI_API_KEY"
	FlightKeySetting = "FLIGHT_API_KEY"
)

// SettingsKeys lists every key the settings endpoint accepts.
var SettingsKeys = []string{AIKeySetting, FlightKeySetting}

var ErrReadOnlySettings = errors.New("settings store is read-only")

// SettingsStore is a simple key-value store for API credentials.
// Get returns "" and a nil error for keys that are not set.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// ─── In-memory ───────────────────────────────────────────────────────────────

type MemorySettings struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemorySettings(values map[string]string) *MemorySettings {
	m := &MemorySettings{values: make(map[string]string, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m *MemorySettings) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MemorySettings) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// ─── Environment ─────────────────────────────────────────────────────────────

// EnvSettings reads keys from the process environment. Aliases let the
// Gemini and SerpAPI variable names used by older deployments keep working.
type EnvSettings struct {
	Aliases map[string][]string
}

func NewEnvSettings() *EnvSettings {
	return &EnvSettings{
		Aliases: map[string][]string{
			AIKeySetting:     {"GEMINI_API_KEY"},
			FlightKeySetting: {"SERPAPI_KEY"},
		},
	}
}

func (e *EnvSettings) Get(_ context.Context, key string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v, nil
	}
	for _, alias := range e.Aliases[key] {
		if v := strings.TrimSpace(os.Getenv(alias)); v != "" {
			return v, nil
		}
	}
	return "", nil
}

func (e *EnvSettings) Set(context.Context, string, string) error {
	return ErrReadOnlySettings
}

// ─── Layered ─────────────────────────────────────────────────────────────────

// LayeredSettings returns the first non-empty value across its stores and
// writes to the first one.
type LayeredSettings struct {
	stores []SettingsStore
}

func NewLayeredSettings(stores ...SettingsStore) *LayeredSettings {
	return &LayeredSettings{stores: stores}
}

func (l *LayeredSettings) Get(ctx context.Context, key string) (string, error) {
	for _, s := range l.stores {
		v, err := s.Get(ctx, key)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
	}
	return "", nil
}

func (l *LayeredSettings) Set(ctx context.Context, key, value string) error {
	if len(l.stores) == 0 {
		return ErrReadOnlySettings
	}
	return l.stores[0].Set(ctx, key, value)
}

// requireSetting reads key and fails with a CredentialError when it is empty.
func requireSetting(ctx context.Context, store SettingsStore, key string) (string, error) {
	if store == nil {
		return "", &CredentialError{Key: key}
	}
	v, err := store.Get(ctx, key)
	if err != nil {
		return "", &CredentialError{Key: key, Err: err}
	}
	if strings.TrimSpace(v) == "" {
		return "", &CredentialError{Key: key}
	}
	return v, nil
}
