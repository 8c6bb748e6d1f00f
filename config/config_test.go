package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FLIGHT_TIMEOUT", "5s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, "gemini-1.5-flash", cfg.AI.Model)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Flights.Timeout)
	assert.Equal(t, "https://serpapi.com", cfg.Flights.BaseURL)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai:\n  model: gemini-2.0-flash\nflights:\n  rps: 0.5\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Equal(t, 0.5, cfg.Flights.RPS)
}

func TestPostgres_DSN(t *testing.T) {
	p := Postgres{Host: "db", Port: "5432", User: "u", Password: "p", Name: "wanderplan", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=wanderplan sslmode=disable", p.DSN())

	p.URL = "postgres://u:p@db:5432/wanderplan"
	assert.Equal(t, p.URL, p.DSN())
}

func TestHTTP_AllowedOrigins(t *testing.T) {
	h := HTTP{FrontendURL: "https://a.example, ,https://b.example"}
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000", "https://a.example", "https://b.example"}, h.AllowedOrigins())
}
