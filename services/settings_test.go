package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSettings struct{}

func (failingSettings) Get(context.Context, string) (string, error) {
	return "", errors.New("db down")
}

func (failingSettings) Set(context.Context, string, string) error {
	return errors.New("db down")
}

func TestMemorySettings(t *testing.T) {
	ctx := context.Background()
	m := NewMemorySettings(map[string]string{AIKeySetting: "a"})

	v, err := m.Get(ctx, AIKeySetting)
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	require.NoError(t, m.Set(ctx, FlightKeySetting, "f"))
	v, _ = m.Get(ctx, FlightKeySetting)
	assert.Equal(t, "f", v)
}

func TestEnvSettings(t *testing.T) {
	ctx := context.Background()
	t.Setenv(AIKeySetting, "")
	t.Setenv("GEMINI_API_KEY", "from-alias")
	t.Setenv(FlightKeySetting, " direct ")

	e := NewEnvSettings()
	v, err := e.Get(ctx, AIKeySetting)
	require.NoError(t, err)
	assert.Equal(t, "from-alias", v)

	v, _ = e.Get(ctx, FlightKeySetting)
	assert.Equal(t, "direct", v)

	assert.ErrorIs(t, e.Set(ctx, AIKeySetting, "x"), ErrReadOnlySettings)
}

func TestLayeredSettings(t *testing.T) {
	ctx := context.Background()
	top := NewMemorySettings(nil)
	bottom := NewMemorySettings(map[string]string{AIKeySetting: "bottom", FlightKeySetting: "bottom"})
	l := NewLayeredSettings(top, bottom)

	require.NoError(t, l.Set(ctx, AIKeySetting, "top"))

	v, _ := l.Get(ctx, AIKeySetting)
	assert.Equal(t, "top", v)
	v, _ = l.Get(ctx, FlightKeySetting)
	assert.Equal(t, "bottom", v)

	v, _ = bottom.Get(ctx, AIKeySetting)
	assert.Equal(t, "bottom", v)

	assert.ErrorIs(t, NewLayeredSettings().Set(ctx, AIKeySetting, "x"), ErrReadOnlySettings)
}

func TestRequireSetting(t *testing.T) {
	ctx := context.Background()

	_, err := requireSetting(ctx, NewMemorySettings(map[string]string{AIKeySetting: "   "}), AIKeySetting)
	assert.ErrorIs(t, err, ErrMissingCredential)

	_, err = requireSetting(ctx, nil, AIKeySetting)
	assert.ErrorIs(t, err, ErrMissingCredential)

	_, err = requireSetting(ctx, failingSettings{}, AIKeySetting)
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Contains(t, err.Error(), "db down")

	v, err := requireSetting(ctx, aiKeyStore(), AIKeySetting)
	require.NoError(t, err)
	assert.Equal(t, "gemini-key", v)
}
