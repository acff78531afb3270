package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T, yaml string) (*viper.Viper, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	return v, path
}

func TestLoadSettingsDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	s := LoadSettings(v)
	assert.Equal(t, "./ticker.dat", s.SourcePath)
	assert.Equal(t, "Average.dat", s.AveragePath)
	assert.Equal(t, 0.01, s.HighLowThreshold)
	assert.Equal(t, []string{"ALL", "BA", "BC", "GBEL", "KFT", "MCD", "TR", "WAG"}, s.SelectionTickers)
	assert.Equal(t, 2*time.Second, s.PollInterval)
	assert.NoError(t, s.Validate())
}

func TestLoadSettingsFromFile(t *testing.T) {
	v, _ := newTestViper(t, `
source:
  path: /data/ticker.dat
observers:
  highlow:
    threshold: 0.05
  selection:
    tickers: [ibm, "msft"]
follow:
  poll_interval: 500ms
`)

	s := LoadSettings(v)
	assert.Equal(t, "/data/ticker.dat", s.SourcePath)
	assert.Equal(t, 0.05, s.HighLowThreshold)
	assert.Equal(t, []string{"IBM", "MSFT"}, s.SelectionTickers)
	assert.Equal(t, 500*time.Millisecond, s.PollInterval)
}

func TestNormalizeTickers(t *testing.T) {
	assert.Equal(t, []string{"BA", "MCD", "WAG"}, normalizeTickers([]string{"ba,mcd wag"}))
	assert.Empty(t, normalizeTickers(nil))
}

func TestSettingsValidate(t *testing.T) {
	valid := Settings{SourcePath: "ticker.dat", HighLowThreshold: 0.01, SelectionTickers: []string{"BA"}}

	tests := []struct {
		name   string
		mutate func(*Settings)
		field  string
	}{
		{"empty source", func(s *Settings) { s.SourcePath = "" }, "source.path"},
		{"zero threshold", func(s *Settings) { s.HighLowThreshold = 0 }, "observers.highlow.threshold"},
		{"threshold too large", func(s *Settings) { s.HighLowThreshold = 1.5 }, "observers.highlow.threshold"},
		{"digit ticker", func(s *Settings) { s.SelectionTickers = []string{"B4"} }, "observers.selection.tickers"},
		{"negative poll", func(s *Settings) { s.PollInterval = -time.Second }, "follow.poll_interval"},
		{"negative staleness", func(s *Settings) { s.MaxStaleness = -time.Minute }, "follow.max_staleness"},
	}

	assert.NoError(t, valid.Validate())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := valid
			tc.mutate(&s)
			err := s.Validate()
			var cfgErr *ConfigValidationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.field, cfgErr.Field)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestHotReloadConfig_SelectionChange(t *testing.T) {
	v, path := newTestViper(t, "observers:\n  selection:\n    tickers: [BA]\n")

	var got [][]string
	h := NewHotReloadConfig(v, HotReloadOptions{
		OnSelectionChange: func(tickers []string) { got = append(got, tickers) },
	})
	assert.Equal(t, []string{"BA"}, h.Current().SelectionTickers)

	require.NoError(t, os.WriteFile(path, []byte("observers:\n  selection:\n    tickers: [MCD, KFT]\n"), 0600))
	require.NoError(t, h.Reload())
	assert.Equal(t, [][]string{{"MCD", "KFT"}}, got)
	assert.Equal(t, []string{"MCD", "KFT"}, h.Current().SelectionTickers)

	require.NoError(t, h.Reload())
	assert.Len(t, got, 1, "unchanged watchlist is not re-applied")
}

func TestHotReloadConfig_RejectsInvalid(t *testing.T) {
	v, path := newTestViper(t, "observers:\n  selection:\n    tickers: [BA]\n")

	called := false
	h := NewHotReloadConfig(v, HotReloadOptions{OnSelectionChange: func([]string) { called = true }})

	require.NoError(t, os.WriteFile(path, []byte("observers:\n  selection:\n    tickers: [BA]\n  highlow:\n    threshold: 2\n"), 0600))
	err := h.Reload()

	var cfgErr *ConfigValidationError
	require.ErrorAs(t, err, &cfgErr)
	assert.False(t, called)
	assert.Equal(t, 0.01, h.Current().HighLowThreshold)
	h.Stop()
}
