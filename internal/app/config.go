package app

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Settings is the typed view of the viper configuration.
type Settings struct {
	SourcePath     string
	CheckpointPath string

	AveragePath      string
	HighLowPath      string
	HighLowThreshold float64
	SelectionPath    string
	SelectionTickers []string

	MetricsEnabled bool
	MetricsPort    string
	JSONPath       string
	JSONStdout     bool
	ConsoleEnabled bool

	PollInterval time.Duration
	MaxStaleness time.Duration
}

// SetDefaults registers every key LoadSettings reads.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source.path", "./ticker.dat")
	v.SetDefault("checkpoint.path", "")
	v.SetDefault("observers.average.path", "Average.dat")
	v.SetDefault("observers.highlow.path", "HighLow.dat")
	v.SetDefault("observers.highlow.threshold", 0.01)
	v.SetDefault("observers.selection.path", "Selections.dat")
	v.SetDefault("observers.selection.tickers", []string{"ALL", "BA", "BC", "GBEL", "KFT", "MCD", "TR", "WAG"})
	v.SetDefault("output.metrics.enabled", true)
	v.SetDefault("output.metrics.port", ":9090")
	v.SetDefault("output.json.path", "")
	v.SetDefault("output.json.stdout", false)
	v.SetDefault("output.console.enabled", false)
	v.SetDefault("follow.poll_interval", "2s")
	v.SetDefault("follow.max_staleness", "0s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
}

func LoadSettings(v *viper.Viper) Settings {
	return Settings{
		SourcePath:       v.GetString("source.path"),
		CheckpointPath:   v.GetString("checkpoint.path"),
		AveragePath:      v.GetString("observers.average.path"),
		HighLowPath:      v.GetString("observers.highlow.path"),
		HighLowThreshold: v.GetFloat64("observers.highlow.threshold"),
		SelectionPath:    v.GetString("observers.selection.path"),
		SelectionTickers: normalizeTickers(v.GetStringSlice("observers.selection.tickers")),
		MetricsEnabled:   v.GetBool("output.metrics.enabled"),
		MetricsPort:      v.GetString("output.metrics.port"),
		JSONPath:         v.GetString("output.json.path"),
		JSONStdout:       v.GetBool("output.json.stdout"),
		ConsoleEnabled:   v.GetBool("output.console.enabled"),
		PollInterval:     v.GetDuration("follow.poll_interval"),
		MaxStaleness:     v.GetDuration("follow.max_staleness"),
	}
}

func (s Settings) Validate() error {
	if s.SourcePath == "" {
		return &ConfigValidationError{Field: "source.path", Value: s.SourcePath, Reason: "must be set"}
	}
	if s.HighLowThreshold <= 0 || s.HighLowThreshold >= 1 {
		return &ConfigValidationError{Field: "observers.highlow.threshold", Value: s.HighLowThreshold, Reason: "must be between 0 and 1"}
	}
	for _, t := range s.SelectionTickers {
		if strings.IndexFunc(t, func(r rune) bool { return r < 'A' || r > 'Z' }) >= 0 {
			return &ConfigValidationError{Field: "observers.selection.tickers", Value: t, Reason: "tickers are uppercase letters only"}
		}
	}
	if s.MaxStaleness < 0 {
		return &ConfigValidationError{Field: "follow.max_staleness", Value: s.MaxStaleness, Reason: "must not be negative"}
	}
	if s.PollInterval < 0 {
		return &ConfigValidationError{Field: "follow.poll_interval", Value: s.PollInterval, Reason: "must not be negative"}
	}
	return nil
}

func normalizeTickers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		// env overrides arrive as one comma or space separated string
		for _, f := range strings.FieldsFunc(t, func(r rune) bool { return r == ',' || r == ' ' }) {
			out = append(out, strings.ToUpper(f))
		}
	}
	return out
}

type ConfigValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s = %v - %s", e.Field, e.Value, e.Reason)
}

// HotReloadConfig re-reads the config file when it changes and pushes the
// parts that can change at runtime (the selection watchlist) to the running
// observers. Invalid configs are rejected and the previous settings kept.
type HotReloadConfig struct {
	v        *viper.Viper
	current  atomic.Pointer[Settings]
	onTicker func([]string)

	mu       sync.Mutex
	stopped  atomic.Bool
	stopOnce sync.Once
}

type HotReloadOptions struct {
	OnSelectionChange func(tickers []string)
}

func NewHotReloadConfig(v *viper.Viper, opts HotReloadOptions) *HotReloadConfig {
	h := &HotReloadConfig{v: v, onTicker: opts.OnSelectionChange}
	s := LoadSettings(v)
	h.current.Store(&s)
	return h
}

func (h *HotReloadConfig) Current() Settings {
	return *h.current.Load()
}

func (h *HotReloadConfig) StartWatching() {
	h.v.OnConfigChange(func(e fsnotify.Event) {
		if h.stopped.Load() {
			return
		}
		log.Info().
			Str("file", e.Name).
			Str("op", e.Op.String()).
			Msg("Config file changed, reloading...")

		if err := h.Reload(); err != nil {
			log.Error().Err(err).Msg("Config reload rejected, keeping current configuration")
		}
	})

	h.v.WatchConfig()
	log.Info().Str("config", h.v.ConfigFileUsed()).Msg("Hot-reload config watching started")
}

// Reload reads the config file, validates it and applies runtime changes.
func (h *HotReloadConfig) Reload() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.v.ReadInConfig(); err != nil {
		return fmt.Errorf("re-read config: %w", err)
	}

	next := LoadSettings(h.v)
	if err := next.Validate(); err != nil {
		return err
	}

	prev := h.current.Load()
	if h.onTicker != nil && !slices.Equal(prev.SelectionTickers, next.SelectionTickers) {
		h.onTicker(next.SelectionTickers)
		log.Info().Strs("tickers", next.SelectionTickers).Msg("Selection watchlist updated")
	}
	if prev.SourcePath != next.SourcePath {
		log.Warn().Str("source", next.SourcePath).Msg("source.path changes take effect on restart")
	}

	h.current.Store(&next)
	return nil
}

// Stop makes later file events no-ops; viper offers no way to unwatch.
func (h *HotReloadConfig) Stop() {
	h.stopOnce.Do(func() {
		h.stopped.Store(true)
		log.Info().Msg("Hot-reload config watcher stopped")
	})
}
