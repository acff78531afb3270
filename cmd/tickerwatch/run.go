package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xoelrdgz/tickerwatch/internal/adapters/checkpoint"
	"github.com/xoelrdgz/tickerwatch/internal/adapters/input"
	"github.com/xoelrdgz/tickerwatch/internal/adapters/output"
	"github.com/xoelrdgz/tickerwatch/internal/app"
	"github.com/xoelrdgz/tickerwatch/internal/ports"
	"github.com/xoelrdgz/tickerwatch/internal/tui"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// pipeline is everything a command needs to read snapshots. Close releases
// observers and the checkpoint store in reverse order of creation.
type pipeline struct {
	settings app.Settings
	source   *input.FileSource
	reader   *app.SnapshotReader

	average   *output.AverageObserver
	highLow   *output.HighLowObserver
	selection *output.SelectionObserver

	closers []io.Closer
}

func loadSettings() (app.Settings, error) {
	s := app.LoadSettings(viper.GetViper())
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func newPipeline(s app.Settings) (*pipeline, error) {
	p := &pipeline{
		settings: s,
		source:   input.NewFileSource(s.SourcePath),
	}

	var store ports.OffsetStore = checkpoint.NewMemoryStore()
	if s.CheckpointPath != "" {
		bolt, err := checkpoint.NewBoltStore(s.CheckpointPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open checkpoint store: %w", err)
		}
		store = bolt
		log.Debug().Str("path", bolt.Path()).Msg("Checkpoint store opened")
	}
	p.closers = append(p.closers, store)

	p.reader = app.NewSnapshotReader(app.ReaderConfig{
		Parser:   input.NewTickerLineParser(),
		Registry: app.NewObserverRegistry(),
		Store:    store,
	})
	if err := p.reader.Restore(p.source); err != nil {
		p.Close()
		return nil, err
	}

	var err error
	if p.average, err = output.NewAverageObserver(s.AveragePath); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to create average observer: %w", err)
	}
	p.closers = append(p.closers, p.average)

	if p.highLow, err = output.NewHighLowObserver(s.HighLowPath, s.HighLowThreshold); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to create high/low observer: %w", err)
	}
	p.closers = append(p.closers, p.highLow)

	if p.selection, err = output.NewSelectionObserver(s.SelectionPath, s.SelectionTickers); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to create selection observer: %w", err)
	}
	p.closers = append(p.closers, p.selection)

	return p, nil
}

// registerAll adds the file observers plus the optional JSON and console
// outputs.
func (p *pipeline) registerAll() error {
	reg := p.reader.Registry()
	reg.Add(p.average)
	reg.Add(p.highLow)
	reg.Add(p.selection)

	if p.settings.JSONPath != "" || p.settings.JSONStdout {
		jsonObs, err := output.NewJSONObserver(output.JSONObserverConfig{
			FilePath: p.settings.JSONPath,
			Stdout:   p.settings.JSONStdout,
		})
		if err != nil {
			return fmt.Errorf("failed to create JSON observer: %w", err)
		}
		p.closers = append(p.closers, jsonObs)
		reg.Add(jsonObs)
	}

	if p.settings.ConsoleEnabled {
		reg.Add(output.NewConsoleObserver(os.Stdout))
	}
	return nil
}

func (p *pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i].Close(); err != nil {
			log.Warn().Err(err).Msg("Close failed")
		}
	}
	p.closers = nil
}

func runRead(cmd *cobra.Command, args []string) error {
	defer setupLogging(true).Close()

	s, err := loadSettings()
	if err != nil {
		return err
	}
	p, err := newPipeline(s)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.registerAll(); err != nil {
		return err
	}

	n, err := p.reader.Drain(p.source, readCount)
	log.Info().
		Str("source", s.SourcePath).
		Int("snapshots", n).
		Int64("offset", p.reader.Offset()).
		Msg("Read complete")
	return err
}

func runDemo(cmd *cobra.Command, args []string) error {
	defer setupLogging(true).Close()

	s, err := loadSettings()
	if err != nil {
		return err
	}
	p, err := newPipeline(s)
	if err != nil {
		return err
	}
	defer p.Close()

	reg := p.reader.Registry()
	steps := []struct {
		desc  string
		apply func() error
	}{
		{"add average", func() error { reg.Add(p.average); return nil }},
		{"add high/low", func() error { reg.Add(p.highLow); return nil }},
		{"add selection", func() error { reg.Add(p.selection); return nil }},
		{"remove selection", func() error { return reg.Remove(p.selection) }},
		{"remove high/low", func() error { return reg.Remove(p.highLow) }},
	}

	for _, step := range steps {
		if err := step.apply(); err != nil {
			return fmt.Errorf("%s: %w", step.desc, err)
		}
		ok, err := p.reader.ReadSnapshot(p.source)
		if err != nil {
			return err
		}
		log.Info().
			Str("step", step.desc).
			Int("observers", reg.Len()).
			Bool("dispatched", ok).
			Int64("offset", p.reader.Offset()).
			Msg("Demo read")
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	defer setupLogging(noTUI).Close()

	s, err := loadSettings()
	if err != nil {
		return err
	}
	p, err := newPipeline(s)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.registerAll(); err != nil {
		return err
	}

	log.Info().
		Str("source", s.SourcePath).
		Strs("selection", p.selection.Tickers()).
		Bool("tui", !noTUI).
		Msg("Tickerwatch started")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if s.MetricsEnabled {
		promMetrics := output.NewPrometheusMetrics("tickerwatch", prometheus.NewRegistry(), p.reader.Metrics())
		p.reader.Registry().Add(promMetrics)
		p.reader.AddProcessingObserver(promMetrics)

		health := output.NewHealthChecker(p.source, p.reader.Metrics(), output.HealthCheckerConfig{
			MaxStaleness:  s.MaxStaleness,
			CheckInterval: 5 * time.Second,
		})

		metricsConfig := output.DefaultMetricsConfig()
		metricsConfig.Port = s.MetricsPort
		metricsConfig.Health = health
		if err := promMetrics.StartServer(metricsConfig); err != nil {
			log.Warn().Err(err).Msg("Failed to start metrics server")
		}
		defer promMetrics.StopServer()
	}

	hot := app.NewHotReloadConfig(viper.GetViper(), app.HotReloadOptions{
		OnSelectionChange: p.selection.SetTickers,
	})
	if viper.ConfigFileUsed() != "" {
		hot.StartWatching()
		defer hot.Stop()
	}

	var tuiApp *tui.App
	if !noTUI {
		tuiApp = tui.NewApp(filepath.Base(s.SourcePath))
		tuiApp.SetNearBound(p.highLow.Matches)
		p.reader.Registry().Add(tuiApp.Observer())
	}

	follower := app.NewFollower(p.reader, p.source, app.FollowerConfig{
		Path:         s.SourcePath,
		PollInterval: s.PollInterval,
	})
	if err := follower.Start(ctx); err != nil {
		return fmt.Errorf("failed to follow %s: %w", s.SourcePath, err)
	}
	defer follower.Stop()

	if noTUI {
		recent := output.NewMemoryObserver(16)
		p.reader.Registry().Add(recent)

		log.Info().Msg("Running in console mode")
		<-ctx.Done()
		log.Info().Msg("Shutting down...")

		if last := recent.Latest(); last != nil {
			log.Info().
				Int("recent", recent.Count()).
				Str("last_updated", last.FormattedTime()).
				Str("average", output.AveragePrice(last.Records).StringFixed(2)).
				Msg("Session summary")
		}
		return nil
	}

	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tuiApp.SendMetrics(p.reader.Metrics().GetSnapshot())
			}
		}
	}()

	var tuiErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("TUI panic recovered")
				tuiErr = fmt.Errorf("TUI panic: %v", r)
			}
		}()
		tuiErr = tuiApp.Run()
	}()

	stop()
	log.Info().Msg("Shutting down...")

	if errors.Is(tuiErr, context.Canceled) {
		return nil
	}
	return tuiErr
}
