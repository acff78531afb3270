package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/xoelrdgz/tickerwatch/internal/ports"
)

// Follower drives a SnapshotReader from filesystem events on a file-backed
// source. Each event drains every complete snapshot; the poll ticker covers
// filesystems where inotify events are not delivered.
//
// A line that fails fatally (a malformed header, a number out of float64
// range) is never committed past, so every later drain reports the same
// error until the source is repaired.
type Follower struct {
	reader       *SnapshotReader
	source       ports.Source
	path         string
	pollInterval time.Duration

	onError func(error)

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	done     chan struct{}
}

type FollowerConfig struct {
	Path         string        // File the source reads; its directory is watched
	PollInterval time.Duration // Fallback poll period (default: 2s, negative disables)
	OnError      func(error)   // Called for read errors; defaults to logging
}

func NewFollower(reader *SnapshotReader, source ports.Source, config FollowerConfig) *Follower {
	if config.PollInterval == 0 {
		config.PollInterval = 2 * time.Second
	}
	if config.OnError == nil {
		config.OnError = func(err error) {
			log.Error().Err(err).Str("source", source.Name()).Msg("Snapshot read failed")
		}
	}
	return &Follower{
		reader:       reader,
		source:       source,
		path:         config.Path,
		pollInterval: config.PollInterval,
		onError:      config.OnError,
	}
}

// Start drains the source once and then follows it until ctx is cancelled or
// Stop is called.
func (f *Follower) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.mu.Unlock()
		return err
	}
	dir := filepath.Dir(f.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		f.mu.Unlock()
		return err
	}

	f.running = true
	f.stopChan = make(chan struct{})
	f.done = make(chan struct{})
	f.mu.Unlock()

	log.Info().Str("file", f.path).Str("dir", dir).Msg("Following ticker source")

	f.drain()

	go f.loop(ctx, watcher)
	return nil
}

func (f *Follower) loop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer close(f.done)
	defer watcher.Close()

	var poll <-chan time.Time
	if f.pollInterval > 0 {
		ticker := time.NewTicker(f.pollInterval)
		defer ticker.Stop()
		poll = ticker.C
	}

	target := filepath.Clean(f.path)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping follower")
			return
		case <-f.stopChan:
			log.Info().Msg("Stop signal received, stopping follower")
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				f.drain()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Watcher error")
		case <-poll:
			f.drain()
		}
	}
}

func (f *Follower) drain() {
	n, err := f.reader.Drain(f.source, 0)
	if n > 0 {
		log.Debug().Int("snapshots", n).Int64("offset", f.reader.Offset()).Msg("Drained source")
	}
	if err != nil {
		// A source that does not exist yet is expected before the feed starts.
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Err(err).Msg("Source not available yet")
			return
		}
		f.onError(err)
	}
}

// Stop ends the follow loop and waits for it to exit.
func (f *Follower) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	f.running = false
	close(f.stopChan)
	done := f.done
	f.mu.Unlock()

	<-done
}

func (f *Follower) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}
