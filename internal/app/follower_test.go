package app

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xoelrdgz/tickerwatch/internal/adapters/input"
	"github.com/xoelrdgz/tickerwatch/internal/adapters/output"
)

func appendFile(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(text)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestFollower_DrainsOnAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticker.dat")
	appendFile(t, path, blockOne)

	reader, reg := newTestReader()
	mem := output.NewMemoryObserver(10)
	reg.Add(mem)

	follower := NewFollower(reader, input.NewFileSource(path), FollowerConfig{
		Path:         path,
		PollInterval: 20 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, follower.Start(ctx))
	defer follower.Stop()
	assert.True(t, follower.IsRunning())
	assert.Equal(t, 1, mem.Count(), "existing snapshots are drained on start")

	appendFile(t, path, blockTwo[:40])
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, mem.Count())

	appendFile(t, path, blockTwo[40:])
	require.Eventually(t, func() bool { return mem.Count() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(len(blockOne)+len(blockTwo)), reader.Offset())
}

func TestFollower_SourceCreatedLater(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticker.dat")

	reader, reg := newTestReader()
	mem := output.NewMemoryObserver(10)
	reg.Add(mem)

	var mu sync.Mutex
	var errs []error
	follower := NewFollower(reader, input.NewFileSource(path), FollowerConfig{
		Path:         path,
		PollInterval: 20 * time.Millisecond,
		OnError: func(err error) {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		},
	})

	require.NoError(t, follower.Start(context.Background()))
	defer follower.Stop()

	appendFile(t, path, blockOne)
	require.Eventually(t, func() bool { return mem.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, errs)
}

func TestFollower_StopIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticker.dat")
	reader, _ := newTestReader()
	follower := NewFollower(reader, input.NewFileSource(path), FollowerConfig{Path: path, PollInterval: -1})

	require.NoError(t, follower.Start(context.Background()))
	follower.Stop()
	follower.Stop()
	assert.False(t, follower.IsRunning())
}

func TestFollower_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "ticker.dat")
	reader, _ := newTestReader()
	follower := NewFollower(reader, input.NewFileSource(path), FollowerConfig{Path: path})

	assert.Error(t, follower.Start(context.Background()))
	assert.False(t, follower.IsRunning())
}

func TestFollower_FatalLineRepeatsUntilRepaired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticker.dat")
	huge := "1" + strings.Repeat("0", 400)
	appendFile(t, path, "Last updated Jan 1, 2024 9:30:00 AM ET\n"+
		"Acme Corp ACME "+huge+" 0.10 1.0 5.0 12.00 8.00 15.0\n\n")

	reader, reg := newTestReader()
	mem := output.NewMemoryObserver(10)
	reg.Add(mem)

	var errCount atomic.Int64
	var lastErr atomic.Value
	follower := NewFollower(reader, input.NewFileSource(path), FollowerConfig{
		Path:         path,
		PollInterval: 10 * time.Millisecond,
		OnError: func(err error) {
			errCount.Add(1)
			lastErr.Store(err)
		},
	})

	require.NoError(t, follower.Start(context.Background()))
	defer follower.Stop()

	require.Eventually(t, func() bool { return errCount.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, lastErr.Load().(error), strconv.ErrRange)
	assert.Equal(t, int64(0), reader.Offset())
	assert.Equal(t, 0, mem.Count())
}
