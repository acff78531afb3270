package output

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xoelrdgz/tickerwatch/internal/domain"
)

func TestJSONObserverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")
	obs, err := NewJSONObserver(JSONObserverConfig{FilePath: path})
	require.NoError(t, err)

	require.NoError(t, obs.Update(sampleSnapshot()))
	require.NoError(t, obs.Close())

	var decoded domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(readFile(t, path)), &decoded))
	assert.Equal(t, "ET", decoded.Zone)
	require.Len(t, decoded.Records, 4)
	assert.Equal(t, "ALL", decoded.Records[0].Ticker)
	assert.Equal(t, 31.6, decoded.Records[0].High52)
}

func TestJSONObserverDiscard(t *testing.T) {
	obs, err := NewJSONObserver(JSONObserverConfig{})
	require.NoError(t, err)
	require.NoError(t, obs.Update(sampleSnapshot()))
	require.NoError(t, obs.Flush())
	require.NoError(t, obs.Close())
	require.NoError(t, obs.Close())
}

func TestMemoryObserverRing(t *testing.T) {
	obs := NewMemoryObserver(2)
	assert.Nil(t, obs.Latest())

	base := time.Date(2024, time.January, 1, 9, 30, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		snap := domain.NewSnapshot(base.Add(time.Duration(i)*time.Minute), domain.ZoneET, []domain.StockRecord{{Ticker: "A"}})
		require.NoError(t, obs.Update(snap))
	}

	assert.Equal(t, 2, obs.Count())
	stored := obs.Snapshots()
	require.Len(t, stored, 2)
	assert.Equal(t, 31, stored[0].Time.Minute())
	assert.Equal(t, 32, stored[1].Time.Minute())
	assert.Equal(t, 32, obs.Latest().Time.Minute())
}
