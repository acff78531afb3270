package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{10, "10.0"},
		{10.25, "10.25"},
		{-0.5, "-0.5"},
		{0, "0.0"},
		{123456.789, "123456.789"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, FormatNumber(tc.input))
	}
}

func TestStockRecordString(t *testing.T) {
	r := StockRecord{
		Company:       "Acme Corp",
		Ticker:        "ACME",
		CurrentPrice:  10,
		ChangeDollar:  0.1,
		ChangePercent: 1,
		YTDChange:     -5.5,
		High52:        12,
		Low52:         8,
		PERatio:       15,
	}

	assert.Equal(t, "Acme Corp ACME 10.0 0.1 1.0 -5.5 12.0 8.0 15.0", r.String())
	assert.Len(t, r.Fields(), 9)
}

func TestSnapshotFind(t *testing.T) {
	at := time.Date(2024, time.January, 1, 9, 30, 0, 0, time.UTC)
	snap := NewSnapshot(at, ZoneET, []StockRecord{
		{Ticker: "BA", CurrentPrice: 1},
		{Ticker: "MCD", CurrentPrice: 2},
		{Ticker: "BA", CurrentPrice: 3},
	})

	r, ok := snap.Find("BA")
	assert.True(t, ok)
	assert.Equal(t, 1.0, r.CurrentPrice)

	_, ok = snap.Find("XYZ")
	assert.False(t, ok)

	assert.Equal(t, 3, snap.Len())
	assert.Equal(t, "2024-01-01 09:30:00", snap.FormattedTime())
}
