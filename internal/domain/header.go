package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoMatch is returned by line parsers for lines that are not ticker data.
	ErrNoMatch = errors.New("line is not ticker data")
	// ErrInvalidHeader is returned for a "Last updated" line whose time cannot be parsed.
	ErrInvalidHeader = errors.New("invalid snapshot header")
)

// IsHeader reports whether a trimmed line opens a snapshot block.
func IsHeader(line string) bool {
	return strings.HasPrefix(line, HeaderPrefix)
}

// ParseHeader parses "Last updated Jan 2, 2006 3:04:05 PM ET" into a naive
// time and its zone label.
func ParseHeader(line string) (time.Time, string, error) {
	if !IsHeader(line) {
		return time.Time{}, "", ErrInvalidHeader
	}
	rest := strings.TrimSpace(line[len(HeaderPrefix):])

	idx := strings.LastIndexAny(rest, " \t")
	if idx == -1 || rest[idx+1:] != ZoneET {
		return time.Time{}, "", fmt.Errorf("%w: missing %s label in %q", ErrInvalidHeader, ZoneET, rest)
	}
	stamp, zone := strings.TrimSpace(rest[:idx]), rest[idx+1:]

	at, err := time.Parse(HeaderLayout, stamp)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	return at, zone, nil
}

// FormatHeader renders the header line for at, the inverse of ParseHeader.
func FormatHeader(at time.Time) string {
	return HeaderPrefix + at.Format(HeaderLayout) + " " + ZoneET
}
