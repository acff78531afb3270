package ports

// OffsetStore persists the reader's committed offset per source so that a
// restarted process resumes where the previous one stopped.
//
// Thread Safety: Implementations MUST be safe for concurrent calls.
type OffsetStore interface {
	// Load returns the stored offset, or 0 when the source is unknown.
	Load(source string) (int64, error)

	// Save records the committed offset for source.
	Save(source string, offset int64) error

	Close() error
}
