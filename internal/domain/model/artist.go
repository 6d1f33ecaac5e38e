package model

// Artist is a catalog artist row. SpotifyID is the natural key; at most one
// internal id ever maps to it.
type Artist struct {
	ID        int64
	SpotifyID string
	Name      string
}

// Genre is a catalog genre row, deduplicated by name (case-sensitive as
// received from upstream).
type Genre struct {
	ID   int64
	Name string
}

// Tag is a descriptive label attached to albums by enrichment sources,
// deduplicated by name.
type Tag struct {
	ID   int64
	Name string
}
