package driven

import "context"

// TagSource defines the driven port for tag enrichment collaborators. A
// source looks up descriptive tags for an album and returns them as plain
// strings; the caller merges them through entity resolution. Failures here
// are non-fatal to ingestion.
type TagSource interface {
	AlbumTags(ctx context.Context, albumTitle, artistName string) ([]string, error)
}
