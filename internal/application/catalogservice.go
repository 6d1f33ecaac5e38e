package application

import (
	"context"

	"vinylvault/internal/domain/model"
	"vinylvault/internal/domain/port/driven"
)

// Seed counts for recommendation requests, matching what the upstream
// endpoint accepts in one call alongside each other.
const (
	artistSeedCount = 3
	genreSeedCount  = 2
)

// CatalogService exposes the read side of the collection plus upstream
// search and recommendations.
type CatalogService struct {
	catalog  driven.CatalogStore
	upstream driven.SpotifyClient
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(catalog driven.CatalogStore, upstream driven.SpotifyClient) *CatalogService {
	return &CatalogService{catalog: catalog, upstream: upstream}
}

// ListAlbums returns the whole stored collection ordered by title.
func (s *CatalogService) ListAlbums(ctx context.Context) ([]model.AlbumSummary, error) {
	return s.catalog.ListAlbums(ctx)
}

// GetAlbum returns one stored album with artist name and genres, or
// nil, nil when the id is unknown.
func (s *CatalogService) GetAlbum(ctx context.Context, albumID int64) (*model.AlbumDetail, error) {
	return s.catalog.AlbumDetail(ctx, albumID)
}

// Search returns upstream album summaries for a free text query.
func (s *CatalogService) Search(ctx context.Context, token, query string) ([]model.SearchResult, error) {
	return s.upstream.SearchAlbums(ctx, token, query)
}

// Recommendations returns suggested albums seeded by random artists and
// genres from the stored collection.
func (s *CatalogService) Recommendations(ctx context.Context, token string) ([]model.Recommendation, error) {
	artistSeeds, err := s.catalog.RandomArtistSeeds(ctx, artistSeedCount)
	if err != nil {
		return nil, err
	}
	genreSeeds, err := s.catalog.RandomGenreSeeds(ctx, genreSeedCount)
	if err != nil {
		return nil, err
	}

	return s.upstream.FetchRecommendations(ctx, token, artistSeeds, genreSeeds)
}
