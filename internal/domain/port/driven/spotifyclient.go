package driven

import (
	"context"

	"vinylvault/internal/domain/model"
)

// SpotifyClient defines the driven port for the upstream metadata API.
// All calls except RequestToken carry a bearer token. Implementations map
// non-2xx responses to model.ErrUpstream and undecodable or malformed
// payloads to model.ErrValidation.
type SpotifyClient interface {
	// RequestToken performs a client_credentials grant and returns the
	// issued token with its lifetime in seconds.
	RequestToken(ctx context.Context, clientID, clientSecret string) (model.TokenGrant, error)

	// FetchAlbum returns the normalized album payload for one album id.
	FetchAlbum(ctx context.Context, token, albumID string) (*model.AlbumImport, error)

	// FetchArtist returns the normalized artist payload for one artist id.
	FetchArtist(ctx context.Context, token, artistID string) (*model.ArtistProfile, error)

	// SearchAlbums returns one page of cleaned album summaries for a free
	// text query.
	SearchAlbums(ctx context.Context, token, query string) ([]model.SearchResult, error)

	// FetchRecommendations returns suggested albums seeded by artist ids
	// and genre names from the stored collection.
	FetchRecommendations(ctx context.Context, token string, artistSeeds, genreSeeds []string) ([]model.Recommendation, error)
}
