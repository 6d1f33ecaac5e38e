package application

import (
	"context"
	"sort"
	"sync"

	"vinylvault/internal/domain/model"
	"vinylvault/internal/domain/port/driven"
)

// fakeCredentialStore is an in-memory append-only credential history.
type fakeCredentialStore struct {
	mu        sync.Mutex
	rows      []model.Credential
	insertErr error
}

func (f *fakeCredentialStore) Latest(_ context.Context, clientID string) (*model.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var latest *model.Credential
	for i := range f.rows {
		if f.rows[i].ClientID != clientID {
			continue
		}
		if latest == nil || f.rows[i].ExpiresAt.After(latest.ExpiresAt) {
			latest = &f.rows[i]
		}
	}
	if latest == nil {
		return nil, nil
	}
	cred := *latest
	return &cred, nil
}

func (f *fakeCredentialStore) Insert(_ context.Context, cred model.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return f.insertErr
	}
	cred.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, cred)
	return nil
}

func (f *fakeCredentialStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// fakeSpotify is a canned-response upstream client that counts calls.
type fakeSpotify struct {
	mu sync.Mutex

	tokenCalls  int
	albumCalls  int
	artistCalls int

	grant    model.TokenGrant
	tokenErr error

	album    *model.AlbumImport
	albumErr error

	artists   map[string]*model.ArtistProfile
	artistErr error

	searchResults []model.SearchResult
	searchedQuery string

	recommendations []model.Recommendation
	lastArtistSeeds []string
	lastGenreSeeds  []string
}

func (f *fakeSpotify) RequestToken(_ context.Context, _, _ string) (model.TokenGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tokenCalls++
	if f.tokenErr != nil {
		return model.TokenGrant{}, f.tokenErr
	}
	return f.grant, nil
}

func (f *fakeSpotify) FetchAlbum(_ context.Context, _, _ string) (*model.AlbumImport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.albumCalls++
	if f.albumErr != nil {
		return nil, f.albumErr
	}
	imp := *f.album
	return &imp, nil
}

func (f *fakeSpotify) FetchArtist(_ context.Context, _, artistID string) (*model.ArtistProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.artistCalls++
	if f.artistErr != nil {
		return nil, f.artistErr
	}
	profile, ok := f.artists[artistID]
	if !ok {
		return nil, model.ErrUpstream
	}
	p := *profile
	return &p, nil
}

func (f *fakeSpotify) SearchAlbums(_ context.Context, _, query string) ([]model.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.searchedQuery = query
	return f.searchResults, nil
}

func (f *fakeSpotify) FetchRecommendations(_ context.Context, _ string, artistSeeds, genreSeeds []string) ([]model.Recommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastArtistSeeds = artistSeeds
	f.lastGenreSeeds = genreSeeds
	return f.recommendations, nil
}

// fakeTagSource serves a fixed tag list and records what it was asked for.
type fakeTagSource struct {
	tags      []string
	err       error
	calls     int
	gotAlbum  string
	gotArtist string
}

func (f *fakeTagSource) AlbumTags(_ context.Context, albumTitle, artistName string) ([]string, error) {
	f.calls++
	f.gotAlbum = albumTitle
	f.gotArtist = artistName
	if f.err != nil {
		return nil, f.err
	}
	return f.tags, nil
}

// catalogState holds the mutable tables of a fakeCatalog. Transactions work
// on a deep copy that replaces the committed state only on success.
type catalogState struct {
	nextID       int64
	artists      map[string]int64
	artistNames  map[int64]string
	genres       map[string]int64
	tags         map[string]int64
	albums       map[string]model.Album
	artistGenres map[[2]int64]struct{}
	albumTags    map[[2]int64]struct{}
}

func newCatalogState() *catalogState {
	return &catalogState{
		artists:      make(map[string]int64),
		artistNames:  make(map[int64]string),
		genres:       make(map[string]int64),
		tags:         make(map[string]int64),
		albums:       make(map[string]model.Album),
		artistGenres: make(map[[2]int64]struct{}),
		albumTags:    make(map[[2]int64]struct{}),
	}
}

func (s *catalogState) clone() *catalogState {
	c := newCatalogState()
	c.nextID = s.nextID
	for k, v := range s.artists {
		c.artists[k] = v
	}
	for k, v := range s.artistNames {
		c.artistNames[k] = v
	}
	for k, v := range s.genres {
		c.genres[k] = v
	}
	for k, v := range s.tags {
		c.tags[k] = v
	}
	for k, v := range s.albums {
		c.albums[k] = v
	}
	for k := range s.artistGenres {
		c.artistGenres[k] = struct{}{}
	}
	for k := range s.albumTags {
		c.albumTags[k] = struct{}{}
	}
	return c
}

func (s *catalogState) id() int64 {
	s.nextID++
	return s.nextID
}

// fakeCatalog is an in-memory CatalogStore with copy-on-write transactions,
// so a failed InTx leaves the committed state untouched.
type fakeCatalog struct {
	mu    sync.Mutex
	state *catalogState

	albumInsertErr error              // forced InsertAlbum failure
	onAlbumInsert  func(*fakeCatalog) // observes committed state before the insert runs
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{state: newCatalogState()}
}

func (f *fakeCatalog) seedArtist(spotifyID, name string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.state.id()
	f.state.artists[spotifyID] = id
	f.state.artistNames[id] = name
	return id
}

func (f *fakeCatalog) seedGenre(name string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.state.id()
	f.state.genres[name] = id
	return id
}

func (f *fakeCatalog) seedAlbum(album model.Album) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	album.ID = f.state.id()
	f.state.albums[album.SpotifyID] = album
	return album.ID
}

func (f *fakeCatalog) seedArtistGenre(artistID, genreID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.artistGenres[[2]int64{artistID, genreID}] = struct{}{}
}

func (f *fakeCatalog) artistCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.state.artists)
}

func (f *fakeCatalog) albumCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.state.albums)
}

func (f *fakeCatalog) artistGenreCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.state.artistGenres)
}

func (f *fakeCatalog) albumTagCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.state.albumTags)
}

func (f *fakeCatalog) ArtistIDsBySpotifyID(context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone().artists, nil
}

func (f *fakeCatalog) GenreIDsByName(context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone().genres, nil
}

func (f *fakeCatalog) TagIDsByName(context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone().tags, nil
}

func (f *fakeCatalog) AlbumBySpotifyID(_ context.Context, spotifyID string) (*model.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	album, ok := f.state.albums[spotifyID]
	if !ok {
		return nil, nil
	}
	return &album, nil
}

func (f *fakeCatalog) ListAlbums(context.Context) ([]model.AlbumSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	summaries := make([]model.AlbumSummary, 0, len(f.state.albums))
	for _, album := range f.state.albums {
		summaries = append(summaries, model.AlbumSummary{
			ID:          album.ID,
			Title:       album.Title,
			ArtistName:  f.state.artistNames[album.ArtistID],
			ReleaseDate: album.ReleaseDate,
			ArtURL:      album.ArtURL,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Title < summaries[j].Title })
	return summaries, nil
}

func (f *fakeCatalog) AlbumDetail(_ context.Context, albumID int64) (*model.AlbumDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, album := range f.state.albums {
		if album.ID != albumID {
			continue
		}
		var genres []string
		for name, genreID := range f.state.genres {
			if _, ok := f.state.artistGenres[[2]int64{album.ArtistID, genreID}]; ok {
				genres = append(genres, name)
			}
		}
		sort.Strings(genres)
		return &model.AlbumDetail{
			Album:      album,
			ArtistName: f.state.artistNames[album.ArtistID],
			Genres:     genres,
		}, nil
	}
	return nil, nil
}

func (f *fakeCatalog) RandomArtistSeeds(_ context.Context, n int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]string, 0, len(f.state.artists))
	for k := range f.state.artists {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys, nil
}

func (f *fakeCatalog) RandomGenreSeeds(_ context.Context, n int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]string, 0, len(f.state.genres))
	for k := range f.state.genres {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys, nil
}

func (f *fakeCatalog) InTx(_ context.Context, fn func(tx driven.CatalogTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	work := f.state.clone()
	if err := fn(&fakeCatalogTx{work: work, parent: f}); err != nil {
		return err
	}
	f.state = work
	return nil
}

// fakeCatalogTx operates on the transaction's working copy.
type fakeCatalogTx struct {
	work   *catalogState
	parent *fakeCatalog
}

func (tx *fakeCatalogTx) InsertArtist(_ context.Context, spotifyID, name string) (int64, error) {
	if _, ok := tx.work.artists[spotifyID]; ok {
		return 0, driven.ErrDuplicateKey
	}
	id := tx.work.id()
	tx.work.artists[spotifyID] = id
	tx.work.artistNames[id] = name
	return id, nil
}

func (tx *fakeCatalogTx) ArtistIDBySpotifyID(_ context.Context, spotifyID string) (int64, error) {
	id, ok := tx.work.artists[spotifyID]
	if !ok {
		return 0, driven.ErrNotFound
	}
	return id, nil
}

func (tx *fakeCatalogTx) InsertGenre(_ context.Context, name string) (int64, error) {
	if _, ok := tx.work.genres[name]; ok {
		return 0, driven.ErrDuplicateKey
	}
	id := tx.work.id()
	tx.work.genres[name] = id
	return id, nil
}

func (tx *fakeCatalogTx) GenreIDByName(_ context.Context, name string) (int64, error) {
	id, ok := tx.work.genres[name]
	if !ok {
		return 0, driven.ErrNotFound
	}
	return id, nil
}

func (tx *fakeCatalogTx) InsertTag(_ context.Context, name string) (int64, error) {
	if _, ok := tx.work.tags[name]; ok {
		return 0, driven.ErrDuplicateKey
	}
	id := tx.work.id()
	tx.work.tags[name] = id
	return id, nil
}

func (tx *fakeCatalogTx) TagIDByName(_ context.Context, name string) (int64, error) {
	id, ok := tx.work.tags[name]
	if !ok {
		return 0, driven.ErrNotFound
	}
	return id, nil
}

func (tx *fakeCatalogTx) InsertAlbum(_ context.Context, album model.Album) (int64, error) {
	if tx.parent.onAlbumInsert != nil {
		tx.parent.onAlbumInsert(tx.parent)
	}
	if tx.parent.albumInsertErr != nil {
		return 0, tx.parent.albumInsertErr
	}
	if _, ok := tx.work.albums[album.SpotifyID]; ok {
		return 0, driven.ErrDuplicateKey
	}
	album.ID = tx.work.id()
	tx.work.albums[album.SpotifyID] = album
	return album.ID, nil
}

func (tx *fakeCatalogTx) AssignArtistGenre(_ context.Context, artistID, genreID int64) error {
	tx.work.artistGenres[[2]int64{artistID, genreID}] = struct{}{}
	return nil
}

func (tx *fakeCatalogTx) AssignAlbumTag(_ context.Context, albumID, tagID int64) error {
	tx.work.albumTags[[2]int64{albumID, tagID}] = struct{}{}
	return nil
}
