package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"vinylvault/internal/domain/model"
	"vinylvault/internal/domain/port/driven"
)

// timeFormat is the canonical datetime layout stored in SQLite.
const timeFormat = "2006-01-02T15:04:05Z"

// dateFormat is the canonical calendar-date layout for release dates.
// ISO order keeps lexicographic and chronological sorting aligned and is
// what SQLite's date functions expect.
const dateFormat = "2006-01-02"

// Compile-time interface satisfaction checks.
var (
	_ driven.CatalogStore = (*CatalogRepo)(nil)
	_ driven.CatalogTx    = (*catalogTx)(nil)
)

// CatalogRepo is the SQLite implementation of the CatalogStore port.
type CatalogRepo struct {
	db *DB
}

// NewCatalogRepo creates a new CatalogRepo backed by the given DB.
func NewCatalogRepo(db *DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// querier is satisfied by *sql.DB and *sql.Tx, letting the entity
// statements run both in autocommit mode and inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ArtistIDsBySpotifyID returns a snapshot of every stored artist keyed by
// its spotify id.
func (r *CatalogRepo) ArtistIDsBySpotifyID(ctx context.Context) (map[string]int64, error) {
	return loadIDMap(ctx, r.db.Reader, `SELECT spotify_artist_id, artist_id FROM artist`, "load artist ids")
}

// GenreIDsByName returns a snapshot of every stored genre keyed by name.
func (r *CatalogRepo) GenreIDsByName(ctx context.Context) (map[string]int64, error) {
	return loadIDMap(ctx, r.db.Reader, `SELECT genre_name, genre_id FROM genre`, "load genre ids")
}

// TagIDsByName returns a snapshot of every stored tag keyed by name.
func (r *CatalogRepo) TagIDsByName(ctx context.Context) (map[string]int64, error) {
	return loadIDMap(ctx, r.db.Reader, `SELECT tag_name, tag_id FROM tag`, "load tag ids")
}

func loadIDMap(ctx context.Context, q querier, query, op string) (map[string]int64, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var key string
		var id int64
		if err := rows.Scan(&key, &id); err != nil {
			return nil, storageErr(op, err)
		}
		ids[key] = id
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}

	return ids, nil
}

// AlbumBySpotifyID retrieves an album by its spotify id. Returns nil, nil
// if no such album exists.
func (r *CatalogRepo) AlbumBySpotifyID(ctx context.Context, spotifyID string) (*model.Album, error) {
	const query = `SELECT album_id, artist_id, spotify_album_id, album_type, album_name,
		release_date, num_tracks, runtime_seconds, album_art_url
		FROM album WHERE spotify_album_id = ?`

	album, err := scanAlbum(r.db.Reader.QueryRowContext(ctx, query, spotifyID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(fmt.Sprintf("get album %s", spotifyID), err)
	}

	return album, nil
}

// ListAlbums returns the whole collection joined with primary artist names,
// ordered by album title.
func (r *CatalogRepo) ListAlbums(ctx context.Context) ([]model.AlbumSummary, error) {
	const query = `SELECT a.album_id, a.album_name, ar.artist_name, a.release_date, a.album_art_url
		FROM album AS a JOIN artist AS ar USING (artist_id)
		ORDER BY a.album_name`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr("list albums", err)
	}
	defer rows.Close()

	var albums []model.AlbumSummary
	for rows.Next() {
		var s model.AlbumSummary
		var releaseDate string
		if err := rows.Scan(&s.ID, &s.Title, &s.ArtistName, &releaseDate, &s.ArtURL); err != nil {
			return nil, storageErr("scan album summary", err)
		}
		if s.ReleaseDate, err = parseTime(releaseDate); err != nil {
			return nil, storageErr("parse release_date", err)
		}
		albums = append(albums, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate albums", err)
	}

	return albums, nil
}

// AlbumDetail returns one album with its artist name and the artist's genre
// names sorted alphabetically. Returns nil, nil if the album does not exist.
func (r *CatalogRepo) AlbumDetail(ctx context.Context, albumID int64) (*model.AlbumDetail, error) {
	const albumQuery = `SELECT a.album_id, a.artist_id, a.spotify_album_id, a.album_type, a.album_name,
		a.release_date, a.num_tracks, a.runtime_seconds, a.album_art_url, ar.artist_name
		FROM album AS a JOIN artist AS ar USING (artist_id)
		WHERE a.album_id = ?`

	var detail model.AlbumDetail
	var releaseDate string
	err := r.db.Reader.QueryRowContext(ctx, albumQuery, albumID).Scan(
		&detail.ID, &detail.ArtistID, &detail.SpotifyID, &detail.AlbumType, &detail.Title,
		&releaseDate, &detail.TrackCount, &detail.RuntimeSeconds, &detail.ArtURL, &detail.ArtistName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(fmt.Sprintf("get album detail %d", albumID), err)
	}
	if detail.ReleaseDate, err = parseTime(releaseDate); err != nil {
		return nil, storageErr("parse release_date", err)
	}

	const genreQuery = `SELECT g.genre_name FROM genre AS g
		JOIN artist_genre_assignment AS aga USING (genre_id)
		WHERE aga.artist_id = ?
		ORDER BY g.genre_name ASC`

	rows, err := r.db.Reader.QueryContext(ctx, genreQuery, detail.ArtistID)
	if err != nil {
		return nil, storageErr("list album genres", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, storageErr("scan genre name", err)
		}
		detail.Genres = append(detail.Genres, name)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate album genres", err)
	}

	return &detail, nil
}

// RandomArtistSeeds returns up to n spotify artist ids sampled from the
// stored collection.
func (r *CatalogRepo) RandomArtistSeeds(ctx context.Context, n int) ([]string, error) {
	return loadSeeds(ctx, r.db.Reader, `SELECT spotify_artist_id FROM artist ORDER BY RANDOM() LIMIT ?`, n, "artist seeds")
}

// RandomGenreSeeds returns up to n genre names sampled from the stored
// collection.
func (r *CatalogRepo) RandomGenreSeeds(ctx context.Context, n int) ([]string, error) {
	return loadSeeds(ctx, r.db.Reader, `SELECT genre_name FROM genre ORDER BY RANDOM() LIMIT ?`, n, "genre seeds")
}

func loadSeeds(ctx context.Context, q querier, query string, n int, op string) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, n)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var seeds []string
	for rows.Next() {
		var seed string
		if err := rows.Scan(&seed); err != nil {
			return nil, storageErr(op, err)
		}
		seeds = append(seeds, seed)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}

	return seeds, nil
}

// InTx runs fn inside one write transaction on the writer connection. The
// transaction commits when fn returns nil and rolls back when it returns an
// error; the deferred rollback guarantees release on every exit path.
func (r *CatalogRepo) InTx(ctx context.Context, fn func(tx driven.CatalogTx) error) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	// Rollback after a successful commit is a harmless no-op.
	defer tx.Rollback()

	if err := fn(&catalogTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}

	return nil
}

// catalogTx implements the CatalogTx port over one open *sql.Tx.
type catalogTx struct {
	tx *sql.Tx
}

func (t *catalogTx) InsertArtist(ctx context.Context, spotifyID, name string) (int64, error) {
	return insertEntity(ctx, t.tx,
		`INSERT INTO artist (spotify_artist_id, artist_name) VALUES (?, ?)`,
		fmt.Sprintf("insert artist %s", spotifyID), spotifyID, name)
}

func (t *catalogTx) ArtistIDBySpotifyID(ctx context.Context, spotifyID string) (int64, error) {
	return lookupEntityID(ctx, t.tx,
		`SELECT artist_id FROM artist WHERE spotify_artist_id = ?`,
		fmt.Sprintf("find artist %s", spotifyID), spotifyID)
}

func (t *catalogTx) InsertGenre(ctx context.Context, name string) (int64, error) {
	return insertEntity(ctx, t.tx,
		`INSERT INTO genre (genre_name) VALUES (?)`,
		fmt.Sprintf("insert genre %q", name), name)
}

func (t *catalogTx) GenreIDByName(ctx context.Context, name string) (int64, error) {
	return lookupEntityID(ctx, t.tx,
		`SELECT genre_id FROM genre WHERE genre_name = ?`,
		fmt.Sprintf("find genre %q", name), name)
}

func (t *catalogTx) InsertTag(ctx context.Context, name string) (int64, error) {
	return insertEntity(ctx, t.tx,
		`INSERT INTO tag (tag_name) VALUES (?)`,
		fmt.Sprintf("insert tag %q", name), name)
}

func (t *catalogTx) TagIDByName(ctx context.Context, name string) (int64, error) {
	return lookupEntityID(ctx, t.tx,
		`SELECT tag_id FROM tag WHERE tag_name = ?`,
		fmt.Sprintf("find tag %q", name), name)
}

// InsertAlbum appends an album row, returning its id. Returns
// ErrDuplicateKey if an album with the same spotify id already exists.
func (t *catalogTx) InsertAlbum(ctx context.Context, album model.Album) (int64, error) {
	const query = `INSERT INTO album (artist_id, spotify_album_id, album_type, album_name,
		release_date, num_tracks, runtime_seconds, album_art_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := t.tx.ExecContext(ctx, query,
		album.ArtistID,
		album.SpotifyID,
		album.AlbumType,
		album.Title,
		album.ReleaseDate.Format(dateFormat),
		album.TrackCount,
		album.RuntimeSeconds,
		album.ArtURL,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert album %s: %w", album.SpotifyID, driven.ErrDuplicateKey)
		}
		return 0, storageErr(fmt.Sprintf("insert album %s", album.SpotifyID), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storageErr("album insert id", err)
	}

	return id, nil
}

// AssignArtistGenre records the artist/genre pair. Already-present pairs
// are a no-op.
func (t *catalogTx) AssignArtistGenre(ctx context.Context, artistID, genreID int64) error {
	const query = `INSERT OR IGNORE INTO artist_genre_assignment (artist_id, genre_id) VALUES (?, ?)`
	if _, err := t.tx.ExecContext(ctx, query, artistID, genreID); err != nil {
		return storageErr(fmt.Sprintf("assign genre %d to artist %d", genreID, artistID), err)
	}
	return nil
}

// AssignAlbumTag records the album/tag pair. Already-present pairs are a
// no-op.
func (t *catalogTx) AssignAlbumTag(ctx context.Context, albumID, tagID int64) error {
	const query = `INSERT OR IGNORE INTO album_tag_assignment (album_id, tag_id) VALUES (?, ?)`
	if _, err := t.tx.ExecContext(ctx, query, albumID, tagID); err != nil {
		return storageErr(fmt.Sprintf("assign tag %d to album %d", tagID, albumID), err)
	}
	return nil
}

func insertEntity(ctx context.Context, q querier, query, op string, args ...any) (int64, error) {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, driven.ErrDuplicateKey)
		}
		return 0, storageErr(op, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storageErr(op, err)
	}

	return id, nil
}

func lookupEntityID(ctx context.Context, q querier, query, op string, key string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, query, key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", op, driven.ErrNotFound)
	}
	if err != nil {
		return 0, storageErr(op, err)
	}
	return id, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAlbum(s scanner) (*model.Album, error) {
	var album model.Album
	var releaseDate string

	err := s.Scan(&album.ID, &album.ArtistID, &album.SpotifyID, &album.AlbumType,
		&album.Title, &releaseDate, &album.TrackCount, &album.RuntimeSeconds, &album.ArtURL)
	if err != nil {
		return nil, err
	}

	album.ReleaseDate, err = parseTime(releaseDate)
	if err != nil {
		return nil, fmt.Errorf("parse release_date: %w", err)
	}

	return &album, nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint
// failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

// storageErr tags a database failure with the storage error kind while
// preserving the underlying error chain.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(model.ErrStorage, err))
}

// parseTime tries the datetime layouts SQLite may hand back.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		timeFormat,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		dateFormat,
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
