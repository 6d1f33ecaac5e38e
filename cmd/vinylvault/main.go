package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	lastfmadapter "vinylvault/internal/adapter/driven/lastfm"
	spotifyadapter "vinylvault/internal/adapter/driven/spotify"
	sqliteadapter "vinylvault/internal/adapter/driven/sqlite"
	"vinylvault/internal/application"
	"vinylvault/internal/config"
	"vinylvault/internal/domain/port/driven"
)

const usage = `usage: vinylvault <command> [args]

commands:
  search <query>       search upstream for albums matching a free text query
  add <album-id>...    ingest one or more albums by their spotify ids
  collection           list the stored collection
  album <id>           show one stored album with its genres
  recommend            suggest albums seeded from the stored collection
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	// 4. Run migrations on the writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}

	// 5. Wire adapters.
	credentialStore := sqliteadapter.NewCredentialRepo(db)
	catalogStore := sqliteadapter.NewCatalogRepo(db)
	spotifyClient := spotifyadapter.NewClient(cfg.HTTPTimeout)

	var tagSource driven.TagSource
	if cfg.LastFMAPIKey != "" {
		tagSource = lastfmadapter.NewClient(cfg.LastFMAPIKey, cfg.HTTPTimeout)
	} else {
		slog.Info("no last.fm api key configured, tag enrichment disabled")
	}

	// 6. Wire services.
	credentials := application.NewCredentialManager(cfg.ClientID, cfg.ClientSecret, credentialStore, spotifyClient)
	catalogSvc := application.NewCatalogService(catalogStore, spotifyClient)
	ingestSvc := application.NewIngestService(spotifyClient, catalogStore, tagSource)

	app := &cli{
		credentials: credentials,
		ingest:      ingestSvc,
		catalog:     catalogSvc,
	}

	switch command {
	case "search":
		return app.search(ctx, args)
	case "add":
		return app.add(ctx, args)
	case "collection":
		return app.collection(ctx)
	case "album":
		return app.album(ctx, args)
	case "recommend":
		return app.recommend(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

type cli struct {
	credentials *application.CredentialManager
	ingest      *application.IngestService
	catalog     *application.CatalogService
}

func (c *cli) search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("search: missing query")
	}
	query := strings.Join(args, " ")

	token, err := c.credentials.Obtain(ctx)
	if err != nil {
		return err
	}

	results, err := c.catalog.Search(ctx, token, query)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}

	for _, r := range results {
		fmt.Printf("%s  %s — %s (%s)\n", r.SpotifyID, r.Title, r.ArtistNames, r.ReleaseDate.Format("2006-01-02"))
	}
	return nil
}

func (c *cli) add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("add: missing album id")
	}

	token, err := c.credentials.Obtain(ctx)
	if err != nil {
		return err
	}

	for _, albumID := range args {
		result, err := c.ingest.AddAlbum(ctx, albumID, token)
		if err != nil {
			return fmt.Errorf("add %s: %w", albumID, err)
		}
		switch {
		case result.AlreadyPresent:
			fmt.Printf("%s already in collection (id %d)\n", albumID, result.AlbumID)
		case result.EnrichmentErr != nil:
			fmt.Printf("%s added (id %d), tag enrichment failed: %v\n", albumID, result.AlbumID, result.EnrichmentErr)
		default:
			fmt.Printf("%s added (id %d, %d new artists, %d tags)\n", albumID, result.AlbumID, result.NewArtists, result.TagsApplied)
		}
	}
	return nil
}

func (c *cli) collection(ctx context.Context) error {
	albums, err := c.catalog.ListAlbums(ctx)
	if err != nil {
		return err
	}
	if len(albums) == 0 {
		fmt.Println("collection is empty")
		return nil
	}

	for _, a := range albums {
		fmt.Printf("%4d  %s — %s (%s)\n", a.ID, a.Title, a.ArtistName, a.ReleaseDate.Format("2006-01-02"))
	}
	return nil
}

func (c *cli) album(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("album: expected exactly one id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("album: invalid id %q", args[0])
	}

	detail, err := c.catalog.GetAlbum(ctx, id)
	if err != nil {
		return err
	}
	if detail == nil {
		return fmt.Errorf("album %d not found", id)
	}

	fmt.Printf("%s — %s\n", detail.Title, detail.ArtistName)
	fmt.Printf("  type:     %s\n", detail.AlbumType)
	fmt.Printf("  released: %s\n", detail.ReleaseDate.Format("2006-01-02"))
	fmt.Printf("  tracks:   %d\n", detail.TrackCount)
	fmt.Printf("  runtime:  %ds\n", detail.RuntimeSeconds)
	if len(detail.Genres) > 0 {
		fmt.Printf("  genres:   %s\n", strings.Join(detail.Genres, ", "))
	}
	if detail.ArtURL != "" {
		fmt.Printf("  art:      %s\n", detail.ArtURL)
	}
	return nil
}

func (c *cli) recommend(ctx context.Context) error {
	token, err := c.credentials.Obtain(ctx)
	if err != nil {
		return err
	}

	recs, err := c.catalog.Recommendations(ctx, token)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("no recommendations; add some albums first")
		return nil
	}

	for _, r := range recs {
		fmt.Printf("%s — %s (%s)\n", r.AlbumTitle, r.ArtistNames, r.ReleaseDate)
	}
	return nil
}
