// Package liner ties the library walker, the credit and catalog clients,
// and the tag writer together into the three batch operations the CLI
// exposes: composer updates, artwork updates, and a plain info dump.
package liner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"liner/coverscore"
	"liner/credits"
	"liner/fileutil"
	"liner/itunes"
	"liner/library"
	"liner/normtext"
	"liner/rank"
	"liner/tags"
	"liner/tower"
)

var (
	ErrNoAlbums  = errors.New("no matching albums")
	ErrNoArtwork = errors.New("no artwork candidate found")
)

// Name-match scoring for catalog search results.
const (
	nameExact     = 100
	nameSubstring = 50
	namePerWord   = 10
)

type CatalogClient interface {
	Search(ctx context.Context, term, country string) ([]itunes.SearchCandidate, error)
	Download(ctx context.Context, rawURL string) ([]byte, error)
}

type CreditSource interface {
	SearchAlbum(ctx context.Context, album, artist string) ([]tower.Product, error)
	TrackCredits(ctx context.Context, productURL string) ([]credits.Record, error)
}

type TagIO interface {
	ReadTrack(path string) (tags.Track, error)
	WriteComposer(path, value string) error
	EmbedImage(path string, data []byte) error
}

type Config struct {
	MediaPath      string
	ArtworkDir     string
	ArtworkQuality itunes.Quality
	SearchCountry  string
	KeepArtwork    bool
	Roles          []credits.RoleLabel
}

func (c *Config) roles() []credits.RoleLabel {
	if len(c.Roles) > 0 {
		return c.Roles
	}
	return credits.DefaultRoles()
}

// TrackResult records what one operation did to one file.
type TrackResult struct {
	Path    string
	Title   string
	Before  string
	After   string
	Updated bool
}

// ArtworkResult records the winning cover for one album and the files it
// was embedded into.
type ArtworkResult struct {
	Album     string
	CoverPath string
	Files     []string
}

// UpdateComposers looks up each matching album on the credit source and
// writes a formatted composer string to every track it can match a credit
// record to. Per-album and per-track failures are logged and skipped.
func UpdateComposers(ctx context.Context, cfg *Config, src CreditSource, tg TagIO, albumQuery string) ([]TrackResult, error) {
	albums, err := library.FindAlbums(cfg.MediaPath, albumQuery)
	if err != nil {
		return nil, fmt.Errorf("find albums: %w", err)
	}
	if len(albums) == 0 {
		return nil, ErrNoAlbums
	}

	var results []TrackResult
	var errs []error
	for _, album := range albums {
		records, err := albumCredits(ctx, src, album)
		if err != nil {
			slog.Warn("skipping album", "album", album.Name, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", album.Name, err))
			continue
		}
		if len(records) == 0 {
			slog.Info("no credit records", "album", album.Name)
			continue
		}

		for _, path := range album.Files {
			res, err := updateComposer(cfg, tg, records, path)
			if err != nil {
				slog.Warn("skipping track", "path", path, "err", err)
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
				continue
			}
			results = append(results, res)
		}
	}
	return results, errors.Join(errs...)
}

func albumCredits(ctx context.Context, src CreditSource, album library.Album) ([]credits.Record, error) {
	products, err := src.SearchAlbum(ctx, album.Name, album.Artist)
	if err != nil {
		return nil, fmt.Errorf("search album: %w", err)
	}
	if len(products) == 0 {
		return nil, nil
	}
	records, err := src.TrackCredits(ctx, products[0].URL)
	if err != nil {
		return nil, fmt.Errorf("track credits: %w", err)
	}
	return records, nil
}

func updateComposer(cfg *Config, tg TagIO, records []credits.Record, path string) (TrackResult, error) {
	track, err := tg.ReadTrack(path)
	if err != nil {
		return TrackResult{}, fmt.Errorf("read track: %w", err)
	}
	res := TrackResult{Path: path, Title: track.Title, Before: track.Composer, After: track.Composer}

	rec, ok := credits.FindMatch(track.Title, records)
	if !ok {
		return res, nil
	}
	formatted := credits.Format(rec, cfg.roles())
	if formatted == "" || formatted == track.Composer {
		return res, nil
	}
	if err := tg.WriteComposer(path, formatted); err != nil {
		return TrackResult{}, fmt.Errorf("write composer: %w", err)
	}
	slog.Debug("wrote composer", "path", path, "composer", formatted)
	res.After, res.Updated = formatted, true
	return res, nil
}

// UpdateArtwork finds every matching album with artwork-less tracks,
// downloads the best catalog match's cover into cfg.ArtworkDir, then
// selects the best image in that dir and embeds it into those tracks.
// Downloaded files are removed afterwards unless cfg.KeepArtwork is set.
func UpdateArtwork(ctx context.Context, cfg *Config, catalog CatalogClient, tg TagIO, albumQuery string) ([]ArtworkResult, error) {
	albums, err := library.FindAlbums(cfg.MediaPath, albumQuery)
	if err != nil {
		return nil, fmt.Errorf("find albums: %w", err)
	}
	if len(albums) == 0 {
		return nil, ErrNoAlbums
	}
	if err := os.MkdirAll(cfg.ArtworkDir, 0o755); err != nil {
		return nil, fmt.Errorf("create artwork dir: %w", err)
	}

	var results []ArtworkResult
	var errs []error
	for _, album := range albums {
		res, err := updateAlbumArtwork(ctx, cfg, catalog, tg, album)
		if err != nil {
			slog.Warn("skipping album", "album", album.Name, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", album.Name, err))
			continue
		}
		if len(res.Files) > 0 {
			results = append(results, res)
		}
	}
	return results, errors.Join(errs...)
}

func updateAlbumArtwork(ctx context.Context, cfg *Config, catalog CatalogClient, tg TagIO, album library.Album) (ArtworkResult, error) {
	var pending []string
	var artists []string
	for _, path := range album.Files {
		track, err := tg.ReadTrack(path)
		if err != nil {
			return ArtworkResult{}, fmt.Errorf("read track: %w", err)
		}
		artists = append(artists, track.Artist)
		if !track.HasArtwork {
			pending = append(pending, path)
		}
	}
	if len(pending) == 0 {
		return ArtworkResult{Album: album.Name}, nil
	}

	downloaded, err := downloadArtwork(ctx, cfg, catalog, album)
	if err != nil && !errors.Is(err, ErrNoArtwork) {
		return ArtworkResult{}, err
	}
	if !cfg.KeepArtwork && downloaded != "" {
		defer os.Remove(downloaded)
	}

	cover, ok := selectCover(cfg.ArtworkDir, album, artists)
	if !ok {
		return ArtworkResult{}, ErrNoArtwork
	}
	data, err := os.ReadFile(cover)
	if err != nil {
		return ArtworkResult{}, fmt.Errorf("read cover: %w", err)
	}

	res := ArtworkResult{Album: album.Name, CoverPath: cover}
	for _, path := range pending {
		if err := tg.EmbedImage(path, data); err != nil {
			return ArtworkResult{}, fmt.Errorf("embed %s: %w", path, err)
		}
		slog.Debug("embedded artwork", "path", path, "cover", cover)
		res.Files = append(res.Files, path)
	}
	return res, nil
}

// downloadArtwork searches the catalog for the album, "<artist> <album>"
// first and the bare album name as a fallback, and saves the best match's
// cover. ErrNoArtwork when neither search produces a usable candidate.
func downloadArtwork(ctx context.Context, cfg *Config, catalog CatalogClient, album library.Album) (string, error) {
	terms := []string{
		strings.TrimSpace(album.Artist + " " + album.Name),
		album.Name,
	}
	for _, term := range terms {
		if term == "" {
			continue
		}
		cands, err := catalog.Search(ctx, term, cfg.SearchCountry)
		if err != nil {
			return "", fmt.Errorf("search catalog: %w", err)
		}
		score := func(c itunes.SearchCandidate) int {
			return nameScore(c.AlbumName, album.Name) + nameScore(c.ArtistName, album.Artist)
		}
		best, ok := rank.Select(cands, score)
		if !ok || score(best) == 0 || best.ArtworkURL100 == "" {
			continue
		}

		data, err := catalog.Download(ctx, best.ArtworkURL(cfg.ArtworkQuality))
		if err != nil {
			return "", fmt.Errorf("download artwork: %w", err)
		}
		name := fileutil.SafeFilename(strings.TrimSpace(album.Artist+" "+album.Name)) + ".jpg"
		dest := filepath.Join(cfg.ArtworkDir, name)
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return "", fmt.Errorf("save artwork: %w", err)
		}
		slog.Debug("downloaded artwork", "album", album.Name, "dest", dest)
		return dest, nil
	}
	return "", ErrNoArtwork
}

// nameScore rates how well a catalog name matches the one on disk.
func nameScore(got, want string) int {
	got, want = normtext.Normalize(got), normtext.Normalize(want)
	if got == "" || want == "" {
		return 0
	}
	if got == want {
		return nameExact
	}
	var score int
	if strings.Contains(got, want) || strings.Contains(want, got) {
		score += nameSubstring
	}
	wantWords := map[string]struct{}{}
	for _, w := range strings.Fields(want) {
		wantWords[w] = struct{}{}
	}
	for _, w := range strings.Fields(got) {
		if _, ok := wantWords[w]; ok {
			score += namePerWord
		}
	}
	return score
}

// selectCover picks the best image file present in dir for the album.
func selectCover(dir string, album library.Album, artists []string) (string, bool) {
	paths, err := fileutil.GlobDir(dir, "*")
	if err != nil {
		return "", false
	}
	var covers []string
	for _, p := range paths {
		if coverscore.IsCover(p) {
			covers = append(covers, p)
		}
	}
	return rank.Select(covers, func(p string) int {
		return coverscore.Score(filepath.Base(p), album.Name, album.Artist, artists)
	})
}

// FetchInfo reads the tag snapshot of every track in the matching albums.
func FetchInfo(cfg *Config, tg TagIO, albumQuery string) ([]tags.Track, error) {
	albums, err := library.FindAlbums(cfg.MediaPath, albumQuery)
	if err != nil {
		return nil, fmt.Errorf("find albums: %w", err)
	}
	if len(albums) == 0 {
		return nil, ErrNoAlbums
	}

	var tracks []tags.Track
	var errs []error
	for _, album := range albums {
		for _, path := range album.Files {
			track, err := tg.ReadTrack(path)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
				continue
			}
			tracks = append(tracks, track)
		}
	}
	return tracks, errors.Join(errs...)
}
