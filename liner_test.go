package liner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liner"
	"liner/credits"
	"liner/itunes"
	"liner/tags"
	"liner/tower"
)

type fakeTags struct {
	tracks    map[string]tags.Track
	composers map[string]string
	embedded  map[string][]byte
}

func newFakeTags() *fakeTags {
	return &fakeTags{
		tracks:    map[string]tags.Track{},
		composers: map[string]string{},
		embedded:  map[string][]byte{},
	}
}

func (f *fakeTags) ReadTrack(path string) (tags.Track, error) {
	t, ok := f.tracks[path]
	if !ok {
		return tags.Track{}, os.ErrNotExist
	}
	t.Path = path
	return t, nil
}

func (f *fakeTags) WriteComposer(path, value string) error {
	f.composers[path] = value
	return nil
}

func (f *fakeTags) EmbedImage(path string, data []byte) error {
	f.embedded[path] = data
	return nil
}

type fakeCredits struct {
	products []tower.Product
	records  []credits.Record
}

func (f *fakeCredits) SearchAlbum(ctx context.Context, album, artist string) ([]tower.Product, error) {
	return f.products, nil
}

func (f *fakeCredits) TrackCredits(ctx context.Context, productURL string) ([]credits.Record, error) {
	return f.records, nil
}

type fakeCatalog struct {
	candidates []itunes.SearchCandidate
	image      []byte
}

func (f *fakeCatalog) Search(ctx context.Context, term, country string) ([]itunes.SearchCandidate, error) {
	return f.candidates, nil
}

func (f *fakeCatalog) Download(ctx context.Context, rawURL string) ([]byte, error) {
	return f.image, nil
}

// mediaTree lays out artist/album/track dirs with empty mp3 files and
// returns the root plus the track paths in order.
func mediaTree(t *testing.T, artist, album string, names ...string) (string, []string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, artist, album)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	var paths []string
	for _, name := range names {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, nil, 0o644))
		paths = append(paths, p)
	}
	return root, paths
}

func TestUpdateComposers(t *testing.T) {
	t.Parallel()

	root, paths := mediaTree(t, "Queen", "A Night at the Opera", "1.mp3", "2.mp3", "3.mp3")

	tg := newFakeTags()
	tg.tracks[paths[0]] = tags.Track{Title: "Death on Two Legs", Artist: "Queen"}
	tg.tracks[paths[1]] = tags.Track{Title: "Love of My Life", Artist: "Queen", Composer: "作詞: Freddie Mercury/作曲: Freddie Mercury"}
	tg.tracks[paths[2]] = tags.Track{Title: "Unknown Bonus Track", Artist: "Queen"}

	src := &fakeCredits{
		products: []tower.Product{{Title: "A Night at the Opera", URL: "https://tower.jp/item/4497459"}},
		records: []credits.Record{
			{TrackNumber: "1", Title: "Death on Two Legs", Roles: map[string]string{"作詞": "Freddie Mercury", "作曲": "Freddie Mercury"}},
			{TrackNumber: "2", Title: "Love of My Life", Roles: map[string]string{"作詞": "Freddie Mercury", "作曲": "Freddie Mercury"}},
		},
	}

	cfg := &liner.Config{MediaPath: root}
	results, err := liner.UpdateComposers(context.Background(), cfg, src, tg, "opera")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Updated)
	assert.Equal(t, "作詞: Freddie Mercury/作曲: Freddie Mercury", results[0].After)
	assert.Equal(t, "作詞: Freddie Mercury/作曲: Freddie Mercury", tg.composers[paths[0]])

	// already up to date, no write
	assert.False(t, results[1].Updated)
	_, wrote := tg.composers[paths[1]]
	assert.False(t, wrote)

	// no credit record matches
	assert.False(t, results[2].Updated)
	assert.Empty(t, results[2].After)
}

func TestUpdateComposersNoAlbums(t *testing.T) {
	t.Parallel()

	root, _ := mediaTree(t, "Queen", "A Night at the Opera", "1.mp3")
	cfg := &liner.Config{MediaPath: root}
	_, err := liner.UpdateComposers(context.Background(), cfg, &fakeCredits{}, newFakeTags(), "jazz")
	assert.ErrorIs(t, err, liner.ErrNoAlbums)
}

func TestUpdateArtwork(t *testing.T) {
	t.Parallel()

	root, paths := mediaTree(t, "Queen", "A Night at the Opera", "1.mp3", "2.mp3")

	tg := newFakeTags()
	tg.tracks[paths[0]] = tags.Track{Title: "Death on Two Legs", Artist: "Queen", Album: "A Night at the Opera"}
	tg.tracks[paths[1]] = tags.Track{Title: "Love of My Life", Artist: "Queen", Album: "A Night at the Opera", HasArtwork: true}

	catalog := &fakeCatalog{
		candidates: []itunes.SearchCandidate{
			{ArtistName: "Queen", AlbumName: "A Night at the Opera", ArtworkURL100: "https://img.example/100x100bb.jpg"},
			{ArtistName: "Various Artists", AlbumName: "Opera Hits", ArtworkURL100: "https://img.example/other/100x100bb.jpg"},
		},
		image: []byte("jpeg bytes"),
	}

	cfg := &liner.Config{
		MediaPath:      root,
		ArtworkDir:     t.TempDir(),
		ArtworkQuality: itunes.QualityLarge,
		SearchCountry:  "jp",
		KeepArtwork:    true,
	}
	results, err := liner.UpdateArtwork(context.Background(), cfg, catalog, tg, "opera")
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "A Night at the Opera", results[0].Album)
	assert.Equal(t, []string{paths[0]}, results[0].Files)
	assert.Equal(t, []byte("jpeg bytes"), tg.embedded[paths[0]])
	_, embedded := tg.embedded[paths[1]]
	assert.False(t, embedded, "track with artwork untouched")

	// KeepArtwork leaves the download in place
	data, err := os.ReadFile(results[0].CoverPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), data)
}

func TestUpdateArtworkNoCandidates(t *testing.T) {
	t.Parallel()

	root, paths := mediaTree(t, "Queen", "A Night at the Opera", "1.mp3")
	tg := newFakeTags()
	tg.tracks[paths[0]] = tags.Track{Title: "Death on Two Legs", Artist: "Queen"}

	cfg := &liner.Config{MediaPath: root, ArtworkDir: t.TempDir()}
	results, err := liner.UpdateArtwork(context.Background(), cfg, &fakeCatalog{}, tg, "opera")
	assert.ErrorIs(t, err, liner.ErrNoArtwork)
	assert.Empty(t, results)
}

func TestFetchInfo(t *testing.T) {
	t.Parallel()

	root, paths := mediaTree(t, "Queen", "A Night at the Opera", "1.mp3", "2.mp3")
	tg := newFakeTags()
	tg.tracks[paths[0]] = tags.Track{Title: "Death on Two Legs", Artist: "Queen"}
	tg.tracks[paths[1]] = tags.Track{Title: "Love of My Life", Artist: "Queen"}

	cfg := &liner.Config{MediaPath: root}
	tracks, err := liner.FetchInfo(cfg, tg, "")
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "Death on Two Legs", tracks[0].Title)
	assert.Equal(t, paths[0], tracks[0].Path)
}
