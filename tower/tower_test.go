package tower_test

import (
	"context"
	"embed"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liner/clientutil"
	"liner/tower"
)

//go:embed testdata
var responses embed.FS

func newClient(t *testing.T) *tower.Client {
	t.Helper()
	return &tower.Client{
		BaseURL:    "https://tower.jp",
		HTTPClient: clientutil.FSClient(responses, "testdata/tower"),
	}
}

func TestSearchAlbum(t *testing.T) {
	t.Parallel()

	client := newClient(t)
	products, err := client.SearchAlbum(context.Background(), "A Night at the Opera", "Queen")
	require.NoError(t, err)
	require.Len(t, products, 2) // the empty tile is dropped

	assert.Equal(t, "A Night at the Opera<完全生産限定盤>", products[0].Title)
	assert.Equal(t, "Queen", products[0].Artist)
	assert.Equal(t, "￥2,200", products[0].Price)
	assert.Equal(t, "Universal Music", products[0].Label)
	assert.Equal(t, "4497459", products[0].ProductID)
	assert.Equal(t, "https://tower.jp/item/4497459", products[0].URL)

	assert.Equal(t, "オペラ座の夜", products[1].Title)
	assert.Equal(t, "クイーン", products[1].Artist)
	assert.Equal(t, "5012345", products[1].ProductID)
}

func TestTrackCredits(t *testing.T) {
	t.Parallel()

	client := newClient(t)
	records, err := client.TrackCredits(context.Background(), "https://tower.jp/item/4497459")
	require.NoError(t, err)
	require.Len(t, records, 3) // the bare row is dropped

	assert.Equal(t, "1", records[0].TrackNumber)
	assert.Equal(t, "Death on Two Legs", records[0].Title)
	assert.Equal(t, "3:43", records[0].Length)
	assert.Equal(t, "Freddie Mercury", records[0].Roles["作詞"])
	assert.Equal(t, "Freddie Mercury", records[0].Roles["作曲"])
	assert.Equal(t, "Freddie Mercury, Brian May", records[0].Roles["編曲"])

	// plain-text credits, no artist links
	assert.Equal(t, "フレディ・マーキュリー", records[1].Roles["作詞"])
	assert.Equal(t, "フレディ・マーキュリー", records[1].Roles["作曲"])
	_, ok := records[1].Roles["録音"]
	assert.False(t, ok, "empty credit values are dropped")

	// no hidden area at all
	assert.Equal(t, "I'm in Love with My Car", records[2].Title)
	assert.Empty(t, records[2].Roles)
}
