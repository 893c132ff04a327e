// Package tags wraps go-taglib behind the small surface the rest of the
// tool needs: a per-file metadata snapshot, composer writes, and artwork
// embedding.
package tags

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.senan.xyz/taglib"
)

func CanRead(absPath string) bool {
	switch ext := strings.ToLower(filepath.Ext(absPath)); ext {
	case ".mp3", ".flac", ".aac", ".m4a", ".m4b", ".ogg", ".opus", ".aiff", ".aif", ".wav", ".wma", ".wv":
		return true
	}
	return false
}

// Track is an immutable snapshot of one audio file's tags. Updates go back
// through [Lib.WriteComposer] / [Lib.EmbedImage], never by mutating this.
type Track struct {
	Title      string
	Artist     string
	Album      string
	Composer   string
	Year       string
	HasArtwork bool
	Path       string
}

// Lib reads and writes tags with taglib. The zero value is ready to use.
type Lib struct{}

func (Lib) ReadTrack(path string) (Track, error) {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return Track{}, fmt.Errorf("read tags: %w", err)
	}

	img, err := taglib.ReadImage(path)
	hasArtwork := err == nil && len(img) > 0

	return Track{
		Title:      first(raw[taglib.Title]),
		Artist:     first(raw[taglib.Artist]),
		Album:      first(raw[taglib.Album]),
		Composer:   first(raw[taglib.Composer]),
		Year:       first(raw[taglib.Date]),
		HasArtwork: hasArtwork,
		Path:       path,
	}, nil
}

func (Lib) WriteComposer(path, value string) error {
	err := taglib.WriteTags(path, map[string][]string{
		taglib.Composer: {value},
	}, 0)
	if err != nil {
		return fmt.Errorf("write composer: %w", err)
	}
	return nil
}

func (Lib) EmbedImage(path string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("no image data")
	}
	if err := taglib.WriteImage(path, data); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}

func first(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}
