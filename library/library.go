// Package library locates albums in an iTunes-style media tree, laid out
// as <root>/<artist>/<album>/<files>.
package library

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.senan.xyz/natcmp"

	"liner/tags"
)

type Album struct {
	Artist string
	Name   string
	Path   string
	Files  []string
}

// FindAlbums walks the two top levels of root and returns every album
// whose directory name contains nameQuery, case-insensitively. Albums
// without any readable audio file are skipped; unreadable subdirectories
// are logged and skipped, not fatal.
func FindAlbums(root, nameQuery string) ([]Album, error) {
	artists, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read media root: %w", err)
	}

	query := strings.ToLower(nameQuery)

	var albums []Album
	for _, artist := range artists {
		if !artist.IsDir() {
			continue
		}
		artistPath := filepath.Join(root, artist.Name())
		albumDirs, err := os.ReadDir(artistPath)
		if err != nil {
			slog.Warn("skip unreadable artist dir", "path", artistPath, "err", err)
			continue
		}
		for _, albumDir := range albumDirs {
			if !albumDir.IsDir() {
				continue
			}
			if !strings.Contains(strings.ToLower(albumDir.Name()), query) {
				continue
			}
			albumPath := filepath.Join(artistPath, albumDir.Name())
			files, err := audioFiles(albumPath)
			if err != nil {
				slog.Warn("skip unreadable album dir", "path", albumPath, "err", err)
				continue
			}
			if len(files) == 0 {
				continue
			}
			albums = append(albums, Album{
				Artist: artist.Name(),
				Name:   albumDir.Name(),
				Path:   albumPath,
				Files:  files,
			})
		}
	}
	return albums, nil
}

func audioFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !tags.CanRead(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(files, natcmp.Compare)
	return files, nil
}
