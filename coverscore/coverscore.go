// Package coverscore rates downloaded artwork candidates against the album
// context they were fetched for.
package coverscore

import (
	"path/filepath"
	"strings"
)

// Scoring constants. Kept as-is for behavioural compatibility with long
// use; tunable, not laws.
const (
	ArtistInName     = 100 // artist name appears in the candidate file name
	AlbumInName      = 100 // album name appears in the candidate file name
	PerTrack         = 10  // per corroborating track
	AllArtists       = 50  // every related track has the target artist
	MostArtists      = 30  // at least MostArtistsRatio of them do
	MostArtistsRatio = 0.8
)

// Score computes the desirability of one artwork candidate file. fileName
// is the candidate's base name, trackArtists holds the artist tag of every
// track the candidate was fetched for. Additive and order independent; the
// result is only comparable against other candidates scored with the same
// album/artist/track context.
func Score(fileName, album, artist string, trackArtists []string) int {
	fileName = strings.ToLower(fileName)

	var score int
	if artist != "" && strings.Contains(fileName, strings.ToLower(artist)) {
		score += ArtistInName
	}
	if album != "" && strings.Contains(fileName, strings.ToLower(album)) {
		score += AlbumInName
	}

	score += PerTrack * len(trackArtists)

	if artist != "" {
		var matches int
		for _, a := range trackArtists {
			if strings.EqualFold(a, artist) {
				matches++
			}
		}
		switch {
		case matches == len(trackArtists):
			score += AllArtists
		case float64(matches) >= float64(len(trackArtists))*MostArtistsRatio:
			score += MostArtists
		}
	}

	return score
}

var coverExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".gif":  {},
}

// IsCover reports whether p looks like an artwork image file.
func IsCover(p string) bool {
	_, ok := coverExts[strings.ToLower(filepath.Ext(p))]
	return ok
}
