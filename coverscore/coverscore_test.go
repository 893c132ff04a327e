package coverscore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"liner/coverscore"
)

func TestScore(t *testing.T) {
	queen := []string{"Queen", "Queen", "Queen", "Queen", "Queen"}

	// artist + album in name, 5 tracks, all artists match
	got := coverscore.Score("Queen_A Night At The Opera.jpg", "A Night at the Opera", "Queen", queen)
	assert.Equal(t, 100+100+50+50, got)

	// 4 of 5 tracks match (80%), album name absent from the file name:
	// only the +30 tier fires, never both +50 and +30
	fourOfFive := []string{"Queen", "Queen", "Queen", "Queen", "Somebody Else"}
	got = coverscore.Score("Queen_Unrelated.jpg", "A Night at the Opera", "Queen", fourOfFive)
	assert.Equal(t, 100+10*5+30, got)

	// below the 80% line neither consistency bonus applies
	twoOfFive := []string{"Queen", "Queen", "x", "y", "z"}
	got = coverscore.Score("other.jpg", "", "Queen", twoOfFive)
	assert.Equal(t, 10*5, got)
}

func TestScoreCaseFolding(t *testing.T) {
	got := coverscore.Score("queen_a night at the opera.jpg", "A Night At The Opera", "QUEEN", []string{"queen"})
	assert.Equal(t, 100+100+10+50, got)
}

func TestScoreEmptyContext(t *testing.T) {
	// nothing to corroborate, nothing scored
	assert.Equal(t, 0, coverscore.Score("whatever.jpg", "", "", nil))
}

func TestIsCover(t *testing.T) {
	assert.True(t, coverscore.IsCover("folder/cover.jpg"))
	assert.True(t, coverscore.IsCover("COVER.PNG"))
	assert.True(t, coverscore.IsCover("a.jpeg"))
	assert.False(t, coverscore.IsCover("track01.mp3"))
	assert.False(t, coverscore.IsCover("cover"))
}
