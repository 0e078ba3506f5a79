// Package readtime estimates how long extracted article text takes to read.
// It is a downstream transform over ParsedArticle.Content, not part of extraction.
package readtime

import (
	"math"
	"strings"
)

// WordsPerMinute is the assumed adult reading speed.
const WordsPerMinute = 200

// MinutesFromWords converts a word count into whole minutes, rounding up.
// The result is always at least 1.
func MinutesFromWords(words int) int {
	m := int(math.Ceil(float64(words) / WordsPerMinute))
	if m < 1 {
		return 1
	}
	return m
}

// Minutes returns the estimated reading time of content in minutes.
func Minutes(content string) int {
	return MinutesFromWords(len(strings.Fields(content)))
}
