// Package charcount implements the character count utility.
package charcount

import (
	"log/slog"
	"strings"
	"unicode"
)

// Result holds the counts for a piece of text.
type Result struct {
	Characters         int `json:"characters"`
	CharactersNoSpaces int `json:"characters_no_spaces"`
	Words              int `json:"words"`
	Lines              int `json:"lines"`
}

// Service counts characters, words and lines in text.
type Service struct {
	logger *slog.Logger
}

// NewService creates a character count service.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Count analyzes text. Characters are counted as runes, not bytes, so
// multi-byte input is counted the way a user would expect. Empty input
// yields all zeros.
func (s *Service) Count(text string) Result {
	if text == "" {
		return Result{}
	}

	var chars, noSpaces int
	for _, r := range text {
		chars++
		if !unicode.IsSpace(r) {
			noSpaces++
		}
	}

	lines := strings.Count(text, "\n") + 1

	return Result{
		Characters:         chars,
		CharactersNoSpaces: noSpaces,
		Words:              len(strings.Fields(text)),
		Lines:              lines,
	}
}
