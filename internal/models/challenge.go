package models

import (
	"time"
	"unicode/utf8"
)

// Difficulty is the coarse difficulty label of a challenge
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulty labels
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// TestCase is one example input with its expected output, shown verbatim
type TestCase struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
}

// Challenge represents a coding exercise
type Challenge struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
	TestCases   []TestCase `json:"test_cases"`
	CreatedAt   time.Time  `json:"created_at"`
}

// SummaryLength is the number of description characters shown on a challenge card
const SummaryLength = 120

// Summary returns the description cut to SummaryLength characters,
// followed by "..." when anything was cut
func (c *Challenge) Summary() string {
	return Truncate(c.Description, SummaryLength)
}

// Truncate cuts s to at most n runes and appends "..." if s was longer
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
