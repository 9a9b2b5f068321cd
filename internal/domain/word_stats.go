package domain

import (
	"errors"
	"strings"
	"time"
)

// Mastery bands used when summarising word statistics.
const (
	MaxMasteryLevel      = 5
	MasteredThreshold    = 4
	LearningThreshold    = 2
	needsPracticeCeiling = LearningThreshold - 1
)

// Common validation errors for WordStats
var (
	ErrEmptyStatsPrimary     = errors.New("word stats primary text cannot be empty")
	ErrEmptyStatsTranslation = errors.New("word stats translation cannot be empty")
	ErrInvalidStatsCounters  = errors.New("word stats counters are inconsistent")
)

// WordStats accumulates a learner's history with one word pair across drill
// sessions. It is keyed by the (PrimaryText, Translation) pair.
type WordStats struct {
	PrimaryText      string    `json:"primary_text"`
	Translation      string    `json:"translation"`
	Category         string    `json:"category"`
	TimesEncountered int       `json:"times_encountered"`
	TimesCorrect     int       `json:"times_correct"`
	TimesIncorrect   int       `json:"times_incorrect"`
	MasteryLevel     int       `json:"mastery_level"`
	Skipped          bool      `json:"skipped"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewWordStats creates empty statistics for a word pair.
func NewWordStats(primaryText, translation, category string) (*WordStats, error) {
	now := time.Now().UTC()
	stats := &WordStats{
		PrimaryText: primaryText,
		Translation: translation,
		Category:    category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := stats.Validate(); err != nil {
		return nil, err
	}

	return stats, nil
}

// Validate checks if the WordStats has valid data.
func (s *WordStats) Validate() error {
	if strings.TrimSpace(s.PrimaryText) == "" {
		return ErrEmptyStatsPrimary
	}

	if strings.TrimSpace(s.Translation) == "" {
		return ErrEmptyStatsTranslation
	}

	if s.TimesCorrect < 0 || s.TimesIncorrect < 0 ||
		s.TimesCorrect+s.TimesIncorrect != s.TimesEncountered {
		return ErrInvalidStatsCounters
	}

	return nil
}

// WithEncounter returns a copy updated with one more answer.
func (s WordStats) WithEncounter(correct bool, at time.Time) *WordStats {
	s.TimesEncountered++
	if correct {
		s.TimesCorrect++
	} else {
		s.TimesIncorrect++
	}
	s.MasteryLevel = MasteryLevel(s.TimesCorrect)
	// Outcomes can land out of order; LastSeenAt never moves backwards.
	if at.After(s.LastSeenAt) {
		s.LastSeenAt = at.UTC()
	}
	s.UpdatedAt = at.UTC()
	return &s
}

// WithSkipped returns a copy flagged as skipped. Skipped words drop out of
// mastery accounting; encounter counters are left untouched.
func (s WordStats) WithSkipped(at time.Time) *WordStats {
	s.Skipped = true
	s.UpdatedAt = at.UTC()
	return &s
}

// ErrorRate is the share of encounters answered incorrectly.
func (s *WordStats) ErrorRate() float64 {
	if s.TimesEncountered == 0 {
		return 0
	}
	return float64(s.TimesIncorrect) / float64(s.TimesEncountered)
}

// IsMastered reports whether the word sits in the mastered band.
func (s *WordStats) IsMastered() bool { return s.MasteryLevel >= MasteredThreshold }

// IsLearning reports whether the word sits in the learning band.
func (s *WordStats) IsLearning() bool {
	return s.MasteryLevel >= LearningThreshold && s.MasteryLevel < MasteredThreshold
}

// NeedsPractice reports whether the word sits in the lowest band.
func (s *WordStats) NeedsPractice() bool { return s.MasteryLevel <= needsPracticeCeiling }

// MasteryLevel derives a 0..MaxMasteryLevel level from a correct-answer count:
// every two correct answers raise the level by one, the first answer counting
// immediately.
func MasteryLevel(timesCorrect int) int {
	if timesCorrect <= 0 {
		return 0
	}
	level := (timesCorrect + 1) / 2
	if level > MaxMasteryLevel {
		return MaxMasteryLevel
	}
	return level
}
