package filter

import (
	"strings"
	"unicode/utf8"
)

// CandidateQuery is the typed predicate sent to storage. Every field is
// bound as a query parameter.
type CandidateQuery struct {
	Categories []string
	// ExcludePatterns are LIKE patterns over the lower-cased food name,
	// one per blacklisted keyword, with LIKE metacharacters escaped.
	ExcludePatterns []string
	MaxNameLength   int
	MinCalories     float64
	MaxCalories     float64
}

// Snapshot is an immutable, validated filter configuration.
type Snapshot struct {
	cfg        Config
	keywords   []string
	categories map[string]struct{}
}

// NewSnapshot validates cfg and freezes a private copy of it.
func NewSnapshot(cfg Config) (*Snapshot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.clone()
	s := &Snapshot{
		cfg:        cfg,
		keywords:   make([]string, 0, len(cfg.BlacklistKeywords)),
		categories: make(map[string]struct{}, len(cfg.AllowedCategories)),
	}
	for _, kw := range cfg.BlacklistKeywords {
		s.keywords = append(s.keywords, strings.ToLower(strings.TrimSpace(kw)))
	}
	for _, c := range cfg.AllowedCategories {
		s.categories[c] = struct{}{}
	}
	return s, nil
}

// Config returns a copy of the configuration the snapshot was built from.
func (s *Snapshot) Config() Config { return s.cfg.clone() }

func (s *Snapshot) MaxRecommendations() int { return s.cfg.MaxRecommendations }

func (s *Snapshot) MinGapsAddressed() int { return s.cfg.MinGapsAddressed }

// Allows applies every constraint to a single food.
func (s *Snapshot) Allows(name, category string, caloriesPer100g float64) bool {
	if _, ok := s.categories[category]; !ok {
		return false
	}
	if utf8.RuneCountInString(name) > s.cfg.MaxNameLength {
		return false
	}
	if caloriesPer100g < s.cfg.CalorieRange.Min || caloriesPer100g > s.cfg.CalorieRange.Max {
		return false
	}
	lower := strings.ToLower(name)
	for _, kw := range s.keywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	return true
}

// CandidateQuery builds the storage predicate for this snapshot.
func (s *Snapshot) CandidateQuery() CandidateQuery {
	patterns := make([]string, 0, len(s.keywords))
	for _, kw := range s.keywords {
		patterns = append(patterns, "%"+escapeLike(kw)+"%")
	}
	return CandidateQuery{
		Categories:      append([]string(nil), s.cfg.AllowedCategories...),
		ExcludePatterns: patterns,
		MaxNameLength:   s.cfg.MaxNameLength,
		MinCalories:     s.cfg.CalorieRange.Min,
		MaxCalories:     s.cfg.CalorieRange.Max,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE metacharacters using the default backslash escape.
func escapeLike(s string) string { return likeEscaper.Replace(s) }
