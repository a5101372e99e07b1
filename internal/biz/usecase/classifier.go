package usecase

import (
	"strings"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
)

// CategoryMatch is one category hit and the keyword that produced it
type CategoryMatch struct {
	Category domain.Category
	Keyword  string
}

// Classifier scans free text against the category keyword table
type Classifier struct {
	table []CategoryKeywords
}

// NewClassifier creates a classifier over table
func NewClassifier(table []CategoryKeywords) *Classifier {
	normalized := make([]CategoryKeywords, 0, len(table))
	for _, entry := range table {
		keywords := make([]string, 0, len(entry.Keywords))
		for _, kw := range entry.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		normalized = append(normalized, CategoryKeywords{Category: entry.Category, Keywords: keywords})
	}
	return &Classifier{table: normalized}
}

// Classify returns every matching category in table order.
// Within a category the first keyword in table order wins.
func (c *Classifier) Classify(text string) []CategoryMatch {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	var matches []CategoryMatch
	for _, entry := range c.table {
		for _, kw := range entry.Keywords {
			if strings.Contains(lower, kw) {
				matches = append(matches, CategoryMatch{Category: entry.Category, Keyword: kw})
				break
			}
		}
	}
	return matches
}

// Categories returns only the matched categories
func (c *Classifier) Categories(text string) []domain.Category {
	matches := c.Classify(text)
	result := make([]domain.Category, len(matches))
	for i, m := range matches {
		result[i] = m.Category
	}
	return result
}

// Keywords returns every keyword known to the table
func (c *Classifier) Keywords() []string {
	var all []string
	for _, entry := range c.table {
		all = append(all, entry.Keywords...)
	}
	return all
}
