package examstore

import (
	"regexp"
	"strings"

	"github.com/ntwari02/proviQuiz/internal/models"
)

var leadingNumbering = regexp.MustCompile(`^\s*\d+\s*([.)\-:])\s*`)

// StripLeadingNumbering removes prefixes such as "268. ", "268) " or "268 - ".
func StripLeadingNumbering(text string) string {
	return strings.TrimSpace(leadingNumbering.ReplaceAllString(text, ""))
}

// FromAPI turns server questions into exam questions with options a-d,
// dropping repeated ids.
func FromAPI(questions []models.Question) []Question {
	seen := make(map[int]bool, len(questions))
	out := make([]Question, 0, len(questions))
	for _, q := range questions {
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true

		options := make([]AnswerOption, 0, len(models.OptionKeys))
		for _, key := range models.OptionKeys {
			options = append(options, AnswerOption{
				ID:        key,
				Text:      q.Options.Get(key),
				IsCorrect: key == q.Correct,
			})
		}

		eq := Question{
			ID:          q.ID,
			Text:        StripLeadingNumbering(q.Question),
			Options:     options,
			Explanation: q.Explanation,
		}
		if q.HasImage() {
			eq.ImageURL = *q.ImageURL
		}
		out = append(out, eq)
	}
	return out
}
