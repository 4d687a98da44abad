// Package importer loads a plain-text question bank into the question store.
//
// A bank is a sequence of blocks. Each block holds the question text, the
// lettered options and ends with a "Correct Answer: X" line.
package importer

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/ntwari02/proviQuiz/internal/models"
)

const correctMarker = "correct answer:"

var (
	parenMarker  = regexp.MustCompile(`\(\s*([a-dA-D])\s*\)`)
	dotMarker    = regexp.MustCompile(`\b([a-dA-D])\s*\.`)
	spacedMarker = regexp.MustCompile(`\b([a-dA-D])\s*\)`)

	firstOption  = regexp.MustCompile(`\ba\)`)
	optionMarker = regexp.MustCompile(`\b([a-dA-D])\)`)
	correctLine  = regexp.MustCompile(`(?i)correct answer:\s*([a-d])`)
)

// normalizeMarkers rewrites "(a)", "a." and "a )" to "a)".
func normalizeMarkers(text string) string {
	text = parenMarker.ReplaceAllString(text, "${1})")
	text = dotMarker.ReplaceAllString(text, "${1})")
	return spacedMarker.ReplaceAllString(text, "${1})")
}

func isCorrectLine(line string) bool {
	return strings.Contains(strings.ToLower(line), correctMarker)
}

// splitBlocks groups lines until a correct-answer line closes the block.
// Trailing lines without one are dropped.
func splitBlocks(r io.Reader) ([]string, error) {
	var (
		blocks  []string
		current []string
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			if len(current) > 0 && current[len(current)-1] != "" {
				current = append(current, "")
			}
			continue
		}
		current = append(current, line)
		if isCorrectLine(line) {
			if block := strings.TrimSpace(strings.Join(current, "\n")); block != "" {
				blocks = append(blocks, block)
			}
			current = nil
		}
	}
	return blocks, scanner.Err()
}

// parseBlock returns nil for blocks that lack a question, a correct letter or
// at least two non-empty options.
func parseBlock(block string) *models.Question {
	var lines []string
	for _, l := range strings.Split(block, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	idx := -1
	for i, l := range lines {
		if isCorrectLine(l) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	m := correctLine.FindStringSubmatch(lines[idx])
	if m == nil {
		return nil
	}
	correct := strings.ToLower(m[1])

	main := normalizeMarkers(strings.Join(lines[:idx], " "))
	start := firstOption.FindStringIndex(main)
	if start == nil {
		return nil
	}
	question := strings.TrimRight(strings.TrimSpace(main[:start[0]]), " :;-")
	if question == "" {
		return nil
	}

	options := parseOptions(main[start[0]:])
	filled := 0
	for _, key := range models.OptionKeys {
		if strings.TrimSpace(options.Get(key)) != "" {
			filled++
		}
	}
	if filled < 2 {
		return nil
	}

	return &models.Question{
		Question:   question,
		Options:    options,
		Correct:    correct,
		Difficulty: models.DifficultyMedium,
		Status:     models.StatusPublished,
	}
}

// parseOptions reads "a) ... b) ..." runs. A repeated letter keeps the last text.
func parseOptions(text string) models.Options {
	var opts models.Options
	marks := optionMarker.FindAllStringSubmatchIndex(text, -1)
	for i, mk := range marks {
		end := len(text)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		value := strings.TrimSpace(text[mk[1]:end])
		switch strings.ToLower(text[mk[2]:mk[3]]) {
		case "a":
			opts.A = value
		case "b":
			opts.B = value
		case "c":
			opts.C = value
		case "d":
			opts.D = value
		}
	}
	return opts
}

// Parse reads a bank and numbers the accepted questions from firstID on.
// Every question is tagged with source.
func Parse(r io.Reader, source string, firstID int) ([]*models.Question, error) {
	blocks, err := splitBlocks(r)
	if err != nil {
		return nil, err
	}
	questions := make([]*models.Question, 0, len(blocks))
	next := firstID
	for _, b := range blocks {
		q := parseBlock(b)
		if q == nil {
			continue
		}
		q.ID = next
		q.Source = source
		questions = append(questions, q)
		next++
	}
	return questions, nil
}
