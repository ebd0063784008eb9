package grading

import (
	"regexp"
	"strconv"
	"strings"
)

// RawAnswerKey is the sentinel key used when no question markers are found
// in the extracted text. The full text is preserved under this key so that
// unstructured submissions are never silently dropped.
const RawAnswerKey = "raw"

// QuestionRef identifies one question when splitting extracted text into
// per-question answers. Order matters: marker numbers are 1-indexed into
// this slice.
type QuestionRef struct {
	ID   string
	Text string
}

// Matches lines such as "Q1: ...", "Q2. ...", "Question 3) ..." and "Qn4 ...".
var questionMarker = regexp.MustCompile(`(?i)^(?:question|qn|q)\s*[.:]?\s*(\d+)\s*[.):\-]*\s*(.*)$`)

// ParseAnswers splits raw extracted text into a map of questionID to answer
// text. Lines are scanned sequentially; a marker line activates the Nth
// question and any trailing text on it becomes the first answer line.
// Non-marker lines append to the active answer. Out-of-range marker numbers
// are treated as continuation text. If no marker is ever recognised the whole
// text is returned under RawAnswerKey.
func ParseAnswers(text string, questions []QuestionRef) map[string]string {
	answers := make(map[string]string)
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return answers
	}

	currentID := ""
	var current []string

	flush := func() {
		if currentID == "" {
			return
		}
		answer := strings.TrimSpace(strings.Join(current, "\n"))
		if answer != "" {
			answers[currentID] = answer
		}
		current = current[:0]
	}

	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if match := questionMarker.FindStringSubmatch(line); match != nil {
			number, err := strconv.Atoi(match[1])
			if err == nil && number >= 1 && number <= len(questions) {
				flush()
				currentID = questions[number-1].ID
				if rest := strings.TrimSpace(match[2]); rest != "" {
					current = append(current, rest)
				}
				continue
			}
			// Out-of-range marker: fall through as continuation text.
		}

		if currentID != "" {
			current = append(current, line)
		}
	}
	flush()

	if len(answers) == 0 {
		answers[RawAnswerKey] = trimmed
	}

	return answers
}
