package chat

import (
	"regexp"
	"strings"
)

// followUpPrefix matches the list enumeration the model prepends to each
// suggestion: "1. ", "2) ", "- ", "* ".
var followUpPrefix = regexp.MustCompile(`^\s*(?:\d+\s*[.)]\s*|[-*]\s+)`)

// maxFollowUps caps the suggestions returned per answer. The prompt asks
// for exactly four; an over-delivering model is truncated, not trusted.
const maxFollowUps = 4

// parseFollowUps turns a newline-delimited numbered list into bare
// questions, at most maxFollowUps of them. Enumeration prefixes and blank
// lines are stripped; trailing punctuation is part of the question and kept.
func parseFollowUps(raw string) []string {
	questions := []string{}
	for _, line := range strings.Split(raw, "\n") {
		q := strings.TrimSpace(line)
		q = followUpPrefix.ReplaceAllString(q, "")
		q = strings.TrimSpace(q)
		if q != "" {
			questions = append(questions, q)
			if len(questions) == maxFollowUps {
				break
			}
		}
	}
	return questions
}
