package rag

import (
	"regexp"
	"strings"
)

// Reasoning models wrap their chain of thought in <think> tags; users should
// only see the final answer. Non-greedy so multiple blocks are each removed.
var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// sanitize strips reasoning blocks and trims surrounding whitespace. An
// unterminated <think> tag is left in place rather than swallowing the rest
// of the answer.
func sanitize(answer string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(answer, ""))
}
