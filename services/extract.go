package services

import (
	"encoding/json"
	"errors"
	"strings"

	"careerpath-backend/models/recommend"
)

// ErrUnparseable means no JSON object could be recovered from the model
// output.
var ErrUnparseable = errors.New("failed to parse AI response as JSON")

// ExtractArtifact recovers the artifact object from free-form model output.
// The model is instructed to emit pure JSON but commonly wraps it in prose
// or a fenced code block, so two attempts are made: the whole text, then the
// span from the first '{' to the last '}'. There is no further fallback.
func ExtractArtifact(content string) (*recommend.Artifact, error) {
	var artifact recommend.Artifact

	if err := json.Unmarshal([]byte(content), &artifact); err == nil {
		return &artifact, nil
	}

	span, ok := braceSpan(content)
	if !ok {
		return nil, ErrUnparseable
	}
	if err := json.Unmarshal([]byte(span), &artifact); err != nil {
		return nil, ErrUnparseable
	}
	return &artifact, nil
}

// braceSpan returns the substring from the first '{' through the last '}'.
func braceSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}
