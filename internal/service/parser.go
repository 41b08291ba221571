package service

import (
	"strings"

	"github.com/pale-fire/chatpilot/internal/domain"
)

// ParsedReply is a reply split into the displayable body and the actionable
// suggestions extracted from it.
type ParsedReply struct {
	Body        string
	Suggestions []string
}

const (
	suggestionOpen  = "[Suggestion:"
	suggestionClose = "]"
)

// ParseReply extracts [Suggestion: ...] spans from a raw reply, left to right,
// non-greedy per span. Unmatched delimiters stay literal in the body. Error
// replies are returned verbatim with no suggestions. Parsing never fails.
func ParseReply(raw string) ParsedReply {
	if strings.HasPrefix(raw, domain.ErrorMarker) {
		return ParsedReply{Body: raw}
	}

	var body strings.Builder
	var suggestions []string

	rest := raw
	for {
		open := strings.Index(rest, suggestionOpen)
		if open < 0 {
			body.WriteString(rest)
			break
		}
		contentStart := open + len(suggestionOpen)
		closeOff := strings.Index(rest[contentStart:], suggestionClose)
		if closeOff < 0 {
			body.WriteString(rest)
			break
		}

		body.WriteString(rest[:open])
		if content := strings.TrimSpace(rest[contentStart : contentStart+closeOff]); content != "" {
			suggestions = append(suggestions, content)
		}
		rest = rest[contentStart+closeOff+len(suggestionClose):]
	}

	return ParsedReply{
		Body:        strings.TrimSpace(body.String()),
		Suggestions: suggestions,
	}
}
