package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitMessageShortTextUnchanged(t *testing.T) {
	t.Parallel()

	parts := SplitMessage("short", 100)
	if len(parts) != 1 || parts[0] != "short" {
		t.Fatalf("unexpected parts: %v", parts)
	}
}

func TestSplitMessageRespectsLimit(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("a", 250)
	parts := SplitMessage(text, 100)
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(parts))
	}
	var total string
	for _, p := range parts {
		if utf8.RuneCountInString(p) > 100 {
			t.Fatalf("part exceeds limit: %d runes", utf8.RuneCountInString(p))
		}
		total += p
	}
	if total != text {
		t.Fatal("parts do not reassemble the original text")
	}
}

func TestSplitMessagePrefersNewlines(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x", 80) + "\n" + strings.Repeat("y", 80)
	parts := SplitMessage(text, 100)
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if !strings.HasSuffix(parts[0], "\n") {
		t.Fatalf("first part should end at the newline, got %q", parts[0][len(parts[0])-10:])
	}
}

func TestFixMarkdownClosesCodeBlocks(t *testing.T) {
	t.Parallel()

	fixed := FixMarkdown("```go\nfunc main() {}")
	if strings.Count(fixed, "```")%2 != 0 {
		t.Fatalf("code block left unclosed: %q", fixed)
	}
}

func TestFixMarkdownClosesInlineCode(t *testing.T) {
	t.Parallel()

	fixed := FixMarkdown("use `fmt.Println")
	if strings.Count(fixed, "`")%2 != 0 {
		t.Fatalf("inline code left unclosed: %q", fixed)
	}
}

func TestFlattenHTMLPlainTextPassesThrough(t *testing.T) {
	t.Parallel()

	in := "no markup here, just 1 < 2 maybe"
	if got := FlattenHTML(in); got != in {
		t.Fatalf("plain text should pass through, got %q", got)
	}
}

func TestFlattenHTMLStripsTags(t *testing.T) {
	t.Parallel()

	got := FlattenHTML("<p>first line</p><p>second <b>bold</b> line</p>")
	if strings.Contains(got, "<") {
		t.Fatalf("tags survived flattening: %q", got)
	}
	if !strings.Contains(got, "first line") || !strings.Contains(got, "second bold line") {
		t.Fatalf("text content lost: %q", got)
	}
	if !strings.Contains(got, "\n") {
		t.Fatalf("block boundary should become a line break: %q", got)
	}
}

func TestFlattenHTMLConvertsBreaks(t *testing.T) {
	t.Parallel()

	got := FlattenHTML("line one<br>line two")
	if got != "line one\nline two" {
		t.Fatalf("unexpected flattening: %q", got)
	}
}
