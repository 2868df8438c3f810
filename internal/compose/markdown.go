package compose

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"voiceblog/internal/services/llm"
)

var (
	errNoTitle = errors.New("post has no level-one title")
	errNoBody  = errors.New("post has no content after the title")
)

var markdownParser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

var titleCaser = cases.Title(language.English)

// Outline summarises the structure of a post.
type Outline struct {
	Title    string
	Sections []string
	Blocks   int
}

// Inspect parses markdown and returns its outline. The first block must be
// an H1 heading and at least one block must follow it.
func Inspect(markdown string) (Outline, error) {
	source := []byte(markdown)
	doc := markdownParser.Parse(text.NewReader(source))

	var outline Outline
	first := doc.FirstChild()
	heading, ok := first.(*ast.Heading)
	if !ok || heading.Level != 1 {
		return outline, errNoTitle
	}
	outline.Title = strings.TrimSpace(inlineText(heading, source))
	if outline.Title == "" {
		return outline, errNoTitle
	}
	for node := first.NextSibling(); node != nil; node = node.NextSibling() {
		outline.Blocks++
		if h, ok := node.(*ast.Heading); ok && h.Level == 2 {
			outline.Sections = append(outline.Sections, strings.TrimSpace(inlineText(h, source)))
		}
	}
	if outline.Blocks == 0 {
		return outline, errNoBody
	}
	return outline, nil
}

func inlineText(node ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// Normalize cleans a model reply into a post: code fences around the whole
// reply are removed, any preamble before the first H1 is dropped and a title
// written in a single case is title-cased.
func Normalize(reply string) string {
	body := strings.TrimSpace(llm.StripCodeFence(strings.TrimSpace(reply)))
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "# ") {
			lines = lines[i:]
			break
		}
	}
	if len(lines) > 0 && strings.HasPrefix(lines[0], "# ") {
		title := strings.TrimSpace(strings.TrimPrefix(lines[0], "# "))
		if singleCase(title) {
			title = titleCaser.String(title)
		}
		lines[0] = "# " + title
	}
	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}

// maxSynthesizedTitleWords bounds a title derived from the opening sentence.
const maxSynthesizedTitleWords = 8

// EnsureTitle gives post a level-one title when the model left it out. A
// leading lower-level heading is promoted; otherwise the opening sentence of the
// first line, capped at eight words, becomes the title. It reports whether post was changed. Empty
// posts are returned untouched.
func EnsureTitle(post string) (string, bool) {
	body := strings.TrimSpace(post)
	if body == "" {
		return post, false
	}
	source := []byte(body)
	if heading, ok := markdownParser.Parse(text.NewReader(source)).FirstChild().(*ast.Heading); ok {
		if heading.Level == 1 {
			return post, false
		}
		first, rest, _ := strings.Cut(body, "\n")
		title := strings.TrimSpace(strings.TrimLeft(first, "#"))
		if title != "" {
			return "# " + title + "\n" + rest + "\n", true
		}
	}

	first, _, _ := strings.Cut(body, "\n")
	words := strings.FieldsFunc(first, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune("*_`#>[]", r)
	})
	var picked []string
	for _, w := range words {
		if len(picked) == maxSynthesizedTitleWords {
			break
		}
		picked = append(picked, w)
		if strings.ContainsAny(w[len(w)-1:], ".!?") {
			break
		}
	}
	title := strings.TrimRight(strings.Join(picked, " "), ".,;:!?")
	if title == "" {
		return post, false
	}
	return "# " + titleCaser.String(title) + "\n\n" + body + "\n", true
}

func singleCase(s string) bool {
	var upper, lower int
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper++
		case unicode.IsLower(r):
			lower++
		}
	}
	return upper == 0 || lower == 0
}

// ValidatePost checks that the file at path is a post Inspect accepts.
func ValidatePost(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := Inspect(string(data)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
