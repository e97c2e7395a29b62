package application

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const maxLength = 200

// MarkdownProcessingResult contains the results of processing a markdown document
type MarkdownProcessingResult struct {
	Title       string
	Snippet     string
	HTMLContent []byte
}

// responsiveImageTransformer gives every image the responsive style so
// rendered markdown matches normalized HTML content.
type responsiveImageTransformer struct{}

func (t *responsiveImageTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}

		style := responsiveImageStyle
		if existing, found := img.AttributeString("style"); found {
			if s, isBytes := existing.([]byte); isBytes {
				style = mergeStyle(string(s))
			} else if s, isString := existing.(string); isString {
				style = mergeStyle(s)
			}
		}
		img.SetAttributeString("style", []byte(style))

		return ast.WalkContinue, nil
	})
}

// MarkdownRenderer defines the interface for converting markdown to HTML.
type MarkdownRenderer interface {
	Render(markdown []byte) (*MarkdownProcessingResult, error)
}

type MarkdownRendererImpl struct {
	renderer goldmark.Markdown
}

func NewMarkdownRenderer() MarkdownRenderer {
	renderer := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&responsiveImageTransformer{}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)

	return &MarkdownRendererImpl{
		renderer: renderer,
	}
}

func (r *MarkdownRendererImpl) Render(markdown []byte) (*MarkdownProcessingResult, error) {
	var buf bytes.Buffer
	if err := r.renderer.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	return &MarkdownProcessingResult{
		Title:       ExtractPostTitle(markdown),
		Snippet:     extractSnippet(markdown),
		HTMLContent: buf.Bytes(),
	}, nil
}

// ExtractPostTitle returns the text of a leading "# " heading, or "" when the
// document does not start with one.
func ExtractPostTitle(markdown []byte) string {
	lines := strings.SplitN(string(markdown), "\n", 2)
	if len(lines) == 0 {
		return ""
	}

	firstLine := strings.TrimSpace(lines[0])
	title, found := strings.CutPrefix(firstLine, "# ")
	if !found {
		return ""
	}

	return strings.TrimSpace(title)
}

func extractSnippet(markdown []byte) string {
	lines := strings.Split(string(markdown), "\n")
	var paragraphLines []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Skip headings before we find content
		if strings.HasPrefix(trimmed, "#") {
			if len(paragraphLines) > 0 {
				break
			}
			continue
		}

		if trimmed == "" {
			if len(paragraphLines) > 0 {
				break // End of first paragraph
			}
			continue
		}

		// Stop at code blocks, horizontal rules, lists, tables, images
		if strings.HasPrefix(trimmed, "```") ||
			strings.HasPrefix(trimmed, "---") ||
			strings.HasPrefix(trimmed, "***") ||
			strings.HasPrefix(trimmed, "- ") ||
			strings.HasPrefix(trimmed, "* ") ||
			strings.HasPrefix(trimmed, "+ ") ||
			strings.HasPrefix(trimmed, "|") ||
			strings.HasPrefix(trimmed, "![") {
			if len(paragraphLines) > 0 {
				break
			}
			continue
		}

		paragraphLines = append(paragraphLines, trimmed)
	}

	if len(paragraphLines) == 0 {
		return ""
	}

	snippet := strings.Join(paragraphLines, " ")

	if len(snippet) > maxLength {
		snippet = snippet[:maxLength]
		if lastSpace := strings.LastIndexAny(snippet, " \t"); lastSpace > 0 {
			snippet = snippet[:lastSpace]
		}
		snippet += "..."
	}

	return snippet
}
