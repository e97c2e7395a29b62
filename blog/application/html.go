package application

import (
	"regexp"
	"strings"
)

const responsiveImageStyle = "max-width:100%;height:auto;"

var (
	blockTagPattern  = regexp.MustCompile(`(?i)<(?:p|div|h[1-6]|ul|ol|li|blockquote|pre|table|figure|section|article|hr)\b`)
	imgTagPattern    = regexp.MustCompile(`(?i)<img\b[^>]*>`)
	styleAttrPattern = regexp.MustCompile(`(?i)\sstyle\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// looksLikeHTML reports whether content carries at least one block-level tag.
// Anything else is treated as markdown.
func looksLikeHTML(content string) bool {
	return blockTagPattern.MatchString(content)
}

// normalizeImages makes every <img> tag carry the responsive style, merging
// with an existing style attribute. Everything outside img tags is untouched.
func normalizeImages(content string) string {
	return imgTagPattern.ReplaceAllStringFunc(content, func(tag string) string {
		if loc := styleAttrPattern.FindStringSubmatchIndex(tag); loc != nil {
			var existing string
			if loc[2] >= 0 {
				existing = tag[loc[2]:loc[3]]
			} else {
				existing = tag[loc[4]:loc[5]]
			}
			return tag[:loc[0]] + ` style="` + mergeStyle(existing) + `"` + tag[loc[1]:]
		}

		end := len(tag) - 1
		if strings.HasSuffix(tag, "/>") {
			end = len(tag) - 2
			for end > 0 && tag[end-1] == ' ' {
				end--
			}
		}
		suffix := tag[end:]
		if suffix == "/>" {
			suffix = " />"
		}
		return tag[:end] + ` style="` + responsiveImageStyle + `"` + suffix
	})
}

// mergeStyle adds the responsive declarations to style unless it already
// constrains max-width.
func mergeStyle(style string) string {
	style = strings.TrimSpace(style)
	if strings.Contains(strings.ToLower(style), "max-width") {
		return style
	}
	if style == "" {
		return responsiveImageStyle
	}
	if !strings.HasSuffix(style, ";") {
		style += ";"
	}
	return style + responsiveImageStyle
}
