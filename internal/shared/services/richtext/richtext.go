// Package richtext handles the inline-formatted text stored in entry steps and
// solutions. Text is stored as sent; it is projected to plain text for
// matching and sanitized only when rendered for display.
package richtext

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	colorValue = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|rgb\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*\)|[a-zA-Z]{3,20})$`)
	lineBreaks = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li)>`)
	spaceRuns  = regexp.MustCompile(`[ \t\r\f\v]+`)

	displayPolicy = newDisplayPolicy()
	stripPolicy   = bluemonday.StrictPolicy()

	renderer = goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithUnsafe(),
		),
	)
)

// newDisplayPolicy admits what the entry editor toolbar produces (bold,
// italic, underline, colored spans) on top of the user-content defaults.
func newDisplayPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "font", "span")
	p.AllowStyles("color", "background-color").Matching(colorValue).OnElements("span", "font")
	p.AllowAttrs("color").Matching(colorValue).OnElements("font")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// PlainText strips all markup and decodes entities. Line-level tags become
// newlines so adjacent lines do not run together.
func PlainText(s string) string {
	s = lineBreaks.ReplaceAllString(s, "\n")
	s = html.UnescapeString(stripPolicy.Sanitize(s))
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.TrimSpace(spaceRuns.ReplaceAllString(l, " "))
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// IsBlank reports whether s has no visible text once markup is removed.
func IsBlank(s string) bool {
	return PlainText(s) == ""
}

// Render turns stored text into display HTML with bare URLs linkified.
func Render(s string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(s), &buf); err != nil {
		return "", fmt.Errorf("failed to render rich text: %w", err)
	}
	return strings.TrimSpace(displayPolicy.Sanitize(buf.String())), nil
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
