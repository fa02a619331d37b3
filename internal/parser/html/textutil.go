// Package html reduces HTML-bearing description cells to plain text.
//
//   - Text: parse with goquery and return the visible text.
//   - StripHTML: drop <...> sequences without parsing (fallback).
//   - CollapseWhitespace: reduce runs of whitespace to a single space.
package html

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockTags start a new word when their text is joined.
var blockTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "tr": true, "td": true,
}

// Text returns the visible text of s with entities decoded, script and style
// content dropped and whitespace collapsed. Plain text without markup or
// entities only has its whitespace collapsed.
func Text(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return CollapseWhitespace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return NormalizeText(s)
	}

	var b strings.Builder
	b.Grow(len(s))
	var walk func(sel *goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, c *goquery.Selection) {
			name := goquery.NodeName(c)
			switch {
			case name == "#text":
				b.WriteString(c.Text())
				return
			case strings.HasPrefix(name, "#"), name == "script", name == "style":
				return
			}
			if blockTags[name] {
				b.WriteByte(' ')
			}
			walk(c)
			if blockTags[name] {
				b.WriteByte(' ')
			}
		})
	}
	walk(doc.Find("body"))

	return CollapseWhitespace(strings.ReplaceAll(b.String(), "\u00a0", " "))
}

// StripHTML removes tag sequences of the form <...> from s, delimiters
// included. It is a heuristic for snippets whose attributes contain no angle
// brackets.
func StripHTML(s string) string {
	if s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	inTag := false
	for _, r := range s {
		switch r {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// CollapseWhitespace replaces runs of ASCII whitespace with a single space
// and trims the result.
func CollapseWhitespace(s string) string {
	if s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	seenSpace := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
			if !seenSpace {
				b.WriteByte(' ')
				seenSpace = true
			}
		default:
			b.WriteRune(r)
			seenSpace = false
		}
	}

	return strings.TrimSpace(b.String())
}

// NormalizeText strips tags and collapses whitespace.
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	return CollapseWhitespace(StripHTML(s))
}
