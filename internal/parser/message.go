package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MessageCleaner normalizes free text typed (or pasted) into the contact form
type MessageCleaner struct {
	markupRegex     *regexp.Regexp
	whitespaceRegex *regexp.Regexp
	newlineRegex    *regexp.Regexp
	invisibleRegex  *regexp.Regexp // zero-width spaces, soft hyphens and similar
}

// NewMessageCleaner creates a new message cleaner
func NewMessageCleaner() *MessageCleaner {
	return &MessageCleaner{
		markupRegex:     regexp.MustCompile(`(?i)</(?:p|div|b|i|u|em|strong|a|span|ul|ol|li|h[1-6]|table|tr|td)\s*>|<br\s*/?>`),
		whitespaceRegex: regexp.MustCompile(`[^\S\n]+`),
		newlineRegex:    regexp.MustCompile(`\n{3,}`),
		invisibleRegex:  regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}\x{00AD}\x{2060}-\x{2064}]+`),
	}
}

// ContainsMarkup reports whether text carries real HTML: a closing tag of a
// common element or a line break. Bare comparisons like x<y and z>w do not count.
func (c *MessageCleaner) ContainsMarkup(text string) bool {
	return c.markupRegex.MatchString(text)
}

// Clean returns plain text suitable for an email body. Text without markup
// keeps its line structure; HTML is flattened to its visible text.
func (c *MessageCleaner) Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if c.ContainsMarkup(text) {
		if flat, err := c.flatten(text); err == nil {
			text = flat
		}
	}

	text = c.invisibleRegex.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(c.whitespaceRegex.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")

	// Max one blank line between paragraphs
	text = c.newlineRegex.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

func (c *MessageCleaner) flatten(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, head, meta, link, iframe").Remove()

	doc.Find("p, div, br, h1, h2, h3, h4, h5, h6, li, tr").Each(func(i int, s *goquery.Selection) {
		s.PrependHtml("\n")
	})

	// Keep link targets visible, a pasted link is often the whole point
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href != "" && strings.TrimSpace(s.Text()) != href {
			s.AppendHtml(" (" + escapeText(href) + ")")
		}
	})

	return doc.Text(), nil
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
