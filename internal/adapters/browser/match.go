package browser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// findControl returns the first visible, enabled candidate matching the
// earliest pattern. Patterns are tried in order; within a pattern,
// candidates are tried in document order.
func findControl(doc *goquery.Document, patterns []string) (*goquery.Selection, bool) {
	candidates := doc.Find(candidateSelect)
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		var found *goquery.Selection
		candidates.EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if !strings.Contains(label(s), p) || !isVisible(s) || isDisabled(s) {
				return true
			}
			found = s
			return false
		})
		if found != nil {
			return found, true
		}
	}
	return nil, false
}

// label is the normalised, lower-cased text a user would read on the control.
func label(s *goquery.Selection) string {
	var parts []string
	if goquery.NodeName(s) == "input" {
		parts = append(parts, s.AttrOr("value", ""))
	} else {
		parts = append(parts, s.Text())
	}
	parts = append(parts, s.AttrOr("aria-label", ""), s.AttrOr("title", ""))
	return strings.ToLower(strings.Join(strings.Fields(strings.Join(parts, " ")), " "))
}

func isVisible(s *goquery.Selection) bool {
	if strings.EqualFold(s.AttrOr("type", ""), "hidden") {
		return false
	}
	for n := s; n.Length() > 0; n = n.Parent() {
		if goquery.NodeName(n) == "#document" {
			break
		}
		if hiddenNode(n) {
			return false
		}
	}
	return true
}

func hiddenNode(n *goquery.Selection) bool {
	if _, ok := n.Attr("hidden"); ok {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(n.AttrOr("aria-hidden", "")), "true") {
		return true
	}
	style := strings.ToLower(strings.ReplaceAll(n.AttrOr("style", ""), " ", ""))
	return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
}

func isDisabled(s *goquery.Selection) bool {
	if _, ok := s.Attr("disabled"); ok {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(s.AttrOr("aria-disabled", "")), "true") {
		return true
	}
	return s.Closest("fieldset[disabled]").Length() > 0
}
