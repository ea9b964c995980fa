// Package highlight marks user-chosen keywords inside question and option
// text.
package highlight

import (
	"html"
	"regexp"
	"sort"
	"strings"
)

// Segment is a run of text that either matches a keyword or not.
type Segment struct {
	Text  string
	Match bool
}

// Pattern compiles keywords into a case-insensitive literal alternation,
// longest keyword first so overlapping keywords prefer the longer match.
// It returns nil when there is nothing to match.
func Pattern(keywords []string) *regexp.Regexp {
	var kws []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			kws = append(kws, regexp.QuoteMeta(k))
		}
	}
	if len(kws) == 0 {
		return nil
	}
	sort.SliceStable(kws, func(i, j int) bool { return len(kws[i]) > len(kws[j]) })
	return regexp.MustCompile("(?i)(" + strings.Join(kws, "|") + ")")
}

// Split breaks text into alternating plain and matching segments. Joining
// the segment texts yields text unchanged.
func Split(text string, keywords []string) []Segment {
	re := Pattern(keywords)
	if re == nil || text == "" {
		if text == "" {
			return nil
		}
		return []Segment{{Text: text}}
	}

	var segs []Segment
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segs = append(segs, Segment{Text: text[last:loc[0]]})
		}
		segs = append(segs, Segment{Text: text[loc[0]:loc[1]], Match: true})
		last = loc[1]
	}
	if last < len(text) {
		segs = append(segs, Segment{Text: text[last:]})
	}
	return segs
}

// Render rebuilds text with every matching segment passed through mark.
func Render(text string, keywords []string, mark func(string) string) string {
	var b strings.Builder
	for _, s := range Split(text, keywords) {
		if s.Match {
			b.WriteString(mark(s.Text))
		} else {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// HTML escapes text and wraps matches in <mark> elements.
func HTML(text string, keywords []string) string {
	var b strings.Builder
	for _, s := range Split(text, keywords) {
		if s.Match {
			b.WriteString("<mark>")
			b.WriteString(html.EscapeString(s.Text))
			b.WriteString("</mark>")
		} else {
			b.WriteString(html.EscapeString(s.Text))
		}
	}
	return b.String()
}
