// Package placeholder finds interpolation placeholders in extracted messages
// and checks that the forms of one call agree on them.
package placeholder

import (
	"regexp"
	"sort"

	"i18n-extract/internal/extract"
)

// patterns detect placeholders used by common JavaScript i18n helpers.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\{[a-zA-Z_][a-zA-Z0-9_]*\}`),         // ${value}
	regexp.MustCompile(`%\([a-zA-Z_][a-zA-Z0-9_]*\)[sd]`),      // %(name)s
	regexp.MustCompile(`\{[a-zA-Z0-9_]+\}`),                    // {0}, {name}
	regexp.MustCompile(`%[-+0-9]*\.?[0-9]*[dsfieEgGxXoubcpj]`), // %d, %s, %2d
	regexp.MustCompile(`%%`),                                   // escaped percent
}

type match struct {
	start, end int
	value      string
}

// Find returns the placeholders in text in order of appearance. Overlapping
// matches keep the earliest, then longest. Escaped percent signs are not
// placeholders and are omitted.
func Find(text string) []string {
	var all []match
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			all = append(all, match{start: loc[0], end: loc[1], value: text[loc[0]:loc[1]]})
		}
	}
	if len(all) == 0 {
		return nil
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].end-all[i].start > all[j].end-all[j].start
	})

	var found []string
	lastEnd := -1
	for _, m := range all {
		if m.start < lastEnd {
			continue
		}
		lastEnd = m.end
		if m.value != "%%" {
			found = append(found, m.value)
		}
	}
	return found
}

// Mismatch reports a call whose last resolved form lacks a placeholder that
// an earlier form uses.
type Mismatch struct {
	File    string
	Line    int
	Pickup  string
	Arg     int
	Missing []string
}

// Check groups msgs into calls and compares every resolved form against the
// call's last resolved form, which is normally the plural. A singular form may
// omit placeholders the plural uses, but not the other way round.
//
// msgs must be in the order extract.Scan produces: one call's arguments are
// contiguous and ascending.
func Check(msgs []extract.Message) []Mismatch {
	var mismatches []Mismatch
	for _, call := range calls(msgs) {
		var resolved []extract.Message
		for _, m := range call {
			if !m.Unresolved {
				resolved = append(resolved, m)
			}
		}
		if len(resolved) < 2 {
			continue
		}

		last := resolved[len(resolved)-1]
		have := make(map[string]bool)
		for _, p := range Find(last.Text) {
			have[p] = true
		}

		for _, m := range resolved[:len(resolved)-1] {
			var missing []string
			for _, p := range Find(m.Text) {
				if !have[p] {
					missing = append(missing, p)
				}
			}
			if len(missing) > 0 {
				mismatches = append(mismatches, Mismatch{
					File:    m.File,
					Line:    m.Line,
					Pickup:  m.Pickup,
					Arg:     m.Arg,
					Missing: missing,
				})
			}
		}
	}
	return mismatches
}

// calls splits msgs at every point where a new call starts.
func calls(msgs []extract.Message) [][]extract.Message {
	var groups [][]extract.Message
	start := 0
	for i := 1; i <= len(msgs); i++ {
		if i < len(msgs) && sameCall(msgs[i-1], msgs[i]) {
			continue
		}
		groups = append(groups, msgs[start:i])
		start = i
	}
	return groups
}

func sameCall(prev, next extract.Message) bool {
	return prev.File == next.File &&
		prev.Line == next.Line &&
		prev.Pickup == next.Pickup &&
		prev.Arg < next.Arg
}
