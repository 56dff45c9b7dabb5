// Package locate aligns clause text from an external classifier with the
// glyph runs of one page's text layout.
//
// Classifier output never matches a page's internal run boundaries: layout
// engines split logical lines into many runs with inconsistent inter-run
// spacing, and the classifier normalizes whitespace on its side too.
// Matching therefore happens on a normalized form of the page text with
// all whitespace removed and letters case folded, while a parallel byte
// map records which glyph run contributed each normalized byte.
package locate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/tsawler/clauseview/model"
)

// MinClauseRunes is the shortest normalized clause accepted for matching.
// Anything shorter is too ambiguous and would light up boilerplate.
const MinClauseRunes = 3

// Normalize strips all whitespace and case-folds the remaining text.
// The result is used only for matching, never for display.
func Normalize(s string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if stripped == "" {
		return ""
	}
	return cases.Fold().String(stripped)
}

// Occurrence is one match of a clause within the normalized page text.
// Start and End are byte offsets into the normalized form, End exclusive.
type Occurrence struct {
	Start int
	End   int
}

// Index is a matchable view of one page's glyph snapshot. Building it
// walks the snapshot once; the index is immutable afterwards and is only
// valid for the snapshot it was built from.
type Index struct {
	normalized string
	owner      []int // owner[i] = glyph index that produced normalized byte i
}

// NewIndex builds the normalized page text and its byte-to-glyph map.
// Glyph items must be in content order. Whitespace-only items contribute
// no bytes and can never be matched.
func NewIndex(items []model.GlyphItem) *Index {
	var sb strings.Builder
	var owner []int
	fold := cases.Fold()

	for i, g := range items {
		stripped := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, g.Text)
		if stripped == "" {
			continue
		}
		folded := fold.String(stripped)
		sb.WriteString(folded)
		for j := 0; j < len(folded); j++ {
			owner = append(owner, i)
		}
	}

	return &Index{
		normalized: sb.String(),
		owner:      owner,
	}
}

// PageText returns the normalized page text the index matches against.
func (ix *Index) PageText() string {
	return ix.normalized
}

// Find returns all non-overlapping occurrences of clauseText in the
// normalized page text, in page order. Each subsequent search resumes at
// the previous match's end, so adjacent or duplicated phrasing is found
// once per natural occurrence. A clause whose normalized form is shorter
// than MinClauseRunes, or that does not occur, yields no occurrences;
// that is a silent miss, not an error.
func (ix *Index) Find(clauseText string) []Occurrence {
	needle := Normalize(clauseText)
	if utf8.RuneCountInString(needle) < MinClauseRunes {
		return nil
	}

	var occs []Occurrence
	from := 0
	for {
		i := strings.Index(ix.normalized[from:], needle)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(needle)
		occs = append(occs, Occurrence{Start: start, End: end})
		from = end
	}
	return occs
}

// Locate returns the indices of the glyph items intersected by any
// occurrence of clauseText, deduplicated and in content order. Indices
// refer to the slice the index was built from.
func (ix *Index) Locate(clauseText string) []int {
	occs := ix.Find(clauseText)
	if len(occs) == 0 {
		return nil
	}

	// Owners are nondecreasing along the page and occurrences arrive in
	// page order, so duplicates are always adjacent.
	var result []int
	last := -1
	for _, occ := range occs {
		for b := occ.Start; b < occ.End; b++ {
			idx := ix.owner[b]
			if idx != last {
				result = append(result, idx)
				last = idx
			}
		}
	}
	return result
}
