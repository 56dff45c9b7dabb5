package pdfdoc

import "strings"

// Glyph advance widths in thousandths of an em, for the standard text
// faces. Content streams reference fonts by resource name, and without
// parsing the embedded font program the scanner picks a table from the
// name itself: monospace names map to Courier's fixed advance, serif
// names to Times, everything else to Helvetica. Unknown characters fall
// back to a half em, which keeps run lengths usable for highlighting
// even when the guess is wrong.

const (
	defaultGlyphWidth = 500.0
	courierGlyphWidth = 600.0
)

// stringWidth sums the advance widths of a run, in thousandths of an em.
func stringWidth(fontName, text string) float64 {
	table := widthsFor(fontName)
	if table == nil {
		count := 0
		for range text {
			count++
		}
		return float64(count) * courierGlyphWidth
	}

	total := 0.0
	for _, r := range text {
		if w, ok := table[r]; ok {
			total += w
		} else {
			total += defaultGlyphWidth
		}
	}
	return total
}

// widthsFor picks a width table by font name; nil means monospaced.
func widthsFor(fontName string) map[rune]float64 {
	name := strings.ToLower(fontName)
	switch {
	case strings.Contains(name, "courier"), strings.Contains(name, "mono"):
		return nil
	case strings.Contains(name, "times"), strings.Contains(name, "serif"):
		return timesWidths
	default:
		return helveticaWidths
	}
}

// Helvetica advance widths for the printable ASCII range.
var helveticaWidths = map[rune]float64{
	' ':  278,
	'!':  278,
	'"':  355,
	'#':  556,
	'$':  556,
	'%':  889,
	'&':  667,
	'\'': 191,
	'(':  333,
	')':  333,
	'*':  389,
	'+':  584,
	',':  278,
	'-':  333,
	'.':  278,
	'/':  278,
	'0':  556,
	'1':  556,
	'2':  556,
	'3':  556,
	'4':  556,
	'5':  556,
	'6':  556,
	'7':  556,
	'8':  556,
	'9':  556,
	':':  278,
	';':  278,
	'<':  584,
	'=':  584,
	'>':  584,
	'?':  556,
	'@':  1015,
	'A':  667,
	'B':  667,
	'C':  722,
	'D':  722,
	'E':  667,
	'F':  611,
	'G':  778,
	'H':  722,
	'I':  278,
	'J':  500,
	'K':  667,
	'L':  556,
	'M':  833,
	'N':  722,
	'O':  778,
	'P':  667,
	'Q':  778,
	'R':  722,
	'S':  667,
	'T':  611,
	'U':  722,
	'V':  667,
	'W':  944,
	'X':  667,
	'Y':  667,
	'Z':  611,
	'[':  278,
	'\\': 278,
	']':  278,
	'^':  469,
	'_':  556,
	'`':  333,
	'a':  556,
	'b':  556,
	'c':  500,
	'd':  556,
	'e':  556,
	'f':  278,
	'g':  556,
	'h':  556,
	'i':  222,
	'j':  222,
	'k':  500,
	'l':  222,
	'm':  833,
	'n':  556,
	'o':  556,
	'p':  556,
	'q':  556,
	'r':  333,
	's':  500,
	't':  278,
	'u':  556,
	'v':  500,
	'w':  722,
	'x':  500,
	'y':  500,
	'z':  500,
	'{':  334,
	'|':  260,
	'}':  334,
	'~':  584,
}

// Times-Roman advance widths for letters and the space; other
// characters take the default.
var timesWidths = map[rune]float64{
	' ': 250,
	'A': 722,
	'B': 667,
	'C': 667,
	'D': 722,
	'E': 611,
	'F': 556,
	'G': 722,
	'H': 722,
	'I': 333,
	'J': 389,
	'K': 722,
	'L': 611,
	'M': 889,
	'N': 722,
	'O': 722,
	'P': 556,
	'Q': 722,
	'R': 667,
	'S': 556,
	'T': 611,
	'U': 722,
	'V': 722,
	'W': 944,
	'X': 722,
	'Y': 722,
	'Z': 611,
	'a': 444,
	'b': 500,
	'c': 444,
	'd': 500,
	'e': 444,
	'f': 333,
	'g': 500,
	'h': 500,
	'i': 278,
	'j': 278,
	'k': 500,
	'l': 278,
	'm': 778,
	'n': 500,
	'o': 500,
	'p': 500,
	'q': 500,
	'r': 333,
	's': 389,
	't': 278,
	'u': 500,
	'v': 500,
	'w': 722,
	'x': 500,
	'y': 500,
	'z': 444,
}
