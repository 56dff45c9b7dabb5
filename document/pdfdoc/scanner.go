package pdfdoc

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/tsawler/clauseview/model"
)

// Content-stream operand kinds the layout scanner keeps: numbers as
// float64, strings as their raw bytes, names without the leading slash,
// arrays as nested slices.
type (
	pdfString []byte
	pdfName   string
)

// opToken marks a scanned operator keyword.
type opToken string

// scanTextLayout walks a page content stream and returns one glyph item
// per text-showing operation, in content order. Operators outside the
// text and transform sets are consumed and ignored. Truncated or
// malformed trailing bytes end the scan; whatever was recovered up to
// that point is returned.
func scanTextLayout(ctx context.Context, data []byte) ([]model.GlyphItem, error) {
	s := newLayoutScanner(data)
	var operands []interface{}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, ok := s.next()
		if !ok {
			break
		}
		if op, isOp := tok.(opToken); isOp {
			s.apply(string(op), operands)
			operands = operands[:0]
			continue
		}
		operands = append(operands, tok)
	}
	return s.items, nil
}

// layoutScanner tracks just enough graphics and text state to place
// each text run: the CTM with its q/Q stack, the text matrices, and the
// sizing parameters that scale them.
type layoutScanner struct {
	data []byte
	pos  int

	ctm   model.Matrix
	stack []savedState
	text  textState
	items []model.GlyphItem
}

type savedState struct {
	ctm  model.Matrix
	text textState
}

type textState struct {
	fontName     string
	fontSize     float64
	charSpacing  float64
	wordSpacing  float64
	horizScaling float64 // percent
	leading      float64
	rise         float64
	matrix       model.Matrix
	lineMatrix   model.Matrix
}

func newLayoutScanner(data []byte) *layoutScanner {
	return &layoutScanner{
		data: data,
		ctm:  model.Identity(),
		text: textState{
			fontSize:     12,
			horizScaling: 100,
			matrix:       model.Identity(),
			lineMatrix:   model.Identity(),
		},
	}
}

// ============================================================================
// Operator application
// ============================================================================

func (s *layoutScanner) apply(op string, operands []interface{}) {
	switch op {
	// Graphics state
	case "q":
		s.stack = append(s.stack, savedState{ctm: s.ctm, text: s.text})
	case "Q":
		if n := len(s.stack); n > 0 {
			saved := s.stack[n-1]
			s.stack = s.stack[:n-1]
			s.ctm = saved.ctm
			s.text = saved.text
		}
	case "cm":
		if m, ok := matrixOperands(operands); ok {
			s.ctm = m.Multiply(s.ctm)
		}
	case "BI":
		s.skipInlineImage()

	// Text object & state
	case "BT":
		s.text.matrix = model.Identity()
		s.text.lineMatrix = model.Identity()
	case "Tf":
		if len(operands) == 2 {
			if name, ok := operands[0].(pdfName); ok {
				s.text.fontName = string(name)
			}
			if size, ok := toFloat(operands[1]); ok {
				s.text.fontSize = size
			}
		}
	case "Tc":
		if v, ok := singleFloat(operands); ok {
			s.text.charSpacing = v
		}
	case "Tw":
		if v, ok := singleFloat(operands); ok {
			s.text.wordSpacing = v
		}
	case "Tz":
		if v, ok := singleFloat(operands); ok {
			s.text.horizScaling = v
		}
	case "TL":
		if v, ok := singleFloat(operands); ok {
			s.text.leading = v
		}
	case "Ts":
		if v, ok := singleFloat(operands); ok {
			s.text.rise = v
		}

	// Text positioning
	case "Tm":
		if m, ok := matrixOperands(operands); ok {
			s.text.matrix = m
			s.text.lineMatrix = m
		}
	case "Td":
		if len(operands) == 2 {
			tx, ok1 := toFloat(operands[0])
			ty, ok2 := toFloat(operands[1])
			if ok1 && ok2 {
				s.translateLine(tx, ty)
			}
		}
	case "TD":
		if len(operands) == 2 {
			tx, ok1 := toFloat(operands[0])
			ty, ok2 := toFloat(operands[1])
			if ok1 && ok2 {
				s.text.leading = -ty
				s.translateLine(tx, ty)
			}
		}
	case "T*":
		s.translateLine(0, -s.text.leading)

	// Text showing
	case "Tj":
		if len(operands) == 1 {
			if str, ok := operands[0].(pdfString); ok {
				s.showText(str)
			}
		}
	case "TJ":
		if len(operands) == 1 {
			if arr, ok := operands[0].([]interface{}); ok {
				s.showTextArray(arr)
			}
		}
	case "'":
		s.translateLine(0, -s.text.leading)
		if len(operands) == 1 {
			if str, ok := operands[0].(pdfString); ok {
				s.showText(str)
			}
		}
	case "\"":
		if len(operands) == 3 {
			if v, ok := toFloat(operands[0]); ok {
				s.text.wordSpacing = v
			}
			if v, ok := toFloat(operands[1]); ok {
				s.text.charSpacing = v
			}
			s.translateLine(0, -s.text.leading)
			if str, ok := operands[2].(pdfString); ok {
				s.showText(str)
			}
		}
	}
}

// translateLine moves the line matrix by (tx, ty) in line space and
// restarts the text matrix from it (the Td family of operators).
func (s *layoutScanner) translateLine(tx, ty float64) {
	s.text.lineMatrix = model.Translate(tx, ty).Multiply(s.text.lineMatrix)
	s.text.matrix = s.text.lineMatrix
}

// showText emits one glyph item for a text run and advances the text
// matrix by the run's displacement.
func (s *layoutScanner) showText(raw pdfString) {
	text := decodeText(raw)
	advance := s.advanceFor(text)

	if text != "" {
		placement := s.text.matrix.Multiply(s.ctm)
		s.items = append(s.items, model.GlyphItem{
			Text:      text,
			Transform: s.renderMatrix(),
			Width:     advance * placement.HorizontalMagnitude(),
		})
	}

	s.text.matrix = model.Translate(advance, 0).Multiply(s.text.matrix)
}

// showTextArray handles TJ: alternating runs and kerning adjustments in
// thousandths of the font size.
func (s *layoutScanner) showTextArray(arr []interface{}) {
	for _, item := range arr {
		switch v := item.(type) {
		case pdfString:
			s.showText(v)
		case float64:
			shift := -v / 1000 * s.text.fontSize * s.text.horizScaling / 100
			s.text.matrix = model.Translate(shift, 0).Multiply(s.text.matrix)
		}
	}
}

// renderMatrix composes the glyph placement: the sizing parameters,
// then the text matrix, then the CTM.
func (s *layoutScanner) renderMatrix() model.Matrix {
	sizing := model.Matrix{
		s.text.fontSize * s.text.horizScaling / 100, 0,
		0, s.text.fontSize,
		0, s.text.rise,
	}
	return sizing.Multiply(s.text.matrix).Multiply(s.ctm)
}

// advanceFor computes a run's baseline displacement in text space:
// glyph widths at the current size plus character and word spacing,
// all under horizontal scaling.
func (s *layoutScanner) advanceFor(text string) float64 {
	w := stringWidth(s.text.fontName, text) / 1000 * s.text.fontSize
	var chars, spaces float64
	for _, r := range text {
		chars++
		if r == ' ' {
			spaces++
		}
	}
	total := w + chars*s.text.charSpacing + spaces*s.text.wordSpacing
	return total * s.text.horizScaling / 100
}

// decodeText maps raw string bytes to Unicode. Strings with a UTF-16BE
// byte order mark are decoded as such; everything else is treated as
// Latin-1, which tracks the standard single-byte encodings closely
// enough for matching.
func decodeText(raw []byte) string {
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		return decodeUTF16BE(raw[2:])
	}
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, b := range raw {
		sb.WriteRune(rune(b))
	}
	return sb.String()
}

func decodeUTF16BE(raw []byte) string {
	units := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
	}
	return string(utf16.Decode(units))
}

// ============================================================================
// Tokenizer
// ============================================================================

// next returns the next operand or operator token. Comments, dicts and
// stray delimiters are skipped.
func (s *layoutScanner) next() (interface{}, bool) {
	for {
		s.skipSpace()
		if s.pos >= len(s.data) {
			return nil, false
		}

		c := s.data[s.pos]
		switch {
		case c == '%':
			s.skipComment()
		case c == '/':
			return s.scanName(), true
		case c == '(':
			return s.scanString(), true
		case c == '<':
			if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
				s.skipDict()
				continue
			}
			return s.scanHexString(), true
		case c == '[':
			return s.scanArray(), true
		case c == ']' || c == ')' || c == '>' || c == '{' || c == '}':
			s.pos++
		case c == '+' || c == '-' || c == '.' || isDigit(c):
			return s.scanNumber(), true
		default:
			return opToken(s.scanOperator()), true
		}
	}
}

func (s *layoutScanner) skipSpace() {
	for s.pos < len(s.data) && isSpace(s.data[s.pos]) {
		s.pos++
	}
}

func (s *layoutScanner) skipComment() {
	for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
		s.pos++
	}
}

func (s *layoutScanner) scanNumber() float64 {
	start := s.pos
	if s.data[s.pos] == '+' || s.data[s.pos] == '-' {
		s.pos++
	}
	for s.pos < len(s.data) && (s.data[s.pos] == '.' || isDigit(s.data[s.pos])) {
		s.pos++
	}
	v, err := strconv.ParseFloat(string(s.data[start:s.pos]), 64)
	if err != nil {
		return 0
	}
	return v
}

// scanString reads a literal string: balanced parentheses, backslash
// escapes including octal codes and line continuations.
func (s *layoutScanner) scanString() pdfString {
	s.pos++ // consume (
	var out []byte
	depth := 1

	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch c {
		case '\\':
			s.pos++
			if s.pos >= len(s.data) {
				return out
			}
			e := s.data[s.pos]
			switch e {
			case 'n':
				out = append(out, '\n')
				s.pos++
			case 'r':
				out = append(out, '\r')
				s.pos++
			case 't':
				out = append(out, '\t')
				s.pos++
			case 'b':
				out = append(out, '\b')
				s.pos++
			case 'f':
				out = append(out, '\f')
				s.pos++
			case '(', ')', '\\':
				out = append(out, e)
				s.pos++
			case '\r':
				// Line continuation; swallow an optional LF too.
				s.pos++
				if s.pos < len(s.data) && s.data[s.pos] == '\n' {
					s.pos++
				}
			case '\n':
				s.pos++
			default:
				if e >= '0' && e <= '7' {
					v := byte(0)
					for i := 0; i < 3 && s.pos < len(s.data) && s.data[s.pos] >= '0' && s.data[s.pos] <= '7'; i++ {
						v = v*8 + (s.data[s.pos] - '0')
						s.pos++
					}
					out = append(out, v)
				} else {
					out = append(out, e)
					s.pos++
				}
			}
		case '(':
			depth++
			out = append(out, c)
			s.pos++
		case ')':
			depth--
			s.pos++
			if depth == 0 {
				return out
			}
			out = append(out, c)
		default:
			out = append(out, c)
			s.pos++
		}
	}
	return out
}

func (s *layoutScanner) scanHexString() pdfString {
	s.pos++ // consume <
	var out []byte
	var hi byte
	haveHi := false

	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		if c == '>' {
			break
		}
		v, ok := hexValue(c)
		if !ok {
			continue
		}
		if haveHi {
			out = append(out, hi<<4|v)
			haveHi = false
		} else {
			hi = v
			haveHi = true
		}
	}
	// An odd final digit implies a zero low nibble.
	if haveHi {
		out = append(out, hi<<4)
	}
	return out
}

func (s *layoutScanner) scanName() pdfName {
	s.pos++ // consume /
	var sb strings.Builder
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if isSpace(c) || isDelim(c) {
			break
		}
		if c == '#' && s.pos+2 < len(s.data) {
			hi, ok1 := hexValue(s.data[s.pos+1])
			lo, ok2 := hexValue(s.data[s.pos+2])
			if ok1 && ok2 {
				sb.WriteByte(hi<<4 | lo)
				s.pos += 3
				continue
			}
		}
		sb.WriteByte(c)
		s.pos++
	}
	return pdfName(sb.String())
}

func (s *layoutScanner) scanArray() []interface{} {
	s.pos++ // consume [
	var arr []interface{}

	for {
		s.skipSpace()
		if s.pos >= len(s.data) {
			return arr
		}
		c := s.data[s.pos]
		switch {
		case c == ']':
			s.pos++
			return arr
		case c == '%':
			s.skipComment()
		case c == '/':
			arr = append(arr, s.scanName())
		case c == '(':
			arr = append(arr, s.scanString())
		case c == '<':
			if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
				s.skipDict()
			} else {
				arr = append(arr, s.scanHexString())
			}
		case c == '[':
			arr = append(arr, s.scanArray())
		case c == ')' || c == '>' || c == '{' || c == '}':
			s.pos++
		case c == '+' || c == '-' || c == '.' || isDigit(c):
			arr = append(arr, s.scanNumber())
		default:
			s.scanOperator()
		}
	}
}

func (s *layoutScanner) scanOperator() string {
	start := s.pos
	for s.pos < len(s.data) && !isSpace(s.data[s.pos]) && !isDelim(s.data[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		s.pos++
	}
	return string(s.data[start:s.pos])
}

// skipDict consumes a balanced << >> dictionary, including nested dicts
// and any strings inside.
func (s *layoutScanner) skipDict() {
	depth := 0
	for s.pos+1 < len(s.data) {
		if s.data[s.pos] == '<' && s.data[s.pos+1] == '<' {
			depth++
			s.pos += 2
			continue
		}
		if s.data[s.pos] == '>' && s.data[s.pos+1] == '>' {
			depth--
			s.pos += 2
			if depth <= 0 {
				return
			}
			continue
		}
		if s.data[s.pos] == '(' {
			s.scanString()
			continue
		}
		s.pos++
	}
	s.pos = len(s.data)
}

// skipInlineImage consumes everything through the EI that closes a BI
// inline image, including its binary payload.
func (s *layoutScanner) skipInlineImage() {
	for i := s.pos; i+1 < len(s.data); i++ {
		if s.data[i] != 'E' || s.data[i+1] != 'I' {
			continue
		}
		if i > 0 && !isSpace(s.data[i-1]) {
			continue
		}
		if i+2 < len(s.data) && !isSpace(s.data[i+2]) && !isDelim(s.data[i+2]) {
			continue
		}
		s.pos = i + 2
		return
	}
	s.pos = len(s.data)
}

// ============================================================================
// Operand & character helpers
// ============================================================================

func toFloat(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func singleFloat(operands []interface{}) (float64, bool) {
	if len(operands) != 1 {
		return 0, false
	}
	return toFloat(operands[0])
}

func matrixOperands(operands []interface{}) (model.Matrix, bool) {
	if len(operands) != 6 {
		return model.Matrix{}, false
	}
	var m model.Matrix
	for i, op := range operands {
		f, ok := toFloat(op)
		if !ok {
			return model.Matrix{}, false
		}
		m[i] = f
	}
	return m, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
