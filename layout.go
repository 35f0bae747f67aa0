package tryout

import (
	"bytes"
	"io"

	"pkt.systems/tryout/internal/ansi"
)

// maxNesting matches the depth limit of encoding/json.
const maxNesting = 10000

type lineKind uint8

const (
	linePlain lineKind = iota
	// lineOpen ends with '{' or '['; the lines after it sit one level deeper.
	lineOpen
	// lineClose holds the closing bracket of a container.
	lineClose
)

// indenter applies the running depth to a sequence of lines. It knows nothing
// about JSON, so an imbalanced sequence clamps at depth zero.
type indenter struct {
	w       io.Writer
	sw      io.StringWriter
	prefix  string
	indent  string
	newline string
	depth   int
}

func (in *indenter) reset(w io.Writer, opts *Options) {
	in.w = w
	in.sw = nil
	if sw, ok := w.(io.StringWriter); ok {
		in.sw = sw
	}
	in.depth = 0
	in.prefix = ""
	in.indent = defaultIndent
	in.newline = defaultNewline
	if opts == nil {
		return
	}
	in.prefix = opts.Prefix
	if opts.Indent != "" {
		in.indent = opts.Indent
	}
	if opts.Newline != "" {
		in.newline = opts.Newline
	}
}

func (in *indenter) clear() {
	in.w = nil
	in.sw = nil
	in.prefix = ""
	in.indent = ""
	in.newline = ""
	in.depth = 0
}

func (in *indenter) writeString(s string) error {
	if s == "" {
		return nil
	}
	var err error
	if in.sw != nil {
		_, err = in.sw.WriteString(s)
	} else {
		_, err = io.WriteString(in.w, s)
	}
	return err
}

func (in *indenter) writeLine(kind lineKind, text []byte) error {
	if kind == lineClose && in.depth > 0 {
		in.depth--
	}
	if err := in.writeString(in.prefix); err != nil {
		return err
	}
	for i := 0; i < in.depth; i++ {
		if err := in.writeString(in.indent); err != nil {
			return err
		}
	}
	if len(text) > 0 {
		if _, err := in.w.Write(text); err != nil {
			return err
		}
	}
	if err := in.writeString(in.newline); err != nil {
		return err
	}
	if kind == lineOpen {
		in.depth++
	}
	return nil
}

type parser struct {
	scanner     scanner
	out         indenter
	pal         ColorPalette
	breakColon  bool
	spaceColon  bool
	nesting     int
	line        []byte
	kind        lineKind
	sliceReader bytes.Reader
}

func (p *parser) reset(r io.Reader, w io.Writer, opts *Options, pal ColorPalette) {
	p.scanner.Reset(r)
	p.out.reset(w, opts)
	p.pal = pal
	p.breakColon = false
	p.spaceColon = false
	if opts != nil {
		p.breakColon = opts.NewlineAfterColonIfBeforeBraceOrBracket
		p.spaceColon = opts.SpaceAfterColon
	}
	p.nesting = 0
	p.line = p.line[:0]
	p.kind = linePlain
}

func (p *parser) errorf(msg string) error {
	return &ParseError{Offset: p.scanner.off, Msg: msg}
}

// next reads one byte, turning a premature end of input into a ParseError.
func (p *parser) next() (byte, error) {
	b, err := p.scanner.readByte()
	if err == io.EOF {
		return 0, p.errorf("unexpected end of JSON input")
	}
	return b, err
}

func (p *parser) nextNonSpace() (byte, error) {
	b, err := p.scanner.readNonSpace()
	if err == io.EOF {
		return 0, p.errorf("unexpected end of JSON input")
	}
	return b, err
}

// flush hands the pending line to the indenter.
func (p *parser) flush() error {
	err := p.out.writeLine(p.kind, p.line)
	p.line = p.line[:0]
	p.kind = linePlain
	return err
}

func (p *parser) styleOn(style string) {
	if style != "" {
		p.line = append(p.line, style...)
	}
}

func (p *parser) styleOff(style string) {
	if style != "" {
		p.line = append(p.line, ansi.Reset...)
	}
}

func (p *parser) appendStyled(style string, s string) {
	p.styleOn(style)
	p.line = append(p.line, s...)
	p.styleOff(style)
}

func (p *parser) appendBracket(b byte) {
	p.styleOn(p.pal.Brackets)
	p.line = append(p.line, b)
	p.styleOff(p.pal.Brackets)
}

func (p *parser) parseDocument() error {
	first, err := p.nextNonSpace()
	if err != nil {
		return err
	}
	if err := p.parseValueWithFirst(first); err != nil {
		return err
	}
	return p.flush()
}

func (p *parser) parseValueWithFirst(first byte) error {
	switch first {
	case '{':
		return p.parseContainer('{', '}')
	case '[':
		return p.parseContainer('[', ']')
	case '"':
		return p.copyStringToken(p.pal.String)
	case 't', 'f', 'n':
		return p.parseLiteral(first)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return p.parseNumber(first)
	default:
		return p.errorf("unexpected character " + quoteByte(first))
	}
}

func (p *parser) open(b byte) error {
	p.nesting++
	if p.nesting > maxNesting {
		return p.errorf("exceeded max nesting depth")
	}
	p.appendBracket(b)
	p.kind = lineOpen
	return p.flush()
}

// close starts the closing line of a container and leaves it pending so the
// parent can append a separator.
func (p *parser) close(b byte) error {
	p.nesting--
	if len(p.line) > 0 {
		if err := p.flush(); err != nil {
			return err
		}
	}
	p.appendBracket(b)
	p.kind = lineClose
	return nil
}

func (p *parser) separator() error {
	p.appendStyled(p.pal.Punctuation, ",")
	return p.flush()
}

func (p *parser) parseContainer(open, close byte) error {
	if err := p.open(open); err != nil {
		return err
	}
	b, err := p.nextNonSpace()
	if err != nil {
		return err
	}
	if b == close {
		return p.close(close)
	}
	for {
		if open == '{' {
			if b != '"' {
				return p.errorf("expected object key")
			}
			if err := p.copyStringToken(p.pal.Key); err != nil {
				return err
			}
			if b, err = p.readColon(); err != nil {
				return err
			}
		}
		if err := p.parseValueWithFirst(b); err != nil {
			return err
		}
		b, err = p.nextNonSpace()
		if err != nil {
			return err
		}
		switch b {
		case ',':
			if err := p.separator(); err != nil {
				return err
			}
			if b, err = p.nextNonSpace(); err != nil {
				return err
			}
		case close:
			return p.close(close)
		default:
			return p.errorf("expected ',' or " + quoteByte(close))
		}
	}
}

// readColon consumes the key separator and returns the first byte of the
// member value. A nested container either joins the key line or, with
// breakColon, starts on the next line at the key's depth.
func (p *parser) readColon() (byte, error) {
	b, err := p.nextNonSpace()
	if err != nil {
		return 0, err
	}
	if b != ':' {
		return 0, p.errorf("expected ':' after object key")
	}
	first, err := p.nextNonSpace()
	if err != nil {
		return 0, err
	}
	if p.breakColon && (first == '{' || first == '[') {
		p.appendStyled(p.pal.Punctuation, ":")
		return first, p.flush()
	}
	if p.spaceColon {
		p.appendStyled(p.pal.Punctuation, ": ")
	} else {
		p.appendStyled(p.pal.Punctuation, ":")
	}
	return first, nil
}

func (p *parser) copyStringToken(style string) error {
	p.styleOn(style)
	p.line = append(p.line, '"')
	for {
		b, err := p.next()
		if err != nil {
			return err
		}
		if b < 0x20 {
			return p.errorf("invalid control character in string")
		}
		p.line = append(p.line, b)
		if b == '"' {
			break
		}
		if b != '\\' {
			continue
		}
		esc, err := p.next()
		if err != nil {
			return err
		}
		p.line = append(p.line, esc)
		switch esc {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		case 'u':
			for i := 0; i < 4; i++ {
				ch, err := p.next()
				if err != nil {
					return err
				}
				if !isHex(ch) {
					return p.errorf("invalid unicode escape")
				}
				p.line = append(p.line, ch)
			}
		default:
			return p.errorf("invalid escape sequence")
		}
	}
	p.styleOff(style)
	return nil
}

func (p *parser) parseLiteral(first byte) error {
	var lit, style string
	switch first {
	case 't':
		lit, style = "true", p.pal.True
	case 'f':
		lit, style = "false", p.pal.False
	default:
		lit, style = "null", p.pal.Null
	}
	for i := 1; i < len(lit); i++ {
		b, err := p.next()
		if err != nil {
			return err
		}
		if b != lit[i] {
			return p.errorf("invalid literal")
		}
	}
	p.appendStyled(style, lit)
	return nil
}

func (p *parser) parseNumber(first byte) error {
	state, _ := numStartState(first)
	p.styleOn(p.pal.Number)
	p.line = append(p.line, first)
	for {
		b, err := p.scanner.peekByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if isTerminator(b) {
			break
		}
		next, ok := numNextState(state, b)
		if !ok {
			return p.errorf("invalid number")
		}
		state = next
		_, _ = p.scanner.readByte()
		p.line = append(p.line, b)
	}
	if !numIsTerminal(state) {
		return p.errorf("invalid number")
	}
	p.styleOff(p.pal.Number)
	return nil
}

func quoteByte(b byte) string {
	const hex = "0123456789abcdef"
	if b >= 0x20 && b < 0x7f {
		return "'" + string(b) + "'"
	}
	return "0x" + string([]byte{hex[b>>4], hex[b&0x0f]})
}

type scanner struct {
	r   io.Reader
	buf [4096]byte
	pos int
	n   int
	off int64
}

func (s *scanner) Reset(r io.Reader) {
	s.r = r
	s.pos = 0
	s.n = 0
	s.off = 0
}

func (s *scanner) fill() error {
	if s.r == nil {
		return io.EOF
	}
	for {
		n, err := s.r.Read(s.buf[:])
		if n > 0 {
			s.pos = 0
			s.n = n
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *scanner) readByte() (byte, error) {
	if s.pos >= s.n {
		if err := s.fill(); err != nil {
			return 0, err
		}
	}
	b := s.buf[s.pos]
	s.pos++
	s.off++
	return b, nil
}

func (s *scanner) peekByte() (byte, error) {
	if s.pos >= s.n {
		if err := s.fill(); err != nil {
			return 0, err
		}
	}
	return s.buf[s.pos], nil
}

func (s *scanner) skipSpace() error {
	for {
		b, err := s.peekByte()
		if err != nil {
			return err
		}
		if !isSpace(b) {
			return nil
		}
		s.pos++
		s.off++
	}
}

func (s *scanner) readNonSpace() (byte, error) {
	if err := s.skipSpace(); err != nil {
		return 0, err
	}
	return s.readByte()
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isTerminator(b byte) bool {
	return isSpace(b) || b == ',' || b == '}' || b == ']'
}

type numState int

const (
	numInvalid numState = iota
	numSign
	numZero
	numInt
	numDot
	numFrac
	numExp
	numExpSign
	numExpDigits
)

func numStartState(first byte) (numState, bool) {
	switch {
	case first == '-':
		return numSign, true
	case first == '0':
		return numZero, true
	case first >= '1' && first <= '9':
		return numInt, true
	default:
		return numInvalid, false
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func numNextState(state numState, b byte) (numState, bool) {
	switch state {
	case numSign:
		switch {
		case b == '0':
			return numZero, true
		case b >= '1' && b <= '9':
			return numInt, true
		}
	case numZero, numInt:
		switch {
		case b == '.':
			return numDot, true
		case b == 'e' || b == 'E':
			return numExp, true
		case state == numInt && isDigit(b):
			return numInt, true
		}
	case numDot, numFrac:
		switch {
		case isDigit(b):
			return numFrac, true
		case state == numFrac && (b == 'e' || b == 'E'):
			return numExp, true
		}
	case numExp:
		switch {
		case b == '+' || b == '-':
			return numExpSign, true
		case isDigit(b):
			return numExpDigits, true
		}
	case numExpSign, numExpDigits:
		if isDigit(b) {
			return numExpDigits, true
		}
	}
	return numInvalid, false
}

func numIsTerminal(state numState) bool {
	switch state {
	case numZero, numInt, numFrac, numExpDigits:
		return true
	default:
		return false
	}
}
