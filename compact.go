package tryout

import (
	"bytes"
	"errors"
	"io"

	"pkt.systems/jpact"
)

// CompactTo validates every JSON document read from r and writes it to w in
// canonical compact form, one document per line. Malformed documents return a
// *ParseError whose offset is relative to the start of the stream. Data
// following a complete value is parsed as the next document, so "[1]x"
// writes "[1]" and then fails on 'x', as FormatTo does.
func CompactTo(w io.Writer, r io.Reader) error {
	vr := acquireValueReader(r)
	defer releaseValueReader(vr)

	for {
		if err := vr.Start(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		start := vr.scanner.off - 1
		doc, err := vr.readDocument()
		if err != nil {
			return err
		}
		if err := validateDocument(doc); err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				perr.Offset += start
			}
			return err
		}
		if err := jpact.CompactWriter(w, bytes.NewReader(doc), 0); err != nil {
			return err
		}
		if err := writeNewline(w); err != nil {
			return err
		}
		vr.Reset()
	}
}

// Compact is CompactTo over an in-memory buffer.
func Compact(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := CompactTo(&buf, bytes.NewReader(src)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var newlineBytes = []byte{'\n'}

func writeNewline(w io.Writer) error {
	if bw, ok := w.(io.ByteWriter); ok {
		return bw.WriteByte('\n')
	}
	_, err := w.Write(newlineBytes)
	return err
}

func validateDocument(doc []byte) error {
	p := acquireParser()
	defer releaseParser(p)
	p.sliceReader.Reset(doc)
	p.reset(&p.sliceReader, io.Discard, nil, ColorPalette{})
	if err := p.parseDocument(); err != nil {
		return err
	}
	if err := p.scanner.skipSpace(); err != io.EOF {
		if err == nil {
			return p.errorf("unexpected data after top-level value")
		}
		return err
	}
	return nil
}

// valueReader slices one top-level JSON value at a time out of a stream
// without interpreting it beyond bracket and string boundaries.
type valueReader struct {
	scanner scanner
	doc     []byte

	started bool
	done    bool
	mode    valueMode
	depth   int
	inStr   bool
	escape  bool
	pending byte
	hasPend bool
}

type valueMode int

const (
	modeScalar valueMode = iota
	modeString
	modeStruct
)

func (v *valueReader) Reset() {
	v.started = false
	v.done = false
	v.mode = modeScalar
	v.depth = 0
	v.inStr = false
	v.escape = false
	v.hasPend = false
	v.pending = 0
	v.doc = v.doc[:0]
}

func (v *valueReader) Start() error {
	if v.started {
		return nil
	}
	b, err := v.scanner.readNonSpace()
	if err != nil {
		return err
	}
	v.started = true
	v.pending = b
	v.hasPend = true
	switch b {
	case '{', '[':
		v.mode = modeStruct
		v.depth = 1
	case '"':
		v.mode = modeString
		v.inStr = true
	default:
		v.mode = modeScalar
	}
	return nil
}

// readDocument collects the current value. A value cut short by the end of
// the stream is returned as is and rejected by validation.
func (v *valueReader) readDocument() ([]byte, error) {
	for {
		b, err := v.nextByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return v.doc, nil
			}
			return nil, err
		}
		v.doc = append(v.doc, b)
	}
}

func (v *valueReader) nextByte() (byte, error) {
	if v.done {
		return 0, io.EOF
	}
	if v.hasPend {
		v.hasPend = false
		return v.pending, nil
	}

	switch v.mode {
	case modeString:
		b, err := v.scanner.readByte()
		if err != nil {
			return 0, err
		}
		switch {
		case v.escape:
			v.escape = false
		case b == '\\':
			v.escape = true
		case b == '"':
			v.done = true
		}
		return b, nil
	case modeStruct:
		b, err := v.scanner.readByte()
		if err != nil {
			return 0, err
		}
		if v.inStr {
			switch {
			case v.escape:
				v.escape = false
			case b == '\\':
				v.escape = true
			case b == '"':
				v.inStr = false
			}
			return b, nil
		}
		switch b {
		case '"':
			v.inStr = true
		case '{', '[':
			v.depth++
		case '}', ']':
			v.depth--
			if v.depth == 0 {
				v.done = true
			}
		}
		return b, nil
	default:
		b, err := v.scanner.peekByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				v.done = true
			}
			return 0, err
		}
		if isTerminator(b) {
			v.done = true
			return 0, io.EOF
		}
		b, _ = v.scanner.readByte()
		return b, nil
	}
}
