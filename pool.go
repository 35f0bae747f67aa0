package tryout

import (
	"io"
	"sync"
)

// Line buffers that grew past this are dropped instead of pooled.
const maxScratchCap = 64 * 1024

var parserPool = sync.Pool{
	New: func() any {
		return &parser{}
	},
}

var valueReaderPool = sync.Pool{
	New: func() any {
		return &valueReader{}
	},
}

func acquireParser() *parser {
	return parserPool.Get().(*parser)
}

func releaseParser(p *parser) {
	if p == nil {
		return
	}
	p.scanner.Reset(nil)
	p.out.clear()
	p.pal = ColorPalette{}
	p.nesting = 0
	p.sliceReader.Reset(nil)
	if cap(p.line) > maxScratchCap {
		p.line = nil
	} else {
		p.line = p.line[:0]
	}
	parserPool.Put(p)
}

func acquireValueReader(r io.Reader) *valueReader {
	v := valueReaderPool.Get().(*valueReader)
	v.scanner.Reset(r)
	v.Reset()
	return v
}

func releaseValueReader(v *valueReader) {
	if v == nil {
		return
	}
	v.scanner.Reset(nil)
	v.Reset()
	if cap(v.doc) > maxScratchCap {
		v.doc = nil
	}
	valueReaderPool.Put(v)
}
