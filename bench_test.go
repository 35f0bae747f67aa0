package tryout

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

const benchDocString = `{
  "str": "hello \"world\" \\ / \b \f \n \r \t",
  "unicode": "snowman ☃",
  "empty_obj": {},
  "empty_arr": [],
  "int": 123,
  "neg_zero": -0,
  "float": 3.14159,
  "exp_small": -2.5E-3,
  "bools": [true, false],
  "nil": null,
  "arr": [1, "two", {"three":3}, [4,5]],
  "obj": {"a":1, "b":{"c":[{"d":"e"}]}}
}`

var benchDocBytes = []byte(benchDocString)

var benchSink string

func warmPools() {
	p := acquireParser()
	releaseParser(p)
	v := acquireValueReader(bytes.NewReader(nil))
	releaseValueReader(v)
}

func BenchmarkFormatText(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(benchDocBytes)))
	for i := 0; i < b.N; i++ {
		out, err := FormatText(benchDocBytes, nil)
		if err != nil {
			b.Fatal(err)
		}
		benchSink = out
	}
}

func BenchmarkFormatValue(b *testing.B) {
	v := map[string]any{
		"status": "ok",
		"data":   []any{map[string]any{"id": 1, "tags": []string{"a", "b"}}, nil, true},
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		out, err := Format(v, nil)
		if err != nil {
			b.Fatal(err)
		}
		benchSink = out
	}
}

func BenchmarkFormatTo(b *testing.B) {
	warmPools()
	doc := strings.Repeat(benchDocString+"\n", 8)
	r := strings.NewReader(doc)
	b.ReportAllocs()
	b.SetBytes(int64(len(doc)))
	for i := 0; i < b.N; i++ {
		r.Reset(doc)
		if err := FormatTo(io.Discard, r, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompactTo(b *testing.B) {
	r := bytes.NewReader(benchDocBytes)
	b.ReportAllocs()
	b.SetBytes(int64(len(benchDocBytes)))
	for i := 0; i < b.N; i++ {
		r.Reset(benchDocBytes)
		if err := CompactTo(io.Discard, r); err != nil {
			b.Fatal(err)
		}
	}
}
