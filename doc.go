// Package tryout lays out JSON for display in an API "try it out" console.
//
// Output is one token per line with four-space indentation and CRLF line
// endings by default, the layout API documentation consoles traditionally
// show under a response. Object members keep their key and the opening
// bracket of a nested container on one line unless
// Options.NewlineAfterColonIfBeforeBraceOrBracket is set.
//
// Values and text are handled separately: Format marshals a Go value and can
// only fail when the value is not representable as JSON, while FormatText and
// FormatTo validate their input and return a *ParseError for malformed text.
//
// Basic usage:
//
//	out, err := tryout.FormatText([]byte(`{"a":{"b":[1,2]}}`), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Print(out)
//
// Streaming:
//
//	opts := &tryout.Options{Palette: "jq", Newline: "\n"}
//	if err := tryout.FormatTo(os.Stdout, os.Stdin, opts); err != nil {
//		log.Fatal(err)
//	}
package tryout
