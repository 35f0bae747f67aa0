package tryout

import (
	"fmt"
	"sort"
	"strings"

	"pkt.systems/tryout/internal/ansi"
)

const (
	paletteDefaultName = "default"
	paletteNoneName    = "none"
)

var paletteRegistry = map[string]ansi.Palette{
	paletteDefaultName: ansi.PaletteJQDefault,
	"jq":               ansi.PaletteJQDefault,
	"classic":          ansi.PaletteClassic,
	"doom-nord":        ansi.PaletteDoomNord,
	"gruvbox-light":    ansi.PaletteGruvboxLight,
	"synthwave84":      ansi.PaletteSynthwave84,
	"tokyo-night":      ansi.PaletteTokyoNight,
}

// ColorPalette holds the escape sequence written before each JSON token
// class. An empty field leaves that class uncoloured.
type ColorPalette struct {
	Key         string
	String      string
	Number      string
	True        string
	False       string
	Null        string
	Brackets    string
	Punctuation string
}

// PaletteNames returns the sorted list of palette names, including "none".
func PaletteNames() []string {
	names := make([]string, 0, len(paletteRegistry)+1)
	for name := range paletteRegistry {
		names = append(names, name)
	}
	names = append(names, paletteNoneName)
	sort.Strings(names)
	return names
}

// resolvePalette returns the ColorPalette named by opts.Palette. Empty and
// "none" disable colouring. When enableColor is false the name is still
// validated but the returned palette is blank.
func resolvePalette(opts *Options, enableColor bool) (ColorPalette, error) {
	name := paletteNoneName
	if opts != nil && strings.TrimSpace(opts.Palette) != "" {
		name = strings.ToLower(strings.TrimSpace(opts.Palette))
	}
	if name == paletteNoneName {
		return ColorPalette{}, nil
	}

	ap, ok := paletteRegistry[name]
	if !ok {
		return ColorPalette{}, fmt.Errorf("unknown palette %q (use one of: %s)", name, strings.Join(PaletteNames(), ", "))
	}
	if !enableColor {
		return ColorPalette{}, nil
	}
	return colorPaletteFromAnsi(ap), nil
}

func colorPaletteFromAnsi(ap ansi.Palette) ColorPalette {
	brackets := ap.Brackets
	if brackets == "" {
		brackets = ap.Nil
	}
	punct := ap.Punctuation
	if punct == "" {
		punct = brackets
	}
	return ColorPalette{
		Key:         ap.Key,
		String:      ap.String,
		Number:      ap.Num,
		True:        ap.Bool,
		False:       ap.Bool,
		Null:        ap.Nil,
		Brackets:    brackets,
		Punctuation: punct,
	}
}
