// Package ansi holds the escape sequences and palette presets used to colour
// JSON output and console status lines.
package ansi

const (
	Reset  = "\x1b[0m"
	Bold   = "\x1b[1m"
	Faint  = "\x1b[90m"
	Red    = "\x1b[31m"
	Green  = "\x1b[32m"
	Yellow = "\x1b[33m"
	Blue   = "\x1b[34m"
	Cyan   = "\x1b[36m"

	BrightBlue = "\x1b[1;34m"
	Magenta    = "\x1b[35m"
)

// Palette maps JSON token classes to escape sequences.
type Palette struct {
	Key         string
	String      string
	Num         string
	Bool        string
	Nil         string
	Brackets    string
	Punctuation string
}

// PaletteJQDefault mirrors jq's default JQ_COLORS.
var PaletteJQDefault = Palette{
	Key:         "\x1b[1;34m",
	String:      "\x1b[0;32m",
	Num:         "\x1b[0;39m",
	Bool:        "\x1b[0;39m",
	Nil:         "\x1b[0;90m",
	Brackets:    "\x1b[1;39m",
	Punctuation: "\x1b[1;39m",
}

// PaletteClassic sticks to the 16 base colours.
var PaletteClassic = Palette{
	Key:         Cyan,
	String:      BrightBlue,
	Num:         Magenta,
	Bool:        Yellow,
	Nil:         Faint,
	Brackets:    Faint,
	Punctuation: Faint,
}

var PaletteDoomNord = Palette{
	Key:         "\x1b[38;5;153m",
	String:      "\x1b[38;5;152m",
	Num:         "\x1b[38;5;109m",
	Bool:        "\x1b[38;5;115m",
	Nil:         "\x1b[38;5;245m",
	Brackets:    "\x1b[38;5;110m",
	Punctuation: "\x1b[38;5;245m",
}

var PaletteTokyoNight = Palette{
	Key:         "\x1b[38;5;69m",
	String:      "\x1b[38;5;110m",
	Num:         "\x1b[38;5;176m",
	Bool:        "\x1b[38;5;117m",
	Nil:         "\x1b[38;5;244m",
	Brackets:    "\x1b[38;5;74m",
	Punctuation: "\x1b[38;5;244m",
}

// PaletteGruvboxLight is meant for light terminal backgrounds.
var PaletteGruvboxLight = Palette{
	Key:         "\x1b[38;5;130m",
	String:      "\x1b[38;5;108m",
	Num:         "\x1b[38;5;66m",
	Bool:        "\x1b[38;5;142m",
	Nil:         "\x1b[38;5;180m",
	Brackets:    "\x1b[38;5;136m",
	Punctuation: "\x1b[38;5;180m",
}

var PaletteSynthwave84 = Palette{
	Key:         "\x1b[38;5;198m",
	String:      "\x1b[38;5;51m",
	Num:         "\x1b[38;5;207m",
	Bool:        "\x1b[38;5;219m",
	Nil:         "\x1b[38;5;102m",
	Brackets:    "\x1b[38;5;45m",
	Punctuation: "\x1b[38;5;102m",
}

// StatusColor picks the colour for an HTTP status class digit (1-5).
func StatusColor(class int) string {
	switch class {
	case 1:
		return Cyan
	case 2:
		return Green
	case 3:
		return Blue
	case 4:
		return Yellow
	default:
		return Red
	}
}
