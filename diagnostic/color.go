// Copyright © 2024 The NRefactory authors

package diagnostic

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode controls when ANSI color codes are used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // detect based on terminal and NO_COLOR
	ColorAlways                  // always use colors
	ColorNever                   // never use colors
)

// ParseColorMode parses "auto", "always" or "never". Anything else is auto.
func ParseColorMode(s string) ColorMode {
	switch s {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

// palette holds the styles used for diagnostic output.
type palette struct {
	bold     *color.Color
	red      *color.Color
	yellow   *color.Color
	boldRed  *color.Color
	boldBlue *color.Color
	boldCyan *color.Color
	green    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		bold:     color.New(color.Bold),
		red:      color.New(color.FgRed),
		yellow:   color.New(color.FgYellow, color.Bold),
		boldRed:  color.New(color.FgRed, color.Bold),
		boldBlue: color.New(color.FgBlue, color.Bold),
		boldCyan: color.New(color.FgCyan, color.Bold),
		green:    color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.bold, p.red, p.yellow, p.boldRed, p.boldBlue, p.boldCyan, p.green} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// choosePalette selects the palette for mode and the destination writer.
func choosePalette(mode ColorMode, w io.Writer) palette {
	switch mode {
	case ColorAlways:
		return newPalette(true)
	case ColorNever:
		return newPalette(false)
	default:
		if os.Getenv("NO_COLOR") != "" {
			return newPalette(false)
		}
		return newPalette(isTerminal(w))
	}
}

// isTerminal reports whether w is a file connected to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
