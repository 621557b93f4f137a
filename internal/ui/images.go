package ui

import (
	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"

	"gtr/internal/grouping"
)

// style is how an image is drawn in the terminal
type style struct {
	glyph string
	cell  tcell.Color
	tag   string // tview colour tag
	term  *color.Color
}

var styles = map[grouping.Image]style{
	grouping.ImageInit:         {glyph: "○", cell: tcell.ColorGray, tag: "gray", term: color.New(color.FgHiBlack)},
	grouping.ImageSuccess:      {glyph: "✓", cell: tcell.ColorGreen, tag: "green", term: color.New(color.FgGreen)},
	grouping.ImageFailure:      {glyph: "✗", cell: tcell.ColorRed, tag: "red", term: color.New(color.FgRed)},
	grouping.ImageWarning:      {glyph: "!", cell: tcell.ColorYellow, tag: "yellow", term: color.New(color.FgYellow)},
	grouping.ImageIgnored:      {glyph: "⊘", cell: tcell.ColorDarkCyan, tag: "darkcyan", term: color.New(color.FgCyan)},
	grouping.ImageInconclusive: {glyph: "?", cell: tcell.ColorPurple, tag: "purple", term: color.New(color.FgMagenta)},
}

func styleFor(img grouping.Image) style {
	if s, ok := styles[img]; ok {
		return s
	}
	return styles[grouping.ImageInit]
}
