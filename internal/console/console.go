// Package console renders diagnostic panels. Printers and rotators are created
// once by the caller and passed down; nothing here is a package-level singleton.
package console

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// DefaultWidth is the panel width used when none is configured.
const DefaultWidth = 80

var defaultPalette = []lipgloss.Color{"39", "212", "135", "214", "42", "203", "62", "228"}

// ColorRotator hands out border colors in a fixed cycle. Safe for concurrent use.
type ColorRotator struct {
	mu      sync.Mutex
	palette []lipgloss.Color
	next    int
}

func NewColorRotator(palette ...lipgloss.Color) *ColorRotator {
	if len(palette) == 0 {
		palette = defaultPalette
	}
	return &ColorRotator{palette: palette}
}

// Pick returns the next color in the cycle.
func (r *ColorRotator) Pick() lipgloss.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.palette[r.next%len(r.palette)]
	r.next++
	return c
}

// Printer writes bordered panels to w. Each panel is written in one call so
// concurrent analyses never interleave inside a panel.
type Printer struct {
	mu      sync.Mutex
	w       io.Writer
	colors  *ColorRotator
	width   int
	titleSt lipgloss.Style
}

func NewPrinter(w io.Writer, colors *ColorRotator, width int) *Printer {
	if colors == nil {
		colors = NewColorRotator()
	}
	if width <= 0 {
		width = DefaultWidth
	}
	return &Printer{
		w:       w,
		colors:  colors,
		width:   width,
		titleSt: lipgloss.NewStyle().Bold(true),
	}
}

// Panel prints body inside a rounded border with title on top.
func (p *Printer) Panel(title, body string) {
	if p == nil {
		return
	}
	color := p.colors.Pick()
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(p.width - 2)

	heading := p.titleSt.Foreground(color).Render(title)
	out := lipgloss.JoinVertical(lipgloss.Left, heading, box.Render(body))

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, out)
}

// JSONPanel prints v as indented JSON.
func (p *Printer) JSONPanel(title string, v any) {
	if p == nil {
		return
	}
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		p.Panel(title, fmt.Sprintf("<unrenderable: %v>", err))
		return
	}
	p.Panel(title, string(data))
}
