package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the autoparse banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"             _                                     ", "#818cf8"},
		{"  __ _ _   _| |_ ___  _ __   __ _ _ __ ___  ___    ", "#a78bfa"},
		{" / _` | | | | __/ _ \\| '_ \\ / _` | '__/ __|/ _ \\   ", "#c084fc"},
		{"| (_| | |_| | || (_) | |_) | (_| | |  \\__ \\  __/   ", "#e879f9"},
		{" \\__,_|\\__,_|\\__\\___/| .__/ \\__,_|_|  |___/\\___|   ", "#f472b6"},
		{"                     |_|                           ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status formats a pass or fail line, coloured when the terminal supports it.
func Status(ok bool, msg string) string {
	p := termenv.ColorProfile()
	if ok {
		return termenv.String("✔ " + msg).Foreground(p.Color("#22c55e")).String()
	}
	return termenv.String("✘ " + msg).Foreground(p.Color("#ef4444")).String()
}
