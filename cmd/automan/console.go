package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/RaduRS/automan-sub000/internal/preflight"
	"github.com/RaduRS/automan-sub000/internal/queue"
)

// tone picks the colour of a status cell or check line on terminals.
type tone int

const (
	toneNeutral tone = iota
	toneGood
	toneBusy
	toneBad
)

var toneColors = map[tone]text.Colors{
	toneNeutral: {text.FgBlue},
	toneGood:    {text.FgGreen},
	toneBusy:    {text.FgYellow},
	toneBad:     {text.FgRed},
}

func paint(s string, t tone, colorize bool) string {
	if !colorize || s == "" {
		return s
	}
	return toneColors[t].Sprint(s)
}

func jobTone(status queue.Status) tone {
	switch {
	case status == queue.StatusCompleted:
		return toneGood
	case status.IsProcessing():
		return toneBusy
	case status == queue.StatusFailed, status == queue.StatusCancelled:
		return toneBad
	default:
		return toneNeutral
	}
}

const checkLabelWidth = 20

// checkLine formats one preflight result, e.g. "  Work directory:     [OK] /tmp/work".
func checkLine(r preflight.Result, colorize bool) string {
	mark, t := "OK", toneGood
	if !r.Passed {
		mark, t = "FAIL", toneBad
	}
	line := fmt.Sprintf("  %-*s [%s]", checkLabelWidth, r.Name+":", mark)
	if r.Detail != "" {
		line += " " + r.Detail
	}
	return paint(line, t, colorize)
}

func sectionHeader(title string, colorize bool) []string {
	title = strings.TrimSpace(title)
	return []string{
		paint(title, toneNeutral, colorize),
		paint(strings.Repeat("-", len(title)), toneNeutral, colorize),
	}
}
