package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/RaduRS/automan-sub000/internal/logging"
	"github.com/RaduRS/automan-sub000/internal/render"
	"github.com/RaduRS/automan-sub000/internal/textutil"
)

const (
	progressBarWidth = 30
	// ansiClear erases the current terminal line before a redraw.
	ansiClear = "\x1b[2K"
)

// progressPrinter redraws a single status line on terminals and falls back to
// sampled log lines elsewhere.
type progressPrinter struct {
	w       io.Writer
	tty     bool
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	drawn   bool
}

func newProgressPrinter(w io.Writer, logger *slog.Logger) *progressPrinter {
	return &progressPrinter{
		w:       w,
		tty:     isTerminal(w),
		logger:  logger,
		sampler: logging.NewProgressSampler(10),
	}
}

func (p *progressPrinter) update(progress render.Progress) {
	stage := textutil.Label(progress.State.String())
	if !p.tty {
		if p.sampler.ShouldLog(stage, progress.Percent) {
			p.logger.Info("render progress", logging.Args(logging.ProgressAttrs(stage, progress.Percent, progress.Message)...)...)
		}
		return
	}
	fmt.Fprintf(p.w, "\r%s%-10s %s %5.1f%% %s", ansiClear, stage, progressBar(progress.Percent, progressBarWidth), progress.Percent, truncate(progress.Message, 40))
	p.drawn = true
}

func (p *progressPrinter) finish() {
	if p.tty && p.drawn {
		fmt.Fprintln(p.w)
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

// progressBar draws a fixed-width bar for percent in [0, 100].
func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(filled, width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
