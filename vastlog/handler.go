package vastlog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// terminalHandler writes human-readable, optionally colorized records
// to a stream — the interactive counterpart of the teacher's own
// TerminalHandler, colorizing by level via fatih/color and routing
// through mattn/go-colorable so ANSI codes still render on Windows
// consoles.
type terminalHandler struct {
	mu       sync.Mutex
	out      io.Writer
	minLevel Level
	color    bool
}

// NewTerminalHandler returns a Handler writing to stderr, colorized iff
// stderr is a terminal, filtering out records below minLevel.
func NewTerminalHandler(minLevel Level) Handler {
	useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	return &terminalHandler{out: colorable.NewColorableStderr(), minLevel: minLevel, color: useColor}
}

func levelColor(l Level) *color.Color {
	switch l {
	case LevelTrace, LevelDebug:
		return color.New(color.FgHiBlack)
	case LevelInfo:
		return color.New(color.FgCyan)
	case LevelWarn:
		return color.New(color.FgYellow)
	case LevelError:
		return color.New(color.FgRed)
	case LevelCrit:
		return color.New(color.FgHiRed, color.Bold)
	default:
		return color.New()
	}
}

func (h *terminalHandler) Log(r Record) error {
	if r.Level < h.minLevel {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	level := strings.ToUpper(r.Level.String())
	if h.color {
		level = levelColor(r.Level).Sprint(level)
	}
	fmt.Fprintf(h.out, "%s [%-5s] %-20s %s", r.Time.Format("15:04:05.000"), level, r.Logger, r.Msg)
	for i := 0; i+1 < len(r.Ctx); i += 2 {
		fmt.Fprintf(h.out, " %v=%v", r.Ctx[i], r.Ctx[i+1])
	}
	fmt.Fprintln(h.out)
	return nil
}

// fileHandler writes newline-delimited records to a rotating log file
// via lumberjack, the teacher-adjacent choice (no example repo imports
// lumberjack directly, but urfave/cli-based CLIs in the pack pair with
// it routinely for daemon-mode log rotation).
type fileHandler struct {
	mu  sync.Mutex
	out io.Writer
}

// FileHandlerConfig configures the rotating file sink.
type FileHandlerConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewFileHandler returns a Handler that appends newline-delimited,
// plain-text records to a size- and age-rotated file.
func NewFileHandler(cfg FileHandlerConfig) Handler {
	return &fileHandler{out: &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}}
}

func (h *fileHandler) Log(r Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.out, "%s level=%s logger=%s msg=%q", r.Time.Format(timeFormat), r.Level, r.Logger, r.Msg)
	if err != nil {
		return err
	}
	for i := 0; i+1 < len(r.Ctx); i += 2 {
		if _, err := fmt.Fprintf(h.out, " %v=%v", r.Ctx[i], r.Ctx[i+1]); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(h.out)
	return err
}

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// MultiHandler fans a record out to every handler in hs, stopping at
// (and returning) the first error.
type MultiHandler []Handler

func (hs MultiHandler) Log(r Record) error {
	for _, h := range hs {
		if err := h.Log(r); err != nil {
			return err
		}
	}
	return nil
}
