package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"golang.org/x/term"
)

// TimeLayout is the day/month/year layout used for every user-facing timestamp.
const TimeLayout = "02/01/2006 15:04:05"

type Level int

const (
	Info Level = iota
	Success
	Warning
	Error
	Custom
)

var tags = map[Level]string{
	Info:    "ℹ",
	Success: "✓",
	Warning: "!",
	Error:   "✗",
	Custom:  "*",
}

var styles = map[Level]lipgloss.Style{
	Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	Success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	Custom:  lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
}

var highlight = lipgloss.NewStyle().Bold(true)

// Printer writes timestamped, categorized progress lines. Colors and the
// in-place countdown are only used when the writer is a terminal.
type Printer struct {
	mu  sync.Mutex
	w   io.Writer
	tty bool
	now func() time.Time
}

func New(w io.Writer) *Printer {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &Printer{w: w, tty: tty, now: time.Now}
}

// Discard returns a printer that drops everything.
func Discard() *Printer {
	return New(io.Discard)
}

func (p *Printer) Infof(format string, args ...any)    { p.Printf(Info, format, args...) }
func (p *Printer) Successf(format string, args ...any) { p.Printf(Success, format, args...) }
func (p *Printer) Warnf(format string, args ...any)    { p.Printf(Warning, format, args...) }
func (p *Printer) Errorf(format string, args ...any)   { p.Printf(Error, format, args...) }
func (p *Printer) Customf(format string, args ...any)  { p.Printf(Custom, format, args...) }

func (p *Printer) Printf(level Level, format string, args ...any) {
	line := fmt.Sprintf("[%s] [%s] %s", p.now().Format("15:04:05"), tags[level], fmt.Sprintf(format, args...))

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tty {
		line = styles[level].Render(line)
	}
	fmt.Fprintln(p.w, line)
}

// Banner prints an undecorated separator line.
func (p *Printer) Banner(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "========== %s ==========\n", fmt.Sprintf(format, args...))
}

// Highlight emphasises a value inside a message on terminals.
func (p *Printer) Highlight(s string) string {
	if !p.tty {
		return s
	}
	return highlight.Render(s)
}

// Countdown blocks for d on the given clock. On a terminal it redraws the
// remaining seconds once per second. It returns ctx.Err() if ctx ends first.
func (p *Printer) Countdown(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	done := clock.After(d)

	if !p.tty {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			return nil
		}
	}

	deadline := clock.Now().Add(d)
	ticker := clock.NewTicker(time.Second)
	defer ticker.Stop()
	defer p.clearLine()

	for {
		p.drawCountdown(deadline.Sub(clock.Now()))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			return nil
		case <-ticker.Chan():
		}
	}
}

func (p *Printer) drawCountdown(remaining time.Duration) {
	secs := int(remaining.Round(time.Second).Seconds())
	if secs < 0 {
		secs = 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\r[%s] [%s] Waiting %d seconds before the next pass...", p.now().Format("15:04:05"), tags[Custom], secs)
}

func (p *Printer) clearLine() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, "\r\033[2K")
}

// FormatTime renders t in local time using TimeLayout.
func FormatTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}

// FormatRolls renders dice results as "[3, 5, 2]".
func FormatRolls(rolls []int) string {
	parts := make([]string, len(rolls))
	for i, r := range rolls {
		parts[i] = strconv.Itoa(r)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
