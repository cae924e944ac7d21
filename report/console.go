// Package report renders benchmark results: styled console summaries
// and the CSV exports the plotting pipeline consumes.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mhr3/charbench/bench"
	"github.com/mhr3/charbench/config"
	"github.com/mhr3/charbench/count"
)

var (
	colorAccent = lipgloss.Color("#7AA2F7")
	colorOK     = lipgloss.Color("#9ECE6A")
	colorBad    = lipgloss.Color("#F7768E")
	colorMuted  = lipgloss.Color("#565F89")
)

// Styles holds the pre-configured console styles.
var Styles = struct {
	Title lipgloss.Style
	Label lipgloss.Style
	Value lipgloss.Style
	OK    lipgloss.Style
	Bad   lipgloss.Style
	Muted lipgloss.Style
	Box   lipgloss.Style
}{
	Title: lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Label: lipgloss.NewStyle().Foreground(colorMuted),
	Value: lipgloss.NewStyle(),
	OK:    lipgloss.NewStyle().Foreground(colorOK),
	Bad:   lipgloss.NewStyle().Foreground(colorBad).Bold(true),
	Muted: lipgloss.NewStyle().Foreground(colorMuted),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(0, 1),
}

// topEntries bounds the frequency listing unless detailed output is
// requested.
const topEntries = 10

// A Console renders results to w. Plain drops styling and boxes for
// pipes and logs.
type Console struct {
	w     io.Writer
	plain bool
}

func NewConsole(w io.Writer, plain bool) *Console {
	return &Console{w: w, plain: plain}
}

// Run prints the configuration and statistics of a single result.
func (c *Console) Run(res *bench.Result) {
	rows := [][2]string{
		{"impl", res.Impl},
		{"length", fmt.Sprintf("%s (%d counted)", sizeString(res.Config.Length), res.Config.Length-1)},
		{"alignment", fmt.Sprintf("%d bytes, addr %#x", res.Config.Alignment, res.Addr)},
		{"seed", strconv.FormatUint(res.Config.Seed, 10)},
	}
	if res.Config.Mode == config.ModeAll {
		rows = append(rows,
			[2]string{"mode", "full tally"},
			[2]string{"unique values", strconv.Itoa(res.Frequency.Unique())},
		)
	} else {
		rows = append(rows,
			[2]string{"target", charDisplay(res.Config.TargetByte())},
			[2]string{"occurrences", strconv.FormatUint(res.Count, 10)},
		)
	}
	rows = append(rows,
		[2]string{"repetitions", fmt.Sprintf("%d (+%d warm-up)", res.Config.Repetitions, res.Config.Warmup)},
		[2]string{"mean", fmtMs(res.Stats.Mean)},
		[2]string{"median", fmtMs(res.Stats.Median)},
		[2]string{"stddev", fmtMs(res.Stats.StdDev)},
		[2]string{"min / max", fmtMs(res.Stats.Min) + " / " + fmtMs(res.Stats.Max)},
		[2]string{"throughput", fmtMBps(res.Throughput())},
	)
	c.block("benchmark "+res.Impl, rows, res.Verified)
}

// Comparison prints both results and the speedup line.
func (c *Console) Comparison(cmp *bench.Comparison) {
	c.Run(cmp.Scalar)
	c.Run(cmp.Vector)

	speed := fmt.Sprintf("%.2fx", cmp.Speedup())
	if c.plain {
		validity := "valid"
		if !cmp.Valid {
			validity = "INVALID"
		}
		fmt.Fprintf(c.w, "speedup: %s (%s)\n", speed, validity)
		return
	}
	line := Styles.Label.Render("speedup        ") + Styles.Title.Render(speed)
	if !cmp.Valid {
		line += "  " + Styles.Bad.Render("✗ INVALID: counts disagree")
	}
	fmt.Fprintln(c.w, line)
}

// Sweep prints one row per compared size.
func (c *Console) Sweep(cmps []*bench.Comparison) {
	c.title(fmt.Sprintf("size sweep, %d points", len(cmps)))
	c.println(Styles.Label, fmt.Sprintf("%-10s %14s %14s %9s", "size", "scalar mean", "vector mean", "speedup"))
	for _, cmp := range cmps {
		line := fmt.Sprintf("%-10s %14s %14s %8.2fx",
			sizeString(cmp.Scalar.Config.Length),
			fmtMs(cmp.Scalar.Stats.Mean),
			fmtMs(cmp.Vector.Stats.Mean),
			cmp.Speedup(),
		)
		if cmp.Valid {
			c.println(Styles.Value, line)
		} else {
			c.println(Styles.Bad, line+"  INVALID")
		}
	}
}

// Frequency prints the tally, most common values first. With detailed
// set the full value-ordered listing with categories follows.
func (c *Console) Frequency(freq count.Frequency, detailed bool) {
	total := freq.Total()
	c.title(fmt.Sprintf("distribution: %d distinct values over %d bytes", freq.Unique(), total))
	c.println(Styles.Label, fmt.Sprintf("%-8s %10s %8s", "char", "count", "share"))

	entries := freq.ByCount()
	shown := entries
	if !detailed && len(shown) > topEntries {
		shown = shown[:topEntries]
	}
	for _, e := range shown {
		c.println(Styles.Value, fmt.Sprintf("%-8s %10d %7.2f%%", charDisplay(e.Value), e.Count, percent(e.Count, total)))
	}
	if rest := len(entries) - len(shown); rest > 0 {
		c.println(Styles.Muted, fmt.Sprintf("and %d more values", rest))
	}
	if !detailed {
		return
	}

	c.title("by value")
	c.println(Styles.Label, fmt.Sprintf("%-6s %-8s %10s %8s  %s", "value", "char", "count", "share", "category"))
	for _, e := range freq.ByValue() {
		c.println(Styles.Value, fmt.Sprintf("0x%02X   %-8s %10d %7.2f%%  %s",
			e.Value, charDisplay(e.Value), e.Count, percent(e.Count, total), category(e.Value)))
	}
}

// Capabilities prints the kernels this cpu offers and which one the
// vector counter dispatches to.
func (c *Console) Capabilities(infos []count.KernelInfo, overridden bool) {
	c.title("kernels")
	for _, info := range infos {
		switch {
		case info.Active:
			c.println(Styles.OK, fmt.Sprintf("%-8s active", info.Name))
		case info.Available:
			c.println(Styles.Value, fmt.Sprintf("%-8s available", info.Name))
		default:
			c.println(Styles.Muted, fmt.Sprintf("%-8s unavailable", info.Name))
		}
	}
	if overridden {
		c.println(Styles.Muted, "selection: forced via CHARBENCH_KERNEL")
	} else {
		c.println(Styles.Muted, "selection: auto")
	}
}

// Error prints one error line.
func (c *Console) Error(err error) {
	if c.plain {
		fmt.Fprintf(c.w, "error: %v\n", err)
		return
	}
	fmt.Fprintln(c.w, Styles.Bad.Render("✗ "+err.Error()))
}

func (c *Console) block(title string, rows [][2]string, verified bool) {
	if c.plain {
		status := "verified"
		if !verified {
			status = "NOT VERIFIED"
		}
		fmt.Fprintf(c.w, "== %s (%s)\n", title, status)
		for _, r := range rows {
			fmt.Fprintf(c.w, "%-14s %s\n", r[0]+":", r[1])
		}
		return
	}

	var b strings.Builder
	b.WriteString(Styles.Title.Render(title))
	b.WriteString("  ")
	if verified {
		b.WriteString(Styles.OK.Render("✓ verified"))
	} else {
		b.WriteString(Styles.Bad.Render("✗ NOT VERIFIED"))
	}
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(Styles.Label.Render(fmt.Sprintf("%-14s", r[0])))
		b.WriteString(" ")
		b.WriteString(Styles.Value.Render(r[1]))
	}
	fmt.Fprintln(c.w, Styles.Box.Render(b.String()))
}

func (c *Console) title(s string) {
	if c.plain {
		fmt.Fprintf(c.w, "== %s\n", s)
		return
	}
	fmt.Fprintln(c.w, Styles.Title.Render(s))
}

func (c *Console) println(st lipgloss.Style, s string) {
	if c.plain {
		fmt.Fprintln(c.w, s)
		return
	}
	fmt.Fprintln(c.w, st.Render(s))
}

func fmtMs(d time.Duration) string {
	return fmt.Sprintf("%.4f ms", float64(d)/float64(time.Millisecond))
}

func fmtMBps(v float64) string {
	return fmt.Sprintf("%.2f MB/s", v)
}

func percent(n, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

// sizeString formats byte counts the way sweep labels read.
func sizeString(n int) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%dB", n)
	}
}

// charDisplay returns a printable token for a byte value: a mnemonic
// for common whitespace, the character itself for visible ASCII, and
// the hex code otherwise.
func charDisplay(c byte) string {
	switch c {
	case ' ':
		return "SPACE"
	case '\t':
		return "TAB"
	case '\n':
		return "NEWLINE"
	case '\r':
		return "CR"
	}
	if c >= 0x21 && c <= 0x7e {
		return string(c)
	}
	return fmt.Sprintf("0x%02X", c)
}

// category buckets a byte value for the detailed distribution view.
func category(c byte) string {
	switch {
	case c >= 'A' && c <= 'Z':
		return "uppercase"
	case c >= 'a' && c <= 'z':
		return "lowercase"
	case c >= '0' && c <= '9':
		return "digit"
	case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f':
		return "whitespace"
	case c >= 0x21 && c <= 0x7e:
		return "punctuation"
	case c < 0x20 || c == 0x7f:
		return "control"
	default:
		return "extended"
	}
}
