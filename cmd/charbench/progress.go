package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mhr3/charbench/bench"
)

// progressThreshold is the repetition count below which a bar is more
// noise than help.
const progressThreshold = 10

const barWidth = 40

var errAborted = errors.New("aborted")

type progressUpdate struct {
	done  int
	total int
}

type progressDone struct{}

type progressModel struct {
	bar     progress.Model
	label   string
	done    int
	total   int
	aborted bool
}

func newProgressModel(label string, total int) progressModel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = barWidth
	return progressModel{bar: bar, label: label, total: total}
}

func (m progressModel) Init() tea.Cmd { return nil }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		}
	case progressUpdate:
		m.done, m.total = msg.done, msg.total
	case progressDone:
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.total <= 0 {
		return ""
	}
	pct := float64(m.done) / float64(m.total)
	return fmt.Sprintf("%s %s %d/%d\n", m.label, m.bar.ViewAs(pct), m.done, m.total)
}

// withProgress runs fn with feedback wired into the runner: a bubbletea
// bar on a terminal, decile log lines otherwise. Short runs get neither.
func withProgress(r *bench.Runner, label string, reps int, fn func() error) error {
	if reps <= progressThreshold {
		return fn()
	}
	if noColor || !stderrIsTTY() {
		r.Progress = decileProgress(label)
		defer func() { r.Progress = nil }()
		return fn()
	}

	p := tea.NewProgram(newProgressModel(label, reps), tea.WithOutput(os.Stderr))
	r.Progress = func(done, total int) { p.Send(progressUpdate{done: done, total: total}) }
	defer func() { r.Progress = nil }()

	errc := make(chan error, 1)
	go func() {
		errc <- fn()
		p.Send(progressDone{})
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(progressModel); ok && m.aborted {
		return errAborted
	}
	return <-errc
}

// decileProgress logs every tenth of the repetition loop.
func decileProgress(label string) func(done, total int) {
	last := -1
	return func(done, total int) {
		if total <= 0 {
			return
		}
		d := done * 10 / total
		if d == last {
			return
		}
		last = d
		slog.Info("progress",
			slog.String("impl", label),
			slog.Int("percent", d*10),
		)
	}
}
