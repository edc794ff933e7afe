package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type tickMsg tickStats

type tickErrMsg struct{ err error }

type simModel struct {
	sim     *simulation
	spin    spinner.Model
	stats   tickStats
	avgUs   int64
	samples int64
	sumUs   int64
	target  int
	err     error
	done    bool
}

func newSimModel(cfg Config) simModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return simModel{
		sim:    newSimulation(cfg, zap.NewNop()),
		spin:   sp,
		target: cfg.Sim.Ticks,
	}
}

func (m simModel) step() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.sim.Step()
		if err != nil {
			return tickErrMsg{err: err}
		}
		return tickMsg(stats)
	}
}

func (m simModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.step())
}

func (m simModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tickMsg:
		m.stats = tickStats(msg)
		m.samples++
		m.sumUs += m.stats.Duration.Microseconds()
		m.avgUs = m.sumUs / m.samples
		if m.target > 0 && m.stats.Tick >= m.target {
			m.done = true
			return m, nil
		}
		return m, m.step()

	case tickErrMsg:
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m simModel) View() string {
	s := titleStyle.Render("brutal-sim") + "\n\n"

	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("tick failed: %v", m.err)) + "\n"
		s += helpStyle.Render("q to quit")
		return s
	}

	row := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-10s", label)) + valueStyle.Render(value) + "\n"
	}

	s += row("tick", fmt.Sprintf("%d", m.stats.Tick))
	s += row("alive", fmt.Sprintf("%d", m.stats.Alive))
	s += row("tick time", m.stats.Duration.Round(time.Microsecond).String())
	s += row("avg", fmt.Sprintf("%dµs", m.avgUs))
	s += "\n"
	if m.done {
		s += valueStyle.Render("finished") + "\n"
	} else {
		s += m.spin.View() + " running\n"
	}
	s += helpStyle.Render("q to quit")
	return s
}

func runInteractive(cfg Config) error {
	m := newSimModel(cfg)
	defer m.sim.Close()

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
