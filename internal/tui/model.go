// Package tui runs the dashboard as a bubbletea program: a fixed-rate tick
// drives the refresh loop, key presses go through a non-blocking queue and
// View paints the last composed screen with lipgloss.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"cryptotracker/internal/dashboard"
	"cryptotracker/internal/ringbuf"
)

// DefaultInterval is the refresh cadence.
const DefaultInterval = 100 * time.Millisecond

// Stepper is the refresh loop as seen by the program.
type Stepper interface {
	Step(ctx context.Context) dashboard.StepResult
	Screen() dashboard.Screen
	Resize(width, height int)
}

type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the bubbletea model.
type Model struct {
	ctx      context.Context
	loop     Stepper
	keys     *ringbuf.KeyQueue
	interval time.Duration

	width  int
	height int
	screen dashboard.Screen
	ready  bool

	// OnKeyDropped is called when a key press finds the queue full.
	OnKeyDropped func()
}

// New creates the model. keys must be the queue the loop reads from.
func New(ctx context.Context, loop Stepper, keys *ringbuf.KeyQueue, interval time.Duration) Model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Model{
		ctx:      ctx,
		loop:     loop,
		keys:     keys,
		interval: interval,
		screen:   loop.Screen(),
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// ctrl+c must work even while the loop is behind on queued keys.
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if !m.keys.Push(keyName(msg)) && m.OnKeyDropped != nil {
			m.OnKeyDropped()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.loop.Resize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		if m.ctx.Err() != nil {
			return m, tea.Quit
		}
		res := m.loop.Step(m.ctx)
		m.screen = m.loop.Screen()
		if res.Quit {
			return m, tea.Quit
		}
		return m, tickCmd(m.interval)
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return Paint(m.screen, m.width, m.height)
}

// keyName maps a key press to the names the view state understands.
func keyName(msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeySpace:
		return "space"
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			return string(msg.Runes[0])
		}
	}
	return msg.String()
}

// Run starts the program on the alternate screen and blocks until it exits
// or ctx is cancelled.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
