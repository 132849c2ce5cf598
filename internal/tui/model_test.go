package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"cryptotracker/internal/dashboard"
	"cryptotracker/internal/render"
	"cryptotracker/internal/ringbuf"
	"cryptotracker/internal/view"
)

type fakeStepper struct {
	steps  int
	quitAt int
	w, h   int
	screen dashboard.Screen
}

func (f *fakeStepper) Step(ctx context.Context) dashboard.StepResult {
	f.steps++
	return dashboard.StepResult{Quit: f.quitAt > 0 && f.steps >= f.quitAt}
}

func (f *fakeStepper) Screen() dashboard.Screen { return f.screen }
func (f *fakeStepper) Resize(w, h int)          { f.w, f.h = w, h }

func sampleScreen() dashboard.Screen {
	return dashboard.Screen{
		Header:       []render.Span{{Text: dashboard.AppTitle}},
		Info:         []render.Span{{Text: "BTC/USDT"}},
		Message:      dashboard.NoChartMessage,
		Layout:       view.DefaultLayout(),
		SidebarTitle: "Top Ranked",
		Sidebar: []dashboard.SidebarRow{
			{Index: 1, Symbol: "ETH", Price: "$3,000.00", Change: "+1.20%", Volume: "$1.50B", Color: render.Green},
		},
		Footer: dashboard.Controls,
	}
}

// ────────────────────────────────────────────────────────────
// Key mapping
// ────────────────────────────────────────────────────────────

func TestKeyName(t *testing.T) {
	cases := []struct {
		msg  tea.KeyMsg
		want string
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}, "q"},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("M")}, "M"},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}, "space"},
		{tea.KeyMsg{Type: tea.KeyEnter}, "enter"},
		{tea.KeyMsg{Type: tea.KeyEsc}, "esc"},
		{tea.KeyMsg{Type: tea.KeyBackspace}, "backspace"},
		{tea.KeyMsg{Type: tea.KeyUp}, "up"},
	}
	for _, c := range cases {
		if got := keyName(c.msg); got != c.want {
			t.Errorf("keyName(%v) = %q, want %q", c.msg, got, c.want)
		}
	}
}

// ────────────────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────────────────

func TestUpdate_KeysAreQueued(t *testing.T) {
	keys := ringbuf.NewKeyQueue(4)
	m := New(context.Background(), &fakeStepper{}, keys, 0)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd != nil {
		t.Error("key press should not schedule a command")
	}
	_ = next
	k, ok := keys.NextKey()
	if !ok || k != "s" {
		t.Errorf("queued key = %q,%v, want s,true", k, ok)
	}
}

func TestUpdate_FullQueueReportsDrop(t *testing.T) {
	keys := ringbuf.NewKeyQueue(2)
	m := New(context.Background(), &fakeStepper{}, keys, 0)
	dropped := 0
	m.OnKeyDropped = func() { dropped++ }

	for i := 0; i < 3; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
}

func TestUpdate_WindowSizeResizesLoop(t *testing.T) {
	st := &fakeStepper{}
	m := New(context.Background(), st, ringbuf.NewKeyQueue(2), 0)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if st.w != 120 || st.h != 40 {
		t.Errorf("loop size = %dx%d, want 120x40", st.w, st.h)
	}
	if !next.(Model).ready {
		t.Error("model should be ready after a size message")
	}
}

func TestUpdate_TickStepsAndQuits(t *testing.T) {
	st := &fakeStepper{quitAt: 2}
	m := New(context.Background(), st, ringbuf.NewKeyQueue(2), 0)

	_, cmd := m.Update(tickMsg{})
	if cmd == nil {
		t.Fatal("first tick should schedule the next one")
	}
	_, cmd = m.Update(tickMsg{})
	if cmd == nil {
		t.Fatal("quit step should return tea.Quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg after loop asked to quit")
	}
	if st.steps != 2 {
		t.Errorf("steps = %d, want 2", st.steps)
	}
}

func TestUpdate_CancelledContextQuits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := &fakeStepper{}
	m := New(ctx, st, ringbuf.NewKeyQueue(2), 0)

	_, cmd := m.Update(tickMsg{})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg on cancelled context")
	}
	if st.steps != 0 {
		t.Error("loop should not step after cancellation")
	}
}

// ────────────────────────────────────────────────────────────
// Paint
// ────────────────────────────────────────────────────────────

func TestView_BeforeSize(t *testing.T) {
	m := New(context.Background(), &fakeStepper{}, ringbuf.NewKeyQueue(2), 0)
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View = %q", got)
	}
}

func TestPaint_StandardScreen(t *testing.T) {
	out := Paint(sampleScreen(), 120, 30)
	for _, want := range []string{dashboard.AppTitle, "Top Ranked", "ETH", "+1.20%", dashboard.NoChartMessage} {
		if !strings.Contains(out, want) {
			t.Errorf("painted screen missing %q", want)
		}
	}
	if n := len(strings.Split(out, "\n")); n != 30 {
		t.Errorf("painted %d lines, want 30", n)
	}
}

func TestPaint_FullBigOmitsSidebar(t *testing.T) {
	sc := sampleScreen()
	sc.FullBig = true
	sc.Big = render.BigPrice("btc", 65000, 1.5)
	out := Paint(sc, 120, 30)
	if !strings.Contains(out, render.BigPriceTitle) || !strings.Contains(out, "BTC") {
		t.Error("full big price view should show the caption and symbol")
	}
	if strings.Contains(out, "Top Ranked") {
		t.Error("full big price view should hide the sidebar")
	}
}

func TestPaint_Overlay(t *testing.T) {
	sc := sampleScreen()
	sc.Overlay = view.OverlayHelp
	sc.OverlayTitle = "Help"
	sc.OverlayLines = []render.Line{{Text: "Q quit"}}
	out := Paint(sc, 100, 30)
	if !strings.Contains(out, "Help") || !strings.Contains(out, "Q quit") {
		t.Error("overlay content missing")
	}
}

func TestPaint_ZeroSize(t *testing.T) {
	if Paint(sampleScreen(), 0, 0) != "" {
		t.Error("zero-size paint should be empty")
	}
}
