package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cryptotracker/internal/dashboard"
	"cryptotracker/internal/render"
	"cryptotracker/internal/view"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	colHeadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	overlayBox   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("9")).Padding(1, 2)
	levelsBox    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
)

var palette = map[render.Color]lipgloss.Color{
	render.Red:     lipgloss.Color("9"),
	render.Green:   lipgloss.Color("10"),
	render.Cyan:    lipgloss.Color("14"),
	render.Magenta: lipgloss.Color("13"),
	render.Yellow:  lipgloss.Color("11"),
	render.Blue:    lipgloss.Color("12"),
	render.White:   lipgloss.Color("15"),
	render.Dim:     lipgloss.Color("245"),
}

func styleFor(c render.Color, bold bool) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(bold)
	if col, ok := palette[c]; ok {
		s = s.Foreground(col)
	}
	return s
}

func paintSpans(spans []render.Span) string {
	var b strings.Builder
	for _, sp := range spans {
		b.WriteString(styleFor(sp.Color, sp.Bold).Render(sp.Text))
	}
	return b.String()
}

func padOrTrunc(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if n := lipgloss.Width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return lipgloss.NewStyle().MaxWidth(w).Render(s)
}

// Paint renders a screen into a width x height string.
func Paint(sc dashboard.Screen, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if sc.FullBig {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, paintBig(sc.Big, width))
	}

	top := headerStyle.Render(padOrTrunc(" "+plain(sc.Header), width))
	info := infoStyle.Render(padOrTrunc(" "+paintSpans(sc.Info), width))
	footer := footerStyle.Render(padOrTrunc(" "+sc.Footer, width))

	bodyH := height - 3
	if bodyH < 1 {
		bodyH = 1
	}

	var body string
	if sc.Overlay != view.OverlayNone {
		box := overlayBox.Render(titleStyle.Render(sc.OverlayTitle) + "\n\n" + paintLines(sc.OverlayLines))
		body = lipgloss.Place(width, bodyH, lipgloss.Center, lipgloss.Center, box)
	} else {
		total := sc.Layout.ChartRatio + sc.Layout.SidebarRatio
		if total <= 0 {
			total = 1
		}
		chartW := width * sc.Layout.ChartRatio / total
		sideW := width - chartW
		left := paintChartColumn(sc, chartW, bodyH)
		right := paintSidebar(sc, sideW, bodyH)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	return lipgloss.JoinVertical(lipgloss.Left, top, info, fit(body, bodyH), footer)
}

// plain joins span text; the header bar has its own colours.
func plain(spans []render.Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

func fit(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func paintChartColumn(sc dashboard.Screen, w, h int) string {
	var parts []string
	switch {
	case sc.Big != nil:
		parts = append(parts, paintBig(sc.Big, w))
	case sc.Message != "":
		parts = append(parts, lipgloss.PlaceHorizontal(w, lipgloss.Center, labelStyle.Render(sc.Message)))
	default:
		parts = append(parts, paintFrame(sc.Chart))
	}

	if sc.ShowLevels {
		content := titleStyle.Render(sc.LevelsTitle) + "\n" + paintSpans(sc.Levels)
		panelH := sc.LevelsHeight - 2
		if panelH < 1 {
			panelH = 1
		}
		parts = append(parts, levelsBox.Width(max(w-2, 1)).Height(panelH).Render(content))
	}

	return block(parts, w, h, 0)
}

// paintFrame draws the canvas top row first with a right-hand price scale.
func paintFrame(f render.Frame) string {
	if f.Empty() {
		return labelStyle.Render(f.Placeholder)
	}
	w := f.Width()
	var b strings.Builder
	b.WriteString(paintSpans(f.Header))
	b.WriteByte('\n')
	b.WriteString(borderStyle.Render("┌" + strings.Repeat("─", w) + "┐"))
	b.WriteByte('\n')
	for r := f.Height() - 1; r >= 0; r-- {
		b.WriteString(borderStyle.Render("│"))
		paintRow(&b, f.Grid[r])
		b.WriteString(borderStyle.Render("│"))
		if r < len(f.Labels) && f.Labels[r] != "" {
			b.WriteString(labelStyle.Render(" " + f.Labels[r]))
		}
		b.WriteByte('\n')
	}
	b.WriteString(borderStyle.Render("└" + strings.Repeat("─", w) + "┘"))
	return b.String()
}

// paintRow groups runs of equal colour so each run costs one escape sequence.
func paintRow(b *strings.Builder, row []render.Cell) {
	start := 0
	for i := 1; i <= len(row); i++ {
		if i < len(row) && row[i].Color == row[start].Color {
			continue
		}
		var run strings.Builder
		for _, c := range row[start:i] {
			run.WriteRune(c.Ch)
		}
		b.WriteString(styleFor(row[start].Color, false).Render(run.String()))
		start = i
	}
}

func paintBig(lines []render.Line, w int) string {
	out := make([]string, 0, len(lines)+1)
	out = append(out, titleStyle.Render(render.BigPriceTitle))
	for _, ln := range lines {
		out = append(out, lipgloss.PlaceHorizontal(w, lipgloss.Center, styleFor(ln.Color, ln.Bold).Render(ln.Text)))
	}
	return strings.Join(out, "\n")
}

func paintLines(lines []render.Line) string {
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		out = append(out, styleFor(ln.Color, ln.Bold).Render(ln.Text))
	}
	return strings.Join(out, "\n")
}

func paintSidebar(sc dashboard.Screen, w, h int) string {
	lines := []string{
		titleStyle.Render(sc.SidebarTitle),
		colHeadStyle.Render(fmt.Sprintf("%-2s %-6s %12s %8s %9s", "#", "Symbol", "Price", "24h%", "Vol")),
	}
	if len(sc.Sidebar) == 0 {
		lines = append(lines, labelStyle.Render("  (empty)"))
	}
	for _, r := range sc.Sidebar {
		idx := "  "
		if r.Index <= 9 {
			idx = fmt.Sprintf("%-2d", r.Index)
		}
		lines = append(lines, fmt.Sprintf("%s %s %12s %s %9s",
			idx,
			styleFor(render.Cyan, true).Render(fmt.Sprintf("%-6s", r.Symbol)),
			r.Price,
			styleFor(r.Color, false).Render(fmt.Sprintf("%8s", r.Change)),
			r.Volume,
		))
	}
	return block(lines, w, h, 1)
}

// block pads or truncates every line to w columns (after indent) and the
// result to h rows, so columns never wrap.
func block(lines []string, w, h, indent int) string {
	pad := strings.Repeat(" ", indent)
	out := make([]string, 0, h)
	for _, ln := range lines {
		for _, part := range strings.Split(ln, "\n") {
			if len(out) == h {
				return strings.Join(out, "\n")
			}
			out = append(out, padOrTrunc(pad+part, w))
		}
	}
	for len(out) < h {
		out = append(out, strings.Repeat(" ", max(w, 0)))
	}
	return strings.Join(out, "\n")
}
