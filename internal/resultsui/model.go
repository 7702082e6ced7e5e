// Package resultsui provides the Bubble Tea run browser.
package resultsui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fromsuu/plant-quarantine-sampling-analysis/internal/model"
	"github.com/fromsuu/plant-quarantine-sampling-analysis/internal/report"
)

const (
	tabRanking = iota
	tabTrialPlots
	tabDetails
)

const plotHeight = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#3AA675"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	winnerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#3AA675")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea run browser.
type Model struct {
	run model.StoredRun

	tabs         []string
	activeTab    int
	viewports    []viewport.Model
	rankingTable table.Model

	width  int
	height int
}

// NewModel constructs a browser for one stored run.
func NewModel(run model.StoredRun) *Model {
	m := &Model{
		run:  run,
		tabs: []string{"Ranking", "Trial Plots", "Details"},
	}
	m.rankingTable = buildRankingTable(run.Result, 0, 1)
	m.initViewports()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "g", "home":
			if m.activeTab == tabRanking {
				m.rankingTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabRanking {
				m.rankingTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabRanking {
				var cmd tea.Cmd
				m.rankingTable, cmd = m.rankingTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.rankingTable.SetWidth(m.width)
	m.rankingTable.SetHeight(maxInt(1, bodyHeight-1))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabRanking {
		m.rankingTable.Focus()
	} else {
		m.rankingTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	summary := fmt.Sprintf("Run %d  %s  groups=%d  iterations=%d  samples=%d",
		m.run.RunID,
		m.run.Result.RunAt.Format("2006-01-02 15:04"),
		m.run.Config.Groups,
		m.run.Config.Iterations,
		m.run.Config.SamplesPerTrial,
	)
	return tabs + "\n" + headerStyle.Render(padLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Top/bottom: g/G  Quit: q")
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabRanking {
		if len(m.run.Result.Ranked) == 0 {
			return fitLines("No results in this run.", m.width, height)
		}
		view := tableMutedStyle.Render(m.rankingTable.View())
		winner, _ := m.run.Result.Winner()
		view += "\n" + winnerStyle.Render("Recommended: "+winner.Strategy)
		return fitLines(view, m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabTrialPlots].SetContent(renderTrialPlots(m.run.Result, width))
	m.viewports[tabDetails].SetContent(renderDetails(m.run.Result))
}

func buildRankingTable(result model.ComparisonResult, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 4},
		{Title: "Strategy", Width: 22},
		{Title: "Avg Uniformity", Width: 14},
		{Title: "Stability", Width: 9},
		{Title: "Combined", Width: 8},
		{Title: "Chi-Square", Width: 10},
		{Title: "Uniform", Width: 7},
		{Title: "Grade", Width: 17},
	}
	rows := make([]table.Row, 0, len(result.Ranked))
	for i, r := range result.Ranked {
		uniform := "fail"
		if r.Uniform {
			uniform = "pass"
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			r.Strategy,
			fmt.Sprintf("%.4f", r.AverageUniformity),
			fmt.Sprintf("%.4f", r.ResultStability),
			fmt.Sprintf("%.4f", r.CombinedScore()),
			fmt.Sprintf("%.4f", r.ChiSquare),
			uniform,
			r.Grade(),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(rankingTableStyles())
	return t
}

func rankingTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func renderTrialPlots(result model.ComparisonResult, width int) string {
	series := report.TrialSeries(result)
	if len(series) == 0 {
		return "No trial data in this run."
	}
	var buf bytes.Buffer
	plotWidth := report.PlotWidthFor(width)
	if err := report.PlotSeriesWithColor(&buf, "Per-trial deviation from uniform", series, plotWidth, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render plot: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderDetails(result model.ComparisonResult) string {
	if len(result.Ranked) == 0 {
		return "No results in this run."
	}
	var buf bytes.Buffer
	for _, r := range result.Ranked {
		if err := report.RenderDetail(&buf, r); err != nil {
			return fmt.Sprintf("Failed to render details: %v", err)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
