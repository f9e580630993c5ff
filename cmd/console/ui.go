package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/life-engine/internal/services"
	"github.com/jwebster45206/life-engine/pkg/attr"
	"github.com/jwebster45206/life-engine/pkg/grade"
	"github.com/jwebster45206/life-engine/pkg/state"
	"github.com/muesli/reflow/wordwrap"
)

type stage int

const (
	stageLoading stage = iota
	stageTalents
	stageAllocate
	stagePlaying
	stageDone
)

// revealInterval paces the year-by-year replay.
const revealInterval = 60 * time.Millisecond

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config   *ConsoleConfig
	backend  Backend
	viewport viewport.Model
	ready    bool
	width    int
	height   int
	err      error
	status   string
	stage    stage

	// Talent menu state
	menu   *services.TalentMenu
	cursor int
	chosen map[int]bool // menu index -> selected

	// Allocation state
	total      int
	values     [len(attr.Allocatable)]int
	attrCursor int

	// Replay state
	report *services.LifeReport
	shown  int

	showQuitModal bool
}

type menuLoadedMsg struct {
	menu *services.TalentMenu
	err  error
}

type lifePlayedMsg struct {
	report *services.LifeReport
	err    error
}

type revealTickMsg struct{}

var (
	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(3).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	yearStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")). // teal
			Bold(true)

	talentLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")) // purple

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

// rankStyles colour talents by grade and summary lines by rank, rarest last.
var rankStyles = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("250")), // grey
	lipgloss.NewStyle().Foreground(lipgloss.Color("33")),  // blue
	lipgloss.NewStyle().Foreground(lipgloss.Color("135")), // purple
	lipgloss.NewStyle().Foreground(lipgloss.Color("208")), // orange
}

func rankStyle(rank int) lipgloss.Style {
	return rankStyles[max(0, min(rank, len(rankStyles)-1))]
}

func NewConsoleUI(cfg *ConsoleConfig, backend Backend) ConsoleUI {
	vp := viewport.New(60, 20)
	vp.MouseWheelEnabled = true

	return ConsoleUI{
		config:   cfg,
		backend:  backend,
		viewport: vp,
		stage:    stageLoading,
		chosen:   make(map[int]bool),
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadMenu(m.config.Seed)
}

func (m ConsoleUI) loadMenu(seed int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.config.Timeout)
		defer cancel()
		menu, err := m.backend.Menu(ctx, seed)
		return menuLoadedMsg{menu: menu, err: err}
	}
}

func (m ConsoleUI) play(req services.PlayRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.config.Timeout)
		defer cancel()
		report, err := m.backend.Play(ctx, req, m.config.Lang)
		return lifePlayedMsg{report: report, err: err}
	}
}

func revealTick() tea.Cmd {
	return tea.Tick(revealInterval, func(time.Time) tea.Msg {
		return revealTickMsg{}
	})
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(20, m.width-6)
		m.viewport.Height = max(5, m.height-5)
		m.ready = true
		m.writeLogContent()
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case menuLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.menu = msg.menu
			m.cursor = 0
			m.chosen = make(map[int]bool)
			m.stage = stageTalents
		}
		return m, nil

	case lifePlayedMsg:
		if msg.err != nil {
			// Back to the step that produced the request
			m.status = errorStyle.Render(msg.err.Error())
			if m.total > 0 {
				m.stage = stageAllocate
			} else {
				m.stage = stageTalents
			}
			return m, nil
		}
		m.report = msg.report
		m.shown = 0
		m.stage = stagePlaying
		m.writeLogContent()
		return m, revealTick()

	case revealTickMsg:
		if m.stage != stagePlaying || m.report == nil {
			return m, nil
		}
		m.shown++
		if m.shown >= len(m.report.Log) {
			m.shown = len(m.report.Log)
			m.stage = stageDone
		}
		m.writeLogContent()
		if m.stage == stageDone {
			return m, nil
		}
		return m, revealTick()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.showQuitModal = true
			return m, nil
		}
		switch m.stage {
		case stageTalents:
			return m.updateTalents(msg)
		case stageAllocate:
			return m.updateAllocate(msg)
		case stagePlaying:
			// Any key skips the replay
			m.shown = len(m.report.Log)
			m.stage = stageDone
			m.writeLogContent()
			return m, nil
		case stageDone:
			return m.updateDone(msg)
		default:
			if msg.String() == "q" {
				m.showQuitModal = true
			}
		}
	}
	return m, nil
}

func (m ConsoleUI) updateTalents(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.menu.Talents)-1 {
			m.cursor++
		}
	case " ", "x":
		if m.chosen[m.cursor] {
			delete(m.chosen, m.cursor)
		} else if len(m.chosen) < m.menu.Picks {
			m.chosen[m.cursor] = true
		} else {
			m.status = errorStyle.Render(fmt.Sprintf("You may choose at most %d talents", m.menu.Picks))
		}
	case "r":
		m.total = 0
		m.stage = stageLoading
		return m, m.play(services.PlayRequest{Seed: m.menu.Seed, Player: m.config.Player})
	case "enter":
		m.total = state.DefaultTotal
		for i := range m.chosen {
			m.total += m.menu.Talents[i].Status
		}
		m.values = evenSplit(m.total)
		m.attrCursor = 0
		m.stage = stageAllocate
	case "q", "esc":
		m.showQuitModal = true
	}
	return m, nil
}

func (m ConsoleUI) updateAllocate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "up", "k":
		if m.attrCursor > 0 {
			m.attrCursor--
		}
	case "down", "j":
		if m.attrCursor < len(m.values)-1 {
			m.attrCursor++
		}
	case "left", "h", "-":
		if m.values[m.attrCursor] > 0 {
			m.values[m.attrCursor]--
		}
	case "right", "l", "+":
		if m.values[m.attrCursor] < state.MaxAllocated && m.remaining() > 0 {
			m.values[m.attrCursor]++
		}
	case "r":
		m.stage = stageLoading
		return m, m.play(m.request(nil))
	case "enter":
		if m.remaining() != 0 {
			m.status = errorStyle.Render(fmt.Sprintf("%d points left to allocate", m.remaining()))
			return m, nil
		}
		m.stage = stageLoading
		return m, m.play(m.request(m.values[:]))
	case "esc":
		m.total = 0
		m.stage = stageTalents
	case "q":
		m.showQuitModal = true
	}
	return m, nil
}

func (m ConsoleUI) updateDone(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "c":
		if err := clipboard.WriteAll(m.plainLog()); err != nil {
			m.status = errorStyle.Render("Copy failed: " + err.Error())
		} else {
			m.status = loadingStyle.Render("Life copied to clipboard")
		}
		return m, nil
	case "n":
		m.report = nil
		m.total = 0
		m.status = ""
		m.stage = stageLoading
		return m, m.loadMenu(0)
	case "q", "esc":
		m.showQuitModal = true
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N", "esc":
				m.showQuitModal = false
			}
		}
	}
	return m, nil
}

// request builds the play request for the chosen talents, in menu order.
func (m ConsoleUI) request(values []int) services.PlayRequest {
	ids := []int{}
	for i, t := range m.menu.Talents {
		if m.chosen[i] {
			ids = append(ids, t.ID)
		}
	}
	var attrs []int
	if values != nil {
		attrs = append([]int{}, values...)
	}
	return services.PlayRequest{
		Seed:       m.menu.Seed,
		Player:     m.config.Player,
		MenuSize:   len(m.menu.Talents),
		Talents:    ids,
		Attributes: attrs,
	}
}

func (m ConsoleUI) remaining() int {
	sum := 0
	for _, v := range m.values {
		sum += v
	}
	return m.total - sum
}

// evenSplit spreads total over the attributes, capped per attribute.
func evenSplit(total int) [len(attr.Allocatable)]int {
	var values [len(attr.Allocatable)]int
	n := len(values)
	for i := range values {
		v := min(state.MaxAllocated, (total+n-i-1)/(n-i))
		values[i] = max(0, v)
		total -= values[i]
	}
	return values
}

// writeLogContent lays out the revealed years and, once done, the summary.
func (m *ConsoleUI) writeLogContent() {
	if m.report == nil {
		m.viewport.SetContent("")
		return
	}
	width := max(20, m.viewport.Width-4)

	var content strings.Builder
	content.WriteString(titleStyle.Render(fmt.Sprintf("LIFE %s  (seed %d, run %d)", m.report.ID.String()[:8], m.report.Seed, m.report.Times)))
	content.WriteString("\n")
	for _, tr := range m.report.Selection {
		content.WriteString(talentLineStyle.Render(wordwrap.String(tr.Log(), width)) + "\n")
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, year := range m.report.Years[:min(m.shown, len(m.report.Years))] {
		content.WriteString(yearStyle.Render(year.Snapshot.String()) + "\n")
		for _, line := range year.TalentLog() {
			content.WriteString(talentLineStyle.Render(wordwrap.String(line, width)) + "\n")
		}
		for _, line := range year.EventLog() {
			content.WriteString(wordwrap.String(line, width) + "\n")
		}
	}

	if m.stage == stageDone {
		p := grade.Printer(grade.ParseTag(m.report.Lang))
		content.WriteString("\n" + separatorStyle.Render(strings.Repeat("─", width)) + "\n")
		content.WriteString(titleStyle.Render(strings.SplitN(m.report.Report, "\n", 2)[0]) + "\n\n")
		for _, e := range m.report.Summary.Entries {
			content.WriteString(rankStyle(e.Tier.Rank).Render(e.Format(p)) + "\n")
		}
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

// plainLog is the unstyled life for the clipboard.
func (m ConsoleUI) plainLog() string {
	var sb strings.Builder
	for _, tr := range m.report.Selection {
		sb.WriteString(tr.Log() + "\n")
	}
	for _, line := range m.report.Log {
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n" + m.report.Report + "\n")
	return sb.String()
}

func (m ConsoleUI) renderTalents() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render(fmt.Sprintf("Choose up to %d talents", m.menu.Picks)))
	content.WriteString("\n\n")
	for i, t := range m.menu.Talents {
		mark := "[ ]"
		if m.chosen[i] {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s (%s)", mark, t.Name, t.Description)
		if i == m.cursor {
			content.WriteString(modalSelectedItemStyle.Render("▶ " + line))
		} else {
			content.WriteString("  " + rankStyle(t.Grade).Render(line))
		}
		content.WriteString("\n")
	}
	content.WriteString("\n")
	content.WriteString(promptStyle.Render("↑/↓ move, Space choose, Enter confirm, R random life, Q quit"))
	return content.String()
}

func (m ConsoleUI) renderAllocate() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render(fmt.Sprintf("Allocate %d points (%d left)", m.total, m.remaining())))
	content.WriteString("\n\n")
	p := grade.Printer(grade.ParseTag(m.config.Lang))
	for i, key := range attr.Allocatable {
		line := fmt.Sprintf("%-14s ◀ %2d ▶", grade.Label(p, grade.Name(key)), m.values[i])
		if i == m.attrCursor {
			content.WriteString(modalSelectedItemStyle.Render("▶ " + line))
		} else {
			content.WriteString("  " + line)
		}
		content.WriteString("\n")
	}
	content.WriteString("\n")
	content.WriteString(promptStyle.Render(fmt.Sprintf("↑/↓ choose, ←/→ adjust (0-%d), Enter start, R random, Esc back", state.MaxAllocated)))
	return content.String()
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave this life behind?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))
	return content.String()
}

func (m ConsoleUI) modal(body string, width int) string {
	if m.status != "" {
		body += "\n\n" + m.status
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		modalStyle.Width(width).Render(body), lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.modal(m.renderQuitModal(), 50)
	}

	switch m.stage {
	case stageLoading:
		if m.err != nil {
			return m.modal(modalTitleStyle.Render("Error")+"\n\n"+
				errorStyle.Render(m.err.Error())+"\n\n"+promptStyle.Render("Press Ctrl+C to exit"), 60)
		}
		return m.modal(loadingStyle.Render("Consulting fate..."), 40)
	case stageTalents:
		return m.modal(m.renderTalents(), 70)
	case stageAllocate:
		return m.modal(m.renderAllocate(), 60)
	}

	help := "Any key to skip"
	if m.stage == stageDone {
		help = "↑/↓ scroll, C copy, N new life, Q quit"
	}
	footer := promptStyle.Render(help + "  •  " + m.backend.Name())
	if m.status != "" {
		footer = m.status + "  " + footer
	}
	return logPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		separatorStyle.Render(strings.Repeat("─", max(10, m.viewport.Width))),
		footer,
	))
}
