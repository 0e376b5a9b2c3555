package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kelsos/ssv-cluster-debugger/internal/calc"
	"github.com/kelsos/ssv-cluster-debugger/internal/models"
)

// Tab is one of the what-if calculators
type Tab int

const (
	TabEffectiveBalance Tab = iota
	TabTargetRunway
	TabDepositWithdraw
	TabLiquidation
	tabCount
)

// Title returns the tab label for a cluster paying in asset
func (t Tab) Title(asset models.AssetType) string {
	switch t {
	case TabEffectiveBalance:
		if asset == models.AssetETH {
			return "Update EB"
		}
		return "Validators"
	case TabTargetRunway:
		return "Target Runway"
	case TabDepositWithdraw:
		return "Deposit / Withdraw"
	case TabLiquidation:
		return "Liquidation"
	default:
		return "?"
	}
}

// Fetcher loads the dashboard and refreshes the block height
type Fetcher interface {
	Inspect(ctx context.Context, q models.ClusterQuery) (*calc.Dashboard, error)
	RefreshBlock(ctx context.Context) (uint64, error)
}

type DashboardLoaded struct {
	Dashboard *calc.Dashboard
}

type FetchFailed struct {
	Err error
}

type BlockRefreshed struct {
	Block uint64
	Err   error
}

type Model struct {
	fetcher Fetcher
	query   models.ClusterQuery
	timeout time.Duration
	now     func() time.Time

	dashboard  *calc.Dashboard
	err        error
	refreshErr error
	loading    bool
	refreshing bool

	tab   Tab
	mode  calc.LiquidationMode
	input textinput.Model

	spinner spinner.Model
	width   int
	height  int
	quit    bool
}

func NewModel(fetcher Fetcher, query models.ClusterQuery, timeout time.Duration) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	in := textinput.New()
	in.Prompt = "› "
	in.CharLimit = 64
	in.Focus()

	return Model{
		fetcher: fetcher,
		query:   query,
		timeout: timeout,
		now:     time.Now,
		loading: true,
		input:   in,
		spinner: sp,
		width:   80,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.fetchDashboard(),
		textinput.Blink,
	)
}

func (m Model) requestContext() (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), m.timeout)
}

func (m Model) fetchDashboard() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		d, err := m.fetcher.Inspect(ctx, m.query)
		if err != nil {
			return FetchFailed{Err: err}
		}
		return DashboardLoaded{Dashboard: d}
	}
}

func (m Model) refreshBlock() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		block, err := m.fetcher.RefreshBlock(ctx)
		return BlockRefreshed{Block: block, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		next, cmd, handled := m.handleKeyMsg(msg)
		if handled {
			return next, cmd
		}
		m = next

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case DashboardLoaded:
		m.loading = false
		m.err = nil
		m.dashboard = msg.Dashboard

	case FetchFailed:
		m.loading = false
		m.err = msg.Err

	case BlockRefreshed:
		m.refreshing = false
		m.refreshErr = msg.Err
		if msg.Err == nil && m.dashboard != nil {
			m.dashboard = m.dashboard.WithCurrentBlock(msg.Block)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyMsg returns handled=true when the key must not reach the text input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.quit = true
		return m, tea.Quit, true
	case "tab":
		m.tab = (m.tab + 1) % tabCount
		m.input.Reset()
		return m, nil, true
	case "shift+tab":
		m.tab = (m.tab + tabCount - 1) % tabCount
		m.input.Reset()
		return m, nil, true
	case "ctrl+t":
		m.mode = m.mode.Toggle()
		m.input.Reset()
		return m, nil, true
	case "ctrl+r":
		if m.dashboard == nil || m.refreshing {
			return m, nil, true
		}
		m.refreshing = true
		return m, m.refreshBlock(), true
	}
	return m, nil, false
}

func (m Model) placeholder() string {
	asset := models.AssetSSV
	if m.dashboard != nil {
		asset = m.dashboard.AssetType
	}

	switch m.tab {
	case TabEffectiveBalance:
		if asset == models.AssetETH {
			return "e.g. 96"
		}
		return "e.g. 4"
	case TabTargetRunway:
		return "e.g. 365"
	case TabDepositWithdraw:
		return "e.g. 1.5 or -0.25"
	default:
		if m.mode == calc.ModeRelative {
			return "e.g. 50000"
		}
		return "e.g. 1500000"
	}
}

// calculatorResult renders the active calculator against the current input
func (m Model) calculatorResult() string {
	d := m.dashboard
	b := d.Baseline()
	value := m.input.Value()

	switch m.tab {
	case TabEffectiveBalance:
		return RenderEffectiveBalance(calc.UpdateEffectiveBalance(b, value), d.AssetType)
	case TabTargetRunway:
		return RenderTargetRunway(calc.TargetRunway(b, value), d.AssetType)
	case TabDepositWithdraw:
		return RenderDepositWithdraw(calc.DepositWithdraw(b, value), d.AssetType)
	default:
		return RenderLiquidationTarget(calc.LiquidationTarget(b, m.mode, value), m.mode, d.AssetType)
	}
}

func (m Model) renderTabs() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Underline(true)
	inactive := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	titles := make([]string, 0, tabCount)
	for t := Tab(0); t < tabCount; t++ {
		title := t.Title(m.dashboard.AssetType)
		if t == TabLiquidation {
			title += " (" + m.mode.String() + ")"
		}
		if t == m.tab {
			titles = append(titles, active.Render(title))
		} else {
			titles = append(titles, inactive.Render(title))
		}
	}
	return strings.Join(titles, "  │  ")
}

func (m Model) View() string {
	if m.quit {
		return "Shutting down...\n"
	}

	var s strings.Builder
	s.WriteString(RenderHeader(m.query))
	s.WriteString("\n\n")

	switch {
	case m.loading:
		s.WriteString(fmt.Sprintf("%s Fetching cluster...\n", m.spinner.View()))
		s.WriteString("\n")
		s.WriteString(hintStyle.Render("esc to quit"))
		return s.String()
	case m.err != nil:
		s.WriteString(errorStyle.Render(fmt.Sprintf("❌ %v", m.err)))
		s.WriteString("\n\n")
		s.WriteString(hintStyle.Render("esc to quit"))
		return s.String()
	}

	s.WriteString(RenderDashboard(m.dashboard, m.now()))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n")
	m.input.Placeholder = m.placeholder()
	s.WriteString(m.input.View())
	s.WriteString("\n")
	s.WriteString(m.calculatorResult())
	s.WriteString("\n\n")

	if m.refreshing {
		s.WriteString(fmt.Sprintf("%s Refreshing block...\n", m.spinner.View()))
	} else if m.refreshErr != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Block refresh failed: %v", m.refreshErr)))
		s.WriteString("\n")
	}

	footer := "tab/shift+tab switch calculator | ctrl+t toggle liquidation mode | ctrl+r refresh block | esc quit"
	s.WriteString(hintStyle.Render(footer))

	return s.String()
}
