package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kelsos/ssv-cluster-debugger/internal/calc"
	"github.com/kelsos/ssv-cluster-debugger/internal/logger"
	"github.com/kelsos/ssv-cluster-debugger/internal/models"
)

// DashboardMonitor runs the interactive dashboard for one cluster
type DashboardMonitor struct {
	fetcher Fetcher
	query   models.ClusterQuery
	timeout time.Duration
	program *tea.Program
}

// loadHook calls onLoaded after every successful inspection
type loadHook struct {
	Fetcher
	onLoaded func(models.ClusterQuery, *calc.Dashboard)
}

func (h loadHook) Inspect(ctx context.Context, q models.ClusterQuery) (*calc.Dashboard, error) {
	d, err := h.Fetcher.Inspect(ctx, q)
	if err == nil && h.onLoaded != nil {
		h.onLoaded(q, d)
	}
	return d, err
}

func NewDashboardMonitor(fetcher Fetcher, query models.ClusterQuery, timeout time.Duration) *DashboardMonitor {
	return &DashboardMonitor{
		fetcher: fetcher,
		query:   query,
		timeout: timeout,
	}
}

// OnLoaded registers a callback for successful inspections
func (dm *DashboardMonitor) OnLoaded(fn func(models.ClusterQuery, *calc.Dashboard)) {
	dm.fetcher = loadHook{Fetcher: dm.fetcher, onLoaded: fn}
}

func (dm *DashboardMonitor) Start() error {
	model := NewModel(dm.fetcher, dm.query, dm.timeout)
	dm.program = tea.NewProgram(model, tea.WithAltScreen())

	return nil
}

func (dm *DashboardMonitor) Stop() {
	if dm.program != nil {
		dm.program.Quit()
	}
}

func (dm *DashboardMonitor) Run() error {
	if dm.program == nil {
		if err := dm.Start(); err != nil {
			return err
		}
	}

	logger.Info("Starting dashboard for cluster %s", dm.query.ID())

	// Run the TUI (blocks until quit)
	if _, err := dm.program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}
