package tui

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/ssv-cluster-debugger/internal/calc"
	"github.com/kelsos/ssv-cluster-debugger/internal/models"
)

type fakeFetcher struct {
	dashboard *calc.Dashboard
	err       error
	block     uint64
	blockErr  error
	inspected int
}

func (f *fakeFetcher) Inspect(context.Context, models.ClusterQuery) (*calc.Dashboard, error) {
	f.inspected++
	return f.dashboard, f.err
}

func (f *fakeFetcher) RefreshBlock(context.Context) (uint64, error) {
	return f.block, f.blockErr
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000_000_000_000))
}

func testDashboard(t *testing.T, liquidated bool) *calc.Dashboard {
	t.Helper()
	block := uint64(1_000_000)
	d, err := calc.Compute(calc.Inputs{
		AssetType: models.AssetETH,
		Snapshot: models.ClusterSnapshot{
			ValidatorCount: 2,
			Active:         !liquidated,
			Balance:        ether(10),
		},
		Contract: models.ContractClusterState{
			Balance:          ether(10),
			BurnRatePerBlock: big.NewInt(2_000_000_000),
			IsLiquidated:     liquidated,
			EffectiveBalance: big.NewInt(64),
		},
		Operators: []models.OperatorFee{
			{OperatorID: 1, FeePerBlock: big.NewInt(400_000_000)},
			{OperatorID: 2, FeePerBlock: big.NewInt(500_000_000)},
		},
		Network: models.NetworkParams{
			NetworkFeePerBlock:         big.NewInt(100_000_000),
			LiquidationThresholdBlocks: big.NewInt(214_800),
			MinCollateral:              big.NewInt(1_000_000_000_000_000),
		},
		CurrentBlock: &block,
	})
	require.NoError(t, err)
	return d
}

func testQuery() models.ClusterQuery {
	return models.NewClusterQuery("0x1111111111111111111111111111111111111111", []uint64{1, 2})
}

func loadedModel(t *testing.T, f *fakeFetcher) Model {
	t.Helper()
	m := NewModel(f, testQuery(), time.Second)
	m.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return update(m, DashboardLoaded{Dashboard: f.dashboard})
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func typeText(m Model, text string) Model {
	return update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestFetchDashboardCommand(t *testing.T) {
	f := &fakeFetcher{dashboard: testDashboard(t, false)}
	m := NewModel(f, testQuery(), time.Second)

	msg := m.fetchDashboard()()
	loaded, ok := msg.(DashboardLoaded)
	require.True(t, ok)
	assert.Same(t, f.dashboard, loaded.Dashboard)

	f.err = errors.New("cluster not found")
	msg = m.fetchDashboard()()
	failed, ok := msg.(FetchFailed)
	require.True(t, ok)
	assert.EqualError(t, failed.Err, "cluster not found")
}

func TestLoadingAndErrorViews(t *testing.T) {
	f := &fakeFetcher{}
	m := NewModel(f, testQuery(), time.Second)
	assert.Contains(t, m.View(), "Fetching cluster")

	m = update(m, FetchFailed{Err: errors.New("subgraph cluster query failed")})
	assert.Contains(t, m.View(), "subgraph cluster query failed")
}

func TestDashboardView(t *testing.T) {
	m := loadedModel(t, &fakeFetcher{dashboard: testDashboard(t, false)})

	view := m.View()
	assert.Contains(t, view, "Overview")
	assert.Contains(t, view, "Burn rate breakdown")
	assert.Contains(t, view, "Operator 2")
	assert.Contains(t, view, "Network parameters")
	assert.Contains(t, view, `["2","0","0",true,"10000000000000000000"]`)
	assert.Contains(t, view, "Update EB")
}

func TestTabSwitchClearsInput(t *testing.T) {
	m := loadedModel(t, &fakeFetcher{dashboard: testDashboard(t, false)})

	m = typeText(m, "96")
	assert.Equal(t, "96", m.input.Value())

	m = update(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabTargetRunway, m.tab)
	assert.Empty(t, m.input.Value())

	m = update(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m = update(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, TabLiquidation, m.tab)
}

func TestInvalidInputIsInline(t *testing.T) {
	m := loadedModel(t, &fakeFetcher{dashboard: testDashboard(t, false)})
	m = update(m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, TabDepositWithdraw, m.tab)

	before := RenderDashboard(m.dashboard, m.now())
	m = typeText(m, "abc")

	view := m.View()
	assert.Contains(t, view, "Invalid input")
	assert.Contains(t, view, before)
}

func TestDepositCalculator(t *testing.T) {
	m := loadedModel(t, &fakeFetcher{dashboard: testDashboard(t, false)})
	m.tab = TabDepositWithdraw
	m = typeText(m, "1.5")

	assert.Contains(t, m.View(), "11.5 ETH")
}

func TestToggleLiquidationMode(t *testing.T) {
	m := loadedModel(t, &fakeFetcher{dashboard: testDashboard(t, false)})
	m.tab = TabLiquidation
	m = typeText(m, "5000")

	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, calc.ModeRelative, m.mode)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "Liquidation (relative)")

	m = typeText(m, "5000")
	assert.Contains(t, m.View(), "1005000")
}

func TestRefreshBlock(t *testing.T) {
	f := &fakeFetcher{dashboard: testDashboard(t, false), block: 1_000_100}
	m := loadedModel(t, f)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.refreshing)

	m = update(m, cmd())
	assert.False(t, m.refreshing)
	require.NotNil(t, m.dashboard.CurrentBlock)
	assert.Equal(t, uint64(1_000_100), *m.dashboard.CurrentBlock)

	m = update(m, BlockRefreshed{Err: errors.New("rpc down")})
	assert.Equal(t, uint64(1_000_100), *m.dashboard.CurrentBlock)
	assert.Contains(t, m.View(), "Block refresh failed")
}

func TestRefreshIgnoredWhileLoading(t *testing.T) {
	m := NewModel(&fakeFetcher{}, testQuery(), time.Second)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Nil(t, cmd)
	assert.False(t, next.(Model).refreshing)
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := loadedModel(t, &fakeFetcher{dashboard: testDashboard(t, false)})
		next, cmd := m.Update(tea.KeyMsg{Type: key})
		require.NotNil(t, cmd)
		assert.True(t, next.(Model).quit)
	}
}

func TestLiquidatedClusterView(t *testing.T) {
	m := loadedModel(t, &fakeFetcher{dashboard: testDashboard(t, true)})
	assert.Contains(t, m.View(), "Liquidated")
}

func TestLoadHook(t *testing.T) {
	f := &fakeFetcher{dashboard: testDashboard(t, false)}
	var saved []models.ClusterQuery

	dm := NewDashboardMonitor(f, testQuery(), time.Second)
	dm.OnLoaded(func(q models.ClusterQuery, _ *calc.Dashboard) {
		saved = append(saved, q)
	})

	_, err := dm.fetcher.Inspect(context.Background(), testQuery())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, testQuery().ID(), saved[0].ID())

	f.err = errors.New("boom")
	_, _ = dm.fetcher.Inspect(context.Background(), testQuery())
	assert.Len(t, saved, 1)
}
