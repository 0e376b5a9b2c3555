package calc

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/ssv-cluster-debugger/internal/models"
)

func dashboardInputs() Inputs {
	return Inputs{
		AssetType: models.AssetETH,
		Snapshot: models.ClusterSnapshot{
			ValidatorCount:  2,
			NetworkFeeIndex: 11,
			Index:           22,
			Active:          true,
			Balance:         bi(50_000),
		},
		Contract: models.ContractClusterState{
			Balance:          bi(50_000),
			BurnRatePerBlock: bi(700),
			IsLiquidatable:   false,
			EffectiveBalance: bi(64),
		},
		Operators: []models.OperatorFee{
			{OperatorID: 1, FeePerBlock: bi(100)},
			{OperatorID: 2, FeePerBlock: bi(200)},
		},
		Network: models.NetworkParams{
			NetworkFeePerBlock:         bi(50),
			LiquidationThresholdBlocks: bi(10),
			MinCollateral:              bi(1000),
		},
		CurrentBlock: u64(1000),
	}
}

func TestComputeDashboard(t *testing.T) {
	d, err := Compute(dashboardInputs())
	require.NoError(t, err)

	assertBig(t, bi(2), d.EBScale)
	assertBig(t, bi(350), d.UnitFeePerBlock)
	assertBig(t, bi(700), d.BurnRate.PerBlock)
	assertBig(t, bi(700*BlocksPerYear), d.BurnRate.Annual)
	assertBig(t, bi(7000), d.Collateral)
	assertBig(t, bi(61), d.Runway.Blocks)
	assert.True(t, d.ContractBurnRateMatches)

	assertBig(t, bi(300), d.Breakdown.OperatorFeesPerBlock)
	assertBig(t, bi(300*BlocksPerYear), d.Breakdown.OperatorFeesAnnual)
	assertBig(t, bi(600*BlocksPerYear), d.Breakdown.OperatorFeesScaled)
	assertBig(t, bi(50*BlocksPerYear), d.Breakdown.NetworkFeeAnnual)
	assertBig(t, bi(100*BlocksPerYear), d.Breakdown.NetworkFeeScaled)

	est := d.Liquidation(time.Unix(0, 0).UTC())
	assertBig(t, bi(1061), est.Block)
}

func TestComputeDashboardBurnRateMismatch(t *testing.T) {
	in := dashboardInputs()
	in.Contract.BurnRatePerBlock = bi(650)

	d, err := Compute(in)
	require.NoError(t, err)
	assert.False(t, d.ContractBurnRateMatches)
	assertBig(t, bi(700), d.BurnRate.PerBlock)
}

func TestComputeDashboardSSVUsesValidatorCount(t *testing.T) {
	in := dashboardInputs()
	in.AssetType = models.AssetSSV
	in.Contract.EffectiveBalance = nil
	in.Snapshot.ValidatorCount = 3

	d, err := Compute(in)
	require.NoError(t, err)
	assertBig(t, bi(96), d.EffectiveBalance)
	assertBig(t, bi(1050), d.BurnRate.PerBlock)
	assert.Equal(t, uint64(3), d.Baseline().ValidatorCount)
}

func TestComputeDashboardLiquidated(t *testing.T) {
	in := dashboardInputs()
	in.Contract = models.ContractClusterState{
		Balance:          new(big.Int),
		BurnRatePerBlock: new(big.Int),
		IsLiquidatable:   true,
		IsLiquidated:     true,
		EffectiveBalance: bi(64),
	}

	d, err := Compute(in)
	require.NoError(t, err)

	assertBig(t, bi(0), d.Balance)
	assertBig(t, bi(0), d.BurnRate.PerBlock)
	assertBig(t, bi(0), d.BurnRate.Annual)
	assertBig(t, bi(0), d.Runway.Blocks)
	assertBig(t, bi(1000), d.Collateral)
	assert.False(t, d.IsLiquidatable)
	assert.True(t, d.Contract.IsLiquidated)

	est := d.Liquidation(time.Now())
	assert.Nil(t, est.Block)
}

func TestComputeDashboardRejectsNegativeFee(t *testing.T) {
	in := dashboardInputs()
	in.Operators[1].FeePerBlock = bi(-1)

	_, err := Compute(in)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDashboardWithCurrentBlock(t *testing.T) {
	d, err := Compute(dashboardInputs())
	require.NoError(t, err)

	next := d.WithCurrentBlock(2000)
	assert.Equal(t, uint64(1000), *d.CurrentBlock)
	assert.Equal(t, uint64(2000), *next.CurrentBlock)
	assertBig(t, bi(2061), next.Liquidation(time.Now()).Block)
	assert.Equal(t, uint64(2000), *next.Baseline().CurrentBlock)
}

func TestDashboardThresholdDays(t *testing.T) {
	in := dashboardInputs()
	in.Network.LiquidationThresholdBlocks = bi(BlocksPerDay * 30)

	d, err := Compute(in)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, d.ThresholdDays(), 1e-9)
}
