package calc

import (
	"math/big"
	"time"

	"github.com/kelsos/ssv-cluster-debugger/internal/models"
)

// Inputs are the records gathered from the snapshot provider and the chain
type Inputs struct {
	AssetType    models.AssetType
	Snapshot     models.ClusterSnapshot
	Contract     models.ContractClusterState
	Operators    []models.OperatorFee
	Network      models.NetworkParams
	CurrentBlock *uint64
}

// FeeBreakdown splits the burn rate into its operator and network parts
type FeeBreakdown struct {
	OperatorFeesPerBlock *big.Int
	OperatorFeesAnnual   *big.Int
	OperatorFeesScaled   *big.Int
	NetworkFeePerBlock   *big.Int
	NetworkFeeAnnual     *big.Int
	NetworkFeeScaled     *big.Int
}

// Dashboard is the derived view of a cluster. It is rebuilt from Inputs on
// every change and never updated in place.
type Dashboard struct {
	Inputs

	EffectiveBalance *big.Int
	EBScale          *big.Int
	UnitFeePerBlock  *big.Int
	Breakdown        FeeBreakdown

	Balance        *big.Int
	BurnRate       BurnRate
	Collateral     *big.Int
	Runway         Runway
	IsLiquidatable bool

	// ContractBurnRateMatches compares the computed burn rate with the one
	// the contract reports
	ContractBurnRateMatches bool
}

// Compute derives the dashboard metrics. A liquidated cluster short-circuits
// to a zero balance, zero burn rate and zero runway.
func Compute(in Inputs) (*Dashboard, error) {
	eb := in.Contract.EffectiveBalance
	if eb == nil {
		if in.AssetType == models.AssetSSV {
			eb = EffectiveBalanceFromValidators(in.Snapshot.ValidatorCount)
		} else {
			eb = new(big.Int)
		}
	}
	scale := EffectiveBalanceScale(eb)

	operatorFees := new(big.Int)
	for _, op := range in.Operators {
		if op.FeePerBlock == nil || op.FeePerBlock.Sign() < 0 {
			return nil, invalid("operator fee", bigString(op.FeePerBlock), "must be a non-negative amount")
		}
		operatorFees.Add(operatorFees, op.FeePerBlock)
	}

	networkFee := orZero(in.Network.NetworkFeePerBlock)
	unitFee, err := UnitFee([]*big.Int{operatorFees}, networkFee)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Inputs:           in,
		EffectiveBalance: eb,
		EBScale:          scale,
		UnitFeePerBlock:  unitFee,
		Breakdown: FeeBreakdown{
			OperatorFeesPerBlock: operatorFees,
			OperatorFeesAnnual:   ScaleToAnnual(operatorFees),
			NetworkFeePerBlock:   new(big.Int).Set(networkFee),
			NetworkFeeAnnual:     ScaleToAnnual(networkFee),
		},
	}

	if in.Contract.IsLiquidated {
		d.Balance = new(big.Int)
		d.BurnRate = zeroBurnRate()
		d.Collateral = LiquidationCollateral(d.BurnRate.PerBlock, in.Network.LiquidationThresholdBlocks, in.Network.MinCollateral)
		d.Runway = zeroRunway()
		d.Breakdown.OperatorFeesScaled = new(big.Int)
		d.Breakdown.NetworkFeeScaled = new(big.Int)
		d.ContractBurnRateMatches = orZero(in.Contract.BurnRatePerBlock).Sign() == 0
		return d, nil
	}

	d.BurnRate, err = BurnRateFromUnitFee(unitFee, scale)
	if err != nil {
		return nil, err
	}
	d.Breakdown.OperatorFeesScaled = new(big.Int).Mul(d.Breakdown.OperatorFeesAnnual, scale)
	d.Breakdown.NetworkFeeScaled = new(big.Int).Mul(d.Breakdown.NetworkFeeAnnual, scale)

	d.Balance = new(big.Int).Set(orZero(in.Contract.Balance))
	d.Collateral = LiquidationCollateral(d.BurnRate.PerBlock, in.Network.LiquidationThresholdBlocks, in.Network.MinCollateral)
	d.Runway = ComputeRunway(d.Balance, d.BurnRate.PerBlock, d.Collateral)
	d.IsLiquidatable = in.Contract.IsLiquidatable
	d.ContractBurnRateMatches = d.BurnRate.PerBlock.Cmp(orZero(in.Contract.BurnRatePerBlock)) == 0

	return d, nil
}

// Baseline returns the state the what-if calculators start from
func (d *Dashboard) Baseline() Baseline {
	return Baseline{
		AssetType:        d.AssetType,
		Balance:          d.Balance,
		BurnRatePerBlock: d.BurnRate.PerBlock,
		Collateral:       d.Collateral,
		UnitFeePerBlock:  d.UnitFeePerBlock,
		ThresholdBlocks:  orZero(d.Network.LiquidationThresholdBlocks),
		MinCollateral:    orZero(d.Network.MinCollateral),
		EffectiveBalance: d.EffectiveBalance,
		ValidatorCount:   d.Snapshot.ValidatorCount,
		CurrentBlock:     d.CurrentBlock,
		Runway:           d.Runway,
	}
}

// WithCurrentBlock returns a copy of d for a new block height
func (d *Dashboard) WithCurrentBlock(block uint64) *Dashboard {
	next := *d
	next.CurrentBlock = &block
	return &next
}

// Liquidation estimates when the current runway runs out
func (d *Dashboard) Liquidation(now time.Time) LiquidationEstimate {
	return BaselineLiquidation(d.CurrentBlock, d.Runway, now)
}

// ThresholdDays is the liquidation threshold period in days
func (d *Dashboard) ThresholdDays() float64 {
	return BlocksToDays(d.Network.LiquidationThresholdBlocks)
}
