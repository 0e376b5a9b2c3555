package calc

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/kelsos/ssv-cluster-debugger/internal/models"
)

// Baseline is the computed cluster state every what-if calculator starts from
type Baseline struct {
	AssetType        models.AssetType
	Balance          *big.Int
	BurnRatePerBlock *big.Int
	Collateral       *big.Int
	// UnitFeePerBlock is Σ operator fees + network fee for one 32 ETH unit
	UnitFeePerBlock  *big.Int
	ThresholdBlocks  *big.Int
	MinCollateral    *big.Int
	EffectiveBalance *big.Int
	ValidatorCount   uint64
	CurrentBlock     *uint64
	Runway           Runway
}

// LiquidationContext narrows the baseline to what liquidation projections need
func (b Baseline) LiquidationContext() LiquidationContext {
	return LiquidationContext{
		Balance:          b.Balance,
		BurnRatePerBlock: b.BurnRatePerBlock,
		Collateral:       b.Collateral,
		CurrentBlock:     b.CurrentBlock,
	}
}

// DepositOutcome is the cluster after a deposit (positive delta) or withdrawal
type DepositOutcome struct {
	Delta          *big.Int
	CurrentBalance *big.Int
	NewBalance     *big.Int
	Runway         Runway
}

// ApplyDelta clamps the new balance at zero and recomputes the runway
func ApplyDelta(balance, burnRatePerBlock, collateral, delta *big.Int) DepositOutcome {
	newBalance := clampZero(new(big.Int).Add(orZero(balance), orZero(delta)))
	return DepositOutcome{
		Delta:          new(big.Int).Set(orZero(delta)),
		CurrentBalance: new(big.Int).Set(orZero(balance)),
		NewBalance:     newBalance,
		Runway:         ComputeRunway(newBalance, burnRatePerBlock, collateral),
	}
}

// DepositWithdraw parses a signed ether amount such as "0.5" or "-0.02"
func DepositWithdraw(b Baseline, input string) Result[DepositOutcome] {
	if strings.TrimSpace(input) == "" {
		return Unset[DepositOutcome]()
	}

	delta, err := ParseEther(input)
	if err != nil {
		return Invalid[DepositOutcome](err)
	}

	return Computed(ApplyDelta(b.Balance, b.BurnRatePerBlock, b.Collateral, delta))
}

// RunwayTarget is the balance needed to sustain a desired runway
type RunwayTarget struct {
	Days            float64
	TargetBlocks    *big.Int
	CurrentBalance  *big.Int
	RequiredBalance *big.Int
	// Difference is required - current; positive means a shortfall
	Difference *big.Int
}

// Shortfall reports whether a deposit is needed to reach the target
func (r RunwayTarget) Shortfall() bool {
	return r.Difference.Sign() > 0
}

// RequiredForRunway computes burnRate * blocks(days) + collateral against the balance
func RequiredForRunway(balance, burnRatePerBlock, collateral *big.Int, days float64) (RunwayTarget, error) {
	if math.IsNaN(days) || math.IsInf(days, 0) {
		return RunwayTarget{}, invalid("days", strconv.FormatFloat(days, 'f', -1, 64), "not a number")
	}
	if days < 0 {
		return RunwayTarget{}, invalid("days", strconv.FormatFloat(days, 'f', -1, 64), "must not be negative")
	}

	blocks, ok := DaysToBlocks(days)
	if !ok {
		return RunwayTarget{}, invalid("days", strconv.FormatFloat(days, 'g', -1, 64), "too large")
	}
	required := new(big.Int).Mul(orZero(burnRatePerBlock), blocks)
	required.Add(required, orZero(collateral))

	return RunwayTarget{
		Days:            days,
		TargetBlocks:    blocks,
		CurrentBalance:  new(big.Int).Set(orZero(balance)),
		RequiredBalance: required,
		Difference:      new(big.Int).Sub(required, orZero(balance)),
	}, nil
}

// TargetRunway parses a number of days such as "365" or "30.5"
func TargetRunway(b Baseline, input string) Result[RunwayTarget] {
	text := strings.TrimSpace(input)
	if text == "" {
		return Unset[RunwayTarget]()
	}

	days, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Invalid[RunwayTarget](invalid("days", input, "not a number"))
	}

	target, err := RequiredForRunway(b.Balance, b.BurnRatePerBlock, b.Collateral, days)
	if err != nil {
		return Invalid[RunwayTarget](err)
	}
	return Computed(target)
}

// EffectiveBalanceOutcome is the cluster recomputed for a different stake size
type EffectiveBalanceOutcome struct {
	CurrentEffectiveBalance *big.Int
	NewEffectiveBalance     *big.Int
	CurrentValidators       uint64
	NewValidators           uint64
	BurnRate                BurnRate
	Collateral              *big.Int
	Runway                  Runway
}

// RecomputeForEffectiveBalance reruns burn rate, collateral and runway for newEB
func RecomputeForEffectiveBalance(unitFee, newEB, thresholdBlocks, minCollateral, balance *big.Int) (BurnRate, *big.Int, Runway, error) {
	if newEB == nil || newEB.Sign() < 0 {
		return BurnRate{}, nil, Runway{}, invalid("effective balance", bigString(newEB), "must not be negative")
	}

	burn, err := BurnRateFromUnitFee(unitFee, EffectiveBalanceScale(newEB))
	if err != nil {
		return BurnRate{}, nil, Runway{}, err
	}

	collateral := LiquidationCollateral(burn.PerBlock, thresholdBlocks, minCollateral)
	return burn, collateral, ComputeRunway(balance, burn.PerBlock, collateral), nil
}

// UpdateEffectiveBalance takes a new effective balance in ETH for ETH clusters,
// or a new validator count for SSV clusters
func UpdateEffectiveBalance(b Baseline, input string) Result[EffectiveBalanceOutcome] {
	if strings.TrimSpace(input) == "" {
		return Unset[EffectiveBalanceOutcome]()
	}

	field := "validator count"
	if b.AssetType == models.AssetETH {
		field = "effective balance"
	}

	value, err := parseNonNegativeInt(field, input)
	if err != nil {
		return Invalid[EffectiveBalanceOutcome](err)
	}
	if !value.IsUint64() {
		return Invalid[EffectiveBalanceOutcome](invalid(field, input, "too large"))
	}

	var newEB *big.Int
	var newValidators uint64
	if b.AssetType == models.AssetETH {
		newEB = value
		newValidators = EffectiveBalanceScale(newEB).Uint64()
	} else {
		newValidators = value.Uint64()
		newEB = EffectiveBalanceFromValidators(newValidators)
	}

	burn, collateral, runway, err := RecomputeForEffectiveBalance(b.UnitFeePerBlock, newEB, b.ThresholdBlocks, b.MinCollateral, b.Balance)
	if err != nil {
		return Invalid[EffectiveBalanceOutcome](err)
	}

	return Computed(EffectiveBalanceOutcome{
		CurrentEffectiveBalance: new(big.Int).Set(orZero(b.EffectiveBalance)),
		NewEffectiveBalance:     newEB,
		CurrentValidators:       b.ValidatorCount,
		NewValidators:           newValidators,
		BurnRate:                burn,
		Collateral:              collateral,
		Runway:                  runway,
	})
}

// LiquidationTarget parses a block number (absolute) or block count (relative)
func LiquidationTarget(b Baseline, mode LiquidationMode, input string) Result[LiquidationProjection] {
	if strings.TrimSpace(input) == "" {
		return Unset[LiquidationProjection]()
	}

	value, err := parseNonNegativeInt("block", input)
	if err != nil {
		return Invalid[LiquidationProjection](err)
	}

	projection, err := ProjectLiquidation(b.LiquidationContext(), mode, value)
	if err != nil {
		return Invalid[LiquidationProjection](err)
	}
	return Computed(projection)
}
