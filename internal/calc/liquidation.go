package calc

import (
	"math"
	"math/big"
	"time"
)

// LiquidationMode selects how a liquidation target is entered
type LiquidationMode int

const (
	// ModeAbsolute takes a target block number
	ModeAbsolute LiquidationMode = iota
	// ModeRelative takes a number of blocks from now
	ModeRelative
)

func (m LiquidationMode) String() string {
	if m == ModeRelative {
		return "relative"
	}
	return "absolute"
}

// Toggle switches between absolute and relative mode
func (m LiquidationMode) Toggle() LiquidationMode {
	if m == ModeRelative {
		return ModeAbsolute
	}
	return ModeRelative
}

// maxEstimateDays bounds the date estimate to something time.Time can represent
const maxEstimateDays = 365 * 100_000

// LiquidationContext is the baseline state a liquidation projection runs against
type LiquidationContext struct {
	Balance          *big.Int
	BurnRatePerBlock *big.Int
	Collateral       *big.Int
	// CurrentBlock is nil when the block height is unknown
	CurrentBlock *uint64
}

// LiquidationProjection answers "what balance liquidates the cluster at block X"
type LiquidationProjection struct {
	Mode                LiquidationMode
	TargetBlocksFromNow *big.Int
	// TargetBlock is nil in relative mode when the current block is unknown
	TargetBlock     *big.Int
	RequiredBalance *big.Int
	MaxWithdrawable *big.Int
}

// ProjectLiquidation computes the balance needed to last until the target and
// how much can be withdrawn while still reaching it.
//
// In absolute mode value is a block number and must be after the current block.
// In relative mode value is a block count from now.
func ProjectLiquidation(lc LiquidationContext, mode LiquidationMode, value *big.Int) (LiquidationProjection, error) {
	if value == nil || value.Sign() < 0 {
		return LiquidationProjection{}, invalid("block", bigString(value), "must not be negative")
	}

	var fromNow, target *big.Int
	switch mode {
	case ModeAbsolute:
		if lc.CurrentBlock == nil {
			return LiquidationProjection{}, invalid("target block", value.String(), "current block is unknown")
		}
		current := new(big.Int).SetUint64(*lc.CurrentBlock)
		if value.Cmp(current) <= 0 {
			return LiquidationProjection{}, invalid("target block", value.String(), "must be greater than current block")
		}
		target = new(big.Int).Set(value)
		fromNow = new(big.Int).Sub(value, current)
	default:
		fromNow = new(big.Int).Set(value)
		if lc.CurrentBlock != nil {
			target = new(big.Int).Add(new(big.Int).SetUint64(*lc.CurrentBlock), value)
		}
	}

	required := new(big.Int).Mul(orZero(lc.BurnRatePerBlock), fromNow)
	required.Add(required, orZero(lc.Collateral))

	return LiquidationProjection{
		Mode:                mode,
		TargetBlocksFromNow: fromNow,
		TargetBlock:         target,
		RequiredBalance:     required,
		MaxWithdrawable:     clampZero(new(big.Int).Sub(orZero(lc.Balance), required)),
	}, nil
}

// LiquidationEstimate is the baseline liquidation point with no user input
type LiquidationEstimate struct {
	// Block is nil when the current block is unknown or the runway is zero
	Block *big.Int
	// Date is wall-clock now plus the runway in days. It does not look at
	// block timestamps, so it drifts with real block times.
	Date *time.Time
}

// BaselineLiquidation projects the current runway onto the chain and the calendar
func BaselineLiquidation(currentBlock *uint64, runway Runway, now time.Time) LiquidationEstimate {
	blocks := orZero(runway.Blocks)
	if currentBlock == nil || blocks.Sign() <= 0 {
		return LiquidationEstimate{}
	}

	block := new(big.Int).Add(new(big.Int).SetUint64(*currentBlock), blocks)
	estimate := LiquidationEstimate{Block: block}

	days := runway.Days
	if days <= maxEstimateDays {
		whole := math.Floor(days)
		rest := time.Duration((days - whole) * float64(24*time.Hour))
		date := now.AddDate(0, 0, int(whole)).Add(rest)
		estimate.Date = &date
	}

	return estimate
}

func bigString(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}
