package calc

import "math/big"

// Runway is how long the balance lasts before it reaches the collateral floor
type Runway struct {
	Blocks *big.Int
	Days   float64
}

// ComputeRunway returns 0 blocks when the burn rate is zero or the balance
// does not exceed the collateral, and floor((balance - collateral) / burnRate)
// otherwise.
func ComputeRunway(balance, burnRatePerBlock, collateral *big.Int) Runway {
	burn := orZero(burnRatePerBlock)
	if burn.Sign() <= 0 {
		return zeroRunway()
	}

	available := clampZero(new(big.Int).Sub(orZero(balance), orZero(collateral)))
	blocks := available.Quo(available, burn)
	return Runway{Blocks: blocks, Days: BlocksToDays(blocks)}
}

func zeroRunway() Runway {
	return Runway{Blocks: new(big.Int)}
}
