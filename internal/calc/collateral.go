package calc

import "math/big"

// LiquidationCollateral is max(minCollateral, burnRate * threshold).
// Nil inputs count as zero.
func LiquidationCollateral(burnRatePerBlock, thresholdBlocks, minCollateral *big.Int) *big.Int {
	dynamic := new(big.Int).Mul(orZero(burnRatePerBlock), orZero(thresholdBlocks))
	return maxInt(dynamic, orZero(minCollateral))
}
