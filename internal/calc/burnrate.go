package calc

import "math/big"

// BurnRate is the rate at which cluster balance is consumed
type BurnRate struct {
	PerBlock *big.Int
	Annual   *big.Int
}

// UnitFee sums operator fees and the network fee into the per-block cost of
// one effective-balance unit
func UnitFee(operatorFees []*big.Int, networkFee *big.Int) (*big.Int, error) {
	total := new(big.Int)
	for _, fee := range operatorFees {
		if fee == nil {
			return nil, invalid("operator fee", "", "missing")
		}
		if fee.Sign() < 0 {
			return nil, invalid("operator fee", fee.String(), "must not be negative")
		}
		total.Add(total, fee)
	}

	if networkFee != nil {
		if networkFee.Sign() < 0 {
			return nil, invalid("network fee", networkFee.String(), "must not be negative")
		}
		total.Add(total, networkFee)
	}

	return total, nil
}

// ComputeBurnRate returns (Σ operatorFees + networkFee) * scale per block, and per year
func ComputeBurnRate(operatorFees []*big.Int, networkFee, scale *big.Int) (BurnRate, error) {
	unit, err := UnitFee(operatorFees, networkFee)
	if err != nil {
		return BurnRate{}, err
	}
	return BurnRateFromUnitFee(unit, scale)
}

// BurnRateFromUnitFee scales an already summed unit fee
func BurnRateFromUnitFee(unitFee, scale *big.Int) (BurnRate, error) {
	unitFee, scale = orZero(unitFee), orZero(scale)
	if unitFee.Sign() < 0 {
		return BurnRate{}, invalid("unit fee", unitFee.String(), "must not be negative")
	}
	if scale.Sign() < 0 {
		return BurnRate{}, invalid("effective balance scale", scale.String(), "must not be negative")
	}

	perBlock := new(big.Int).Mul(unitFee, scale)
	return BurnRate{
		PerBlock: perBlock,
		Annual:   ScaleToAnnual(perBlock),
	}, nil
}

func zeroBurnRate() BurnRate {
	return BurnRate{PerBlock: new(big.Int), Annual: new(big.Int)}
}
