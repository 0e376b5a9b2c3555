package calc

import (
	"math"
	"math/big"
	"strings"
)

const (
	BlocksPerDay  = 7160
	BlocksPerYear = BlocksPerDay * 365 // 2,613,400

	// EffectiveBalanceUnit is the stake that one fee unit covers, in whole ETH
	EffectiveBalanceUnit = 32

	etherDecimals = 18
)

var (
	weiPerEther     = new(big.Int).Exp(big.NewInt(10), big.NewInt(etherDecimals), nil)
	bigBlocksPerDay = big.NewInt(BlocksPerDay)
	bigBlocksYear   = big.NewInt(BlocksPerYear)
	bigEBUnit       = big.NewInt(EffectiveBalanceUnit)
)

// ScaleToAnnual converts a per-block amount into a per-year amount
func ScaleToAnnual(perBlock *big.Int) *big.Int {
	return new(big.Int).Mul(orZero(perBlock), bigBlocksYear)
}

// BlocksToDays is for display only
func BlocksToDays(blocks *big.Int) float64 {
	days, _ := new(big.Float).Quo(
		new(big.Float).SetInt(orZero(blocks)),
		new(big.Float).SetInt(bigBlocksPerDay),
	).Float64()
	return days
}

// DaysToBlocks rounds half away from zero. ok is false when days is not
// finite or days * BlocksPerDay overflows float64.
func DaysToBlocks(days float64) (blocks *big.Int, ok bool) {
	scaled := math.Round(days * BlocksPerDay)
	if math.IsNaN(scaled) || math.IsInf(scaled, 0) {
		return nil, false
	}
	out, _ := new(big.Float).SetFloat64(scaled).Int(nil)
	return out, true
}

// EffectiveBalanceScale is the number of 32 ETH units in eb, rounded down
func EffectiveBalanceScale(eb *big.Int) *big.Int {
	return new(big.Int).Quo(orZero(eb), bigEBUnit)
}

// EffectiveBalanceFromValidators returns count * 32
func EffectiveBalanceFromValidators(count uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(count), bigEBUnit)
}

// FormatEther renders wei as a decimal ether string the way ethers does:
// trailing zeros are trimmed but at least one fractional digit is kept.
func FormatEther(wei *big.Int) string {
	v := orZero(wei)
	sign := ""
	if v.Sign() < 0 {
		sign = "-"
		v = new(big.Int).Neg(v)
	}

	whole, frac := new(big.Int).QuoRem(v, weiPerEther, new(big.Int))
	fracStr := frac.String()
	fracStr = strings.Repeat("0", etherDecimals-len(fracStr)) + fracStr
	fracStr = strings.TrimRight(fracStr, "0")
	if fracStr == "" {
		fracStr = "0"
	}

	return sign + whole.String() + "." + fracStr
}

// ParseEther parses a signed decimal ether amount into wei without rounding
func ParseEther(text string) (*big.Int, error) {
	s := strings.TrimSpace(text)
	negative := false
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, invalid("amount", text, "not a decimal number")
	}
	if hasDot && strings.Contains(frac, ".") {
		return nil, invalid("amount", text, "not a decimal number")
	}
	if !isDigits(whole) || !isDigits(frac) {
		return nil, invalid("amount", text, "not a decimal number")
	}
	if len(frac) > etherDecimals {
		return nil, invalid("amount", text, "too many decimals")
	}

	digits := whole + frac + strings.Repeat("0", etherDecimals-len(frac))
	wei, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, invalid("amount", text, "not a decimal number")
	}
	if negative {
		wei.Neg(wei)
	}
	return wei, nil
}

// parseNonNegativeInt accepts plain base-10 digits only
func parseNonNegativeInt(field, text string) (*big.Int, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "-") {
		return nil, invalid(field, text, "must not be negative")
	}
	if s == "" || !isDigits(s) {
		return nil, invalid(field, text, "not an integer")
	}
	v, _ := new(big.Int).SetString(s, 10)
	return v, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// clampZero returns max(0, v) as a fresh value
func clampZero(v *big.Int) *big.Int {
	if v.Sign() < 0 {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

func maxInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}
