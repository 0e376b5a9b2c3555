package models

import "fmt"

// AssetType selects which token denominates a cluster and which formula family applies
type AssetType uint8

const (
	AssetSSV AssetType = 0
	AssetETH AssetType = 1
)

// Label returns the unit label shown next to amounts
func (a AssetType) Label() string {
	if a == AssetETH {
		return "ETH"
	}
	return "SSV"
}

func (a AssetType) String() string {
	return a.Label()
}

// Other returns the alternate formula family
func (a AssetType) Other() AssetType {
	if a == AssetETH {
		return AssetSSV
	}
	return AssetETH
}

// Valid reports whether a is a known asset type
func (a AssetType) Valid() bool {
	return a == AssetSSV || a == AssetETH
}

// ParseAssetType converts a raw contract value into an AssetType
func ParseAssetType(v uint64) (AssetType, error) {
	a := AssetType(v)
	if v > 255 || !a.Valid() {
		return 0, fmt.Errorf("unknown asset type %d", v)
	}
	return a, nil
}
