package contract

import "github.com/kelsos/ssv-cluster-debugger/internal/models"

// methodSet names the views-contract methods of one formula family
type methodSet struct {
	operatorFee          string
	networkFee           string
	liquidationThreshold string
	minCollateral        string

	isLiquidated   string
	isLiquidatable string
	balance        string
	burnRate       string
}

var methodFamilies = map[models.AssetType]methodSet{
	models.AssetETH: {
		operatorFee:          "getOperatorFee",
		networkFee:           "getNetworkFee",
		liquidationThreshold: "getLiquidationThresholdPeriod",
		minCollateral:        "getMinimumLiquidationCollateral",
		isLiquidated:         "isLiquidated",
		isLiquidatable:       "isLiquidatable",
		balance:              "getBalance",
		burnRate:             "getBurnRate",
	},
	models.AssetSSV: {
		operatorFee:          "getOperatorFeeSSV",
		networkFee:           "getNetworkFeeSSV",
		liquidationThreshold: "getLiquidationThresholdPeriodSSV",
		minCollateral:        "getMinimumLiquidationCollateralSSV",
		isLiquidated:         "isLiquidatedSSV",
		isLiquidatable:       "isLiquidatableSSV",
		balance:              "getBalanceSSV",
		burnRate:             "getBurnRateSSV",
	},
}

const (
	methodClusterAssetType = "getClusterAssetType"
	methodEffectiveBalance = "getEffectiveBalance"
)

func familyFor(assetType models.AssetType) methodSet {
	if set, ok := methodFamilies[assetType]; ok {
		return set
	}
	return methodFamilies[models.AssetETH]
}
