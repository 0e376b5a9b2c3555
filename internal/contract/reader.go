package contract

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/sync/errgroup"

	"github.com/kelsos/ssv-cluster-debugger/internal/calc"
	"github.com/kelsos/ssv-cluster-debugger/internal/logger"
	"github.com/kelsos/ssv-cluster-debugger/internal/models"
)

var log = logger.For("contract")

//go:embed ssv_views_abi.json
var viewsABIJSON []byte

// Caller is the subset of the Ethereum RPC used by the reader.
// *ethclient.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Dial connects to an execution-layer JSON-RPC endpoint
func Dial(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	c, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}
	return c, nil
}

// clusterTuple mirrors ISSVNetworkCore.Cluster for ABI encoding
type clusterTuple struct {
	ValidatorCount  uint32
	NetworkFeeIndex uint64
	Index           uint64
	Active          bool
	Balance         *big.Int
}

// Reader performs read-only calls against the SSV Network Views contract
type Reader struct {
	caller  Caller
	address common.Address
	abi     abi.ABI
}

// NewReader creates a reader for the views contract at address
func NewReader(caller Caller, address string) (*Reader, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid views contract address %q", address)
	}

	parsed, err := abi.JSON(bytes.NewReader(viewsABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse views ABI: %w", err)
	}

	return &Reader{
		caller:  caller,
		address: common.HexToAddress(address),
		abi:     parsed,
	}, nil
}

// CurrentBlock returns the latest block height
func (r *Reader) CurrentBlock(ctx context.Context) (uint64, error) {
	block, err := r.caller.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get block number: %w", err)
	}
	return block, nil
}

// ClusterAssetType reports which token the cluster pays fees in
func (r *Reader) ClusterAssetType(ctx context.Context, q models.ClusterQuery) (models.AssetType, error) {
	owner, err := ownerAddress(q)
	if err != nil {
		return 0, err
	}

	out, err := r.call(ctx, methodClusterAssetType, owner, q.OperatorIDs)
	if err != nil {
		return 0, err
	}

	raw, err := asBigInt(out)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", methodClusterAssetType, err)
	}
	if !raw.IsUint64() {
		return 0, fmt.Errorf("%s: unknown asset type %s", methodClusterAssetType, raw)
	}
	return models.ParseAssetType(raw.Uint64())
}

// OperatorFee returns the per-block fee of one operator
func (r *Reader) OperatorFee(ctx context.Context, operatorID uint64, assetType models.AssetType) (*big.Int, error) {
	method := familyFor(assetType).operatorFee
	out, err := r.call(ctx, method, operatorID)
	if err != nil {
		return nil, fmt.Errorf("operator %d: %w", operatorID, err)
	}

	fee, err := asBigInt(out)
	if err != nil {
		return nil, fmt.Errorf("%s(%d): %w", method, operatorID, err)
	}
	return fee, nil
}

// NetworkParams reads network fee, liquidation threshold and minimum collateral
func (r *Reader) NetworkParams(ctx context.Context, assetType models.AssetType) (*models.NetworkParams, error) {
	family := familyFor(assetType)
	params := &models.NetworkParams{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := r.callBigInt(gctx, family.networkFee)
		params.NetworkFeePerBlock = v
		return err
	})
	g.Go(func() error {
		v, err := r.callBigInt(gctx, family.liquidationThreshold)
		params.LiquidationThresholdBlocks = v
		return err
	})
	g.Go(func() error {
		v, err := r.callBigInt(gctx, family.minCollateral)
		params.MinCollateral = v
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return params, nil
}

// ClusterState reads the on-chain cluster state.
//
// Liquidation is checked first because the other views revert for a
// liquidated cluster. When the check itself fails the snapshot's active flag
// decides.
func (r *Reader) ClusterState(ctx context.Context, q models.ClusterQuery, snapshot models.ClusterSnapshot, assetType models.AssetType) (*models.ContractClusterState, error) {
	owner, err := ownerAddress(q)
	if err != nil {
		return nil, err
	}
	tuple, err := toTuple(snapshot)
	if err != nil {
		return nil, err
	}
	args := []interface{}{owner, q.OperatorIDs, tuple}

	var ssvEffectiveBalance *big.Int
	if assetType == models.AssetSSV {
		ssvEffectiveBalance = calc.EffectiveBalanceFromValidators(snapshot.ValidatorCount)
	}

	liquidated, err := r.clusterBool(ctx, assetType, func(m methodSet) string { return m.isLiquidated }, args)
	if err != nil {
		log.Warn("Liquidation check unavailable for %s, using snapshot active flag: %v", q.ID(), err)
		liquidated = !snapshot.Active
	}

	if liquidated {
		return &models.ContractClusterState{
			Balance:          new(big.Int),
			BurnRatePerBlock: new(big.Int),
			IsLiquidatable:   false,
			IsLiquidated:     true,
			EffectiveBalance: ssvEffectiveBalance,
		}, nil
	}

	state := &models.ContractClusterState{EffectiveBalance: ssvEffectiveBalance}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := r.clusterBigInt(gctx, assetType, func(m methodSet) string { return m.balance }, args)
		state.Balance = v
		return err
	})
	g.Go(func() error {
		v, err := r.clusterBigInt(gctx, assetType, func(m methodSet) string { return m.burnRate }, args)
		state.BurnRatePerBlock = v
		return err
	})
	g.Go(func() error {
		v, err := r.clusterBool(gctx, assetType, func(m methodSet) string { return m.isLiquidatable }, args)
		state.IsLiquidatable = v
		return err
	})
	if assetType == models.AssetETH {
		g.Go(func() error {
			v, err := r.callBigInt(gctx, methodEffectiveBalance, args...)
			state.EffectiveBalance = v
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return state, nil
}

func (r *Reader) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := r.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", method, err)
	}

	msg := ethereum.CallMsg{
		To:   &r.address,
		Data: data,
	}

	result, err := r.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}

	out, err := r.abi.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", method, err)
	}
	return out, nil
}

func (r *Reader) callBigInt(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	out, err := r.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	v, err := asBigInt(out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return v, nil
}

// callWithFallback tries the asset type's own method family first and the
// other family second
func (r *Reader) callWithFallback(ctx context.Context, assetType models.AssetType, pick func(methodSet) string, args []interface{}) ([]interface{}, error) {
	primary := pick(familyFor(assetType))
	out, err := r.call(ctx, primary, args...)
	if err == nil {
		return out, nil
	}

	secondary := pick(familyFor(assetType.Other()))
	log.Debug("%s failed, falling back to %s: %v", primary, secondary, err)

	out, fallbackErr := r.call(ctx, secondary, args...)
	if fallbackErr != nil {
		return nil, fmt.Errorf("%v; fallback: %w", err, fallbackErr)
	}
	return out, nil
}

func (r *Reader) clusterBigInt(ctx context.Context, assetType models.AssetType, pick func(methodSet) string, args []interface{}) (*big.Int, error) {
	out, err := r.callWithFallback(ctx, assetType, pick, args)
	if err != nil {
		return nil, err
	}
	return asBigInt(out)
}

func (r *Reader) clusterBool(ctx context.Context, assetType models.AssetType, pick func(methodSet) string, args []interface{}) (bool, error) {
	out, err := r.callWithFallback(ctx, assetType, pick, args)
	if err != nil {
		return false, err
	}
	return asBool(out)
}

func ownerAddress(q models.ClusterQuery) (common.Address, error) {
	if !common.IsHexAddress(q.Owner) {
		return common.Address{}, fmt.Errorf("invalid owner address %q", q.Owner)
	}
	return common.HexToAddress(q.Owner), nil
}

func toTuple(s models.ClusterSnapshot) (clusterTuple, error) {
	if s.ValidatorCount > math.MaxUint32 {
		return clusterTuple{}, fmt.Errorf("validator count %d does not fit uint32", s.ValidatorCount)
	}
	balance := s.Balance
	if balance == nil {
		balance = new(big.Int)
	}
	return clusterTuple{
		ValidatorCount:  uint32(s.ValidatorCount),
		NetworkFeeIndex: s.NetworkFeeIndex,
		Index:           s.Index,
		Active:          s.Active,
		Balance:         balance,
	}, nil
}

func asBigInt(out []interface{}) (*big.Int, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("expected 1 return value, got %d", len(out))
	}
	switch v := out[0].(type) {
	case *big.Int:
		return v, nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unexpected return type %T", out[0])
	}
}

func asBool(out []interface{}) (bool, error) {
	if len(out) != 1 {
		return false, fmt.Errorf("expected 1 return value, got %d", len(out))
	}
	v, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected return type %T", out[0])
	}
	return v, nil
}
