package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/ssv-cluster-debugger/internal/models"
	"github.com/kelsos/ssv-cluster-debugger/internal/subgraph"
)

type fakeSnapshots struct {
	snapshot *models.ClusterSnapshot
	err      error
}

func (f *fakeSnapshots) FetchCluster(context.Context, models.ClusterQuery) (*models.ClusterSnapshot, error) {
	return f.snapshot, f.err
}

type fakeChain struct {
	assetType models.AssetType
	fees      map[uint64]*big.Int
	params    *models.NetworkParams
	state     *models.ContractClusterState
	block     uint64

	failAssetType bool
	failFee       uint64
	failState     bool
	failBlock     bool

	mu        sync.Mutex
	feeAssets []models.AssetType
}

func (f *fakeChain) ClusterAssetType(context.Context, models.ClusterQuery) (models.AssetType, error) {
	if f.failAssetType {
		return 0, errors.New("reverted")
	}
	return f.assetType, nil
}

func (f *fakeChain) OperatorFee(_ context.Context, id uint64, assetType models.AssetType) (*big.Int, error) {
	f.mu.Lock()
	f.feeAssets = append(f.feeAssets, assetType)
	f.mu.Unlock()
	if id == f.failFee {
		return nil, fmt.Errorf("operator %d reverted", id)
	}
	return f.fees[id], nil
}

func (f *fakeChain) NetworkParams(context.Context, models.AssetType) (*models.NetworkParams, error) {
	return f.params, nil
}

func (f *fakeChain) ClusterState(context.Context, models.ClusterQuery, models.ClusterSnapshot, models.AssetType) (*models.ContractClusterState, error) {
	if f.failState {
		return nil, errors.New("timeout")
	}
	return f.state, nil
}

func (f *fakeChain) CurrentBlock(context.Context) (uint64, error) {
	if f.failBlock {
		return 0, errors.New("connection refused")
	}
	return f.block, nil
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		assetType: models.AssetETH,
		fees: map[uint64]*big.Int{
			1: big.NewInt(10),
			2: big.NewInt(20),
			3: big.NewInt(30),
			4: big.NewInt(40),
		},
		params: &models.NetworkParams{
			NetworkFeePerBlock:         big.NewInt(0),
			LiquidationThresholdBlocks: big.NewInt(100),
			MinCollateral:              big.NewInt(0),
		},
		state: &models.ContractClusterState{
			Balance:          big.NewInt(1_000_000),
			BurnRatePerBlock: big.NewInt(200),
			EffectiveBalance: big.NewInt(64),
		},
		block: 500,
	}
}

func testQuery() models.ClusterQuery {
	return models.NewClusterQuery("0x1111111111111111111111111111111111111111", []uint64{3, 1, 4, 2})
}

func testSnapshots() *fakeSnapshots {
	return &fakeSnapshots{snapshot: &models.ClusterSnapshot{
		ValidatorCount: 2,
		Active:         true,
		Balance:        big.NewInt(1_000_000),
	}}
}

func TestInspect(t *testing.T) {
	chain := newFakeChain()
	svc := NewInspectorService(testSnapshots(), chain)

	d, err := svc.Inspect(context.Background(), testQuery())
	require.NoError(t, err)

	require.Len(t, d.Operators, 4)
	for i, op := range d.Operators {
		assert.Equal(t, uint64(i+1), op.OperatorID)
		assert.Equal(t, chain.fees[op.OperatorID].String(), op.FeePerBlock.String())
	}

	// unit fee 100, EB 64 gives scale 2
	assert.Equal(t, "200", d.BurnRate.PerBlock.String())
	assert.Equal(t, "20000", d.Collateral.String())
	assert.Equal(t, "4900", d.Runway.Blocks.String())
	assert.True(t, d.ContractBurnRateMatches)
	require.NotNil(t, d.CurrentBlock)
	assert.Equal(t, uint64(500), *d.CurrentBlock)

	for _, a := range chain.feeAssets {
		assert.Equal(t, models.AssetETH, a)
	}
}

func TestInspectNotFound(t *testing.T) {
	snapshots := &fakeSnapshots{err: fmt.Errorf("lookup: %w", subgraph.ErrClusterNotFound)}
	svc := NewInspectorService(snapshots, newFakeChain())

	_, err := svc.Inspect(context.Background(), testQuery())
	require.ErrorIs(t, err, ErrNotFound)

	var upstreamErr *UpstreamError
	assert.False(t, errors.As(err, &upstreamErr))
}

func TestInspectSubgraphFailure(t *testing.T) {
	snapshots := &fakeSnapshots{err: errors.New("502 bad gateway")}
	svc := NewInspectorService(snapshots, newFakeChain())

	_, err := svc.Inspect(context.Background(), testQuery())
	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, SourceSubgraph, upstreamErr.Source)
}

func TestInspectUpstreamFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fakeChain)
		source Source
	}{
		{"asset type", func(c *fakeChain) { c.failAssetType = true }, SourceContract},
		{"operator fee", func(c *fakeChain) { c.failFee = 3 }, SourceContract},
		{"cluster state", func(c *fakeChain) { c.failState = true }, SourceContract},
		{"block number", func(c *fakeChain) { c.failBlock = true }, SourceRPC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := newFakeChain()
			tt.mutate(chain)
			svc := NewInspectorService(testSnapshots(), chain)

			d, err := svc.Inspect(context.Background(), testQuery())
			assert.Nil(t, d)

			var upstreamErr *UpstreamError
			require.ErrorAs(t, err, &upstreamErr)
			assert.Equal(t, tt.source, upstreamErr.Source)
		})
	}
}

func TestInspectRejectsEmptyQuery(t *testing.T) {
	svc := NewInspectorService(testSnapshots(), newFakeChain())

	_, err := svc.Inspect(context.Background(), models.ClusterQuery{})
	require.Error(t, err)
}

func TestInspectLiquidatedCluster(t *testing.T) {
	chain := newFakeChain()
	chain.state = &models.ContractClusterState{
		Balance:          big.NewInt(0),
		BurnRatePerBlock: big.NewInt(0),
		IsLiquidated:     true,
	}
	chain.params.MinCollateral = big.NewInt(777)
	svc := NewInspectorService(testSnapshots(), chain)

	d, err := svc.Inspect(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Equal(t, "0", d.Balance.String())
	assert.Equal(t, "0", d.Runway.Blocks.String())
	assert.Equal(t, "777", d.Collateral.String())
	assert.False(t, d.IsLiquidatable)
}

func TestRefreshBlock(t *testing.T) {
	chain := newFakeChain()
	svc := NewInspectorService(testSnapshots(), chain)

	chain.block = 900
	block, err := svc.RefreshBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(900), block)

	chain.failBlock = true
	_, err = svc.RefreshBlock(context.Background())
	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, SourceRPC, upstreamErr.Source)
}
