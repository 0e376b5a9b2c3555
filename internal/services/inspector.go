package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/kelsos/ssv-cluster-debugger/internal/calc"
	"github.com/kelsos/ssv-cluster-debugger/internal/logger"
	"github.com/kelsos/ssv-cluster-debugger/internal/models"
	"github.com/kelsos/ssv-cluster-debugger/internal/subgraph"
)

var log = logger.For("services")

// SnapshotProvider returns the indexed cluster snapshot
type SnapshotProvider interface {
	FetchCluster(ctx context.Context, q models.ClusterQuery) (*models.ClusterSnapshot, error)
}

// ChainReader reads cluster and network state from the views contract
type ChainReader interface {
	ClusterAssetType(ctx context.Context, q models.ClusterQuery) (models.AssetType, error)
	OperatorFee(ctx context.Context, operatorID uint64, assetType models.AssetType) (*big.Int, error)
	NetworkParams(ctx context.Context, assetType models.AssetType) (*models.NetworkParams, error)
	ClusterState(ctx context.Context, q models.ClusterQuery, snapshot models.ClusterSnapshot, assetType models.AssetType) (*models.ContractClusterState, error)
	CurrentBlock(ctx context.Context) (uint64, error)
}

// InspectorService gathers everything a dashboard needs for one cluster
type InspectorService struct {
	snapshots SnapshotProvider
	chain     ChainReader
}

// NewInspectorService wires the snapshot provider and the chain reader
func NewInspectorService(snapshots SnapshotProvider, chain ChainReader) *InspectorService {
	return &InspectorService{
		snapshots: snapshots,
		chain:     chain,
	}
}

// Inspect fetches the snapshot, then reads the contract state, operator fees,
// network parameters and block height concurrently. Any failed read aborts the
// whole request.
func (s *InspectorService) Inspect(ctx context.Context, q models.ClusterQuery) (*calc.Dashboard, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	log.Info("Inspecting cluster %s", q.ID())

	snapshot, err := s.snapshots.FetchCluster(ctx, q)
	if err != nil {
		if errors.Is(err, subgraph.ErrClusterNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, q.ID())
		}
		return nil, upstream(SourceSubgraph, "cluster query", err)
	}

	assetType, err := s.chain.ClusterAssetType(ctx, q)
	if err != nil {
		return nil, upstream(SourceContract, "asset type", err)
	}
	log.Debug("Cluster %s pays fees in %s", q.ID(), assetType)

	var (
		state  *models.ContractClusterState
		params *models.NetworkParams
		block  uint64
	)
	fees := make([]models.OperatorFee, len(q.OperatorIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		state, err = s.chain.ClusterState(gctx, q, *snapshot, assetType)
		if err != nil {
			return upstream(SourceContract, "cluster state", err)
		}
		return nil
	})
	for i, id := range q.OperatorIDs {
		g.Go(func() error {
			fee, err := s.chain.OperatorFee(gctx, id, assetType)
			if err != nil {
				return upstream(SourceContract, fmt.Sprintf("operator %d fee", id), err)
			}
			fees[i] = models.OperatorFee{OperatorID: id, FeePerBlock: fee}
			return nil
		})
	}
	g.Go(func() error {
		var err error
		params, err = s.chain.NetworkParams(gctx, assetType)
		if err != nil {
			return upstream(SourceContract, "network parameters", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		block, err = s.chain.CurrentBlock(gctx)
		if err != nil {
			return upstream(SourceRPC, "block number", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Failed to inspect cluster %s: %v", q.ID(), err)
		return nil, err
	}

	dashboard, err := calc.Compute(calc.Inputs{
		AssetType:    assetType,
		Snapshot:     *snapshot,
		Contract:     *state,
		Operators:    fees,
		Network:      *params,
		CurrentBlock: &block,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute dashboard: %w", err)
	}

	log.Info("Cluster %s: runway %.2f days at block %d", q.ID(), dashboard.Runway.Days, block)
	return dashboard, nil
}

// RefreshBlock re-reads the block height without refetching the cluster
func (s *InspectorService) RefreshBlock(ctx context.Context) (uint64, error) {
	block, err := s.chain.CurrentBlock(ctx)
	if err != nil {
		return 0, upstream(SourceRPC, "block number", err)
	}
	return block, nil
}
