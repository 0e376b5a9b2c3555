package subgraph

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/kelsos/ssv-cluster-debugger/internal/client"
	"github.com/kelsos/ssv-cluster-debugger/internal/logger"
	"github.com/kelsos/ssv-cluster-debugger/internal/models"
)

var log = logger.For("subgraph")

// ErrClusterNotFound is returned when the subgraph has no cluster for the query
var ErrClusterNotFound = errors.New("cluster not found")

const clusterQuery = `query ClusterSnapshot($id: ID!) {
  cluster(id: $id) {
    validatorCount
    networkFeeIndex
    index
    active
    balance
  }
}`

// The Graph encodes BigInt fields as strings
type clusterEntity struct {
	ValidatorCount  string `json:"validatorCount"`
	NetworkFeeIndex string `json:"networkFeeIndex"`
	Index           string `json:"index"`
	Active          bool   `json:"active"`
	Balance         string `json:"balance"`
}

type clusterData struct {
	Cluster *clusterEntity `json:"cluster"`
}

// Provider looks up cluster snapshots in the SSV subgraph
type Provider struct {
	client *client.APIClient
}

// NewProvider creates a snapshot provider on top of a GraphQL endpoint client
func NewProvider(apiClient *client.APIClient) *Provider {
	return &Provider{client: apiClient}
}

// FetchCluster returns the indexed snapshot for q, or ErrClusterNotFound
func (p *Provider) FetchCluster(ctx context.Context, q models.ClusterQuery) (*models.ClusterSnapshot, error) {
	id := q.ID()
	log.Debug("Querying subgraph for cluster %s", id)

	request := models.GraphQLRequest{
		Query:     clusterQuery,
		Variables: map[string]any{"id": id},
	}

	var response models.GraphQLResponse[clusterData]
	if err := p.client.Post(ctx, request, &response); err != nil {
		return nil, fmt.Errorf("failed to query subgraph: %w", err)
	}

	if len(response.Errors) > 0 {
		return nil, fmt.Errorf("subgraph error: %s", response.Errors[0].Message)
	}

	if response.Data.Cluster == nil {
		return nil, fmt.Errorf("%w: %s", ErrClusterNotFound, id)
	}

	snapshot, err := response.Data.Cluster.toSnapshot()
	if err != nil {
		return nil, fmt.Errorf("malformed cluster %s: %w", id, err)
	}

	log.Info("Found cluster %s with %d validators", id, snapshot.ValidatorCount)
	return snapshot, nil
}

func (e *clusterEntity) toSnapshot() (*models.ClusterSnapshot, error) {
	validatorCount, err := parseUint("validatorCount", e.ValidatorCount)
	if err != nil {
		return nil, err
	}
	networkFeeIndex, err := parseUint("networkFeeIndex", e.NetworkFeeIndex)
	if err != nil {
		return nil, err
	}
	index, err := parseUint("index", e.Index)
	if err != nil {
		return nil, err
	}

	balance, ok := new(big.Int).SetString(e.Balance, 10)
	if !ok || balance.Sign() < 0 {
		return nil, fmt.Errorf("invalid balance %q", e.Balance)
	}

	return &models.ClusterSnapshot{
		ValidatorCount:  validatorCount,
		NetworkFeeIndex: networkFeeIndex,
		Index:           index,
		Active:          e.Active,
		Balance:         balance,
	}, nil
}

func parseUint(field, value string) (uint64, error) {
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return v, nil
}
