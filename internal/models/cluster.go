package models

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// ClusterSnapshot is the indexed cluster state as last seen by the subgraph
type ClusterSnapshot struct {
	ValidatorCount  uint64   `json:"validatorCount"`
	NetworkFeeIndex uint64   `json:"networkFeeIndex"`
	Index           uint64   `json:"index"`
	Active          bool     `json:"active"`
	Balance         *big.Int `json:"balance"`
}

// Tuple returns the snapshot in contract tuple order as single-line JSON.
// Numbers are quoted the way the subgraph returns them, only active stays a bool.
func (s ClusterSnapshot) Tuple() string {
	balance := "0"
	if s.Balance != nil {
		balance = s.Balance.String()
	}
	parts := []any{
		strconv.FormatUint(s.ValidatorCount, 10),
		strconv.FormatUint(s.NetworkFeeIndex, 10),
		strconv.FormatUint(s.Index, 10),
		s.Active,
		balance,
	}
	out, _ := json.Marshal(parts)
	return string(out)
}

// OperatorFee is the per-block fee of a single operator
type OperatorFee struct {
	OperatorID  uint64   `json:"operatorId"`
	FeePerBlock *big.Int `json:"feePerBlock"`
}

// NetworkParams holds the network-wide parameters for one asset type
type NetworkParams struct {
	NetworkFeePerBlock         *big.Int `json:"networkFeePerBlock"`
	LiquidationThresholdBlocks *big.Int `json:"liquidationThresholdBlocks"`
	MinCollateral              *big.Int `json:"minCollateral"`
}

// ContractClusterState is what the views contract reports for a cluster.
// EffectiveBalance is nil when the contract could not report it.
type ContractClusterState struct {
	Balance          *big.Int `json:"balance"`
	BurnRatePerBlock *big.Int `json:"burnRatePerBlock"`
	IsLiquidatable   bool     `json:"isLiquidatable"`
	IsLiquidated     bool     `json:"isLiquidated"`
	EffectiveBalance *big.Int `json:"effectiveBalance,omitempty"`
}

// ClusterQuery identifies a cluster by owner and operator set
type ClusterQuery struct {
	Owner       string   `json:"owner"`
	OperatorIDs []uint64 `json:"operatorIds"`
}

// NewClusterQuery trims the owner and sorts a copy of the operator IDs
func NewClusterQuery(owner string, operatorIDs []uint64) ClusterQuery {
	ids := append([]uint64(nil), operatorIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ClusterQuery{Owner: strings.TrimSpace(owner), OperatorIDs: ids}
}

// ID returns the subgraph identity of the cluster
func (q ClusterQuery) ID() string {
	ids := append([]uint64(nil), q.OperatorIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, 0, len(ids)+1)
	parts = append(parts, strings.ToLower(q.Owner))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(id, 10))
	}
	return strings.Join(parts, "-")
}

// Validate checks that the query names an owner and at least one operator
func (q ClusterQuery) Validate() error {
	if q.Owner == "" {
		return fmt.Errorf("owner address is required")
	}
	if len(q.OperatorIDs) == 0 {
		return fmt.Errorf("at least one operator ID is required")
	}
	return nil
}

// ParseOperatorIDs parses a comma separated list such as "5,6,7,523".
// Entries that are not numbers are skipped and the result is sorted ascending.
func ParseOperatorIDs(raw string) ([]uint64, error) {
	var ids []uint64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("no valid operator IDs in %q", raw)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
