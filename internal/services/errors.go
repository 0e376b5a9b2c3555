package services

import (
	"errors"
	"fmt"
)

// ErrNotFound means the subgraph has no cluster for the owner and operator set
var ErrNotFound = errors.New("cluster not found")

// Source names the collaborator an upstream failure came from
type Source string

const (
	SourceSubgraph Source = "subgraph"
	SourceContract Source = "contract"
	SourceRPC      Source = "rpc"
)

// UpstreamError wraps a failed read from the subgraph or the chain
type UpstreamError struct {
	Source Source
	Op     string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Source, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func upstream(source Source, op string, err error) error {
	return &UpstreamError{Source: source, Op: op, Err: err}
}
