package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelsos/ssv-cluster-debugger/internal/models"
)

const lastQueryFile = "last_query.json"

// LastQueryData is the last cluster that was inspected successfully
type LastQueryData struct {
	Owner       string   `json:"owner"`
	OperatorIDs []uint64 `json:"operator_ids"`
	UpdatedAt   int64    `json:"updated_at"`
}

// GetAppDataDir returns the application data directory
func GetAppDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	appDataDir := filepath.Join(homeDir, ".ssv-cluster-debugger")
	if err := os.MkdirAll(appDataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create app data directory: %w", err)
	}

	return appDataDir, nil
}

// GetLastQueryFilePath returns the path of the last-query file
func GetLastQueryFilePath() (string, error) {
	appDataDir, err := GetAppDataDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(appDataDir, lastQueryFile), nil
}

// SaveLastQuery records q so the next run can start from it
func SaveLastQuery(q models.ClusterQuery) error {
	filePath, err := GetLastQueryFilePath()
	if err != nil {
		return err
	}

	data := LastQueryData{
		Owner:       q.Owner,
		OperatorIDs: q.OperatorIDs,
		UpdatedAt:   time.Now().Unix(),
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal last query: %w", err)
	}

	if err := os.WriteFile(filePath, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write last query file: %w", err)
	}

	return nil
}

// GetLastQuery returns the saved query, or ok=false when nothing was saved yet
func GetLastQuery() (q models.ClusterQuery, ok bool, err error) {
	filePath, err := GetLastQueryFilePath()
	if err != nil {
		return models.ClusterQuery{}, false, err
	}

	if _, statErr := os.Stat(filePath); os.IsNotExist(statErr) {
		return models.ClusterQuery{}, false, nil
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return models.ClusterQuery{}, false, fmt.Errorf("failed to read last query file: %w", err)
	}

	var data LastQueryData
	if err := json.Unmarshal(fileData, &data); err != nil {
		return models.ClusterQuery{}, false, fmt.Errorf("failed to unmarshal last query: %w", err)
	}

	q = models.NewClusterQuery(data.Owner, data.OperatorIDs)
	if err := q.Validate(); err != nil {
		return models.ClusterQuery{}, false, nil
	}
	return q, true, nil
}
