package utils

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/kelsos/ssv-cluster-debugger/internal/logger"
)

// envCandidates lists the .env files to try, working directory first, then
// the directory of the binary. Duplicates are dropped.
func envCandidates() []string {
	var candidates []string
	seen := map[string]bool{}
	add := func(dir string) {
		path := filepath.Join(dir, ".env")
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if !seen[path] {
			seen[path] = true
			candidates = append(candidates, path)
		}
	}

	if wd, err := os.Getwd(); err == nil {
		add(wd)
	}
	if execPath, err := os.Executable(); err == nil {
		add(filepath.Dir(execPath))
	}
	return candidates
}

// LoadEnvironment loads SSV_* settings from .env files and returns the files
// it read. Earlier files and variables already set in the process win, since
// godotenv never overrides.
func LoadEnvironment() []string {
	return loadEnvFiles(envCandidates())
}

func loadEnvFiles(paths []string) []string {
	var loaded []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			logger.Warn("Failed to load %s: %v", path, err)
			continue
		}
		logger.Info("Loaded environment from %s", path)
		loaded = append(loaded, path)
	}
	return loaded
}
