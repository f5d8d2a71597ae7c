// Package e2e drives the popcorn binary in a pseudo terminal against a
// local fake OMDb server.
package e2e

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// writeConfig seeds ~/.popcorn/config.json under homeDir so the binary
// talks to endpoint.
func writeConfig(homeDir, endpoint, apiKey string) error {
	dataDir := filepath.Join(homeDir, ".popcorn")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	cfg := map[string]any{
		"omdb": map[string]any{
			"api_key":             apiKey,
			"endpoint":            endpoint,
			"timeout_seconds":     5,
			"requests_per_second": 50,
		},
		"search": map[string]any{
			"min_query_length": 3,
			"debounce_ms":      0,
		},
		"ui": map[string]any{
			"event_log": true,
		},
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dataDir, "config.json"), data, 0600)
}
