package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/email-triage/internal/core"
)

var (
	// ErrNotFound is returned when a cache entry is not found
	ErrNotFound = errors.New("cache entry not found")
	// ErrExpired is returned when a cache entry has expired
	ErrExpired = errors.New("cache entry expired")
)

// sqlTimeLayout is the DATETIME layout used by the MySQL table
const sqlTimeLayout = "2006-01-02 15:04:05"

// record is the serialized form of a cache entry in stores without columns
type record struct {
	Result    *core.ClassificationResult `json:"result"`
	ModelUsed string                     `json:"model_used"`
	CreatedAt time.Time                  `json:"created_at"`
	ExpiresAt time.Time                  `json:"expires_at"`
}

func encodeRecord(entry *core.CacheEntry) ([]byte, error) {
	data, err := json.Marshal(record{
		Result:    entry.Result,
		ModelUsed: entry.ModelUsed,
		CreatedAt: entry.CreatedAt,
		ExpiresAt: entry.ExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return data, nil
}

func decodeRecord(key string, data []byte) (*core.CacheEntry, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return &core.CacheEntry{
		Key:       key,
		Result:    rec.Result,
		ModelUsed: rec.ModelUsed,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func encodeResult(result *core.ClassificationResult) (string, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode cached result: %w", err)
	}
	return string(data), nil
}

func decodeResult(data string) (*core.ClassificationResult, error) {
	var result core.ClassificationResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return &result, nil
}

// copyEntry returns a copy whose result can be handed out without sharing
func copyEntry(entry *core.CacheEntry) *core.CacheEntry {
	out := *entry
	if entry.Result != nil {
		r := *entry.Result
		r.ThreatIndicators = append([]string(nil), entry.Result.ThreatIndicators...)
		if len(r.ThreatIndicators) == 0 {
			r.ThreatIndicators = nil
		}
		out.Result = &r
	}
	return &out
}
