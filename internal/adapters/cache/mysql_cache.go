package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/core"
)

// MySQLCache is a MySQL implementation of the CacheRepository interface
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	cache, err := newMySQLCache(db, logger, cleanupFreq)
	if err != nil {
		db.Close()
		return nil, err
	}
	return cache, nil
}

func newMySQLCache(db *sql.DB, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS triage_cache (
			cache_key CHAR(64) PRIMARY KEY,
			result TEXT NOT NULL,
			model_used VARCHAR(255),
			created_at DATETIME,
			expires_at DATETIME,
			INDEX idx_expires_at (expires_at)
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	if cleanupFreq > 0 {
		go cache.startCleanupTask()
	}

	return cache, nil
}

// Get retrieves a cached entry by fingerprint
func (c *MySQLCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	entry := core.CacheEntry{Key: key}
	var result, createdAt, expiresAt string

	err := c.db.QueryRowContext(ctx, `
		SELECT result, model_used, created_at, expires_at
		FROM triage_cache
		WHERE cache_key = ? AND expires_at > UTC_TIMESTAMP()
	`, key).Scan(&result, &entry.ModelUsed, &createdAt, &expiresAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	if entry.Result, err = decodeResult(result); err != nil {
		return nil, err
	}

	entry.CreatedAt, err = time.Parse(sqlTimeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}

	entry.ExpiresAt, err = time.Parse(sqlTimeLayout, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expires_at timestamp: %w", err)
	}

	return &entry, nil
}

// Set stores a cache entry
func (c *MySQLCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	result, err := encodeResult(entry.Result)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO triage_cache (cache_key, result, model_used, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			result = VALUES(result),
			model_used = VALUES(model_used),
			created_at = VALUES(created_at),
			expires_at = VALUES(expires_at)
	`, entry.Key, result, entry.ModelUsed,
		entry.CreatedAt.UTC().Format(sqlTimeLayout), entry.ExpiresAt.UTC().Format(sqlTimeLayout))

	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}

	return nil
}

// Delete removes a cache entry
func (c *MySQLCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM triage_cache
		WHERE cache_key = ?
	`, key)

	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}

	return nil
}

// Cleanup removes expired entries
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM triage_cache
		WHERE expires_at <= UTC_TIMESTAMP()
	`)

	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MySQLCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection
func (c *MySQLCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close MySQL database", zap.Error(err))
		}
	})
}
