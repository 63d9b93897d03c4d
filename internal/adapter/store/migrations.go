package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"tcpou/config"
)

// CurrentSchemaVersion is the layout written by this build. It equals
// len(upgrades).
const CurrentSchemaVersion = 2

// ExtractorVersion changes whenever chunk output for the same input changes.
const ExtractorVersion = 1

var keySchema = []byte("schema")

// Schema records which layout and which discovery settings produced an
// index. A zero Schema means the file has never been prepared.
type Schema struct {
	Version    int    `json:"version"`
	ConfigHash string `json:"config_hash"`
}

// upgrades[v] moves an index from version v to v+1 inside one transaction.
var upgrades = []func(tx *bbolt.Tx) error{
	func(*bbolt.Tx) error { return nil },
	// v1 stored no imports or parse errors, so every document is re-extracted.
	func(tx *bbolt.Tx) error { return clearData(tx) },
}

// ComputeConfigHash hashes the settings that decide which files are indexed
// and what chunks they produce. Pipeline settings are left out since they
// only travel with pipeline batches.
func ComputeConfigHash(cfg *config.Config) string {
	data, _ := json.Marshal(struct {
		Extractor        int      `json:"extractor"`
		Includes         []string `json:"includes"`
		Excludes         []string `json:"excludes"`
		RespectGitignore bool     `json:"respect_gitignore"`
	}{ExtractorVersion, cfg.Index.Includes, cfg.Index.Excludes, cfg.Index.RespectGitignore})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// Schema returns the stored schema record.
func (s *BoltStore) Schema() (Schema, error) {
	var schema Schema
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStats).Get(keySchema)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &schema)
	})
	return schema, err
}

// NeedsRebuild reports whether the stored data cannot be reused for cfg and
// why. An older layout is upgraded rather than rebuilt.
func (s *BoltStore) NeedsRebuild(cfg *config.Config) (bool, string, error) {
	schema, err := s.Schema()
	if err != nil {
		return false, "", fmt.Errorf("failed to read schema: %w", err)
	}
	switch {
	case schema.Version > CurrentSchemaVersion:
		return true, fmt.Sprintf("index written by a newer version (v%d > v%d)", schema.Version, CurrentSchemaVersion), nil
	case schema.ConfigHash != "" && schema.ConfigHash != ComputeConfigHash(cfg):
		return true, "index configuration changed", nil
	}
	return false, "", nil
}

// Migrate runs every pending upgrade and records the schema for cfg. A
// record from a newer build is overwritten, so callers check NeedsRebuild
// first.
func (s *BoltStore) Migrate(cfg *config.Config) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		var schema Schema
		if data := tx.Bucket(bucketStats).Get(keySchema); data != nil {
			if err := json.Unmarshal(data, &schema); err != nil {
				return fmt.Errorf("corrupt schema record: %w", err)
			}
		}
		for v := schema.Version; v < CurrentSchemaVersion; v++ {
			if err := upgrades[v](tx); err != nil {
				return fmt.Errorf("upgrade from v%d to v%d failed: %w", v, v+1, err)
			}
		}
		return putJSON(tx.Bucket(bucketStats), keySchema, Schema{
			Version:    CurrentSchemaVersion,
			ConfigHash: ComputeConfigHash(cfg),
		})
	})
}

// Prepare makes the store usable for an index run under cfg. The data is
// dropped when rebuild is set or NeedsRebuild says so. It returns what was
// done, or "" when the store was already current.
func (s *BoltStore) Prepare(cfg *config.Config, rebuild bool) (string, error) {
	before, err := s.Schema()
	if err != nil {
		return "", err
	}
	stale, reason, err := s.NeedsRebuild(cfg)
	if err != nil {
		return "", err
	}
	if rebuild {
		stale, reason = true, "rebuild requested"
	}
	if stale {
		if err := s.Clear(); err != nil {
			return "", fmt.Errorf("failed to clear index: %w", err)
		}
		reason = "cleared: " + reason
	} else if before.Version > 0 && before.Version < CurrentSchemaVersion {
		reason = fmt.Sprintf("upgraded schema v%d to v%d", before.Version, CurrentSchemaVersion)
	}
	if err := s.Migrate(cfg); err != nil {
		return "", err
	}
	return reason, nil
}

// Clear removes every document, chunk and stat but keeps the schema record.
func (s *BoltStore) Clear() error {
	return s.db.Update(clearData)
}

func clearData(tx *bbolt.Tx) error {
	for _, name := range allBuckets {
		b := tx.Bucket(name)
		if b == nil {
			continue
		}
		var keys [][]byte
		err := b.ForEach(func(k, _ []byte) error {
			if !bytes.Equal(name, bucketStats) || !bytes.Equal(k, keySchema) {
				keys = append(keys, k)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
	}
	return nil
}
