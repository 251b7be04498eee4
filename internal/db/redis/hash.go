package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/wisata/internal/db"
)

// pipelineChunk bounds the commands sent in one DoMulti round-trip.
const pipelineChunk = 256

// scanCount is the COUNT hint per SCAN page.
const scanCount = 500

// HSet sets hash fields.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	if err := s.do(ctx, s.hsetCmd(key, fields)).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HSetMulti stores many hashes, pipelined in chunks of pipelineChunk.
// A failure stops at the first failing key; earlier chunks stay written.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	for start := 0; start < len(items); start += pipelineChunk {
		chunk := items[start:min(start+pipelineChunk, len(items))]
		cmds := make([]rueidis.Completed, len(chunk))
		for i, item := range chunk {
			cmds[i] = s.hsetCmd(item.Key, item.Fields)
		}
		for i, res := range s.client.DoMulti(ctx, cmds...) {
			if err := res.Error(); err != nil {
				return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", chunk[i].Key, err)}
			}
		}
	}
	return nil
}

// HGetAll returns all fields of a hash. A missing key yields an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	cmd := s.b().Hgetall().Key(key).Build()
	m, err := s.do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return m, nil
}

// HGetAllMulti fetches many hashes in key order, pipelined in chunks.
// Keys deleted since they were listed come back as empty maps.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	out := make([]map[string]string, 0, len(keys))
	for start := 0; start < len(keys); start += pipelineChunk {
		chunk := keys[start:min(start+pipelineChunk, len(keys))]
		cmds := make([]rueidis.Completed, len(chunk))
		for i, key := range chunk {
			cmds[i] = s.b().Hgetall().Key(key).Build()
		}
		for i, res := range s.client.DoMulti(ctx, cmds...) {
			m, err := res.AsStrMap()
			if err != nil {
				return nil, &db.Error{Op: db.OpHGetAll, Err: fmt.Errorf("key %s: %w", chunk[i], err)}
			}
			out = append(out, m)
		}
	}
	return out, nil
}

// Scan returns every key matching pattern. SCAN may repeat a key across
// pages while the keyspace is rehashed; duplicates are dropped.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	seen := make(map[string]struct{})
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(scanCount).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		for _, k := range res.Elements {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		cursor = res.Cursor
		if cursor == 0 {
			return keys, nil
		}
	}
}

func (s *Store) hsetCmd(key string, fields map[string]string) rueidis.Completed {
	cmd := s.b().Hset().Key(key).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	return cmd.Build()
}
