// Package redis provides a Redis-backed roll history store.
//
// Each roll is stored as a JSON value; a sorted set scored by creation time
// indexes them for newest-first listing.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/roll/internal/platform/grpc/pagination"
	"github.com/louisbranch/roll/internal/services/dice/storage"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "roll:history:"

// Store implements storage.RollStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL expires roll records after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithPrefix sets the key prefix for roll records and the index.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			s.prefix = prefix
		}
	}
}

// New connects a Store to the Redis server at addr.
func New(addr, password string, db int, opts ...Option) (*Store, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...), nil
}

// NewFromClient wraps an existing client. Close closes the client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Ping verifies the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (s *Store) key(id string) string {
	return s.prefix + "roll:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// PutRoll stores one roll record and indexes it by creation time.
func (s *Store) PutRoll(ctx context.Context, record storage.RollRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	record, err := storage.Normalize(record, s.now)
	if err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode roll: %w", err)
	}

	created, err := s.client.SetNX(ctx, s.key(record.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("put roll: %w", err)
	}
	if !created {
		return storage.ErrAlreadyExists
	}
	err = s.client.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(record.CreatedAt.UnixMilli()),
		Member: record.ID,
	}).Err()
	if err != nil {
		return fmt.Errorf("index roll: %w", err)
	}
	return nil
}

// GetRoll returns one roll by ID.
func (s *Store) GetRoll(ctx context.Context, id string) (storage.RollRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RollRecord{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.RollRecord{}, fmt.Errorf("roll id is required")
	}
	value, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return storage.RollRecord{}, storage.ErrNotFound
		}
		return storage.RollRecord{}, fmt.Errorf("get roll: %w", err)
	}
	return decode(value)
}

// ListRolls returns one page of rolls, newest first. Index entries whose
// records expired are pruned before paging.
func (s *Store) ListRolls(ctx context.Context, pageSize int, pageToken string) (storage.RollPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.RollPage{}, err
	}
	if pageSize <= 0 {
		return storage.RollPage{}, fmt.Errorf("page size must be greater than zero")
	}
	offset, err := pagination.DecodeOffset(pageToken)
	if err != nil {
		return storage.RollPage{}, fmt.Errorf("list rolls: %w", err)
	}
	if s.ttl > 0 {
		cutoff := s.now().Add(-s.ttl).UnixMilli()
		if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+strconv.FormatInt(cutoff, 10)).Err(); err != nil {
			return storage.RollPage{}, fmt.Errorf("prune roll index: %w", err)
		}
	}

	ids, err := s.client.ZRevRange(ctx, s.indexKey(), int64(offset), int64(offset+pageSize)).Result()
	if err != nil {
		return storage.RollPage{}, fmt.Errorf("list rolls: %w", err)
	}
	page := storage.RollPage{Rolls: make([]storage.RollRecord, 0, pageSize)}
	if len(ids) > pageSize {
		ids = ids[:pageSize]
		page.NextPageToken = pagination.EncodeOffset(offset + pageSize)
	}
	if len(ids) == 0 {
		return page, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return storage.RollPage{}, fmt.Errorf("list rolls: %w", err)
	}
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		record, err := decode(raw)
		if err != nil {
			return storage.RollPage{}, err
		}
		page.Rolls = append(page.Rolls, record)
	}
	return page, nil
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

func decode(value string) (storage.RollRecord, error) {
	var record storage.RollRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return storage.RollRecord{}, fmt.Errorf("decode roll: %w", err)
	}
	return record, nil
}

var _ storage.RollStore = (*Store)(nil)
