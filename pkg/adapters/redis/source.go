package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/autoparse/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "autoparse:schema:"

// Source implements ports.SchemaStore using Redis. Documents are stored as
// plain string values; a sorted set indexes the stored URIs.
type Source struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Source)

// WithTTL sets the expiration for stored documents.
func WithTTL(ttl time.Duration) Option {
	return func(s *Source) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for documents and the index.
func WithPrefix(prefix string) Option {
	return func(s *Source) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New creates a new Redis source with options.
func New(address, password string, db int, opts ...Option) *Source {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis source from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Source {
	s := &Source{
		client: client,
		prefix: defaultPrefix,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Source) key(uri string) string {
	return s.prefix + "doc:" + uri
}

func (s *Source) indexKey() string {
	return s.prefix + "index"
}

// Put stores the document and indexes its URI.
func (s *Source) Put(ctx context.Context, uri string, doc []byte) error {
	if uri == "" {
		return fmt.Errorf("schema uri cannot be empty")
	}

	pipe := s.client.Pipeline()

	// Use 0 for no expiration if ttl is not set.
	pipe.Set(ctx, s.key(uri), doc, s.ttl)

	// Score = expiry time, so List can prune lazily.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: uri,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store schema in redis: %w", err)
	}
	return nil
}

// Fetch retrieves a document from Redis.
func (s *Source) Fetch(ctx context.Context, uri string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(uri)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSchemaNotFound, uri)
		}
		return nil, fmt.Errorf("failed to get schema from redis: %w", err)
	}
	return val, nil
}

// Delete removes the document and its index entry.
func (s *Source) Delete(ctx context.Context, uri string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.key(uri))
	pipe.ZRem(ctx, s.indexKey(), uri)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns the stored URIs, dropping index entries whose documents have expired.
func (s *Source) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired schemas: %w", err)
	}

	uris, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	sort.Strings(uris)
	return uris, nil
}

// Close closes the redis client.
func (s *Source) Close() error {
	return s.client.Close()
}
