package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/model"
	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/storage"
)

const keyPrefix = "bookcomments:snapshot:"

type Snapshots struct {
	rdb *goredis.Client
	ttl time.Duration
}

// New wraps an existing client. A zero ttl keeps snapshots forever.
func New(rdb *goredis.Client, ttl time.Duration) *Snapshots {
	return &Snapshots{rdb: rdb, ttl: ttl}
}

func Dial(ctx context.Context, opts goredis.Options, ttl time.Duration) (*Snapshots, error) {
	rdb := goredis.NewClient(&opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return New(rdb, ttl), nil
}

func (s *Snapshots) Save(ctx context.Context, bookID model.ID, comments []model.Comment) error {
	b, err := json.Marshal(comments)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(bookID), b, s.ttl).Err()
}

func (s *Snapshots) Load(ctx context.Context, bookID model.ID) ([]model.Comment, error) {
	b, err := s.rdb.Get(ctx, key(bookID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, storage.ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}

	var out []model.Comment
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", bookID, err)
	}
	return out, nil
}

func (s *Snapshots) Close() error {
	return s.rdb.Close()
}

func key(bookID model.ID) string {
	return keyPrefix + string(bookID)
}
