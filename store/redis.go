package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/forge-ai/promptable"
	"github.com/redis/go-redis/v9"
)

// Redis keeps each record as a JSON document under "<table>:<id>".
type Redis struct {
	client   *redis.Client
	bindings Bindings
}

func NewRedis(addr, password string, db int, bindings Bindings) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		bindings: bindings,
	}
}

func Key(table, id string) string { return table + ":" + id }

func (r *Redis) Find(ctx context.Context, typeName, id string) (promptable.Record, bool, error) {
	bd, err := r.bindings.lookup(typeName)
	if err != nil {
		return nil, false, err
	}

	val, err := r.client.Get(ctx, Key(bd.Table, id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis_store: get: %w", err)
	}

	fields := map[string]any{}
	if err := json.Unmarshal([]byte(val), &fields); err != nil {
		return nil, false, fmt.Errorf("redis_store: unmarshal: %w", err)
	}
	// A stored "null" decodes to a nil map.
	if fields == nil {
		fields = map[string]any{}
	}

	row := &Row{TypeName: typeName, ID: id, Fields: fields, prompt: bd.Prompt}
	if c, ok := fields["ai_generated_content"].(string); ok {
		row.Content = c
	}
	row.save = func(ctx context.Context, rw *Row) error {
		rw.Fields["ai_generated_content"] = rw.Content
		rw.Fields["ai_generation_status"] = rw.Status
		data, err := json.Marshal(rw.Fields)
		if err != nil {
			return fmt.Errorf("redis_store: marshal: %w", err)
		}
		if err := r.client.Set(ctx, Key(bd.Table, rw.ID), string(data), 0).Err(); err != nil {
			return fmt.Errorf("redis_store: set: %w", err)
		}
		return nil
	}
	return row, true, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
