// Package rediscache публикует плоский индекс узлов в Redis:
// хэш <prefix>:area:<id> с полями узла и список <prefix>:children:<id> с id детей.
// Корни леса лежат в списке детей фиктивного корня "0".
package rediscache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/terratensor/cnareas/internal/core/domain"
)

const defaultBatchSize = 500

type Index struct {
	rdb       redis.Cmdable
	prefix    string
	batchSize int
}

func New(rdb redis.Cmdable, prefix string, batchSize int) *Index {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Index{rdb: rdb, prefix: prefix, batchSize: batchSize}
}

// NewClient открывает клиент Redis; db < 0 приводится к 0
func NewClient(addr, password string, db int) *redis.Client {
	if db < 0 {
		db = 0
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

func (x *Index) Name() string {
	return "redis"
}

func (x *Index) Save(ctx context.Context, set *domain.AreaSet) error {
	return x.Publish(ctx, set)
}

// Publish перезаписывает хэши узлов и списки детей пачками через pipeline
func (x *Index) Publish(ctx context.Context, set *domain.AreaSet) error {
	areas := set.Flatten()

	pipe := x.rdb.Pipeline()
	x.writeChildren(ctx, pipe, domain.RootID, authoritativeIDs(set, set.Areas))
	queued := 1

	for _, a := range areas {
		pipe.HSet(ctx, x.areaKey(a.ID), areaFields(a))
		x.writeChildren(ctx, pipe, a.ID, authoritativeIDs(set, a.Children))
		queued++

		if queued >= x.batchSize {
			if _, err := pipe.Exec(ctx); err != nil {
				return fmt.Errorf("failed to publish areas: %w", err)
			}
			queued = 0
		}
	}

	if queued > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to publish areas: %w", err)
		}
	}
	return nil
}

func (x *Index) writeChildren(ctx context.Context, pipe redis.Pipeliner, id string, childIDs []string) {
	key := x.childrenKey(id)
	pipe.Del(ctx, key)
	if len(childIDs) == 0 {
		return
	}
	values := make([]interface{}, len(childIDs))
	for i, c := range childIDs {
		values[i] = c
	}
	pipe.RPush(ctx, key, values...)
}

// Lookup читает узел по id; поля детей не заполняются
func (x *Index) Lookup(ctx context.Context, id string) (*domain.Area, bool, error) {
	fields, err := x.rdb.HGetAll(ctx, x.areaKey(id)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to lookup %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, false, nil
	}
	return areaFromFields(id, fields), true, nil
}

// Children возвращает id детей узла; для корней леса id = "0"
func (x *Index) Children(ctx context.Context, id string) ([]string, error) {
	ids, err := x.rdb.LRange(ctx, x.childrenKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read children of %s: %w", id, err)
	}
	return ids, nil
}

func (x *Index) areaKey(id string) string {
	return x.prefix + ":area:" + id
}

func (x *Index) childrenKey(id string) string {
	return x.prefix + ":children:" + id
}

// authoritativeIDs отбрасывает дубликаты, не попавшие в индекс
func authoritativeIDs(set *domain.AreaSet, areas []*domain.Area) []string {
	ids := make([]string, 0, len(areas))
	for _, a := range areas {
		if set.Index[a.ID] == a {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func areaFields(a *domain.Area) map[string]interface{} {
	return map[string]interface{}{
		"name":        a.Name,
		"level":       int(a.Level()),
		"parentId":    a.ParentID,
		"parentIds":   a.ParentIDs,
		"parentNames": a.ParentNames,
		"fullName":    a.FullName,
		"leaf":        strconv.FormatBool(a.IsLeaf()),
	}
}

func areaFromFields(id string, fields map[string]string) *domain.Area {
	a := &domain.Area{
		ID:          id,
		Name:        fields["name"],
		ParentID:    fields["parentId"],
		ParentIDs:   fields["parentIds"],
		ParentNames: fields["parentNames"],
		FullName:    fields["fullName"],
	}
	// nil означает лист; у внутреннего узла пустой, но не nil срез
	if leaf, err := strconv.ParseBool(fields["leaf"]); err == nil && !leaf {
		a.Children = []*domain.Area{}
	}
	return a
}
