package manticore

import (
	"context"
	"fmt"

	"github.com/terratensor/cnareas/internal/core/domain"
)

// AreaSink индексирует аннотированные узлы в таблицу admin_areas.
// С truncate таблица очищается перед записью, чтобы исчезнувшие из списка коды не оставались в индексе.
type AreaSink struct {
	client    *ManticoreClient
	batchSize int
	truncate  bool
}

func NewAreaSink(client *ManticoreClient, batchSize int, truncate bool) *AreaSink {
	return &AreaSink{client: client, batchSize: batchSize, truncate: truncate}
}

func (s *AreaSink) Name() string {
	return "manticore"
}

func (s *AreaSink) Save(ctx context.Context, set *domain.AreaSet) error {
	if err := s.client.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	if s.truncate {
		if err := s.client.TruncateTable(ctx, TableAreas); err != nil {
			return err
		}
	}
	return s.client.InsertAreas(ctx, set.Flatten(), s.batchSize)
}
