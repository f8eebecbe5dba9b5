package ports

import (
	"context"

	"github.com/terratensor/cnareas/internal/core/domain"
)

// AreaSink принимает результат импорта: файл, поисковый индекс, БД или кэш
type AreaSink interface {
	Name() string
	Save(ctx context.Context, set *domain.AreaSet) error
}
