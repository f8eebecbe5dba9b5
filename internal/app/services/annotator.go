package services

import (
	"fmt"
	"strings"

	"github.com/terratensor/cnareas/internal/core/domain"
)

const maxDepth = 8 // при корректных данных глубина не больше 3

// TreeAnnotator вычисляет parentId/parentIds/parentNames/fullName и плоский индекс.
// Входные узлы не изменяются: результат строится из новых domain.Area.
type TreeAnnotator struct {
	maxDepth int
}

func NewTreeAnnotator() *TreeAnnotator {
	return &TreeAnnotator{maxDepth: maxDepth}
}

// Annotate обходит лес от синтетического корня (id "0", пустое имя)
func (t *TreeAnnotator) Annotate(roots []*domain.AreaNode) *domain.AreaSet {
	set := &domain.AreaSet{
		Index: make(map[string]*domain.Area),
	}
	root := &domain.Area{ID: domain.RootID}

	set.Areas = t.annotate(set, roots, root, 1)
	return set
}

func (t *TreeAnnotator) annotate(set *domain.AreaSet, nodes []*domain.AreaNode, parent *domain.Area, depth int) []*domain.Area {
	if len(nodes) == 0 {
		return nil
	}

	areas := make([]*domain.Area, 0, len(nodes))
	for _, node := range nodes {
		area := &domain.Area{
			ID:          node.ID,
			Name:        node.Name,
			ParentID:    parent.ID,
			ParentIDs:   parent.ParentIDs + parent.ID + ",",
			ParentNames: strings.TrimSpace(joinNames(parent.ParentNames, parent.Name)),
		}
		area.FullName = strings.TrimSpace(joinNames(area.ParentNames, area.Name))

		if first, exists := set.Index[area.ID]; exists {
			set.Diagnostics = append(set.Diagnostics, domain.Diagnostic{
				NodeID: area.ID,
				Kind:   domain.KindDuplicateID,
				Detail: fmt.Sprintf("%q duplicates %q, keeping the first", area.FullName, first.FullName),
			})
		} else {
			set.Index[area.ID] = area
		}

		if depth >= t.maxDepth && len(node.Children) > 0 {
			set.Diagnostics = append(set.Diagnostics, domain.Diagnostic{
				NodeID: area.ID,
				Kind:   domain.KindDepthExceeded,
				Detail: fmt.Sprintf("depth %d reached, %d children dropped", depth, len(node.Children)),
			})
		} else {
			area.Children = t.annotate(set, node.Children, area, depth+1)
		}

		areas = append(areas, area)
	}

	return areas
}

func joinNames(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + " " + name
}
