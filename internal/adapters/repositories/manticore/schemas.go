package manticore

import (
	"fmt"
	"strconv"

	"github.com/terratensor/cnareas/internal/core/domain"
)

const TableAreas = "admin_areas"

// Китайские названия индексируются через ICU сегментацию
var CreateTablesSQL = []string{
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
        id bigint,
        code string attribute indexed,
        name text,
        full_name text,
        parent_names text,
        level int,
        parent_id bigint,
        parent_ids string
    )
    charset_table='cont'
    morphology='icu_chinese'
    index_exact_words='1'`, TableAreas),
}

// areaToDoc конвертирует доменную модель в map для Manticore.
// id документа совпадает с числовым значением кода.
func areaToDoc(a *domain.Area) (map[string]interface{}, error) {
	id, err := strconv.ParseInt(a.ID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid area id %q: %w", a.ID, err)
	}
	parentID, err := strconv.ParseInt(a.ParentID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid parent id %q for %s: %w", a.ParentID, a.ID, err)
	}

	return map[string]interface{}{
		"id":           id,
		"code":         a.ID,
		"name":         a.Name,
		"full_name":    a.FullName,
		"parent_names": a.ParentNames,
		"level":        int(a.Level()),
		"parent_id":    parentID,
		"parent_ids":   a.ParentIDs,
	}, nil
}
