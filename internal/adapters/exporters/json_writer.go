package exporters

import (
	"encoding/json"
	"io"

	"github.com/terratensor/cnareas/internal/core/domain"
	"github.com/terratensor/cnareas/internal/core/ports"
)

// compactArea сокращённое представление без вычисляемых цепочек предков
type compactArea struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	ParentID string         `json:"parentId,omitempty"`
	Children []*compactArea `json:"children,omitempty"`
}

type JSONWriter struct {
	encoder *json.Encoder
	options ports.ExportOptions
}

func NewJSONWriter(w io.Writer, options ports.ExportOptions) (*JSONWriter, error) {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if options.PrettyPrint {
		encoder.SetIndent("", "  ")
	}

	return &JSONWriter{
		encoder: encoder,
		options: options,
	}, nil
}

func (w *JSONWriter) WriteAreas(areas []*domain.Area) error {
	if w.options.Compact {
		compact := toCompact(areas)
		if compact == nil {
			compact = []*compactArea{}
		}
		return w.encoder.Encode(compact)
	}
	if areas == nil {
		areas = []*domain.Area{}
	}
	return w.encoder.Encode(areas)
}

func (w *JSONWriter) Close() error {
	return nil
}

func toCompact(areas []*domain.Area) []*compactArea {
	if areas == nil {
		return nil
	}

	out := make([]*compactArea, len(areas))
	for i, a := range areas {
		out[i] = &compactArea{
			ID:       a.ID,
			Name:     a.Name,
			ParentID: a.ParentID,
			Children: toCompact(a.Children),
		}
	}
	return out
}
