package exporters

import (
	"encoding/csv"
	"io"

	"github.com/terratensor/cnareas/internal/core/domain"
	"github.com/terratensor/cnareas/internal/core/ports"
)

// AreaColumns колонки плоской CSV выгрузки
var AreaColumns = []string{
	"id",
	"name",
	"level",
	"parent_id",
	"parent_ids",
	"parent_names",
	"full_name",
}

type CSVWriter struct {
	writer        *csv.Writer
	options       ports.ExportOptions
	headerWritten bool
}

func NewCSVWriter(w io.Writer, options ports.ExportOptions) (*CSVWriter, error) {
	csvWriter := csv.NewWriter(w)
	if options.Delimiter != 0 {
		csvWriter.Comma = options.Delimiter
	} else {
		csvWriter.Comma = ',' // default
	}

	return &CSVWriter{
		writer:  csvWriter,
		options: options,
	}, nil
}

// WriteAreas пишет узлы в прямом порядке, по одной строке на узел
func (w *CSVWriter) WriteAreas(areas []*domain.Area) error {
	if w.options.IncludeHeader && !w.headerWritten {
		if err := w.writer.Write(AreaColumns); err != nil {
			return err
		}
		w.headerWritten = true
	}

	for _, a := range areas {
		row := []string{
			a.ID,
			a.Name,
			a.Level().String(),
			a.ParentID,
			a.ParentIDs,
			a.ParentNames,
			a.FullName,
		}
		if err := w.writer.Write(row); err != nil {
			return err
		}
		if err := w.WriteAreas(a.Children); err != nil {
			return err
		}
	}

	return nil
}

func (w *CSVWriter) Close() error {
	w.writer.Flush()
	return w.writer.Error()
}
