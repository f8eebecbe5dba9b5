package ports

import (
	"io"

	"github.com/terratensor/cnareas/internal/core/domain"
)

type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

type ExportOptions struct {
	Format        ExportFormat
	FilePath      string
	IncludeHeader bool // для CSV
	Delimiter     rune // для CSV
	PrettyPrint   bool // для JSON
	Compact       bool // только id, name, parentId, children
}

// AreaWriter пишет аннотированный лес в конкретном формате
type AreaWriter interface {
	WriteAreas(areas []*domain.Area) error
	Close() error
}

// Factory for creating writers
type WriterFactory interface {
	CreateWriter(w io.Writer, options ExportOptions) (AreaWriter, error)
}
