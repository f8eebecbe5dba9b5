package exporters

import (
	"fmt"
	"io"
	"os"

	"github.com/terratensor/cnareas/internal/core/ports"
)

type WriterFactory struct{}

func NewWriterFactory() *WriterFactory {
	return &WriterFactory{}
}

func (f *WriterFactory) CreateWriter(w io.Writer, options ports.ExportOptions) (ports.AreaWriter, error) {
	switch options.Format {
	case ports.FormatJSON:
		return NewJSONWriter(w, options)
	case ports.FormatCSV:
		if options.Compact {
			return nil, fmt.Errorf("compact export is not supported for %s", options.Format)
		}
		return NewCSVWriter(w, options)
	default:
		return nil, fmt.Errorf("unsupported format: %s", options.Format)
	}
}

// CreateFileWriter создает writer для файла
func (f *WriterFactory) CreateFileWriter(filePath string, options ports.ExportOptions) (ports.AreaWriter, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	writer, err := f.CreateWriter(file, options)
	if err != nil {
		file.Close()
		os.Remove(filePath)
		return nil, err
	}

	// Возвращаем composit writer который закроет и файл
	return &fileWriter{
		AreaWriter: writer,
		file:       file,
	}, nil
}

type fileWriter struct {
	ports.AreaWriter
	file *os.File
}

func (w *fileWriter) Close() error {
	if err := w.AreaWriter.Close(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

var _ ports.WriterFactory = (*WriterFactory)(nil)
