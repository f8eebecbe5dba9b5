package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/terratensor/cnareas/internal/adapters/exporters"
	"github.com/terratensor/cnareas/internal/config"
	"github.com/terratensor/cnareas/internal/core/domain"
	"github.com/terratensor/cnareas/internal/core/ports"
)

const (
	areasFileName       = "areas"
	diagnosticsFileName = "diagnostics.json"
)

// ExportService выгружает лес в OUTPUT_DIR: полный файл, сокращённый JSON
// и отчёт диагностики, если он не пуст
type ExportService struct {
	cfg           *config.Config
	writerFactory *exporters.WriterFactory
}

func NewExportService(cfg *config.Config) *ExportService {
	return &ExportService{
		cfg:           cfg,
		writerFactory: exporters.NewWriterFactory(),
	}
}

func (s *ExportService) Name() string {
	return "file export"
}

func (s *ExportService) Save(ctx context.Context, set *domain.AreaSet) error {
	if err := os.MkdirAll(s.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	format := ports.ExportFormat(strings.ToLower(s.cfg.ExportFormat))
	options := ports.ExportOptions{
		Format:        format,
		FilePath:      filepath.Join(s.cfg.OutputDir, fmt.Sprintf("%s.%s", areasFileName, format)),
		IncludeHeader: true,
		Delimiter:     ',',
		PrettyPrint:   s.cfg.PrettyPrint,
	}
	if err := s.ExportAreas(ctx, set.Areas, options); err != nil {
		return err
	}

	if s.cfg.ExportCompact {
		compact := options
		compact.Format = ports.FormatJSON
		compact.Compact = true
		compact.FilePath = filepath.Join(s.cfg.OutputDir, areasFileName+".compact.json")
		if err := s.ExportAreas(ctx, set.Areas, compact); err != nil {
			return err
		}
	}

	return s.exportDiagnostics(set.Diagnostics)
}

func (s *ExportService) ExportAreas(ctx context.Context, areas []*domain.Area, options ports.ExportOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Printf("Starting export to %s: %s", options.Format, options.FilePath)

	writer, err := s.writerFactory.CreateFileWriter(options.FilePath, options)
	if err != nil {
		return fmt.Errorf("failed to create writer: %w", err)
	}

	if err := writer.WriteAreas(areas); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write areas: %w", err)
	}

	return writer.Close()
}

// exportDiagnostics пишет diagnostics.json; старый отчёт удаляется, если проблем нет
func (s *ExportService) exportDiagnostics(diags []domain.Diagnostic) error {
	path := filepath.Join(s.cfg.OutputDir, diagnosticsFileName)
	if len(diags) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale diagnostics: %w", err)
		}
		return nil
	}

	data, err := json.MarshalIndent(diags, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal diagnostics: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write diagnostics: %w", err)
	}

	log.Printf("Wrote %d diagnostics to %s", len(diags), path)
	return nil
}
