package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/terratensor/cnareas/internal/adapters/downloader"
	"github.com/terratensor/cnareas/internal/app/pipeline"
	"github.com/terratensor/cnareas/internal/config"
	"github.com/terratensor/cnareas/internal/core/domain"
	"github.com/terratensor/cnareas/internal/core/ports"
)

// AreaImporter связывает чтение источника, построение дерева, аннотацию и выгрузку
type AreaImporter struct {
	cfg        *config.Config
	downloader *downloader.Downloader
	reader     *pipeline.AreaFileReader
	builder    *HierarchyBuilder
	annotator  *TreeAnnotator
	sinks      []ports.AreaSink
}

func NewImporter(cfg *config.Config, sinks ...ports.AreaSink) *AreaImporter {
	return &AreaImporter{
		cfg:        cfg,
		downloader: downloader.New(cfg),
		reader:     pipeline.NewAreaFileReader(cfg),
		builder:    NewHierarchyBuilder(),
		annotator:  NewTreeAnnotator(),
		sinks:      sinks,
	}
}

func (i *AreaImporter) Run(ctx context.Context) (*domain.AreaSet, error) {
	start := time.Now()

	if err := i.ensureSource(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare source: %w", err)
	}

	lines, err := i.reader.ReadFile(ctx, i.cfg.SourcePath())
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	set, err := i.Process(lines)
	if err != nil {
		return nil, err
	}

	for _, sink := range i.sinks {
		sinkStart := time.Now()
		if err := sink.Save(ctx, set); err != nil {
			return set, fmt.Errorf("failed to save to %s: %w", sink.Name(), err)
		}
		log.Printf("Saved %d areas to %s in %v", len(set.Index), sink.Name(), time.Since(sinkStart))
	}

	log.Printf("Import completed in %v", time.Since(start))

	if i.cfg.FailOnDiagnostics && len(set.Diagnostics) > 0 {
		return set, fmt.Errorf("%w: %d", domain.ErrDiagnostics, len(set.Diagnostics))
	}
	return set, nil
}

// Process строит и аннотирует лес. Повторный вызов с теми же строками
// даёт идентичный результат.
func (i *AreaImporter) Process(lines []domain.SourceLine) (*domain.AreaSet, error) {
	built, err := i.builder.Build(lines)
	if err != nil {
		return nil, fmt.Errorf("failed to build hierarchy: %w", err)
	}

	log.Printf("Parsed %d lines: %d provinces, %d prefectures, %d counties, %d skipped",
		built.Stats.Lines, built.Stats.Provinces, built.Stats.Prefectures, built.Stats.Counties, built.Stats.Skipped)

	set := i.annotator.Annotate(built.Roots)

	// Сначала проблемы разбора, затем проблемы целостности
	set.Diagnostics = append(append([]domain.Diagnostic{}, built.Diagnostics...), set.Diagnostics...)

	log.Printf("Total provinces: %d, total areas: %d, diagnostics: %d",
		len(set.Areas), len(set.Index), len(set.Diagnostics))

	return set, nil
}

// ensureSource скачивает исходный список, если файла нет и задан SOURCE_URL
func (i *AreaImporter) ensureSource(ctx context.Context) error {
	path := i.cfg.SourcePath()
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) || i.cfg.SourceURL == "" {
		return err
	}

	log.Printf("Source %s not found, downloading from %s", path, i.cfg.SourceURL)
	_, err = i.downloader.DownloadFile(ctx, i.cfg.SourceURL, path)
	return err
}
