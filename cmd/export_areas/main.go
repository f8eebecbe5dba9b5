package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/terratensor/cnareas/internal/app/services"
	"github.com/terratensor/cnareas/internal/config"
	"github.com/terratensor/cnareas/internal/core/ports"
)

func main() {
	// Парсим флаги командной строки
	var (
		outputPath string
		format     string
		compact    bool
	)

	flag.StringVar(&outputPath, "output", "", "output file path (default: export/areas_YYYYMMDD_HHMMSS.json)")
	flag.StringVar(&format, "format", "json", "export format (csv, json)")
	flag.BoolVar(&compact, "compact", false, "omit parentIds, parentNames and fullName (json only)")
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Создаём контекст
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Обработка сигналов
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	// Строим лес без приёмников
	set, err := services.NewImporter(cfg).Run(ctx)
	if err != nil {
		log.Fatalf("Failed to build areas: %v", err)
	}

	// Определяем путь для экспорта
	exportPath, err := getExportPath(outputPath, format)
	if err != nil {
		log.Fatalf("Failed to create export path: %v", err)
	}

	// Создаём директорию если не существует
	if err := os.MkdirAll(filepath.Dir(exportPath), 0755); err != nil {
		log.Fatalf("Failed to create export directory: %v", err)
	}

	// Настройки экспорта
	options := ports.ExportOptions{
		Format:        ports.ExportFormat(format),
		FilePath:      exportPath,
		IncludeHeader: true,
		Delimiter:     ',',
		PrettyPrint:   cfg.PrettyPrint,
		Compact:       compact,
	}

	exportService := services.NewExportService(cfg)
	if err := exportService.ExportAreas(ctx, set.Areas, options); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	log.Printf("Export completed successfully: %s (%d areas)", exportPath, len(set.Index))
}

// getExportPath возвращает путь для экспорта
func getExportPath(outputPath, format string) (string, error) {
	if outputPath != "" {
		return outputPath, nil
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("areas_%s.%s", timestamp, format)

	// Путь по умолчанию: export/areas_20250224_143022.json
	absPath, err := filepath.Abs(filepath.Join("export", filename))
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}
