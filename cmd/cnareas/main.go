package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/terratensor/cnareas/internal/adapters/cache/rediscache"
	"github.com/terratensor/cnareas/internal/adapters/repositories/manticore"
	"github.com/terratensor/cnareas/internal/adapters/repositories/postgres"
	"github.com/terratensor/cnareas/internal/app/services"
	"github.com/terratensor/cnareas/internal/config"
	"github.com/terratensor/cnareas/internal/core/domain"
	"github.com/terratensor/cnareas/internal/core/ports"
)

func main() {
	// Флаги перекрывают значения из окружения
	var (
		input  string
		output string
		format string
	)
	flag.StringVar(&input, "input", "", "source file with \"name code\" lines (default: SOURCE_FILE)")
	flag.StringVar(&output, "output", "", "output directory (default: OUTPUT_DIR)")
	flag.StringVar(&format, "format", "", "export format: json, csv (default: EXPORT_FORMAT)")
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if input != "" {
		// путь из флага считается от текущей директории, а не от DATA_DIR
		abs, err := filepath.Abs(input)
		if err != nil {
			log.Fatalf("Invalid input path: %v", err)
		}
		cfg.SourceFile = abs
	}
	if output != "" {
		cfg.OutputDir = output
	}
	if format != "" {
		cfg.ExportFormat = format
	}

	// Создаём контекст с отменой для graceful shutdown
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

	sinks, closeSinks, err := buildSinks(cfg)
	if err != nil {
		closeSinks()
		log.Fatalf("Failed to init sinks: %v", err)
	}
	defer closeSinks()

	// Создаём и запускаем импортер
	importer := services.NewImporter(cfg, sinks...)

	set, err := importer.Run(ctx)
	if set != nil {
		for _, d := range set.Diagnostics {
			log.Printf("diagnostic: %s", d)
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrMalformedCode) {
			log.Printf("Fix the source file and run again")
		}
		closeSinks()
		log.Fatalf("Import failed: %v", err)
	}

	fmt.Printf("Import completed successfully: %d areas, %d diagnostics\n", len(set.Index), len(set.Diagnostics))
}

// buildSinks собирает приёмники: файл всегда, остальные по флагам *_ENABLED
func buildSinks(cfg *config.Config) ([]ports.AreaSink, func(), error) {
	sinks := []ports.AreaSink{services.NewExportService(cfg)}
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
		closers = nil
	}

	if cfg.ManticoreEnabled {
		client, err := manticore.NewClient(cfg.ManticoreHost, cfg.ManticorePort, cfg.ManticoreConnTimeout)
		if err != nil {
			return nil, closeAll, fmt.Errorf("failed to create manticore client: %w", err)
		}
		sinks = append(sinks, manticore.NewAreaSink(client, cfg.BatchSize, cfg.ManticoreTruncate))
	}

	if cfg.PostgresEnabled {
		store, err := postgres.Open(cfg.PostgresDSN(), cfg.BatchSize)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, func() { store.Close() })
		sinks = append(sinks, store)
	}

	if cfg.RedisEnabled {
		rdb := rediscache.NewClient(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
		closers = append(closers, func() { rdb.Close() })
		sinks = append(sinks, rediscache.New(rdb, cfg.RedisKeyPrefix, cfg.BatchSize))
	}

	return sinks, closeAll, nil
}
