package main

import (
	"context"
	"fmt"
	"log"

	"github.com/terratensor/cnareas/internal/adapters/repositories/manticore"
	"github.com/terratensor/cnareas/internal/adapters/repositories/postgres"
	"github.com/terratensor/cnareas/internal/config"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	log.Println("Dropping existing tables...")

	failed := false
	if cfg.ManticoreEnabled {
		if err := dropManticore(ctx, cfg); err != nil {
			log.Printf("Error dropping manticore table: %v", err)
			failed = true
		}
	}

	if cfg.PostgresEnabled {
		if err := dropPostgres(ctx, cfg); err != nil {
			log.Printf("Error dropping postgres table: %v", err)
			failed = true
		}
	}

	if failed {
		log.Fatal("Some tables were not dropped")
	}

	log.Println("Done. Run 'cnareas' to rebuild the tables")
}

func dropManticore(ctx context.Context, cfg *config.Config) error {
	client, err := manticore.NewClient(cfg.ManticoreHost, cfg.ManticorePort, cfg.ManticoreConnTimeout)
	if err != nil {
		return fmt.Errorf("failed to create manticore client: %w", err)
	}

	// Проверяем существует ли таблица
	exists, err := client.TableExists(ctx, manticore.TableAreas)
	if err != nil {
		return err
	}
	if !exists {
		log.Printf("Table %s does not exist, skipping", manticore.TableAreas)
		return nil
	}

	log.Printf("Dropping manticore table %s...", manticore.TableAreas)
	if err := client.DropTable(ctx, manticore.TableAreas); err != nil {
		return err
	}
	log.Printf("Table %s dropped successfully", manticore.TableAreas)
	return nil
}

func dropPostgres(ctx context.Context, cfg *config.Config) error {
	store, err := postgres.Open(cfg.PostgresDSN(), cfg.BatchSize)
	if err != nil {
		return err
	}
	defer store.Close()

	log.Printf("Dropping postgres table %s...", postgres.TableAreas)
	if err := store.DropSchema(ctx); err != nil {
		return err
	}
	log.Printf("Table %s dropped successfully", postgres.TableAreas)
	return nil
}
