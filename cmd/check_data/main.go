package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/terratensor/cnareas/internal/adapters/cache/rediscache"
	"github.com/terratensor/cnareas/internal/adapters/repositories/manticore"
	"github.com/terratensor/cnareas/internal/adapters/repositories/postgres"
	"github.com/terratensor/cnareas/internal/config"
	"github.com/terratensor/cnareas/internal/core/domain"
)

func main() {
	var id string
	flag.StringVar(&id, "id", "110101", "area code to look up in redis")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// 1. Количество документов в Manticore
	if cfg.ManticoreEnabled {
		fmt.Println("\n=== COUNT manticore " + manticore.TableAreas + " ===")
		client, err := manticore.NewClient(cfg.ManticoreHost, cfg.ManticorePort, cfg.ManticoreConnTimeout)
		if err != nil {
			log.Fatalf("Failed to create manticore client: %v", err)
		}
		count, err := client.GetTableCount(ctx, manticore.TableAreas)
		if err != nil {
			log.Printf("Error: %v", err)
		} else {
			fmt.Println(count)
		}
	}

	// 2. Количество строк в Postgres
	if cfg.PostgresEnabled {
		fmt.Println("\n=== COUNT postgres " + postgres.TableAreas + " ===")
		store, err := postgres.Open(cfg.PostgresDSN(), cfg.BatchSize)
		if err != nil {
			log.Fatalf("Failed to open postgres: %v", err)
		}
		count, err := store.Count(ctx)
		if err != nil {
			log.Printf("Error: %v", err)
		} else {
			fmt.Println(count)
		}
		store.Close()
	}

	// 3. Узел и его дети из Redis
	if cfg.RedisEnabled {
		rdb := rediscache.NewClient(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
		defer rdb.Close()
		index := rediscache.New(rdb, cfg.RedisKeyPrefix, cfg.BatchSize)

		fmt.Println("\n=== redis roots ===")
		roots, err := index.Children(ctx, domain.RootID)
		if err != nil {
			log.Printf("Error: %v", err)
		}
		fmt.Printf("%d provinces\n", len(roots))

		fmt.Printf("\n=== redis %s ===\n", id)
		area, ok, err := index.Lookup(ctx, id)
		switch {
		case err != nil:
			log.Printf("Error: %v", err)
		case !ok:
			fmt.Println("not found")
		default:
			printJSON(area)
			children, _ := index.Children(ctx, id)
			fmt.Printf("children: %v\n", children)
		}
	}
}

func printJSON(v interface{}) {
	pretty, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(pretty))
}
