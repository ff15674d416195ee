// Package main provides the content importer that loads the YAML catalogs
// into PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/crownspire/mud/internal/config"
	"github.com/crownspire/mud/internal/content"
	"github.com/crownspire/mud/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	contentDir := flag.String("content", "", "path to catalog directory (default: content.dir from config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	dir := *contentDir
	if dir == "" {
		dir = cfg.Content.Dir
	}

	t0 := time.Now()
	cat, err := content.LoadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("load    %d rooms, %d items, %d skills, %d monsters in %s\n",
		len(cat.Rooms), len(cat.Items), len(cat.Skills), len(cat.Monsters),
		time.Since(t0).Round(time.Millisecond))

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	repo := postgres.NewCatalogRepository(pool)

	t1 := time.Now()
	for i := range cat.Rooms {
		if err := repo.UpsertRoom(ctx, &cat.Rooms[i]); err != nil {
			log.Fatalf("importing rooms: %v", err)
		}
	}
	for _, it := range cat.Items {
		if err := repo.UpsertItem(ctx, it.ID, it.Name, it.Type, it.Properties); err != nil {
			log.Fatalf("importing items: %v", err)
		}
	}
	for i := range cat.Skills {
		if err := repo.UpsertSkill(ctx, &cat.Skills[i]); err != nil {
			log.Fatalf("importing skills: %v", err)
		}
	}
	for _, m := range cat.Monsters {
		if err := repo.UpsertMonsterTemplate(ctx, &m.Template); err != nil {
			log.Fatalf("importing monsters: %v", err)
		}
		if err := repo.ReplaceLootTable(ctx, m.Template.ID, m.Loot); err != nil {
			log.Fatalf("importing loot tables: %v", err)
		}
	}
	fmt.Printf("write   catalogs in %s\n", time.Since(t1).Round(time.Millisecond))
	fmt.Printf("import complete in %s\n", time.Since(start).Round(time.Millisecond))
}
