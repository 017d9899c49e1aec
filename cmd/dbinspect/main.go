package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "modernc.org/sqlite"
)

func main() {
	dbPath := os.Getenv("PROMPTKEEP_DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/.promptkeep/promptkeep.db")
	}

	// Read-only, and straight through database/sql rather than the store,
	// so inspecting never runs migrations against the file.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to open database at %s: %v", dbPath, err)
	}

	fmt.Println("=== Database Inspection ===")
	fmt.Println()
	fmt.Printf("Path: %s\n", dbPath)

	var schemaVersion int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&schemaVersion); err != nil {
		log.Fatalf("Failed to read schema version: %v", err)
	}
	fmt.Printf("Schema version: %d\n", schemaVersion)
	fmt.Println()

	for _, table := range []string{"prompts", "versions", "runs", "model_providers"} {
		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil {
			log.Printf("Failed to count %s: %v", table, err)
			continue
		}
		fmt.Printf("%-16s %d\n", table, count)
	}

	fmt.Println()
	fmt.Println("=== Categories ===")
	rows, err := db.Query(`SELECT category_path, COUNT(*) FROM prompts GROUP BY category_path ORDER BY category_path`)
	if err != nil {
		log.Fatalf("Failed to list categories: %v", err)
	}
	for rows.Next() {
		var path string
		var count int
		if err := rows.Scan(&path, &count); err != nil {
			log.Printf("Error reading category row: %v", err)
			continue
		}
		fmt.Printf("  %s (%d)\n", path, count)
	}
	if err := rows.Err(); err != nil {
		log.Printf("Error iterating categories: %v", err)
	}
	rows.Close()

	fmt.Println()
	fmt.Println("=== Recent Versions ===")
	rows, err = db.Query(`
		SELECT p.title, v.semver, v.created_at
		FROM versions v
		JOIN prompts p ON p.uuid = v.prompt_uuid
		ORDER BY v.created_at DESC
		LIMIT 10`)
	if err != nil {
		log.Fatalf("Failed to list recent versions: %v", err)
	}
	for rows.Next() {
		var title, semver, createdAt string
		if err := rows.Scan(&title, &semver, &createdAt); err != nil {
			log.Printf("Error reading version row: %v", err)
			continue
		}
		fmt.Printf("  %s  %-8s %s\n", createdAt, semver, title)
	}
	if err := rows.Err(); err != nil {
		log.Printf("Error iterating versions: %v", err)
	}
	rows.Close()

	fmt.Println()
	fmt.Println("=== Summary ===")

	var pinned int
	if err := db.QueryRow(`SELECT COUNT(*) FROM prompts WHERE prod_version_uuid IS NOT NULL`).Scan(&pinned); err == nil {
		fmt.Printf("Prompts with a production pin: %d\n", pinned)
	}

	var prompts, versions int
	if err := db.QueryRow(`SELECT COUNT(*) FROM prompts`).Scan(&prompts); err == nil && prompts > 0 {
		if err := db.QueryRow(`SELECT COUNT(*) FROM versions`).Scan(&versions); err == nil {
			fmt.Printf("Average versions per prompt: %.1f\n", float64(versions)/float64(prompts))
		}
	}

	var activeModels int
	if err := db.QueryRow(`SELECT COUNT(*) FROM model_providers WHERE active = 1`).Scan(&activeModels); err == nil {
		fmt.Printf("Active models: %d\n", activeModels)
	}
}
