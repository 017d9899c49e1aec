package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/promptkeepapp/promptkeep-server/internal/mirror"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: parsetest <mirror_file.md>")
	}

	path := os.Args[1]
	fmt.Printf("Testing: %s\n\n", path)

	name := filepath.Base(path)
	if parts, ok := mirror.ParseFilename(name); ok {
		fmt.Printf("Filename date: %s\n", parts.Date.Format(time.DateOnly))
		fmt.Printf("Filename slug: %s\n", parts.Slug)
		fmt.Printf("Filename version: %s\n", parts.Semver)
	} else {
		fmt.Printf("Filename does not follow the mirror scheme: %s\n", name)
	}
	fmt.Println()

	content, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read file: %v", err)
	}

	doc, err := mirror.Parse(content)
	if err != nil {
		log.Fatalf("Failed to parse front matter: %v", err)
	}

	fmt.Printf("UUID: %s\n", doc.UUID)
	fmt.Printf("Version: %s\n", doc.Semver)
	fmt.Printf("Title: %s\n", doc.Title)
	fmt.Printf("Tags: %s\n", strings.Join(doc.Tags, ", "))
	fmt.Printf("Created: %s\n", doc.Created.Format(time.DateOnly))
	fmt.Printf("Modified: %s\n", doc.Modified.Format(time.DateOnly))
	fmt.Println()

	lines := strings.Split(strings.TrimRight(doc.Body, "\n"), "\n")
	fmt.Printf("Body: %d bytes, %d lines\n", len(doc.Body), len(lines))
	for i, line := range lines {
		if i < 10 { // Show first 10 lines
			fmt.Printf("  | %s\n", line)
		}
	}
	if len(lines) > 10 {
		fmt.Printf("  ... and %d more lines\n", len(lines)-10)
	}
}
