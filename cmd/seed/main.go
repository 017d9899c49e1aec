// Package main provides a tool to seed the database with sample prompts.
//
// The seeded library spans a few categories with multi-version prompts,
// registered model providers, and optional evaluation runs, which makes it
// useful for exercising search, history, and the production-pin flows
// during development. All writes go through the store, so the markdown
// mirror fills in alongside the database.
//
// Usage:
//
//	go run ./cmd/seed
//	go run ./cmd/seed --runs   # Also record sample evaluation runs
//
// Set PROMPTKEEP_DB_PATH and PROMPTKEEP_PROMPTS_DIR to seed a non-default
// location.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/promptkeepapp/promptkeep-server/internal/mirror"
	"github.com/promptkeepapp/promptkeep-server/internal/store"
)

var withRuns = flag.Bool("runs", false, "Record sample evaluation runs against the seeded versions")

type samplePrompt struct {
	title    string
	body     string
	tags     []string
	category string
	// revision, when set, is saved as a second version of the prompt.
	revision string
}

var samplePrompts = []samplePrompt{
	{
		title: "Code Review Checklist",
		body: `You are a senior engineer reviewing a pull request.

Review the following diff for:
- Correctness, including edge cases and error handling
- Naming, readability, and consistency with the surrounding code
- Missing or weakened tests

Respond with a numbered list of findings ordered by severity. For each
finding, quote the relevant lines and suggest a concrete fix.

{{diff}}`,
		tags:     []string{"review", "engineering"},
		category: "Coding/Review",
		revision: `You are a senior engineer reviewing a pull request.

Review the following diff for:
- Correctness, including edge cases and error handling
- Naming, readability, and consistency with the surrounding code
- Missing or weakened tests
- Security issues: injection, unvalidated input, leaked secrets

Respond with a numbered list of findings ordered by severity. For each
finding, quote the relevant lines and suggest a concrete fix. If the diff
looks good, say so briefly instead of inventing problems.

{{diff}}`,
	},
	{
		title: "Go Error Wrapping Refactor",
		body: `Rewrite the following Go code so every returned error is wrapped with
context using fmt.Errorf and %w. Keep sentinel errors comparable with
errors.Is. Do not change the function signatures or behavior.

{{code}}`,
		tags:     []string{"golang", "refactoring"},
		category: "Coding/Go",
	},
	{
		title: "SQL Query Explainer",
		body: `Explain what the following SQL query does in plain language, then point
out anything that could make it slow on large tables (missing index
opportunities, full scans, correlated subqueries).

{{query}}`,
		tags:     []string{"sql", "performance"},
		category: "Coding/SQL",
	},
	{
		title: "Meeting Notes Summarizer",
		body: `Summarize the meeting notes below into three sections:

**Decisions** - what was agreed, one line each.
**Action items** - owner, task, and due date if mentioned.
**Open questions** - anything left unresolved.

Keep the summary under 200 words. Do not invent owners or dates that are
not in the notes.

{{notes}}`,
		tags:     []string{"summarization", "meetings"},
		category: "Writing",
		revision: `Summarize the meeting notes below into three sections:

**Decisions** - what was agreed, one line each.
**Action items** - owner, task, and due date if mentioned. Flag items
with no owner as UNASSIGNED.
**Open questions** - anything left unresolved.

Keep the summary under 200 words. Do not invent owners or dates that are
not in the notes. Preserve the original wording of decisions where
possible.

{{notes}}`,
	},
	{
		title: "Blog Post Outliner",
		body: `Create an outline for a technical blog post on the topic below. The
outline should have a working title, a one-sentence hook, and 4-6
sections with a short note on what each section covers. Assume the
reader is a working developer who has not used the technology before.

Topic: {{topic}}`,
		tags:     []string{"writing", "blogging"},
		category: "Writing/Blog",
	},
	{
		title: "Paper Skim Assistant",
		body: `Read the abstract and introduction below and answer:

1. What problem does the paper address, in one sentence?
2. What is the core contribution?
3. What would I need to already know to read the full paper?
4. Is this relevant to someone building {{context}}? Why or why not?

{{text}}`,
		tags:     []string{"research", "reading"},
		category: "Research",
	},
	{
		title: "Commit Message Writer",
		body: `Write a commit message for the staged diff below. First line is an
imperative summary under 70 characters. Follow with a blank line and a
short body explaining what changed and why, wrapped at 72 columns. Do
not describe the diff mechanically; explain the intent.

{{diff}}`,
		tags:     []string{"git", "engineering"},
		category: "Coding",
	},
}

var sampleModels = []string{"gpt-4o", "claude-3-5-sonnet", "gemini-1.5-pro"}

func main() {
	flag.Parse()

	dbPath := os.Getenv("PROMPTKEEP_DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/.promptkeep/promptkeep.db")
	}
	promptsDir := os.Getenv("PROMPTKEEP_PROMPTS_DIR")
	if promptsDir == "" {
		promptsDir = os.ExpandEnv("$HOME/Documents/PromptKeep")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}
	if err := os.MkdirAll(promptsDir, 0o755); err != nil {
		log.Fatalf("Failed to create prompts directory: %v", err)
	}

	s, err := store.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	// Seeded prompts materialize as markdown files too.
	s.SetMirrorWriter(mirror.New(promptsDir, logger))

	ctx := context.Background()

	// Providers first, so seeded runs reference registered models.
	providers := []struct{ modelID, name, provider string }{
		{"gpt-4o", "GPT-4o", "openai"},
		{"claude-3-5-sonnet", "Claude 3.5 Sonnet", "anthropic"},
		{"gemini-1.5-pro", "Gemini 1.5 Pro", "google"},
	}
	for _, p := range providers {
		_, created, err := s.UpsertProvider(ctx, p.modelID, p.name, p.provider)
		if err != nil {
			log.Printf("Failed to register provider %s: %v", p.modelID, err)
			continue
		}
		if created {
			fmt.Printf("Registered provider: %s (%s)\n", p.name, p.provider)
		}
	}

	// Re-running the seeder should not duplicate the library.
	existing, err := s.ListPrompts(ctx, store.ListPromptsParams{})
	if err != nil {
		log.Fatalf("Failed to list existing prompts: %v", err)
	}
	seeded := make(map[string]bool, len(existing))
	for _, p := range existing {
		seeded[p.Title] = true
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var prompts, versions, runs int
	for _, sample := range samplePrompts {
		if seeded[sample.title] {
			fmt.Printf("Prompt already exists: %s\n", sample.title)
			continue
		}

		prompt, version, err := s.CreatePrompt(ctx, sample.title, sample.body, sample.tags, sample.category)
		if err != nil {
			log.Printf("Failed to create prompt %q: %v", sample.title, err)
			continue
		}
		prompts++
		versions++
		fmt.Printf("Created prompt: %s [%s] %s\n", prompt.Title, prompt.CategoryPath, version.Semver)

		latest := version
		if sample.revision != "" {
			rev, err := s.SaveVersion(ctx, prompt.UUID, sample.revision, nil)
			if err != nil {
				log.Printf("  Failed to save revision of %q: %v", sample.title, err)
			} else {
				versions++
				latest = rev
				fmt.Printf("  Saved revision %s\n", rev.Semver)
			}
		}

		if *withRuns {
			for range 1 + rng.Intn(3) {
				if err := recordSampleRun(ctx, s, latest.UUID, rng); err != nil {
					log.Printf("  Failed to record run for %q: %v", sample.title, err)
					continue
				}
				runs++
			}
		}
	}

	fmt.Printf("\nSeeding complete! %d prompts, %d versions, %d runs\n", prompts, versions, runs)
	fmt.Printf("Markdown mirror: %s\n", promptsDir)
}

// recordSampleRun records one evaluation run with plausible metrics.
func recordSampleRun(ctx context.Context, s *store.Store, versionUUID string, rng *rand.Rand) error {
	judge := 6 + rng.Float64()*3.5
	promptTokens := int64(200 + rng.Intn(900))
	completionTokens := int64(100 + rng.Intn(700))
	cost := float64(promptTokens)*2.5e-6 + float64(completionTokens)*1e-5

	_, err := s.RecordRun(ctx, store.RecordRunParams{
		VersionUUID:      versionUUID,
		Model:            sampleModels[rng.Intn(len(sampleModels))],
		Input:            "Sample input recorded by the seed tool.",
		Output:           "Sample output recorded by the seed tool.",
		JudgeScore:       &judge,
		PromptTokens:     &promptTokens,
		CompletionTokens: &completionTokens,
		CostUSD:          &cost,
	})
	return err
}
