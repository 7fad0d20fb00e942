// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/grounder"
	"github.com/poiesic/grounder/ai"
	"github.com/poiesic/grounder/core"
	"github.com/poiesic/grounder/grounding"
	"github.com/poiesic/grounder/ingest"
	"github.com/urfave/cli/v2"
)

func main() {
	// Optional .env for embedding host/model defaults; absence is fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "grounder",
		Usage: "Secure grounded-retrieval pipeline over organizational content",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "seed",
				Usage:     "Embed a JSON corpus and seed the document store",
				ArgsUsage: "<corpus.json>",
				Action:    seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"GROUNDER_EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
						EnvVars:  []string{"GROUNDER_EMBEDDING_MODEL"},
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to embed in each batch",
						Value: 16,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ground a prompt in the seeded corpus for an identity",
				ArgsUsage: "<prompt>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"GROUNDER_EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
						EnvVars:  []string{"GROUNDER_EMBEDDING_MODEL"},
					},
					&cli.StringFlag{
						Name:  "user",
						Usage: "Requesting user id",
						Value: "user@contoso.com",
					},
					&cli.StringFlag{
						Name:  "role",
						Usage: "Requesting user's role",
						Value: "Financial Analyst",
					},
					&cli.StringFlag{
						Name:  "department",
						Usage: "Requesting user's department",
						Value: "Finance",
					},
					&cli.StringFlag{
						Name:  "date",
						Usage: "Current date for query expansion (defaults to today)",
					},
					&cli.StringSliceFlag{
						Name:  "group",
						Usage: "Group membership (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "barrier",
						Usage: "Information barrier clearance (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "hc-access",
						Usage: "Grant highly confidential clearance",
					},
					&cli.BoolFlag{
						Name:  "deny-unclassified",
						Usage: "Reject content with no access control metadata",
					},
					&cli.IntFlag{
						Name:  "max-sources",
						Usage: "Number of sources cited in the grounded prompt",
						Value: 5,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func seedCommand(c *cli.Context) error {
	ctx := context.Background()

	corpusPath := c.Args().First()
	if corpusPath == "" {
		return fmt.Errorf("corpus file is required")
	}

	docs, err := ingest.LoadCorpus(corpusPath)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	g, err := grounder.New(c.String("db"),
		grounder.WithAIConfig(ai.NewConfig(
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
		)))
	if err != nil {
		return fmt.Errorf("failed to open grounder: %w", err)
	}
	defer g.Close()

	seeder, err := g.NewSeeder(
		ingest.WithBatchSize(c.Int("batch-size")),
		ingest.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
	)
	if err != nil {
		return fmt.Errorf("failed to create seeder: %w", err)
	}
	defer seeder.Release()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Corpus: %s (%d documents)\n", corpusPath, len(docs))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	stored, err := seeder.Seed(ctx, docs)
	if err != nil {
		return fmt.Errorf("seeding failed after storing %d documents: %w", stored, err)
	}

	fmt.Fprintf(os.Stderr, "Seeded %d documents\n", stored)
	return nil
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	prompt := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if prompt == "" {
		return fmt.Errorf("prompt is required")
	}

	date := c.String("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	identity := &core.UserContext{
		UserId:      c.String("user"),
		Role:        c.String("role"),
		Department:  c.String("department"),
		CurrentDate: date,
		Permissions: core.UserPermissions{
			Groups:                   c.StringSlice("group"),
			AllowedBarriers:          c.StringSlice("barrier"),
			HighlyConfidentialAccess: c.Bool("hc-access"),
		},
	}
	if err := core.ValidateUserContext(identity); err != nil {
		return fmt.Errorf("invalid identity: %w", err)
	}

	opts := []grounder.Option{
		grounder.WithAIConfig(ai.NewConfig(
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
		)),
		grounder.WithPipelineConfig(grounding.NewConfig(
			grounding.WithMaxSources(c.Int("max-sources")),
		)),
	}
	if c.Bool("deny-unclassified") {
		opts = append(opts, grounder.WithSecurityTrimmer(
			grounding.NewTrimmer(grounding.WithDenyUnclassified())))
	}

	g, err := grounder.New(c.String("db"), opts...)
	if err != nil {
		return fmt.Errorf("failed to open grounder: %w", err)
	}
	defer g.Close()

	result, err := g.Process(ctx, prompt, identity)
	if err != nil {
		return fmt.Errorf("grounding failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "directory: %d  semantic: %d  ranked: %d  trimmed: %d  cited: %d\n",
		result.Metadata.RetrievedFromDirectory,
		result.Metadata.RetrievedFromSemantic,
		result.Metadata.AfterDedupAndRank,
		result.Metadata.AfterSecurityTrim,
		len(result.Sources))
	for _, warning := range result.Metadata.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	fmt.Fprintln(os.Stderr)

	fmt.Println(result.GroundedPrompt)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
