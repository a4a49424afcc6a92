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
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/curator"
	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/publish"
	"github.com/poiesic/curator/storage"
	"github.com/poiesic/curator/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "curator",
		Usage: "Document curation pipeline: ingest, edit, and publish semantic chunks",
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
				Name:      "ingest",
				Usage:     "Ingest a document and create a draft session",
				ArgsUsage: "[file]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User ID owning the draft session",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "OpenAI-compatible service host URL for chunking and embedding",
					},
					&cli.StringFlag{
						Name:  "chunker-model",
						Usage: "Model name for semantic chunking",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Model name for text embeddings",
					},
					&cli.IntFlag{
						Name:  "max-input-tokens",
						Usage: "Chunking model input budget per call",
					},
					&cli.DurationFlag{
						Name:  "session-ttl",
						Usage: "Draft session lifetime before automatic expiry",
						Value: badger.DefaultSessionTTL,
					},
				},
			},
			{
				Name:  "session",
				Usage: "Inspect draft sessions",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Print a session and its chunks",
						Action: sessionShowCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "db",
								Aliases:  []string{"d"},
								Usage:    "Path to BadgerDB database directory",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "id",
								Usage:    "Session ID",
								Required: true,
							},
							&cli.BoolFlag{
								Name:  "full",
								Usage: "Print full chunk text instead of a one-line preview",
							},
						},
					},
					{
						Name:   "list",
						Usage:  "List session IDs owned by a user",
						Action: sessionListCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "db",
								Aliases:  []string{"d"},
								Usage:    "Path to BadgerDB database directory",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "user",
								Aliases:  []string{"u"},
								Usage:    "User ID",
								Required: true,
							},
						},
					},
				},
			},
			{
				Name:   "publish",
				Usage:  "Embed a previewed session's chunks and publish them to a collection",
				Action: publishCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Session ID to publish",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "collection",
						Aliases:  []string{"c"},
						Usage:    "Target vector collection name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "Acting user ID recorded on published points",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "dim",
						Usage:    "Vector dimension for the collection",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "OpenAI-compatible service host URL for embedding",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Model name for text embeddings",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed in each batch",
						Value: publish.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding batches",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 500 * time.Millisecond,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// aiConfigFromFlags builds an AI config from the shared service flags,
// leaving defaults in place for anything unset.
func aiConfigFromFlags(c *cli.Context) *ai.Config {
	var opts []ai.ConfigOption
	if host := c.String("host"); host != "" {
		opts = append(opts, ai.WithHost(host))
	}
	if model := c.String("chunker-model"); model != "" {
		opts = append(opts, ai.WithChunkerModel(model))
	}
	if model := c.String("embedding-model"); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if n := c.Int("max-input-tokens"); n > 0 {
		opts = append(opts, ai.WithMaxInputTokens(n))
	}
	return ai.NewConfig(opts...)
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	content, err := readInput(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	pipeline, err := curator.NewPipeline(c.String("db"),
		curator.WithAIConfig(aiConfigFromFlags(c)),
		curator.WithSessionTTL(c.Duration("session-ttl")))
	if err != nil {
		return fmt.Errorf("failed to open pipeline: %w", err)
	}
	defer pipeline.Close()

	ingester, err := pipeline.NewIngestPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingest pipeline: %w", err)
	}

	session, err := ingester.Ingest(ctx, core.SourceTypeManual, content, c.String("user"))
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Session:  %s\n", session.Id)
	fmt.Printf("Source:   %s\n", session.SourceId)
	fmt.Printf("Status:   %s\n", session.Status)
	fmt.Printf("Chunks:   %d\n", len(session.Chunks))
	return nil
}

func sessionShowCommand(c *cli.Context) error {
	ctx := context.Background()

	repo, backend, err := openRepository(c.String("db"))
	if err != nil {
		return err
	}
	defer backend.Close()
	defer repo.Close()

	session, err := repo.GetSession(ctx, c.String("id"))
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	fmt.Printf("Session:  %s\n", session.Id)
	fmt.Printf("Source:   %s (%s)\n", session.SourceId, session.SourceType)
	fmt.Printf("URL:      %s\n", session.SourceURL)
	fmt.Printf("User:     %s\n", session.UserId)
	fmt.Printf("Status:   %s\n", session.Status)
	fmt.Printf("Version:  %d\n", session.Version)
	fmt.Printf("Updated:  %s\n", session.UpdatedAt.Format(time.RFC3339))
	fmt.Printf("Chunks:   %d\n", len(session.Chunks))

	for i := range session.Chunks {
		chunk := &session.Chunks[i]
		dirty := " "
		if chunk.Dirty {
			dirty = "*"
		}
		heading := strings.Join(chunk.HeadingPath, " > ")
		fmt.Printf("\n[%d]%s %s (%d tokens) %s\n", chunk.Id, dirty, chunk.Type, chunk.TokenCount, heading)
		if c.Bool("full") {
			fmt.Println(chunk.Text)
		} else {
			fmt.Printf("  %s\n", preview(chunk.Text, 100))
		}
	}
	return nil
}

func sessionListCommand(c *cli.Context) error {
	ctx := context.Background()

	repo, backend, err := openRepository(c.String("db"))
	if err != nil {
		return err
	}
	defer backend.Close()
	defer repo.Close()

	ids, err := repo.ListSessionsByUser(ctx, c.String("user"))
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	for _, id := range ids {
		fmt.Println(id)
	}
	fmt.Fprintf(os.Stderr, "%d session(s)\n", len(ids))
	return nil
}

func publishCommand(c *cli.Context) error {
	ctx := context.Background()

	pipeline, err := curator.NewPipeline(c.String("db"),
		curator.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return fmt.Errorf("failed to open pipeline: %w", err)
	}
	defer pipeline.Close()

	if err := pipeline.VectorStore().EnsureCollection(ctx, c.String("collection"), c.Int("dim")); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	coordinator, err := pipeline.NewPublishCoordinator(
		publish.WithBatchSize(c.Int("batch-size")),
		publish.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")))
	if err != nil {
		return fmt.Errorf("failed to create publish coordinator: %w", err)
	}

	result, err := coordinator.Publish(ctx, c.String("id"), c.String("collection"), c.String("user"))
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	fmt.Printf("Session:    %s\n", result.SessionId)
	fmt.Printf("Collection: %s\n", result.Collection)
	fmt.Printf("Published:  %d chunk(s)\n", result.PublishedChunks)
	return nil
}

// readInput reads the document body from the named file, or from stdin
// when the path is empty or "-".
func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// openRepository opens the backend and session repository for commands
// that do not need the AI services.
func openRepository(dbPath string) (storage.SessionRepository, *badger.Backend, error) {
	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	repo, err := badger.NewSessionRepository(backend, 0)
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("failed to create repository: %w", err)
	}
	return repo, backend, nil
}

func preview(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func setupLogger(c *cli.Context) error {
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
