// Copyright 2025 Barmatch Systems
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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/barmatch/barmatch"
	"github.com/barmatch/barmatch/ai"
	"github.com/barmatch/barmatch/ai/mock"
	"github.com/barmatch/barmatch/core"
	"github.com/barmatch/barmatch/rank"
	"github.com/barmatch/barmatch/session"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "barmatch",
		Usage: "Conversational matching for legal professionals",
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
				Name:   "seed",
				Usage:  "Load professional profiles from a JSON file into the database",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to a JSON array of profiles",
						Required: true,
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Interactive matching session on stdin/stdout",
				Action: chatCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "OpenAI-compatible service host URL for extraction and narration",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "extractor-model",
						Usage: "Model name for fact extraction",
					},
					&cli.StringFlag{
						Name:  "narrator-model",
						Usage: "Model name for result narration",
					},
					&cli.StringFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "User id; named users resume facts and can save candidates",
					},
					&cli.StringFlag{
						Name:  "weights",
						Usage: "Path to a YAML file overriding scoring weights",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of results to return per turn",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "mock",
						Usage: "Use the in-process mock AI provider instead of a live service",
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

	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read profiles file: %w", err)
	}

	var profiles []*core.Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return fmt.Errorf("failed to parse profiles file: %w", err)
	}
	if len(profiles) == 0 {
		return fmt.Errorf("no profiles in %s", c.String("file"))
	}

	// Seeding never calls the AI services, so the mock provider will do.
	matcher, err := barmatch.NewMatcher(c.String("db"), barmatch.WithProvider(mock.NewMockProvider()))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer matcher.Close()

	added, err := matcher.AddProfiles(ctx, profiles...)
	if err != nil {
		return fmt.Errorf("failed to store profiles: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Stored %d profiles in %s\n", len(added), c.String("db"))
	return nil
}

func chatCommand(c *cli.Context) error {
	opts, err := matcherOptions(c)
	if err != nil {
		return err
	}

	matcher, err := barmatch.NewMatcher(c.String("db"), opts...)
	if err != nil {
		return fmt.Errorf("failed to open matcher: %w", err)
	}
	defer matcher.Close()

	manager, err := matcher.NewSessionManager()
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}
	defer manager.Close()

	sess, err := manager.CreateSession(c.String("user"))
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		printEvents(sess)
	}()

	fmt.Fprintln(os.Stderr, "Describe what you need; an empty line or Ctrl-D quits.")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		if err := sess.HandleMessage(uuid.NewString(), line); err != nil {
			return fmt.Errorf("failed to handle message: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	manager.CloseSession(sess.ID())
	<-printerDone
	return nil
}

func matcherOptions(c *cli.Context) ([]barmatch.MatcherOption, error) {
	opts := []barmatch.MatcherOption{barmatch.WithTopK(c.Int("top-k"))}

	if c.Bool("mock") {
		opts = append(opts, barmatch.WithProvider(mock.NewMockProvider()))
	} else {
		cfgOpts := []ai.ConfigOption{ai.WithHost(c.String("host"))}
		if model := c.String("extractor-model"); model != "" {
			cfgOpts = append(cfgOpts, ai.WithExtractorModel(model))
		}
		if model := c.String("narrator-model"); model != "" {
			cfgOpts = append(cfgOpts, ai.WithNarratorModel(model))
		}
		cfg := ai.NewConfig(cfgOpts...)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid AI configuration: %w", err)
		}
		opts = append(opts, barmatch.WithAIConfig(cfg))
	}

	if path := c.String("weights"); path != "" {
		weights, err := rank.LoadWeights(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load weights: %w", err)
		}
		opts = append(opts, barmatch.WithWeights(weights))
	}

	return opts, nil
}

func printEvents(sess *session.Session) {
	for event := range sess.Events() {
		switch event.Type {
		case session.EventTextFragment:
			fmt.Print(event.Text)
		case session.EventTextComplete:
			fmt.Println()
		case session.EventResultSet:
			for i, result := range event.Results {
				fmt.Printf("%d. %s (%s", i+1, result.Profile.Name, result.Profile.City)
				if result.Profile.Neighborhood != "" {
					fmt.Printf(", %s", result.Profile.Neighborhood)
				}
				fmt.Printf(") score=%0.2f confidence=%0.2f\n", result.CompositeScore, result.Confidence)
				if len(result.MatchReasons) > 0 {
					fmt.Printf("   %s\n", strings.Join(result.MatchReasons, "; "))
				}
			}
			if len(event.Results) == 0 {
				fmt.Println("No matches yet.")
			}
		case session.EventFollowups:
			for _, suggestion := range event.Suggestions {
				fmt.Printf("? %s\n", suggestion)
			}
			fmt.Print("> ")
		case session.EventError:
			fmt.Fprintf(os.Stderr, "error (%s): %s\n", event.Code, event.Text)
			fmt.Print("> ")
		}
	}
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
