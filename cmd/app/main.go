package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/kwm/internal"
	"github.com/starford/kwm/internal/cardservice"
	"github.com/starford/kwm/internal/tokenize"
	pkgconfig "github.com/starford/kwm/pkg/config"
)

var version = "dev"

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func update(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	ov, err := overridesFromFlags(cmd)
	if err != nil {
		return err
	}
	return internal.Update(ctx, ov, cmd.Bool("dry-run"), opts...)
}

// overridesFromFlags turns explicitly set flags into overrides; unset flags
// keep the last-used settings.
func overridesFromFlags(cmd *cli.Command) (cardservice.Overrides, error) {
	var ov cardservice.Overrides
	str := func(name string) *string {
		if !cmd.IsSet(name) {
			return nil
		}
		v := cmd.String(name)
		return &v
	}
	boolean := func(name string) *bool {
		if !cmd.IsSet(name) {
			return nil
		}
		v := cmd.Bool(name)
		return &v
	}

	ov.SentencesDeck = str("sentences-deck")
	ov.WordsDeck = str("words-deck")
	ov.WordField = str("word-field")
	ov.RequireAllKnown = boolean("require-all-known")
	ov.IncludeUnreviewed = boolean("include-unreviewed")
	if name := str("strategy"); name != nil {
		s, err := tokenize.ParseStrategy(*name)
		if err != nil {
			return ov, err
		}
		ov.Strategy = &s
	}
	return ov, nil
}

func undo(ctx context.Context, cmd *cli.Command) error {
	token := cmd.Args().First()
	if token == "" {
		return fmt.Errorf("undo: token argument is required")
	}
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Undo(ctx, token, opts...)
}

func syncVault(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Sync(ctx, opts...)
}

func decks(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.ListDecks(ctx, opts...)
}

func fields(ctx context.Context, cmd *cli.Command) error {
	deck := cmd.Args().First()
	if deck == "" {
		return fmt.Errorf("fields: deck argument is required")
	}
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.ListFields(ctx, deck, opts...)
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, opts...)
}

func main() {
	cmd := &cli.Command{
		Name:    "kwm",
		Usage:   "Suspend sentence cards until every word in them is known",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, the vault watcher and auto updates",
				Action: serve,
			},
			{
				Name:   "update",
				Usage:  "Suspend and unsuspend sentence cards by known words",
				Action: update,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "sentences-deck", Usage: "Deck holding the sentence cards"},
					&cli.StringFlag{Name: "words-deck", Usage: "Deck holding the known vocabulary"},
					&cli.StringFlag{Name: "word-field", Usage: "Field of the vocabulary notes that holds the word"},
					&cli.StringFlag{Name: "strategy", Usage: "Tokenization strategy: Space-separated or Kanji"},
					&cli.BoolFlag{Name: "require-all-known", Usage: "Also suspend sentences that add no new word"},
					&cli.BoolFlag{Name: "include-unreviewed", Usage: "Count never-reviewed vocabulary as known"},
					&cli.BoolFlag{Name: "dry-run", Usage: "Print the report without changing cards"},
				},
			},
			{
				Name:      "undo",
				Usage:     "Revert the card changes of an update",
				ArgsUsage: "TOKEN",
				Action:    undo,
			},
			{
				Name:   "sync",
				Usage:  "Import the vault into the card collection",
				Action: syncVault,
			},
			{
				Name:   "decks",
				Usage:  "List deck names",
				Action: decks,
			},
			{
				Name:      "fields",
				Usage:     "List the field names of a deck",
				ArgsUsage: "DECK",
				Action:    fields,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools over stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
