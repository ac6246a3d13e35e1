package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/contentservice"
	"github.com/starford/ansuz/internal/images"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/schema"
	"github.com/starford/ansuz/internal/storage"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// runValidate checks every source file in the content directory against the
// collection schema and reports per-file results.
func runValidate(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := storage.NewFS(cfg.Content.Dir, cfg.Content.SourceGlob)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	metas, err := store.List("")
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	var failed int
	for _, m := range metas {
		data, readErr := store.Read(m.Path)
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", m.Path, readErr)
			failed++
			continue
		}
		res, parseErr := parser.Parse(data)
		if parseErr != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", m.Path, parseErr)
			failed++
			continue
		}
		if _, valErr := schema.ValidateAt(m.Path, res.Frontmatter); valErr != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", m.Path, valErr)
			failed++
			continue
		}
		fmt.Printf("OK   %s\n", m.Path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed validation", failed, len(metas))
	}
	fmt.Printf("%d documents valid\n", len(metas))
	return nil
}

// runMCP serves the authoring tools over stdio. Logs go to stderr because
// stdout carries the MCP protocol.
func runMCP(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Content.Dir, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Content.Dir, cfg.Content.SourceGlob)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	imgs, err := images.NewRegistry(cfg.Images.DefaultProvider, cfg.Images.ProviderBases())
	if err != nil {
		return fmt.Errorf("init images: %w", err)
	}

	// Drafts stay visible to authoring tools.
	svc := contentservice.NewService(store, db, imgs, contentservice.Config{
		DefaultLocale: cfg.Locales.Default,
		Locales:       cfg.Locales.Codes(),
		IncludeDrafts: true,
	})

	if err := index.Sync(db, store, svc.MapDocument, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return mcpserver.New(store, svc).ServeStdio()
}

func main() {
	cmd := &cli.Command{
		Name:   "ansuz",
		Usage:  "Content-driven web server with Markdown collections, full-text search, and MCP authoring",
		Action: runServe,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("ANSUZ_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server (default command)",
				Action: runServe,
			},
			{
				Name:   "validate",
				Usage:  "Validate every document in the content directory",
				Action: runValidate,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the authoring tools over MCP stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
