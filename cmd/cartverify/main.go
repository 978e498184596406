package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"
	"github.com/urfave/cli/v2"

	"github.com/themizzi/cartverify/internal/browser"
	internalcli "github.com/themizzi/cartverify/internal/cli"
	"github.com/themizzi/cartverify/internal/config"
	"github.com/themizzi/cartverify/internal/database"
	"github.com/themizzi/cartverify/internal/handlers"
	"github.com/themizzi/cartverify/internal/models"
	"github.com/themizzi/cartverify/internal/repository"
)

var version = "0.1.0"

// setupLogging configures the global logger from LOG_LEVEL
func setupLogging() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	log.DefaultLogger = log.Logger{
		Level: log.ParseLevel(level),
		Writer: &log.ConsoleWriter{
			Writer:         os.Stderr,
			ColorOutput:    log.IsTerminal(os.Stderr.Fd()),
			EndWithMessage: true,
		},
	}
}

// connectHistory opens the run history database and applies migrations
func connectHistory() error {
	if err := database.Connect(os.Getenv); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info().Msg("connected to run history database")

	if err := database.RunMigrations(); err != nil {
		database.Close()
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}

// VerifyCommand returns the verify command
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Reset the cart, add every product and verify the cart lines and totals",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "profile", Aliases: []string{"p"}, Usage: "TOML run profile"},
			&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "CSV file with category,name,quantity,price,color rows"},
			&cli.StringFlag{Name: "engine", Aliases: []string{"e"}, Usage: "browser engine: playwright, rod or chromedp"},
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "storefront home page URL"},
			&cli.BoolFlag{Name: "record", Usage: "store the run in the PostgreSQL run history"},
		},
		Action: func(c *cli.Context) error {
			browserCfg, err := config.LoadBrowserConfig(os.Getenv)
			if err != nil {
				return fmt.Errorf("invalid browser configuration: %w", err)
			}

			profile, err := internalcli.ResolveProfile(c.String("profile"), c.String("data"))
			if err != nil {
				return err
			}
			profile.Apply(browserCfg)
			if err := browserCfg.Override(c.String("engine"), c.String("url")); err != nil {
				return err
			}

			cat, err := profile.BuildCatalog()
			if err != nil {
				return err
			}

			deps := internalcli.VerifyDependencies{
				Browser:  browserCfg,
				Catalog:  cat,
				Products: profile.Products,
				Open:     browser.Open,
				Out:      c.App.Writer,
			}
			if c.Bool("record") {
				if err := connectHistory(); err != nil {
					return err
				}
				defer database.Close()
				deps.Recorder = repository.NewRunRepository()
			}

			_, err = internalcli.RunVerify(c.Context, deps)
			if errors.Is(err, internalcli.ErrChecksFailed) {
				return cli.Exit(err.Error(), 1)
			}
			return err
		},
	}
}

// CatalogCommand returns the catalog command
func CatalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "List the product to category mapping used to reach product pages",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "profile", Aliases: []string{"p"}, Usage: "TOML run profile with extra [[catalog]] entries"},
		},
		Action: func(c *cli.Context) error {
			profile, err := internalcli.ResolveProfile(c.String("profile"), "")
			if err != nil {
				return err
			}
			cat, err := profile.BuildCatalog()
			if err != nil {
				return err
			}
			return internalcli.PrintCatalog(c.App.Writer, cat)
		},
	}
}

// HistoryCommand returns the history command
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded verification runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 10, Usage: "number of runs to list"},
			&cli.StringFlag{Name: "run", Usage: "show the checks of one run"},
		},
		Action: func(c *cli.Context) error {
			if err := connectHistory(); err != nil {
				return err
			}
			defer database.Close()

			repo := repository.NewRunRepository()
			if id := c.String("run"); id != "" {
				run, err := repo.GetRun(id)
				if err != nil {
					return err
				}
				checks, err := repo.ListChecks(id)
				if err != nil {
					return err
				}
				if err := internalcli.PrintRuns(c.App.Writer, []*models.Run{run}, time.Now()); err != nil {
					return err
				}
				internalcli.PrintChecks(c.App.Writer, checks)
				return nil
			}

			runs, err := repo.ListRuns(c.Int("limit"))
			if err != nil {
				return err
			}
			return internalcli.PrintRuns(c.App.Writer, runs, time.Now())
		},
	}
}

// StorefrontCommand returns the storefront command
func StorefrontCommand() *cli.Command {
	return &cli.Command{
		Name:  "storefront",
		Usage: "Fixture storefront rendering the cart UI the verifier drives",
		Subcommands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the fixture storefront web server",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "truncate-names", Usage: "shorten cart line names longer than this"},
				},
				Action: func(c *cli.Context) error {
					storefront, err := handlers.NewStorefront(handlers.DemoProducts(), handlers.NewStore(), handlers.Options{
						TruncateNamesAt: c.Int("truncate-names"),
					})
					if err != nil {
						return fmt.Errorf("failed to create storefront: %w", err)
					}

					return internalcli.RunServe(internalcli.ServerDependencies{
						StorefrontConfig: config.LoadStorefrontConfig(os.Getenv),
						Storefront:       storefront,
					})
				},
			},
		},
	}
}

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()
	setupLogging()
	if envErr != nil {
		log.Debug().Msg(".env file not found, using environment variables")
	}

	app := &cli.App{
		Name:    "cartverify",
		Usage:   "Verify a storefront cart through a real browser",
		Version: version,
		Commands: []*cli.Command{
			VerifyCommand(),
			CatalogCommand(),
			HistoryCommand(),
			StorefrontCommand(),
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("cartverify failed")
		os.Exit(1)
	}
}
