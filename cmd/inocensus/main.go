package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	urfavecli "github.com/urfave/cli/v3"

	"github.com/inocensus/inocensus/internal/archive"
	"github.com/inocensus/inocensus/internal/cli"
	"github.com/inocensus/inocensus/internal/database"
	"github.com/inocensus/inocensus/internal/fetch"
	"github.com/inocensus/inocensus/internal/logger"
	"github.com/inocensus/inocensus/internal/query"
)

const version = "1.0.0"

func main() {
	app := &urfavecli.Command{
		Name:    "inocensus",
		Usage:   "Mine public Arduino sketches for included headers and called functions",
		Version: version,
		Commands: []*urfavecli.Command{
			{
				Name:   "query",
				Usage:  "List files with the extension from the public GitHub dataset",
				Action: queryCommand,
				Flags: append(commonFlags(),
					&urfavecli.StringFlag{
						Name:  "project",
						Usage: "Google Cloud project billed for the query (default: $GOOGLE_CLOUD_PROJECT)",
					},
					&urfavecli.StringFlag{
						Name:  "list",
						Usage: "File list output path",
					},
				),
			},
			{
				Name:   "fetch",
				Usage:  "Download and scan every file of the list, resuming where the last run stopped",
				Action: fetchCommand,
				Flags: append(commonFlags(),
					&urfavecli.StringFlag{
						Name:  "list",
						Usage: "File list input path",
					},
					&urfavecli.StringFlag{
						Name:  "records",
						Usage: "Records output path (appended to)",
					},
					&urfavecli.StringFlag{
						Name:  "progress",
						Usage: "Progress marker path",
					},
					&urfavecli.StringFlag{
						Name:  "base-url",
						Usage: "Raw content host",
					},
					&urfavecli.IntFlag{
						Name:  "parallel",
						Usage: "Maximum concurrent downloads (1 = sequential)",
					},
					&urfavecli.DurationFlag{
						Name:  "timeout",
						Usage: "Per-request timeout",
					},
					&urfavecli.IntFlag{
						Name:  "max-retries",
						Usage: "Retries for rate limits, server errors and network failures",
					},
					&urfavecli.Int64Flag{
						Name:  "max-bytes",
						Usage: "Largest file accepted",
					},
					&urfavecli.IntFlag{
						Name:  "cache-size",
						Usage: "Downloaded bodies kept in memory (0 disables the cache)",
					},
					&urfavecli.StringFlag{
						Name:  "database-url",
						Usage: "Also store records in PostgreSQL (default: $DATABASE_URL)",
					},
				),
			},
			{
				Name:   "dedupe",
				Usage:  "Drop repeated (repo, ref, path) entries from the records file",
				Action: dedupeCommand,
				Flags: append(commonFlags(),
					&urfavecli.StringFlag{
						Name:  "records",
						Usage: "Records input path",
					},
					&urfavecli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Deduplicated output path (default: <records>.dedup.json)",
					},
				),
			},
			{
				Name:   "analyse",
				Usage:  "Tally records and write the include and function listings",
				Action: analyseCommand,
				Flags: append(commonFlags(),
					&urfavecli.StringFlag{
						Name:  "records",
						Usage: "Records input path",
					},
					&urfavecli.BoolFlag{
						Name:  "from-db",
						Usage: "Read records from PostgreSQL instead of the records file",
					},
					&urfavecli.StringFlag{
						Name:  "database-url",
						Usage: "PostgreSQL connection string (default: $DATABASE_URL)",
					},
					&urfavecli.StringFlag{
						Name:    "output-dir",
						Aliases: []string{"o"},
						Usage:   "Directory for the listings",
					},
					&urfavecli.StringFlag{
						Name:  "format",
						Usage: "Listing format (lst, json, or html)",
					},
				),
			},
			{
				Name:      "scan",
				Usage:     "Scan local files and write the listings without any network access",
				ArgsUsage: "[directory]",
				Action:    scanCommand,
				Flags: append(commonFlags(),
					&urfavecli.StringFlag{
						Name:    "output-dir",
						Aliases: []string{"o"},
						Usage:   "Directory for the listings",
					},
					&urfavecli.StringFlag{
						Name:  "format",
						Usage: "Listing format (lst, json, or html)",
					},
				),
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// commonFlags are accepted by every sub-command
func commonFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:  "config",
			Usage: "YAML configuration file",
		},
		&urfavecli.StringFlag{
			Name:  "env-file",
			Usage: "Environment file loaded before reading variables",
			Value: ".env",
		},
		&urfavecli.StringFlag{
			Name:  "extension",
			Usage: "File extension to mine",
		},
		&urfavecli.StringFlag{
			Name:  "keywords",
			Usage: "Reserved words never counted as calls (c or cpp)",
		},
		&urfavecli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug output",
		},
	}
}

// loadConfig builds and validates the configuration for cmd. Invalid
// configuration exits with status 2.
func loadConfig(cmd *urfavecli.Command) *cli.Config {
	if err := cli.LoadDotEnv(cmd.String("env-file")); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	config, err := cli.LoadConfig(cmd.String("config"))
	if err == nil {
		cli.ApplyFlagsToConfig(config, cmd)
		err = cli.ValidateConfig(config)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger.SetVerbose(config.Verbose)
	return config
}

// exit terminates with code unless it is zero
func exit(code int, err error) error {
	if err != nil {
		return err
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

// queryCommand handles the 'inocensus query' command
func queryCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config := loadConfig(cmd)

	source, err := query.NewBigQuerySource(ctx, config.ProjectID)
	if err != nil {
		return err
	}
	defer source.Close()

	return exit(cli.Query(ctx, config, source))
}

// fetchCommand handles the 'inocensus fetch' command
func fetchCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config := loadConfig(cmd)

	fetcher, err := fetch.New(fetch.Options{
		BaseURL:    config.BaseURL,
		Timeout:    config.Timeout,
		MaxRetries: config.MaxRetries,
		MaxBytes:   config.MaxBytes,
		CacheSize:  config.CacheSize,
	})
	if err != nil {
		return err
	}

	var sinks cli.Sinks
	if config.DatabaseURL != "" {
		pool, err := database.NewPool(ctx, config)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()
		if err := pool.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks.Store = pool
	}
	if config.Archive.Enabled() {
		store, err := archive.NewS3Archive(config.Archive)
		if err != nil {
			return err
		}
		sinks.Archive = store
	}

	return exit(cli.Fetch(ctx, config, fetcher, sinks))
}

// dedupeCommand handles the 'inocensus dedupe' command
func dedupeCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config := loadConfig(cmd)
	return exit(cli.Dedupe(config, cmd.String("output")))
}

// analyseCommand handles the 'inocensus analyse' command
func analyseCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config := loadConfig(cmd)

	if !cmd.Bool("from-db") {
		return exit(cli.Analyse(ctx, config, cli.FileRecords{Path: config.RecordsFile}))
	}

	if config.DatabaseURL == "" {
		return errors.New("--from-db needs a connection string (--database-url or $DATABASE_URL)")
	}
	pool, err := database.NewPool(ctx, config)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	return exit(cli.Analyse(ctx, config, pool))
}

// scanCommand handles the 'inocensus scan' command
func scanCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config := loadConfig(cmd)

	root := cmd.Args().First()
	if root == "" {
		root = "."
	}
	return exit(cli.Scan(ctx, config, root))
}
