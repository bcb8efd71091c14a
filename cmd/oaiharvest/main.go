package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tmc/oaiharvest"
	"github.com/tmc/oaiharvest/internal/logger"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCmd(viper.New()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "oaiharvest",
		Short:         "Harvest OAI-PMH records and their files",
		Long:          usageText,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("config", "", "config file (yaml, toml or json)")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "console", "log format: console or json")

	root.AddCommand(newHarvestCmd(v))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("oaiharvest version %s\n", version)
		},
	})
	return root
}

func newHarvestCmd(v *viper.Viper) *cobra.Command {
	rename := oaiharvest.RenameNone
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Harvest every page, download files, and write the exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindConfig(v, cmd); err != nil {
				return err
			}
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return runHarvest(cmd, v, cfg)
		},
	}

	fs := cmd.Flags()
	fs.String("base-url", "", "OAI-PMH endpoint URL")
	fs.String("set", "", "setSpec to harvest")
	fs.String("metadata-prefix", oaiharvest.DefaultMetadataPrefix, "metadata format")
	fs.String("output-dir", "harvest", "directory for downloaded files")
	fs.String("csv", "", "CSV export path (default <output-dir>.csv)")
	fs.String("archive", "", "zip archive path (default <output-dir>.zip)")
	fs.String("xlsx", "", "also write an XLSX export to this path")
	fs.String("sqlite", "", "also write a SQLite export to this path")
	fs.StringSlice("ext", oaiharvest.DefaultExtensions, "file extensions to download")
	fs.Int("concurrency", 1, "parallel file downloads per page")
	fs.Int("retries", 1, "attempts per request, including the first")
	fs.Var(&rename, "rename", `post-harvest rename: "none" or "files"`)
	fs.Bool("verify-pdf", false, "check downloaded PDFs with pdfcpu")
	fs.String("user-agent", "", "User-Agent header for all requests")
	return cmd
}

func runHarvest(cmd *cobra.Command, v *viper.Viper, cfg oaiharvest.Config) error {
	log, err := logger.New(logger.Config{
		Level:  v.GetString("log_level"),
		Format: v.GetString("log_format"),
	})
	if err != nil {
		return err
	}
	defer log.Sync()

	h, err := oaiharvest.New(cfg, oaiharvest.WithLogger(log))
	if err != nil {
		return err
	}

	log.Info("starting harvest",
		logger.String("base_url", cfg.BaseURL),
		logger.String("set", cfg.Set),
		logger.String("output_dir", cfg.OutputDir))

	res, err := h.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("harvest: %w", err)
	}

	cmd.Printf("Harvested %d records from %d pages\n", len(res.Records), res.Pages)
	cmd.Printf("Files downloaded: %d (%d failed)\n", res.Downloaded, res.FailedDownloads)
	cmd.Printf("Metadata: %s\n", res.CSVPath)
	if res.XLSXPath != "" {
		cmd.Printf("Spreadsheet: %s\n", res.XLSXPath)
	}
	if res.SQLitePath != "" {
		cmd.Printf("Database: %s\n", res.SQLitePath)
	}
	cmd.Printf("Archive: %s (%d files)\n", res.ArchivePath, res.ArchiveEntries)
	return nil
}
