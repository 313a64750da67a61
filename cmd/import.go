package main

import (
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voltgruppen/kalk-cli/internal/fetcher"
	"github.com/voltgruppen/kalk-cli/internal/importer"
)

var (
	importURL       string
	importXLSX      string
	importSupplier  string
	importETag      string
	importHasHeader bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a supplier price list into postgres",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			return eris.New("postgres database URL is required (KALK_STORE_DATABASE_URL)")
		}
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return eris.Wrap(err, "connect postgres")
		}
		defer pool.Close()

		delimiter := ';'
		if cfg.Import.Delimiter != "" {
			delimiter = rune(cfg.Import.Delimiter[0])
		}

		if importXLSX != "" {
			im := importer.New(pool, fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}))
			if err := im.Migrate(ctx); err != nil {
				return err
			}
			skip := 0
			if importHasHeader {
				skip = 1
			}
			stats, err := im.ImportXLSX(ctx, importXLSX, fetcher.XLSXOptions{SkipRows: skip}, importer.Options{
				Supplier:    importSupplier,
				BatchSize:   cfg.Import.BatchSize,
				Concurrency: cfg.Import.Concurrency,
			})
			if err != nil {
				return eris.Wrap(err, "import price list")
			}
			zap.L().Info("import complete",
				zap.String("supplier", importSupplier),
				zap.Int("rows", stats.Rows),
				zap.Int("skipped", stats.Skipped),
				zap.Int64("upserted", stats.Upserted),
			)
			return nil
		}

		var fetch fetcher.Fetcher
		if strings.HasPrefix(importURL, "ftp://") {
			fetch = fetcher.NewFTPFetcher(fetcher.FTPOptions{
				Username: cfg.Import.FTPUsername,
				Password: cfg.Import.FTPPassword,
				Timeout:  30 * time.Second,
			})
		} else {
			fetch = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
				UserAgent: cfg.Import.UserAgent,
			})
		}

		im := importer.New(pool, fetch)
		if err := im.Migrate(ctx); err != nil {
			return err
		}

		stats, err := im.ImportCSV(ctx, importURL, importer.Options{
			Supplier:    importSupplier,
			BatchSize:   cfg.Import.BatchSize,
			Concurrency: cfg.Import.Concurrency,
			ETag:        importETag,
			CSV: fetcher.CSVOptions{
				Delimiter: delimiter,
				HasHeader: importHasHeader,
				TrimSpace: true,
			},
		})
		if err != nil {
			return eris.Wrap(err, "import price list")
		}

		if stats.Unchanged {
			zap.L().Info("price list unchanged", zap.String("supplier", importSupplier))
			return nil
		}
		zap.L().Info("import complete",
			zap.String("supplier", importSupplier),
			zap.Int("rows", stats.Rows),
			zap.Int("skipped", stats.Skipped),
			zap.Int64("upserted", stats.Upserted),
			zap.String("etag", stats.ETag),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importURL, "url", "", "price list URL, http(s) or ftp")
	importCmd.Flags().StringVar(&importXLSX, "xlsx", "", "local XLSX price list (instead of --url)")
	importCmd.Flags().StringVar(&importSupplier, "supplier", "", "supplier name (required)")
	importCmd.Flags().StringVar(&importETag, "etag", "", "ETag from the previous import; unchanged lists are skipped")
	importCmd.Flags().BoolVar(&importHasHeader, "header", true, "first row is a header")
	importCmd.MarkFlagsOneRequired("url", "xlsx")
	importCmd.MarkFlagsMutuallyExclusive("url", "xlsx")
	_ = importCmd.MarkFlagRequired("supplier")
	rootCmd.AddCommand(importCmd)
}
