package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voltgruppen/kalk-cli/internal/catalog"
)

var catalogSeedFixture string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the product catalog",
}

var catalogMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the catalog schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		switch cfg.Catalog.Source {
		case "sqlite":
			p, err := catalog.NewSQLite(cfg.Catalog.Path)
			if err != nil {
				return err
			}
			defer p.Close()
			return p.Migrate(ctx)
		case "postgres":
			p, err := catalog.NewPostgres(ctx, cfg.Catalog.DatabaseURL)
			if err != nil {
				return err
			}
			defer p.Close()
			return p.Migrate(ctx)
		default:
			return eris.Errorf("catalog source %s has no schema", cfg.Catalog.Source)
		}
	},
}

var catalogSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the sqlite catalog from a fixture file, or the built-in catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		snap := catalog.DefaultSnapshot()
		if catalogSeedFixture != "" {
			loaded, err := catalog.NewFixtureProvider(catalogSeedFixture).Load(ctx)
			if err != nil {
				return eris.Wrapf(err, "load fixture %s", catalogSeedFixture)
			}
			snap = loaded
		} else {
			// Built-in catalog gets the configured office rates.
			snap.Factors.HourlyRate = cfg.Pricing.HourlyRate
			snap.Factors.ProductMarginPercent = cfg.Pricing.ProductMarginPercent
			snap.Factors.MaterialMarginPercent = cfg.Pricing.MaterialMarginPercent
			snap.Factors.VATPercent = cfg.Pricing.VATPercent
		}

		p, err := catalog.NewSQLite(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		defer p.Close()

		if err := p.Migrate(ctx); err != nil {
			return err
		}
		if err := p.Seed(ctx, snap); err != nil {
			return err
		}

		zap.L().Info("catalog seeded",
			zap.String("path", cfg.Catalog.Path),
			zap.Int("nodes", len(snap.Nodes)),
			zap.Int("rules", len(snap.Rules)),
			zap.Int("tiers", len(snap.Tiers)),
		)
		return nil
	},
}

var catalogStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		provider, closeCatalog, err := initCatalog(ctx)
		if err != nil {
			return err
		}
		defer closeCatalog()

		snap, err := provider.Load(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Kilde:             %s\n", cfg.Catalog.Source)
		fmt.Printf("Komponenter:       %d\n", len(snap.Nodes))
		fmt.Printf("Regler:            %d\n", len(snap.Rules))
		fmt.Printf("Installationstyper: %d\n", len(snap.InstallationTypes))
		fmt.Printf("Bygningsprofiler:  %d\n", len(snap.BuildingProfiles))
		fmt.Printf("Kundesegmenter:    %d\n", len(snap.Tiers))
		return nil
	},
}

func init() {
	catalogSeedCmd.Flags().StringVar(&catalogSeedFixture, "fixture", "", "JSON/YAML catalog file to seed from (default: built-in catalog)")
	catalogCmd.AddCommand(catalogMigrateCmd, catalogSeedCmd, catalogStatusCmd)
	rootCmd.AddCommand(catalogCmd)
}
