package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/divinecoid/sabkabazaar/internal/config"
	"github.com/divinecoid/sabkabazaar/internal/db"
	"github.com/divinecoid/sabkabazaar/internal/service"
)

func connect(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	return db.Connect(ctx, db.Options{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		LogLevel: gormLogLevel(cfg),
	})
}

func migrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(true)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			database, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.Migrate(cmd.Context(), database.Gorm); err != nil {
				return err
			}
			logger.Info("schema migrated")
			return nil
		},
	}
}

func importProductsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import-products [file.xlsx]",
		Short: "Upsert products from the Products sheet of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(true)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open workbook: %w", err)
			}
			defer f.Close()

			database, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			result, err := service.NewProductService(database.Gorm, logger).Import(cmd.Context(), f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d products\n", result.Imported)
			for _, s := range result.Skipped {
				fmt.Fprintf(out, "  row %d skipped: %s\n", s.Row, s.Reason)
			}
			return nil
		},
	}
}

func configCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(false)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg.Redacted()); err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			return enc.Close()
		},
	}
}
