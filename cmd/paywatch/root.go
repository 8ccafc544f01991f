package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pix-storefront/internal/client"
	"pix-storefront/internal/config"
	"pix-storefront/internal/logger"
)

var (
	cfg        *config.Config
	log        *zap.Logger
	storefront client.StorefrontClient
)

var RootCmd = &cobra.Command{
	Use:           "paywatch",
	Short:         "Follow a PIX payment from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		// the progress bar owns stdout
		logCfg := cfg.Log
		if logCfg.Level == "info" {
			logCfg.Level = "warn"
		}
		logCfg.Format = "console"
		log, err = logger.New(logCfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		storefront, err = client.NewStorefrontClient(&cfg.Storefront)
		if err != nil {
			return fmt.Errorf("init storefront client: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if log != nil {
			_ = log.Sync()
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(watchCmd)
	RootCmd.AddCommand(createCmd)

	createCmd.Flags().Int64Var(&createProduct, "product", 0, "product ID to buy")
	createCmd.Flags().StringVar(&createEmail, "email", "", "buyer email")
	_ = createCmd.MarkFlagRequired("product")
	_ = createCmd.MarkFlagRequired("email")
}
