package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/artpricematcher/price-matcher/config"
	"github.com/artpricematcher/price-matcher/internal/app"
)

var (
	cfgFile      string
	outputFormat string
	cfg          *config.Config
	logger       *zerolog.Logger
	wired        *app.App
)

// needsDB marks commands that require the wired application
const needsDB = "needs-db"

var rootCmd = &cobra.Command{
	Use:   "price-matcher",
	Short: "Price Matcher CLI - competitor price comparison and discounts",
	Long: `A CLI for comparing competitor price feeds against the shop catalog,
promoting the matches into time-limited specific prices and managing the
competitors, discounts and settings involved.`,
	SilenceUsage:      true,
	PersistentPreRunE: persistentPreRun,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table or json")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
}

// dbCommand marks cmd as requiring the database
func dbCommand(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[needsDB] = "true"
	return cmd
}

func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	logCfg := config.LoggingConfig{Level: "info"}
	if cfg != nil {
		logCfg = cfg.Logging
	}
	logger = app.NewLogger(logCfg, "price-matcher-cli")

	if cmd.Annotations[needsDB] != "true" {
		return nil
	}
	if cfg == nil {
		return fmt.Errorf("config required for %s command but not loaded", cmd.Name())
	}
	a, err := app.Build(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	wired = a
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	if wired != nil {
		wired.Close()
	}
	stop()
	if err != nil {
		os.Exit(1)
	}
}
