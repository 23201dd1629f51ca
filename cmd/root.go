package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/bookscout/internal/config"
	"github.com/lepinkainen/bookscout/internal/tui"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"
)

var (
	stdout       io.Writer = os.Stdout
	selectResult           = tui.Select
)

// CLI represents the complete command structure for the bookscout application
type CLI struct {
	// Global flags
	Site    string `help:"Store to search (see 'bookscout sites'); defaults to store.site in config"`
	Browser bool   `help:"Fetch pages with headless Chrome instead of plain HTTP"`
	Debug   bool   `help:"Enable debug logging"`

	Search  SearchCmd  `cmd:"" help:"Search a store for e-books"`
	Details DetailsCmd `cmd:"" help:"Fetch the detail page of a single book"`
	Sites   SitesCmd   `cmd:"" help:"List the supported stores"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging(slog.LevelInfo)
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("bookscout"),
		kong.Description("Search e-book stores and report formats, prices and DRM."),
		kong.UsageOnError(),
	)

	if cli.Debug {
		initLogging(slog.LevelDebug)
	}

	updateGlobalConfig(&cli)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx.BindTo(runCtx, (*context.Context)(nil))

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

var envKeyReplacer = strings.NewReplacer(".", "_")

func initConfig() {
	config.SetDefaults()

	viper.SetEnvPrefix("BOOKSCOUT")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Error("Error writing config file", "error", err)
			}
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	config.SetSite(cli.Site)
	if cli.Browser {
		config.SetUseBrowser(true)
	}
}

func initLogging(level slog.Level) {
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}
