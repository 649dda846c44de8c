package main

import (
	"bufio"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"

	dashApp "assetdash/internal/app"
	"assetdash/internal/config"
	"assetdash/internal/logging"
	"assetdash/internal/secret"
)

//go:embed all:frontend/dist
var assets embed.FS

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "assetdash [path]",
		Short:         "Browse JSON Lines assets as charts and tables",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE:          runRoot,
	}
	root.PersistentFlags().String("config", "", "config file (default: <user config dir>/assetdash/config.yaml)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	root.Flags().Bool("mcp", false, "serve MCP on stdin/stdout instead of opening the window")

	cmd := &cobra.Command{
		Use:   "export path asset",
		Short: "Export every record set of an asset to the configured database",
		Args:  cobra.ExactArgs(2),
		RunE:  runExport}
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "set-secret key",
		Short: "Store a secret (e.g. export.passwordKey) read from stdin in the OS keychain",
		Args:  cobra.ExactArgs(1),
		RunE:  runSetSecret}
	root.AddCommand(cmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the command line on top.
func loadConfig(cmd *cobra.Command, dataDir string) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = filepath.Join(config.DefaultStateDir(), "config.yaml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, fmt.Errorf("invalid config: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	dataDir := ""
	if len(args) == 1 {
		dataDir = args[0]
	}
	cfg, logger, err := loadConfig(cmd, dataDir)
	if err != nil {
		return err
	}
	if serveMCP, _ := cmd.Flags().GetBool("mcp"); serveMCP {
		return dashApp.ServeMCP(cfg, logger, version)
	}
	return runDesktop(cfg, logger)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}
	run, err := dashApp.ExportOnce(context.Background(), cfg, logger, args[1])
	if run != nil {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(run); encErr != nil {
			return encErr
		}
	}
	return err
}

func runSetSecret(cmd *cobra.Command, args []string) error {
	value, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read secret: %w", err)
	}
	value = strings.TrimRight(value, "\r\n")
	if value == "" {
		return errors.New("empty secret")
	}
	if err := secret.Default().Set(args[0], []byte(value)); err != nil {
		return fmt.Errorf("set secret %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", args[0])
	return nil
}

func runDesktop(cfg config.Config, logger *slog.Logger) error {
	app := dashApp.New(cfg, logger)

	// macOS needs an Edit menu for Cmd+C/V/X/A to reach the WebView
	appMenu := menu.NewMenu()
	appMenu.Append(menu.EditMenu())

	return wails.Run(&options.App{
		Title:     "assetdash",
		Width:     1280,
		Height:    800,
		MinWidth:  800,
		MinHeight: 600,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 15, G: 15, B: 20, A: 1},
		Menu:             appMenu,
		OnStartup:        app.Startup,
		OnShutdown:       app.Shutdown,
		Bind: []interface{}{
			app,
		},
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: true,
				HideTitle:                  true,
				FullSizeContent:            true,
			},
			About: &mac.AboutInfo{
				Title:   "assetdash",
				Message: "Charts and tables from nested JSON Lines assets",
			},
		},
	})
}
