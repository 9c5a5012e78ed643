package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"eventmemo/internal/authgate"
	"eventmemo/internal/config"
	"eventmemo/internal/housekeep"
	"eventmemo/internal/kv"
	"eventmemo/internal/store"
	"eventmemo/internal/transfer"
)

// app bundles the wired components the subcommands operate on.
type app struct {
	cfg    *config.Config
	kv     kv.Store
	store  *store.Store
	engine *transfer.Engine
	keeper *housekeep.Keeper
	gate   *authgate.Gate
}

var (
	configPath string
	theApp     *app
)

var rootCmd = &cobra.Command{
	Use:   "memo",
	Short: "memo - important events memo",
	Long: `memo tracks important events in an Eisenhower-matrix view, with
per-event step checklists, scheduled reminders, and portable
export/import backups. All data stays local.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return openApp()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if theApp != nil && theApp.kv != nil {
			theApp.kv.Close()
		}
	},
}

func openApp() error {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	backend, err := kv.OpenSQLite(cfg.DataPath, kv.WithMaxValueBytes(cfg.StoreMaxBytes))
	if err != nil {
		return fmt.Errorf("open data store: %w", err)
	}

	st := store.New(backend)
	theApp = &app{
		cfg:    cfg,
		kv:     backend,
		store:  st,
		engine: transfer.NewEngine(st, transfer.WithMaxImportBytes(cfg.ImportMaxBytes)),
		keeper: housekeep.New(backend),
		gate:   authgate.New(backend, cfg.Passphrase),
	}
	return nil
}

// requireUnlock guards mutating commands behind the passphrase gate.
func requireUnlock() error {
	if theApp.gate.IsUnlocked() {
		return nil
	}
	return fmt.Errorf("locked: run 'memo unlock' first")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/eventmemo/config.yaml)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(stepCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(icsCmd)
	rootCmd.AddCommand(calurlCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(unlockCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
