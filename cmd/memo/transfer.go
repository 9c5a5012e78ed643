package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"eventmemo/internal/transfer"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the store as a portable JSON document",
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a previously exported document",
	Long: `Import a document produced by 'memo export'. Reads the named file, or
stdin when the argument is "-" or omitted. Merge mode keeps existing
events and adds unseen ids; replace mode overwrites the whole store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Backup reminders",
}

var backupRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record that a backup was taken now",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := theApp.keeper.RecordBackup(time.Now()); err != nil {
			return err
		}
		fmt.Println("Backup recorded")
		return nil
	},
}

var backupStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show when the last backup was recorded",
	RunE: func(cmd *cobra.Command, args []string) error {
		last, ok := theApp.keeper.LastBackup()
		if !ok {
			fmt.Println("No backup recorded yet")
			return nil
		}
		fmt.Printf("Last backup: %s\n", last.Format(time.RFC3339))
		if theApp.keeper.ShouldRemindBackup(time.Now()) {
			fmt.Println("A new backup is due")
		}
		return nil
	},
}

var (
	exportOut     string
	exportCompact bool
	importMode    string
	importCompact bool
)

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Write to a file instead of stdout")
	exportCmd.Flags().BoolVar(&exportCompact, "compact", false, "Compact transfer form: short field names, active events only")

	importCmd.Flags().StringVar(&importMode, "mode", string(transfer.ModeMerge), "Reconciliation mode: merge or replace")
	importCmd.Flags().BoolVar(&importCompact, "compact", false, "Treat input as the compact transfer form")

	backupCmd.AddCommand(backupRecordCmd, backupStatusCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportCompact {
		text, err := theApp.engine.ExportCompact()
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	}

	if exportOut != "" {
		if err := theApp.engine.ExportToFile(exportOut); err != nil {
			return err
		}
		if err := theApp.keeper.RecordBackup(time.Now()); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", exportOut)
		return nil
	}

	text, err := theApp.engine.ExportText(false)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := requireUnlock(); err != nil {
		return err
	}

	mode := transfer.Mode(importMode)
	if mode != transfer.ModeMerge && mode != transfer.ModeReplace {
		return fmt.Errorf("mode must be 'merge' or 'replace'")
	}

	var (
		report transfer.Report
		err    error
	)
	switch {
	case len(args) == 0 || args[0] == "-":
		raw, rerr := io.ReadAll(os.Stdin)
		if rerr != nil {
			return fmt.Errorf("read stdin: %w", rerr)
		}
		if importCompact {
			report, err = theApp.engine.ImportCompact(string(raw))
		} else {
			report, err = theApp.engine.Import(string(raw), mode)
		}
	case importCompact:
		raw, rerr := os.ReadFile(args[0])
		if rerr != nil {
			return fmt.Errorf("read import file: %w", rerr)
		}
		report, err = theApp.engine.ImportCompact(string(raw))
	default:
		report, err = theApp.engine.ImportFromFile(args[0], mode)
	}
	if err != nil {
		return err
	}

	switch report.Mode {
	case transfer.ModeReplace:
		fmt.Printf("Imported %d event(s), replacing the store\n", report.Added)
	default:
		fmt.Printf("Merged %d new event(s), skipped %d duplicate(s)\n", report.Added, report.Skipped)
	}
	return nil
}
