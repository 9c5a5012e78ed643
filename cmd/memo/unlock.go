package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock the store with the configured passphrase",
	RunE:  runUnlock,
}

var unlockForget bool

func init() {
	unlockCmd.Flags().BoolVar(&unlockForget, "forget", false, "Discard the remembered unlock instead")
}

func runUnlock(cmd *cobra.Command, args []string) error {
	if unlockForget {
		if err := theApp.gate.Forget(); err != nil {
			return err
		}
		fmt.Println("Remembered unlock discarded")
		return nil
	}

	if !theApp.gate.Enabled() {
		fmt.Println("No passphrase configured; the store is not locked")
		return nil
	}
	if theApp.gate.IsUnlocked() {
		fmt.Println("Already unlocked")
		return nil
	}

	fmt.Print("Passphrase: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return fmt.Errorf("read passphrase: %w", err)
	}
	if !theApp.gate.Verify(strings.TrimSpace(line)) {
		return fmt.Errorf("wrong passphrase")
	}
	if err := theApp.gate.Remember(); err != nil {
		return err
	}
	fmt.Println("Unlocked")
	return nil
}
