package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/sweeney/shiftreg/internal/shiftreg"
)

var inputCmd = &cobra.Command{
	Use:   "input <n>",
	Short: "Read one input and print true or false",
	Long: `Performs a full acquisition and prints the state of input n, where
1 <= n <= bits. Input 1 is the least significant bit of the sample.

Examples:
  shiftreg input 1
  shiftreg input 12 --bits 16`,
	Args: cobra.ExactArgs(1),
	RunE: runInput,
}

func init() {
	rootCmd.AddCommand(inputCmd)
}

// parseInput checks n against the configured width before any GPIO access.
func parseInput(arg string, width int) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("input must be a number, got %q", arg)
	}
	if n < 1 || n > width {
		return 0, fmt.Errorf("input must be 1..%d, got %d", width, n)
	}
	return n, nil
}

func runInput(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	n, err := parseInput(args[0], *cfg.Device.Bits)
	if err != nil {
		return err
	}

	return withDriver(cfg, func(drv *shiftreg.Driver) error {
		on, err := drv.ReadBit(n - 1)
		if err != nil {
			return fmt.Errorf("read input %d: %w", n, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), on)
		return nil
	})
}
