package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sweeney/shiftreg/internal/shiftreg"
)

var allFormat string

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Read every input once and print the sample",
	Long: `Performs one acquisition and prints the sample. Input 1 is the least
significant bit.

Examples:
  shiftreg all                 # 8 bits, decimal
  shiftreg all --format hex    # 0x..
  shiftreg all --format bin    # 0b........`,
	Args: cobra.NoArgs,
	RunE: runAll,
}

func init() {
	rootCmd.AddCommand(allCmd)

	allCmd.Flags().StringVarP(&allFormat, "format", "f", "dec",
		"output format: dec, hex or bin")
}

func runAll(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	width := *cfg.Device.Bits
	if _, err := shiftreg.Sample(0).Format(width, allFormat); err != nil {
		return err
	}

	return withDriver(cfg, func(drv *shiftreg.Driver) error {
		s, err := drv.Read()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		out, _ := s.Format(width, allFormat)
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	})
}
