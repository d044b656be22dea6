package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the configured wiring without touching the pins",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	info := driverConfig(cfg).Info()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Device:     %s\n", cfg.Device.Name)
	fmt.Fprintf(w, "Backend:    %s\n", cfg.Device.Backend)
	if cfg.Device.Backend == "gpiocdev" {
		fmt.Fprintf(w, "Chip:       %s\n", cfg.Device.Chip)
	}
	fmt.Fprintf(w, "Bits:       %d (%d device(s))\n", info.Bits, (info.Bits+7)/8)
	fmt.Fprintf(w, "Serial out: %d\n", info.SerialOut)
	fmt.Fprintf(w, "Load:       %d\n", info.Load)
	fmt.Fprintf(w, "Clock:      %d\n", info.Clock)
	fmt.Fprintf(w, "Settle:     %v\n", info.Settle)
	return nil
}
