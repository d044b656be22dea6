package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/sweeney/shiftreg/internal/config"
	"github.com/sweeney/shiftreg/internal/gpio"
	"github.com/sweeney/shiftreg/internal/shiftreg"
)

var (
	// Global flags
	configPath string
	serialOut  int
	loadPin    int
	clockPin   int
	bits       int
	settle     time.Duration
	backend    string
	chip       string
)

// openPins is replaced in tests.
var openPins = gpio.Open

var rootCmd = &cobra.Command{
	Use:   "shiftreg",
	Short: "Read a 74HC165 parallel-in/serial-out shift register",
	Long: `Reads the parallel inputs of a 74HC165 (or a daisy chain of them) by
bit-banging the load, clock and serial-out lines over GPIO.

Pins are BCM numbers for the rpio backend and line offsets on --chip for the
gpiocdev backend; on a Raspberry Pi these are the same.

Examples:
  shiftreg all                                  # Print one 8-bit sample
  shiftreg all --bits 16 --format bin           # Two chained devices, binary
  shiftreg input 3                              # Print input 3 as true/false
  shiftreg loop --interval 500ms --broker tcp://broker:1883
  shiftreg info --config /etc/shiftreg.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	pf.IntVar(&serialOut, "serial-out", config.DefaultSerialOut, "pin wired to the device serial output (QH)")
	pf.IntVar(&loadPin, "load", config.DefaultLoad, "pin wired to the device load input (SH/LD)")
	pf.IntVar(&clockPin, "clock", config.DefaultClock, "pin wired to the device clock input (CLK)")
	pf.IntVarP(&bits, "bits", "b", config.DefaultBits, "number of bits to shift in (8 per device)")
	pf.DurationVar(&settle, "settle", config.DefaultSettleUs*time.Microsecond, "hold time after each edge (minimum 10µs)")
	pf.StringVar(&backend, "backend", config.DefaultBackend, "GPIO backend: gpiocdev or rpio")
	pf.StringVar(&chip, "chip", config.DefaultChip, "gpiochip for the gpiocdev backend")
}

// loadConfig reads the configuration file, if any, and overlays every flag
// set on the command line. The result is normalized and validated.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	if configPath != "" {
		c, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	fs := cmd.Flags()
	d := &cfg.Device
	if fs.Changed("serial-out") {
		d.Pins.SerialOut = &serialOut
	}
	if fs.Changed("load") {
		d.Pins.Load = &loadPin
	}
	if fs.Changed("clock") {
		d.Pins.Clock = &clockPin
	}
	if fs.Changed("bits") {
		d.Bits = &bits
	}
	if fs.Changed("settle") {
		d.SettleUs = settle.Microseconds()
	}
	if fs.Changed("backend") {
		d.Backend = backend
	}
	if fs.Changed("chip") {
		d.Chip = chip
	}
	applyLoopFlags(cmd, cfg)

	config.Normalize(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func driverConfig(cfg *config.Config) shiftreg.Config {
	return shiftreg.Config{
		SerialOut: *cfg.Device.Pins.SerialOut,
		Load:      *cfg.Device.Pins.Load,
		Clock:     *cfg.Device.Pins.Clock,
		Bits:      *cfg.Device.Bits,
		Settle:    time.Duration(cfg.Device.SettleUs) * time.Microsecond,
	}
}

// openDriver opens the GPIO backend and configures the driver's pins.
// The caller owns the returned driver and must Close it.
func openDriver(cfg *config.Config) (*shiftreg.Driver, error) {
	pins, err := openPins(cfg.Device.Backend, cfg.Device.Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}
	drv, err := shiftreg.New(pins, driverConfig(cfg))
	if err != nil {
		pins.Release()
		return nil, fmt.Errorf("init driver: %w", err)
	}
	return drv, nil
}
