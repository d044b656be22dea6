package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sweeney/shiftreg/internal/config"
	"github.com/sweeney/shiftreg/internal/shiftreg"
)

// withDriver opens the driver, runs fn and always releases the pins.
// SIGINT and SIGTERM are held until the pins are released, so an interrupt
// never leaves a line configured as an output.
func withDriver(cfg *config.Config, fn func(*shiftreg.Driver) error) (err error) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	drv, err := openDriver(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := drv.Close(); cerr != nil && err == nil {
			err = cerr
		}
		select {
		case s := <-sigCh:
			log.Printf("received %v, pins released", s)
		default:
		}
	}()

	return fn(drv)
}
