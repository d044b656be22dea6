package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/sweeney/shiftreg/internal/config"
	"github.com/sweeney/shiftreg/internal/influx"
	"github.com/sweeney/shiftreg/internal/logic"
	"github.com/sweeney/shiftreg/internal/mqtt"
	"github.com/sweeney/shiftreg/internal/shiftreg"
	"github.com/sweeney/shiftreg/internal/status"
	"github.com/sweeney/shiftreg/internal/web"
)

var (
	loopFormat      string
	loopInterval    time.Duration
	loopDebounce    time.Duration
	loopHeartbeat   time.Duration
	loopBroker      string
	loopTopicPrefix string
	loopClientID    string
	loopHTTP        string
	influxURL       string
	influxToken     string
	influxOrg       string
	influxBucket    string
)

var loopCmd = &cobra.Command{
	Use:   "loop",
	Short: "Read continuously and report changes",
	Long: `Acquires a sample every interval and prints it until SIGINT or SIGTERM.

With --broker every sample and every debounced input change is published to
MQTT; with --influx-url each sample is written to InfluxDB; with --http a
status page is served.

Examples:
  shiftreg loop --interval 200ms
  shiftreg loop --broker tcp://192.168.1.200:1883 --debounce 50ms --http :8080`,
	Args: cobra.NoArgs,
	RunE: runLoopCmd,
}

func init() {
	rootCmd.AddCommand(loopCmd)

	f := loopCmd.Flags()
	f.StringVarP(&loopFormat, "format", "f", "dec", "output format: dec, hex or bin")
	f.DurationVar(&loopInterval, "interval", config.DefaultIntervalMs*time.Millisecond, "time between acquisitions")
	f.DurationVar(&loopDebounce, "debounce", 0, "time an input must hold a new level before it is reported")
	f.DurationVar(&loopHeartbeat, "heartbeat", config.DefaultHeartbeatMs*time.Millisecond, "heartbeat interval (0 to disable)")
	f.StringVar(&loopBroker, "broker", "", "MQTT broker address (empty to disable)")
	f.StringVar(&loopTopicPrefix, "topic-prefix", "", `MQTT topic prefix (default "shiftreg/<device name>")`)
	f.StringVar(&loopClientID, "client-id", "", `MQTT client ID (default "shiftreg-<device name>")`)
	f.StringVar(&loopHTTP, "http", "", "HTTP status address (empty to disable)")
	f.StringVar(&influxURL, "influx-url", "", "InfluxDB URL (empty to disable)")
	f.StringVar(&influxToken, "influx-token", "", "InfluxDB API token")
	f.StringVar(&influxOrg, "influx-org", "", "InfluxDB organization")
	f.StringVar(&influxBucket, "influx-bucket", "", "InfluxDB bucket")
}

// applyLoopFlags overlays loop flags set on the command line. Commands
// without these flags are left untouched.
func applyLoopFlags(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Lookup("interval") == nil {
		return
	}
	if fs.Changed("interval") {
		cfg.Loop.IntervalMs = loopInterval.Milliseconds()
	}
	if fs.Changed("debounce") {
		cfg.Loop.DebounceMs = loopDebounce.Milliseconds()
	}
	if fs.Changed("heartbeat") {
		hb := loopHeartbeat.Milliseconds()
		cfg.Loop.HeartbeatMs = &hb
	}
	if fs.Changed("broker") {
		cfg.MQTT.Broker = loopBroker
	}
	if fs.Changed("topic-prefix") {
		cfg.MQTT.TopicPrefix = loopTopicPrefix
	}
	if fs.Changed("client-id") {
		cfg.MQTT.ClientID = loopClientID
	}
	if fs.Changed("http") {
		cfg.HTTP.Addr = loopHTTP
	}
	if fs.Changed("influx-url") {
		cfg.Influx.URL = influxURL
	}
	if fs.Changed("influx-token") {
		cfg.Influx.Token = influxToken
	}
	if fs.Changed("influx-org") {
		cfg.Influx.Org = influxOrg
	}
	if fs.Changed("influx-bucket") {
		cfg.Influx.Bucket = influxBucket
	}
}

func runLoopCmd(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := shiftreg.Sample(0).Format(*cfg.Device.Bits, loopFormat); err != nil {
		return err
	}

	// Trap signals before touching pins so an early interrupt still releases them.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	drv, err := openDriver(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := drv.Close(); cerr != nil {
			if err == nil {
				err = cerr
			} else {
				log.Printf("release pins: %v", cerr)
			}
		}
	}()

	interval := time.Duration(cfg.Loop.IntervalMs) * time.Millisecond
	debounce := time.Duration(cfg.Loop.DebounceMs) * time.Millisecond
	heartbeat := time.Duration(*cfg.Loop.HeartbeatMs) * time.Millisecond

	tracker := status.NewTracker(time.Now(), status.Config{
		Device:      cfg.Device.Name,
		Backend:     cfg.Device.Backend,
		SerialOut:   *cfg.Device.Pins.SerialOut,
		Load:        *cfg.Device.Pins.Load,
		Clock:       *cfg.Device.Pins.Clock,
		Bits:        *cfg.Device.Bits,
		SettleUs:    cfg.Device.SettleUs,
		IntervalMs:  cfg.Loop.IntervalMs,
		DebounceMs:  cfg.Loop.DebounceMs,
		HeartbeatMs: *cfg.Loop.HeartbeatMs,
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP.Addr,
		InfluxURL:   cfg.Influx.URL,
	})

	var (
		publisher  mqtt.Publisher
		mqttStatus mqtt.ConnectionStatus
	)
	if cfg.MQTT.Broker != "" {
		prefix := cfg.MQTT.TopicPrefix
		if prefix == "" {
			prefix = mqtt.DefaultTopicPrefix + "/" + cfg.Device.Name
		}
		clientID := cfg.MQTT.ClientID
		if clientID == "" {
			clientID = "shiftreg-" + cfg.Device.Name
		}
		p, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, clientID, mqtt.NewTopics(prefix))
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer p.Close()
		publisher, mqttStatus = p, p

		tracker.SetMQTTConnected(p.IsConnected())
		snap := tracker.Snapshot()
		startup := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startup); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	var sink sampleSink
	if cfg.Influx.URL != "" {
		w := influx.NewWriter(influx.Config{
			URL:         cfg.Influx.URL,
			Token:       cfg.Influx.Token,
			Org:         cfg.Influx.Org,
			Bucket:      cfg.Influx.Bucket,
			Measurement: cfg.Influx.Measurement,
			Device:      cfg.Device.Name,
		})
		defer w.Close()
		sink = w
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: %s interval=%v debounce=%v heartbeat=%v", drv.Info(), interval, debounce, heartbeat)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	return runLoop(loopDeps{
		drv:        drv,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		sink:       sink,
		tracker:    tracker,
		out:        cmd.OutOrStdout(),
		format:     loopFormat,
	}, debounce, heartbeat, time.Now, ticker.C, sigCh)
}

// acquirer is the part of *shiftreg.Driver the loop uses.
type acquirer interface {
	Read() (shiftreg.Sample, error)
	Bits() int
}

// sampleSink stores samples. Implemented by *influx.Writer.
type sampleSink interface {
	WriteSample(ctx context.Context, value uint64, bits int, at time.Time) error
}

// loopDeps holds the collaborators of runLoop. Only drv is required.
type loopDeps struct {
	drv        acquirer
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	sink       sampleSink
	tracker    *status.Tracker
	out        io.Writer
	format     string
}

func runLoop(deps loopDeps, debounce, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	width := deps.drv.Bits()
	detector := logic.NewDetector(width, debounce, now())

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			deps.publishShutdown(now(), signalName(s))
			return nil

		case <-tick:
			t := now()
			sample, err := deps.drv.Read()
			if err != nil {
				if errors.Is(err, shiftreg.ErrReleased) {
					return err
				}
				log.Printf("acquisition error: %v", err)
				if deps.tracker != nil {
					deps.tracker.RecordFailure(err)
				}
				continue
			}

			if deps.out != nil {
				line, _ := sample.Format(width, deps.format)
				fmt.Fprintln(deps.out, line)
			}
			if deps.tracker != nil {
				deps.tracker.RecordSample(uint64(sample), t)
			}

			if deps.publisher != nil {
				if err := deps.publisher.PublishSample(mqtt.Sample{Timestamp: t, Value: uint64(sample), Bits: width}); err != nil {
					log.Printf("publish error: %v", err)
				}
			}
			if deps.sink != nil {
				if err := deps.sink.WriteSample(context.Background(), uint64(sample), width, t); err != nil {
					log.Printf("%v", err)
				}
			}

			events := detector.Process(logic.Input{Sample: uint64(sample), Time: t})
			for _, event := range events {
				log.Printf("event: input %d %s", event.Input(), event.State)
				if deps.publisher == nil {
					continue
				}
				if err := deps.publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			if !detector.IsBaselined() {
				continue
			}

			if hbData := detector.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v sample=%d changes=%d",
					hbData.Uptime, hbData.Sample, hbData.Counts.Total())
				deps.updateTracker(detector)
				if deps.publisher != nil {
					hbEvent := mqtt.SystemEvent{
						Timestamp: hbData.Timestamp,
						Event:     "HEARTBEAT",
					}
					if deps.tracker != nil {
						hbEvent.RawPayload = status.FormatStatusEvent(deps.tracker.Snapshot(), "HEARTBEAT", "")
					}
					if err := deps.publisher.PublishSystem(hbEvent); err != nil {
						log.Printf("heartbeat publish error: %v", err)
					}
				}
			}

			deps.updateTracker(detector)
		}
	}
}

func (deps loopDeps) updateTracker(detector *logic.Detector) {
	if deps.tracker == nil {
		return
	}
	stable, _ := detector.CurrentSample()
	deps.tracker.Update(stable, detector.IsBaselined(), detector.EventCountsSnapshot())
	if deps.mqttStatus != nil {
		deps.tracker.SetMQTTConnected(deps.mqttStatus.IsConnected())
	}
}

func (deps loopDeps) publishShutdown(at time.Time, reason string) {
	if deps.publisher == nil {
		return
	}
	event := mqtt.SystemEvent{
		Timestamp: at,
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	if deps.tracker != nil {
		if deps.mqttStatus != nil {
			deps.tracker.SetMQTTConnected(deps.mqttStatus.IsConnected())
		}
		event.RawPayload = status.FormatStatusEvent(deps.tracker.Snapshot(), "SHUTDOWN", reason)
	}
	if err := deps.publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}
