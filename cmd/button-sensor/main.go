// Command button-sensor debounces a push button on a GPIO line and publishes
// press events to MQTT.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sweeney/button-sensor/internal/button"
	"github.com/sweeney/button-sensor/internal/config"
	"github.com/sweeney/button-sensor/internal/gpio"
	"github.com/sweeney/button-sensor/internal/mqtt"
	"github.com/sweeney/button-sensor/internal/status"
	"github.com/sweeney/button-sensor/internal/timer"
	"github.com/sweeney/button-sensor/internal/web"
)

var (
	configPath string
	logLevel   string

	mainCmd = &cobra.Command{
		Use:   "button-sensor",
		Short: "Debounce a GPIO push button and publish press events to MQTT",
	}
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the daemon",
		Args:  cobra.NoArgs,
		RunE:  runDaemon,
	}
	printStateCmd = &cobra.Command{
		Use:   "print-state",
		Short: "Print the current input state and exit",
		Args:  cobra.NoArgs,
		RunE:  runPrintState,
	}
	writeConfigCmd = &cobra.Command{
		Use:   "write-config PATH",
		Short: "Write the default configuration (.yaml or .toml) to PATH",
		Args:  cobra.ExactArgs(1),
		RunE:  runWriteConfig,
	}
)

func main() {
	mainCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "/etc/button-sensor.yaml", "Config path (.yaml or .toml)")
	mainCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log.level from the config file")
	mainCmd.SilenceUsage = true
	mainCmd.AddCommand(runCmd, printStateCmd, writeConfigCmd)

	if err := mainCmd.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := setupLogging(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(c config.LogConfig) error {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)
	if c.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func lineConfig(c config.GPIOConfig) gpio.LineConfig {
	return gpio.LineConfig{
		Chip:      c.Chip,
		Line:      c.Line,
		Bias:      gpio.Bias(c.Bias),
		ActiveLow: c.ActiveLow,
	}
}

// newButton builds the state machine from the configured windows.
func newButton(c config.ButtonConfig) *button.Button {
	return button.New(
		config.Millis(c.PressDebounce),
		config.Millis(c.ReleaseDebounce),
		config.Millis(c.LongPress),
		config.Millis(c.TickInterval),
	)
}

func runPrintState(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reader, err := gpio.NewRealReader(lineConfig(cfg.GPIO))
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	pressed, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	fmt.Printf("%s: %s\n", cfg.Button.Name, pressedString(pressed))
	return nil
}

func runWriteConfig(cmd *cobra.Command, args []string) error {
	if err := config.Default().Save(args[0]); err != nil {
		return err
	}
	log.Printf("wrote default config to %s", args[0])
	return nil
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reader, err := gpio.NewRealReader(lineConfig(cfg.GPIO))
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	publisher, err := mqtt.NewRealPublisher(mqtt.Options{
		Broker:      cfg.MQTT.Broker,
		ClientID:    cfg.MQTT.ClientID,
		TopicPrefix: cfg.MQTT.TopicPrefix,
		OutboxSize:  cfg.MQTT.OutboxSize,
	})
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	btn := newButton(cfg.Button)

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), statusConfig(cfg, btn))
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetMQTTConnected(publisher.IsConnected())

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Warnf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		srv.SetRefresh(func() { refreshTracker(tracker, publisher) })
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.WithFields(log.Fields{
		"button":           cfg.Button.Name,
		"mode":             btn.Mode(),
		"tick":             cfg.Button.TickInterval,
		"press_ticks":      btn.PressDebounceTicks(),
		"release_ticks":    btn.ReleaseDebounceTicks(),
		"long_press_ticks": btn.LongPressTicks(),
		"broker":           cfg.MQTT.Broker,
		"heartbeat":        cfg.MQTT.Heartbeat,
	}).Info("started")

	ticker := time.NewTicker(cfg.Button.TickInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(reader, btn, publisher, publisher, tracker, cfg, time.Now, ticker.C, sigCh)
}

func statusConfig(cfg *config.Config, btn *button.Button) status.Config {
	return status.Config{
		Name:              cfg.Button.Name,
		Mode:              btn.Mode().String(),
		TickMs:            cfg.Button.TickInterval.Milliseconds(),
		PressDebounceMs:   cfg.Button.PressDebounce.Milliseconds(),
		ReleaseDebounceMs: cfg.Button.ReleaseDebounce.Milliseconds(),
		LongPressMs:       cfg.Button.LongPress.Milliseconds(),
		HeartbeatMs:       cfg.MQTT.Heartbeat.Milliseconds(),
		Broker:            cfg.MQTT.Broker,
		HTTPAddr:          cfg.HTTP.Addr,
	}
}

// runLoop drives the button and the heartbeat timer from tick until a signal
// arrives. Every tick is one Button tick: read errors skip the button but not
// the heartbeat.
func runLoop(reader gpio.Reader, btn *button.Button, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, cfg *config.Config, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	var counts button.EventCounts
	var tickTime time.Time

	var heartbeat timer.Timer
	heartbeat.InitMs(config.Millis(cfg.MQTT.Heartbeat), config.Millis(cfg.Button.TickInterval))
	heartbeat.SetFinishedFunc(func(t *timer.Timer) {
		log.WithFields(log.Fields{
			"button_down": counts.ButtonDown,
			"button_up":   counts.ButtonUp,
			"short_press": counts.ShortPress,
			"long_press":  counts.LongPress,
		}).Debug("heartbeat")

		refreshTracker(tracker, mqttStatus)
		if net := readNetworkInfo(); net != nil {
			tracker.SetNetwork(net)
		}
		snap := tracker.Snapshot()
		hbEvent := mqtt.SystemEvent{
			Timestamp:  tickTime,
			Event:      "HEARTBEAT",
			RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
		}
		if err := publisher.PublishSystem(hbEvent); err != nil {
			log.Warnf("heartbeat publish error: %v", err)
		}
		t.Start()
	})
	heartbeat.Start()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			refreshTracker(tracker, mqttStatus)
			snap := tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  now(),
				Event:      "SHUTDOWN",
				Reason:     signalName,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Warnf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			tickTime = now()
			pressed, err := reader.Read()
			if err != nil {
				log.Warnf("gpio read error: %v", err)
			} else {
				btn.Tick(pressed)
				for _, e := range btn.Collect() {
					counts.Add(e)
					log.WithFields(log.Fields{"button": cfg.Button.Name, "state": btn.State()}).Infof("event: %s", e)
					if err := publisher.Publish(mqtt.Event{
						Timestamp: tickTime,
						Button:    cfg.Button.Name,
						Type:      e,
						State:     btn.State(),
						Counts:    counts,
					}); err != nil {
						// Don't crash on publish failure
						log.Warnf("publish error: %v", err)
					}
					tracker.RecordEvent(e, tickTime)
				}
				tracker.Update(btn.State(), pressed, counts)
			}

			heartbeat.Tick()
		}
	}
}

func refreshTracker(tracker *status.Tracker, mqttStatus mqtt.ConnectionStatus) {
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func pressedString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
