// Command waybind runs the keyboard shortcut engine against the local
// input devices: it loads the TOML configuration, grabs keyboards via
// evdev, matches bindings, and executes their commands.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"waybind/internal/config"
	"waybind/internal/keyboard"
	"waybind/internal/keys"
	"waybind/internal/loop"
	"waybind/internal/notify"
	"waybind/internal/seat"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "waybind:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", defaultConfigPath(), "path to the configuration file")
		debug      = flag.Bool("debug", false, "enable debug logging")
		trace      = flag.Bool("trace", false, "enable trace logging")
		events     = flag.Bool("events", false, "print engine events as JSON on stdout")
	)
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	if *trace {
		level = zerolog.TraceLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	log.Info().Str("config", *configPath).Int("bindings", len(cfg.Binding)).
		Msg("configuration loaded")

	l := loop.New()
	notifier := notify.New(log)
	if *events {
		notifier.Subscribe(func(payload []byte) {
			fmt.Fprintln(os.Stdout, string(payload))
		})
	}

	s, err := seat.New(seat.Options{
		Scheduler: l,
		Executor:  shellExecutor{log: log},
		Client:    traceClient{log: log},
		Notifier:  notifier,
		Config:    cfg,
		Log:       log,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	stopDevices, err := runDevices(l, s, log)
	if err != nil {
		return err
	}
	defer stopDevices()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		l.Stop()
	}()

	l.Run()
	return nil
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/waybind/waybind.toml"
	}
	return "waybind.toml"
}

// shellExecutor runs binding commands through the shell, detached from
// the event loop.
type shellExecutor struct {
	log zerolog.Logger
}

func (e shellExecutor) Execute(command string) error {
	cmd := exec.Command("/bin/sh", "-c", command)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			e.log.Warn().Err(err).Str("command", command).Msg("command exited with error")
		}
	}()
	return nil
}

// traceClient stands in for a focused client: forwarded events are only
// logged. A compositor embedding the engine would deliver them instead.
type traceClient struct {
	log zerolog.Logger
}

func (c traceClient) SendKey(device string, ev keyboard.KeyEvent) {
	c.log.Trace().Str("device", device).Uint32("code", ev.Code).
		Bool("pressed", ev.Pressed).Msg("forwarded key")
}

func (c traceClient) SendModifiers(device string, mods keys.Modifiers) {
	c.log.Trace().Str("device", device).Str("modifiers", mods.String()).
		Msg("forwarded modifiers")
}
