package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	arg "github.com/alexflint/go-arg"
	"github.com/sirupsen/logrus"

	"github.com/itohio/gogeiger/pkg/config"
	"github.com/itohio/gogeiger/pkg/display"
	"github.com/itohio/gogeiger/pkg/lcd"
	"github.com/itohio/gogeiger/pkg/sim"
)

var version = "No version provided"

var log = logrus.New()

type argSpec struct {
	Config    string        `arg:"-c, --config" help:"Configuration file path"`
	Headless  bool          `arg:"--headless" help:"Run without a window and log the readings"`
	Duration  time.Duration `arg:"--duration" help:"Stop a headless run after this long (0 runs until interrupted)"`
	LCDPort   string        `arg:"-p, --lcd-port" help:"Serial port of an LCD backpack mirroring the display"`
	SourceCPM *float32      `arg:"--source-cpm" help:"Mean activity of the simulated source, counts per minute"`
	Speed     *float32      `arg:"--speed" help:"Simulated seconds per wall clock second"`
	LogLevel  string        `arg:"-l, --log-level" help:"Set the logging level (debug, info, warn, error)"`
}

func (argSpec) Version() string {
	return version
}

func procArgs() argSpec {
	args := argSpec{
		Config: "config.yaml",
	}
	arg.MustParse(&args)
	return args
}

// apply overrides the loaded configuration with the flags that were given.
func (a argSpec) apply(cfg *config.Config) {
	if a.LCDPort != "" {
		cfg.LCD.Port = a.LCDPort
	}
	if a.SourceCPM != nil {
		cfg.Sim.SourceCPM = max(*a.SourceCPM, 0)
	}
	if a.Speed != nil && *a.Speed > 0 {
		cfg.Sim.Speed = *a.Speed
	}
	if a.LogLevel != "" {
		cfg.LogLevel = a.LogLevel
	}
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
		log.Warn("Unknown log level, defaulting to info")
	}
}

type customFormatter struct{}

func (f *customFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", strings.ToUpper(entry.Level.String()), entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func main() {
	err := runMain()
	if err != nil {
		log.Fatal(err.Error())
	}
}

func runMain() error {
	log.SetFormatter(new(customFormatter))
	args := procArgs()

	cfg, err := config.Load(args.Config)
	if err != nil {
		return err
	}
	args.apply(cfg)
	setLogLevel(cfg.LogLevel)

	log.Info("Running version: ", version)

	var extra []display.Display
	if cfg.LCD.Port != "" {
		bench, err := lcd.Open(cfg.LCD.Port, cfg.LCD.BaudRate)
		if err != nil {
			return err
		}
		defer bench.Close()
		bench.SetLogger(log)
		extra = append(extra, bench)
		log.WithField("port", cfg.LCD.Port).Info("Mirroring display to serial LCD")
	}

	s := sim.New(cfg.Sim, cfg.Geiger, extra...)
	s.SetLogger(log)

	if args.Headless {
		return runHeadless(s, args.Duration)
	}
	runGUI(cfg, args.Config, s)
	return nil
}
