package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rocketwave/relaxbridge/logging"
	"github.com/rocketwave/relaxbridge/pipeline"
	"github.com/rocketwave/relaxbridge/sink"
	"github.com/rocketwave/relaxbridge/source"
)

type opts struct {
	// source
	simulate bool
	replay   string
	rate     float64

	// processing
	window  float64
	hop     float64
	segment float64
	overlap float64
	tau     float64
	maxStep float64
	remap   string
	mode    string

	// sinks
	logDir     string
	noCSV      bool
	udpAddr    string
	noUDP      bool
	mqttAddr   string
	mqttPrefix string
	sendRaw    bool

	debug bool
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "relaxbridge",
		Short: "Stream a smoothed relaxation index from a multi-channel EEG source",
		Long: `relaxbridge ingests a multi-channel EEG sample stream, estimates
alpha/beta band powers with Welch's method over sliding windows, derives a
smoothed relaxation index in [0,1], and fans the result out to a CSV session
log, a UDP JSON feed and an MQTT broker.

Examples:
  relaxbridge --simulate
  relaxbridge --replay session_raw.csv --no-udp
  relaxbridge --simulate --mqtt 127.0.0.1:1883 --remap logistic`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o)
		},
		SilenceUsage: true,
	}

	root.Flags().BoolVar(&o.simulate, "simulate", false, "generate a synthetic stream instead of reading hardware")
	root.Flags().StringVar(&o.replay, "replay", "", "replay raw samples from a CSV file")
	root.Flags().Float64Var(&o.rate, "rate", 256.0, "assumed sampling rate in Hz")

	root.Flags().Float64Var(&o.window, "window", 2.0, "processing window length in seconds")
	root.Flags().Float64Var(&o.hop, "hop", 0.1, "hop interval between processing cycles in seconds")
	root.Flags().Float64Var(&o.segment, "segment", 1.0, "Welch segment length in seconds")
	root.Flags().Float64Var(&o.overlap, "overlap", 0.5, "Welch segment overlap fraction [0,1)")
	root.Flags().Float64Var(&o.tau, "tau", 1.5, "EMA time constant in seconds")
	root.Flags().Float64Var(&o.maxStep, "max-step", 0.05, "maximum per-cycle change of the emitted value")
	root.Flags().StringVar(&o.remap, "remap", "none", "midrange remap curve: none, midboost or logistic")
	root.Flags().StringVar(&o.mode, "mode", "difference", "index combination: difference or ratio")

	root.Flags().StringVar(&o.logDir, "log-dir", "logs", "directory for session CSV logs")
	root.Flags().BoolVar(&o.noCSV, "no-csv", false, "disable the session CSV log")
	root.Flags().StringVar(&o.udpAddr, "udp", "127.0.0.1:5005", "UDP feedback address")
	root.Flags().BoolVar(&o.noUDP, "no-udp", false, "disable the UDP feedback channel")
	root.Flags().StringVar(&o.mqttAddr, "mqtt", "", "MQTT broker address (empty = disabled)")
	root.Flags().StringVar(&o.mqttPrefix, "mqtt-prefix", "muse", "MQTT topic prefix")
	root.Flags().BoolVar(&o.sendRaw, "send-raw", false, "forward raw samples on the MQTT feed")

	root.Flags().BoolVar(&o.debug, "debug", false, "enable per-cycle debug logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, o opts) error {
	logger := logging.NewDefaultLogger()
	if o.debug {
		logger.SetLevel(logging.DebugLevel)
	}
	logging.SetGlobalLogger(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := openSource(o)
	if err != nil {
		logger.Error(err, "no sample source")
		return err
	}
	defer src.Close()
	logger.Info("source connected", logging.Fields{
		"sample_rate": src.SampleRate(),
		"channels":    src.Channels(),
	})

	sinks, err := buildSinks(ctx, o, logger)
	if err != nil {
		return err
	}
	fanout := sink.NewFanout(sinks, logger)
	defer fanout.Close()

	cfg := pipeline.DefaultConfig()
	cfg.SampleRate = o.rate
	cfg.WindowSeconds = o.window
	cfg.HopSeconds = o.hop
	cfg.SegmentSeconds = o.segment
	cfg.SegmentOverlap = o.overlap
	cfg.Smoothing.TimeConstant = o.tau
	cfg.Smoothing.MaxStep = o.maxStep
	cfg.Index.Mode = pipeline.IndexMode(o.mode)
	cfg.PublishSpectrum = o.mqttAddr != ""
	cfg.ForwardRaw = o.sendRaw && o.mqttAddr != ""

	remap, err := pipeline.RemapByName(o.remap)
	if err != nil {
		return err
	}
	cfg.Smoothing.Remap = remap

	p, err := pipeline.New(cfg, src, fanout, logger)
	if err != nil {
		return err
	}

	return p.Run(ctx)
}

func openSource(o opts) (source.SampleSource, error) {
	switch {
	case o.replay != "":
		return source.OpenReplay(o.replay, o.rate)
	case o.simulate:
		cfg := source.DefaultSyntheticConfig()
		cfg.SampleRate = o.rate
		cfg.Seed = time.Now().UnixNano()
		return source.NewSynthetic(cfg), nil
	default:
		return nil, fmt.Errorf("%w: pass --simulate or --replay <file> (live hardware bridges connect through the same source contract)", source.ErrNoStream)
	}
}

func buildSinks(ctx context.Context, o opts, logger logging.Logger) ([]sink.Sink, error) {
	var sinks []sink.Sink

	if !o.noCSV {
		csvSink, err := sink.CreateSessionLog(o.logDir, time.Now())
		if err != nil {
			return nil, err
		}
		logger.Info("logging session", logging.Fields{"path": csvSink.Path()})
		sinks = append(sinks, csvSink)
	}

	if !o.noUDP {
		udpSink, err := sink.NewUDPSink(o.udpAddr)
		if err != nil {
			// Feedback channels are best-effort; run without this one.
			logger.Warn("udp feedback disabled", logging.Fields{"err": err.Error()})
		} else {
			sinks = append(sinks, udpSink)
		}
	}

	if o.mqttAddr != "" {
		cfg := sink.DefaultMQTTConfig()
		cfg.Addr = o.mqttAddr
		cfg.TopicPrefix = o.mqttPrefix
		mqttSink, err := sink.NewMQTTSink(ctx, cfg)
		if err != nil {
			logger.Warn("mqtt feedback disabled", logging.Fields{"err": err.Error()})
		} else {
			sinks = append(sinks, mqttSink)
		}
	}

	return sinks, nil
}
