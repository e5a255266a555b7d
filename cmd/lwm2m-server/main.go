// Command lwm2m-server runs the LWM2M server core against an in-memory
// reference protocol engine.
//
// A production deployment plugs in a real CoAP/LWM2M engine implementing
// coap.Engine (DTLS, retransmission, block-wise transfer); that engine is
// an external collaborator this module does not provide (see coap.Engine's
// doc comment). This binary wires the reference coaptest engine instead, so
// it can be built and started standalone for manual exercising over the
// operator CLI.
//
// Usage:
//
//	lwm2m-server [flags]
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-listen string      Listen address (default ":5683")
//	-family string      Address family: udp4, udp6 (default "udp4")
//	-threaded           Run the Server Loop on a dedicated goroutine
//	-grace int          Grace period multiplier (default 2)
//	-discover           Advertise via mDNS
//	-name string        Advertised server name (used when -discover is set)
//	-log-level string   Log level: debug, info, warn, error (default "info")
//	-log-file string    Optional CBOR structured-log file path
package main

import (
	"flag"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/niki4/lwm2m-server/coap/coaptest"
	"github.com/niki4/lwm2m-server/lwconfig"
	"github.com/niki4/lwm2m-server/lwdiscovery"
	"github.com/niki4/lwm2m-server/lwlog"
	"github.com/niki4/lwm2m-server/server"
)

var (
	configFile string
	listen     string
	family     string
	threaded   bool
	grace      int
	discover   bool
	name       string
	logLevel   string
	logFile    string
)

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&listen, "listen", "", "Listen address (default \":5683\")")
	flag.StringVar(&family, "family", "", "Address family: udp4, udp6")
	flag.BoolVar(&threaded, "threaded", false, "Run the Server Loop on a dedicated goroutine")
	flag.IntVar(&grace, "grace", 0, "Grace period multiplier")
	flag.BoolVar(&discover, "discover", false, "Advertise via mDNS")
	flag.StringVar(&name, "name", "", "Advertised server name")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Optional CBOR structured-log file path")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	applyFlagOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger, closer := buildLogger(cfg)
	if closer != nil {
		defer closer()
	}

	socket, err := server.NewUDPSocket(cfg.AddressFamily, cfg.ListenAddress)
	if err != nil {
		log.Fatalf("failed to open socket on %s (%s): %v", cfg.ListenAddress, cfg.AddressFamily, err)
	}
	defer socket.Close()

	engine := coaptest.New()
	srv := server.New(engine, socket, server.Config{
		Threaded:        cfg.Threaded,
		GraceMultiplier: time.Duration(cfg.GraceMultiplier),
	}, logger)

	if err := srv.Start(); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
	log.Printf("lwm2m-server listening on %s (%s)", cfg.ListenAddress, cfg.AddressFamily)

	var advertiser *lwdiscovery.MDNSAdvertiser
	if cfg.Discovery.Enabled {
		advertiser = lwdiscovery.NewMDNSAdvertiser(lwdiscovery.Config{})
		info := lwdiscovery.Info{
			ServerName: cfg.Discovery.ServerName,
			Port:       listenPort(cfg),
			Version:    cfg.Discovery.Version,
		}
		if err := advertiser.Advertise(info); err != nil {
			log.Printf("mDNS advertisement failed: %v", err)
			advertiser = nil
		} else {
			log.Printf("advertising as %q via mDNS", info.ServerName)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal: %v, shutting down", sig)

	if advertiser != nil {
		if err := advertiser.Stop(); err != nil {
			log.Printf("error stopping mDNS advertisement: %v", err)
		}
	}
	if err := srv.Stop(); err != nil {
		log.Printf("error stopping server: %v", err)
	}
	log.Println("stopped")
}

func loadConfig() (*lwconfig.Config, error) {
	if configFile == "" {
		return lwconfig.Default(), nil
	}
	return lwconfig.Load(configFile)
}

func applyFlagOverrides(cfg *lwconfig.Config) {
	if listen != "" {
		cfg.ListenAddress = listen
	}
	if family != "" {
		cfg.AddressFamily = family
	}
	if threaded {
		cfg.Threaded = true
	}
	if grace != 0 {
		cfg.GraceMultiplier = grace
	}
	if discover {
		cfg.Discovery.Enabled = true
	}
	if name != "" {
		cfg.Discovery.ServerName = name
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.FilePath = logFile
	}
}

func buildLogger(cfg *lwconfig.Config) (lwlog.Logger, func()) {
	var loggers []lwlog.Logger

	if cfg.Log.Level != "" {
		var level slog.Level
		switch cfg.Log.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		loggers = append(loggers, lwlog.NewSlogAdapter(slog.New(handler)))
	}

	var closer func()
	if cfg.Log.FilePath != "" {
		fileLogger, err := lwlog.NewFileLogger(cfg.Log.FilePath)
		if err != nil {
			log.Printf("failed to open log file %s: %v", cfg.Log.FilePath, err)
		} else {
			loggers = append(loggers, fileLogger)
			closer = func() { fileLogger.Close() }
		}
	}

	switch len(loggers) {
	case 0:
		return lwlog.NoopLogger{}, closer
	case 1:
		return loggers[0], closer
	default:
		return lwlog.NewMultiLogger(loggers...), closer
	}
}

func listenPort(cfg *lwconfig.Config) uint16 {
	_, portStr, err := net.SplitHostPort(cfg.ListenAddress)
	if err != nil {
		return lwdiscovery.DefaultPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return lwdiscovery.DefaultPort
	}
	return uint16(port)
}
