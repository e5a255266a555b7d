// Command lwm2m-cli is an interactive operator shell for a running
// in-process server, issuing Read/Write/Observe/ListDevices commands.
//
// Like lwm2m-server, this binary wires the in-memory reference protocol
// engine (coaptest.Engine); a production deployment would point the same
// server.Server at a real coap.Engine instead. When registered against the
// reference engine, devices are manufactured with a synthetic Object tree
// via -demo-device so the shell has something to read/write/observe
// without a real LWM2M client attached.
//
// Usage:
//
//	lwm2m-cli [flags]
//
// Flags:
//
//	-config string   Configuration file path (YAML)
//	-listen string   Listen address (default ":5683")
//	-demo-device     Register a synthetic device for local exploration
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/niki4/lwm2m-server/coap/coaptest"
	"github.com/niki4/lwm2m-server/directory"
	"github.com/niki4/lwm2m-server/lwconfig"
	"github.com/niki4/lwm2m-server/lwlog"
	"github.com/niki4/lwm2m-server/server"
)

var (
	configFile string
	listen     string
	demoDevice bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&listen, "listen", "", "Listen address")
	flag.BoolVar(&demoDevice, "demo-device", true, "Register a synthetic device for local exploration")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	if listen != "" {
		cfg.ListenAddress = listen
	}

	socket, err := server.NewUDPSocket(cfg.AddressFamily, cfg.ListenAddress)
	if err != nil {
		log.Fatalf("failed to open socket on %s: %v", cfg.ListenAddress, err)
	}
	defer socket.Close()

	engine := coaptest.New()
	srv := server.New(engine, socket, server.Config{
		Threaded: true,
	}, lwlog.NoopLogger{})

	if err := srv.Start(); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
	defer srv.Stop()

	if demoDevice {
		registerDemoDevice(engine, srv)
	}

	shell, err := NewShell(srv)
	if err != nil {
		log.Fatalf("failed to start shell: %v", err)
	}
	fmt.Fprintln(shell.Stdout(), "lwm2m-cli connected to in-process server")
	shell.Run()
}

func loadConfig() (*lwconfig.Config, error) {
	if configFile == "" {
		return lwconfig.Default(), nil
	}
	return lwconfig.Load(configFile)
}

// registerDemoDevice simulates one client registration and attaches a
// temperature sensor Object (3303/0, resource 5700) so the shell has
// something to exercise without a real LWM2M client. The registration
// itself must run under the server's lock: coaptest.Engine.Register
// invokes the monitoring callback synchronously with no lock of its own,
// unlike a real coap.Engine, which only ever calls back from within an
// already-locked Step/HandlePacket (see Server.WithLock).
func registerDemoDevice(engine *coaptest.Engine, srv *server.Server) {
	srv.WithLock(func() {
		engine.Register("demo-sensor", time.Hour)
	})

	dev, ok := srv.Device("demo-sensor")
	if !ok {
		return
	}
	obj := &directory.Object{ObjectID: 3303, InstanceID: 0}
	res := &directory.Resource{ResourceID: 5700, Capabilities: directory.CanRead | directory.CanWrite}
	obj.AddResource(res)
	dev.AddObject(obj)
}
