// Command wisp-controller is a reference WISP provisioning controller.
//
// It discovers devices in setup mode over mDNS, opens a
// proof-of-possession-secured session, asks the device for the wireless
// networks it sees, and submits the chosen credential.
//
// Usage:
//
//	wisp-controller [flags]
//
// Flags:
//
//	-prefix string        Device name prefix for discovery (empty matches all)
//	-interface string     Network interface for discovery
//	-device-addr string   Device address for direct connections
//	-pop string           Preset proof of possession for connect commands
//	-discovery-timeout    End discovery scans after this window (0 scans until stopped)
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-capture string       Write a protocol capture to this file
//	-interactive          Enable interactive command mode
//
// Examples:
//
//	# Discover and provision interactively
//	wisp-controller -interactive
//
//	# Watch for one vendor's devices, capture the exchange
//	wisp-controller -prefix "Lamp" -capture setup.wlog
//
//	# Talk to a device on its own setup network, no mDNS
//	wisp-controller -interactive -device-addr 192.168.4.1:7632
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wisp-protocol/wisp-go/cmd/wisp-controller/interactive"
	wisplog "github.com/wisp-protocol/wisp-go/pkg/log"
	"github.com/wisp-protocol/wisp-go/pkg/provision"
	"github.com/wisp-protocol/wisp-go/pkg/transport/lan"
)

// Config holds the controller configuration.
// It implements interactive.ControllerConfig.
type Config struct {
	Prefix           string
	Interface        string
	DeviceAddr       string
	Proof            string
	DiscoveryTimeout time.Duration
	LogLevel         string
	CaptureFile      string
	Interactive      bool
}

// DevicePrefix implements interactive.ControllerConfig.
func (c *Config) DevicePrefix() string {
	return c.Prefix
}

// ProofOfPossession implements interactive.ControllerConfig.
func (c *Config) ProofOfPossession() string {
	return c.Proof
}

var (
	config Config
	wf     *provision.Workflow
)

func init() {
	flag.StringVar(&config.Prefix, "prefix", "", "Device name prefix for discovery (empty matches all)")
	flag.StringVar(&config.Interface, "interface", "", "Network interface for discovery")
	flag.StringVar(&config.DeviceAddr, "device-addr", lan.DefaultDeviceAddr, "Device address for direct connections")
	flag.StringVar(&config.Proof, "pop", "", "Preset proof of possession for connect commands")
	flag.DurationVar(&config.DiscoveryTimeout, "discovery-timeout", 0, "End discovery scans after this window (0 scans until stopped)")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&config.CaptureFile, "capture", "", "Write a protocol capture to this file")
	flag.BoolVar(&config.Interactive, "interactive", false, "Enable interactive command mode")
}

func main() {
	flag.Parse()

	// Setup logging
	setupLogging(config.LogLevel)

	log.Println("WISP Reference Controller")
	log.Println("=========================")
	if config.Prefix != "" {
		log.Printf("Device prefix: %q", config.Prefix)
	}

	// Open the protocol capture if requested
	var capture wisplog.Logger
	if config.CaptureFile != "" {
		fileLogger, err := wisplog.NewFileLogger(config.CaptureFile)
		if err != nil {
			log.Fatalf("Failed to open capture file: %v", err)
		}
		defer fileLogger.Close()
		capture = fileLogger
		log.Printf("Capturing protocol events to %s", config.CaptureFile)
	}

	// Create the LAN transport
	clientConfig := lan.DefaultClientConfig()
	clientConfig.Interface = config.Interface
	clientConfig.DeviceAddr = config.DeviceAddr
	clientConfig.DiscoveryTimeout = config.DiscoveryTimeout
	clientConfig.Logger = capture
	clientConfig.OpLogger = newOpLogger(config.LogLevel)

	client := lan.NewClient(clientConfig)
	defer client.Close()

	// Create the provisioning workflow on top of it
	var err error
	wf, err = provision.NewWorkflow(provision.Config{
		Transport: client,
		Logger:    newOpLogger(config.LogLevel),
	})
	if err != nil {
		log.Fatalf("Failed to create workflow: %v", err)
	}

	// Register event handler
	wf.OnEvent(handleEvent)

	if err := wf.Start(); err != nil {
		log.Fatalf("Failed to start workflow: %v", err)
	}
	defer wf.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Run interactive mode or discover until signalled
	if config.Interactive {
		ic, err := interactive.New(wf, &config)
		if err != nil {
			log.Fatalf("Failed to create interactive console: %v", err)
		}
		// Redirect log output through readline to avoid interfering with input
		log.SetOutput(ic.Stdout())
		go ic.Run(ctx, cancel)
	} else {
		if err := wf.StartDiscovery(config.Prefix); err != nil {
			log.Fatalf("Failed to start discovery: %v", err)
		}
		log.Println("Discovering devices in setup mode (Ctrl-C to stop)...")
	}

	// Wait for shutdown signal or context cancellation
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
		// Context was cancelled (e.g., by the quit command)
	}

	log.Println("Shutting down...")
	cancel()

	wf.Stop()
	if err := client.Close(); err != nil {
		log.Printf("Error closing transport: %v", err)
	}

	log.Println("Goodbye!")
}

func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	case "warn", "error":
		log.SetFlags(log.Ltime)
	}
}

// newOpLogger builds the structured logger handed to the SDK packages.
// It writes to stderr so interactive prompts on stdout stay intact.
func newOpLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func handleEvent(event provision.Event) {
	switch event.Type {
	case provision.EventDevicesChanged:
		log.Printf("[EVENT] %d device(s) discovered", len(wf.Devices()))
	case provision.EventNetworksChanged:
		log.Printf("[EVENT] %d network(s) in range", len(wf.Networks()))
	case provision.EventConnected:
		log.Printf("[EVENT] Connected: %s", deviceLabel(event))
	case provision.EventDisconnected:
		log.Printf("[EVENT] Disconnected: %s", deviceLabel(event))
	case provision.EventStepChanged:
		log.Printf("[EVENT] Step %s: %s", event.Step, event.Status)
	case provision.EventCompleted:
		log.Printf("[EVENT] %s", event.Status)
	case provision.EventFailed:
		if event.Message != "" {
			log.Printf("[EVENT] %s failed: %s (%s)", event.Kind, event.Status, event.Message)
		} else {
			log.Printf("[EVENT] %s failed: %s", event.Kind, event.Status)
		}
	case provision.EventStatusChanged:
		if event.Status != "" {
			log.Printf("[EVENT] %s", event.Status)
		}
	}
}

// deviceLabel renders the device attached to a connection event.
func deviceLabel(event provision.Event) string {
	if event.Device.Name != "" && event.Device.Name != event.Device.Identity {
		return fmt.Sprintf("%s (%s)", event.Device.Identity, event.Device.Name)
	}
	if event.Device.Identity == "" {
		return "device"
	}
	return event.Device.Identity
}
