// Command wisp-device is a reference WISP device simulator.
//
// It advertises a setup service over mDNS, accepts controller sessions,
// and answers the setup protocol with simulated scan results and
// provisioning outcomes. A YAML profile selects the networks in range
// and the stage provisioning fails at, so controller behavior against
// every outcome in the status table can be exercised on a laptop.
//
// Usage:
//
//	wisp-device [flags]
//
// Flags:
//
//	-identity string    Device identity (auto-generated if empty)
//	-name string        Human-facing device name
//	-pop string         Proof of possession controllers must present (default "482916")
//	-port int           Listen port (default 7632)
//	-interface string   Network interface for advertising
//	-advertise          Advertise the setup service over mDNS (default true)
//	-profile string     Simulation profile file (YAML)
//	-fail-stage string  Override the profile's fail stage: none, init, config, apply, confirm
//	-log-level string   Log level: debug, info, warn, error (default "info")
//	-capture string     Write a protocol capture to this file
//
// Examples:
//
//	# Simulate a lamp that provisions successfully
//	wisp-device -name "Living Room Lamp" -pop 482916
//
//	# Fail at the apply stage to exercise controller error paths
//	wisp-device -fail-stage apply
//
//	# Load a custom radio environment
//	wisp-device -profile testdata/crowded.yaml
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

	wisplog "github.com/wisp-protocol/wisp-go/pkg/log"
	"github.com/wisp-protocol/wisp-go/pkg/transport/lan"
)

// Config holds the device configuration.
type Config struct {
	Identity    string
	Name        string
	Proof       string
	Port        int
	Interface   string
	Advertise   bool
	ProfileFile string
	FailStage   string
	LogLevel    string
	CaptureFile string
}

var config Config

func init() {
	flag.StringVar(&config.Identity, "identity", "", "Device identity (auto-generated if empty)")
	flag.StringVar(&config.Name, "name", "", "Human-facing device name")
	flag.StringVar(&config.Proof, "pop", "482916", "Proof of possession controllers must present")
	flag.IntVar(&config.Port, "port", lan.DefaultPort, "Listen port")
	flag.StringVar(&config.Interface, "interface", "", "Network interface for advertising")
	flag.BoolVar(&config.Advertise, "advertise", true, "Advertise the setup service over mDNS")
	flag.StringVar(&config.ProfileFile, "profile", "", "Simulation profile file (YAML)")
	flag.StringVar(&config.FailStage, "fail-stage", "", "Override the profile's fail stage: none, init, config, apply, confirm")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&config.CaptureFile, "capture", "", "Write a protocol capture to this file")
}

func main() {
	flag.Parse()

	// Setup logging
	setupLogging(config.LogLevel)

	log.Println("WISP Reference Device")
	log.Println("=====================")

	// Apply defaults
	applyDefaults()
	log.Printf("Identity: %s", config.Identity)
	log.Printf("Name: %s", config.Name)
	log.Printf("Port: %d", config.Port)

	// Load the simulation profile
	profile, err := loadConfiguredProfile()
	if err != nil {
		log.Fatalf("Invalid profile: %v", err)
	}
	sim := newSimulator(profile)

	if stage := sim.stage(); stage != StageNone {
		log.Printf("Provisioning will fail at the %s stage", stage)
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

	// Create the setup server
	server, err := lan.NewServer(lan.ServerConfig{
		Identity:          config.Identity,
		Name:              config.Name,
		ProofOfPossession: config.Proof,
		Address:           fmt.Sprintf(":%d", config.Port),
		Interface:         config.Interface,
		Advertise:         config.Advertise,
		Networks:          sim.networks,
		Provision:         sim.provision,
		CustomData:        sim.customData,
		Logger:            capture,
		OpLogger:          newOpLogger(config.LogLevel),
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Printf("Setup service listening on %s", server.Addr())

	printSetupInfo()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Printf("Received signal: %v", sig)
	log.Println("Shutting down...")

	if err := server.Stop(); err != nil {
		log.Printf("Error stopping server: %v", err)
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

func applyDefaults() {
	if config.Identity == "" {
		config.Identity = fmt.Sprintf("WISP-%04d", time.Now().Unix()%10000)
	}
	if config.Name == "" {
		config.Name = "WISP Reference Device"
	}
}

// loadConfiguredProfile loads the profile file, or the built-in default
// when none is given, and applies flag overrides on top.
func loadConfiguredProfile() (*Profile, error) {
	profile := DefaultProfile()
	if config.ProfileFile != "" {
		loaded, err := LoadProfile(config.ProfileFile)
		if err != nil {
			return nil, err
		}
		profile = loaded
		log.Printf("Loaded profile %s (%d networks)", config.ProfileFile, len(profile.Networks))
	}

	if config.FailStage != "" {
		profile.Provision.FailStage = config.FailStage
		if err := profile.Validate(); err != nil {
			return nil, err
		}
	}

	return profile, nil
}

func printSetupInfo() {
	log.Println("")
	log.Println("============================================")
	log.Println("             SETUP INFORMATION              ")
	log.Println("============================================")
	log.Printf("  Identity:  %s", config.Identity)
	log.Printf("  Name:      %s", config.Name)
	log.Printf("  Proof:     %s", config.Proof)
	log.Printf("  Port:      %d", config.Port)
	log.Println("============================================")
	log.Println("")
}
