package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wisp-protocol/wisp-go/pkg/wifi"
)

// Profile describes the simulated radio environment and provisioning
// behavior of the device. Profiles load from YAML so a test setup can
// swap network lists and failure stages without rebuilding.
type Profile struct {
	// Networks the device reports on a scan, in listed order.
	Networks []ProfileNetwork `yaml:"networks"`

	// Scan controls scan behavior.
	Scan ScanProfile `yaml:"scan"`

	// Provision controls the provisioning script.
	Provision ProvisionProfile `yaml:"provision"`

	// Custom maps custom data names to reply texts. Names not listed
	// are acknowledged with "success".
	Custom map[string]string `yaml:"custom"`
}

// ProfileNetwork is one simulated network in range.
type ProfileNetwork struct {
	SSID    string `yaml:"ssid"`
	Auth    string `yaml:"auth"`
	RSSI    int    `yaml:"rssi"`
	Channel uint8  `yaml:"channel"`

	// Password is the secret the simulator expects for this network.
	// Empty accepts any.
	Password string `yaml:"password"`
}

// ScanProfile controls simulated scan outcomes.
type ScanProfile struct {
	// Fail reports every scan as failed.
	Fail bool `yaml:"fail"`

	// Message is the failure text, defaulting to "scan failed".
	Message string `yaml:"message"`
}

// Provisioning stages a profile can fail at.
const (
	StageNone    = "none"
	StageInit    = "init"
	StageConfig  = "config"
	StageApply   = "apply"
	StageConfirm = "confirm"
)

// ProvisionProfile controls the simulated provisioning script.
type ProvisionProfile struct {
	// FailStage names the stage the script fails at: none, init,
	// config, apply, or confirm. Empty means none.
	FailStage string `yaml:"fail-stage"`

	// StepDelayMS is the pause between status reports in milliseconds.
	StepDelayMS int `yaml:"step-delay-ms"`
}

// Validate checks the profile for values the simulator cannot act on.
func (p *Profile) Validate() error {
	for i, n := range p.Networks {
		if n.SSID == "" {
			return fmt.Errorf("network %d: ssid is required", i+1)
		}
		if n.Auth != "" {
			if _, err := wifi.ParseAuthMode(n.Auth); err != nil {
				return fmt.Errorf("network %q: %w: %q", n.SSID, err, n.Auth)
			}
		}
	}

	switch p.Provision.FailStage {
	case "", StageNone, StageInit, StageConfig, StageApply, StageConfirm:
	default:
		return fmt.Errorf("unknown fail-stage %q (use: none, init, config, apply, confirm)",
			p.Provision.FailStage)
	}

	return nil
}

// ParseProfile parses a profile from YAML bytes.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadProfile loads a profile from a file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	p, err := ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// DefaultProfile returns the environment simulated when no profile file
// is given: a few networks of mixed strength, all provisioning succeeding.
func DefaultProfile() *Profile {
	return &Profile{
		Networks: []ProfileNetwork{
			{SSID: "home-net", Auth: "WPA2_PSK", RSSI: -47, Channel: 6},
			{SSID: "home-net-5g", Auth: "WPA2_PSK", RSSI: -52, Channel: 36},
			{SSID: "CoffeeCorner Guest", Auth: "OPEN", RSSI: -71, Channel: 11},
			{SSID: "upstairs-iot", Auth: "WPA_WPA2_PSK", RSSI: -80, Channel: 1},
		},
	}
}
