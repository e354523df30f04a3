package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/wisp-protocol/wisp-go/pkg/transport"
	"github.com/wisp-protocol/wisp-go/pkg/wifi"
)

// simulator answers setup requests according to a profile. Its methods
// plug straight into the server's callback fields.
type simulator struct {
	profile *Profile
}

func newSimulator(profile *Profile) *simulator {
	return &simulator{profile: profile}
}

// networks implements the server's scan callback.
func (s *simulator) networks() ([]wifi.Network, error) {
	if s.profile.Scan.Fail {
		message := s.profile.Scan.Message
		if message == "" {
			message = "scan failed"
		}
		log.Printf("[SIM] Reporting scan failure: %s", message)
		return nil, errors.New(message)
	}

	networks := make([]wifi.Network, 0, len(s.profile.Networks))
	for _, n := range s.profile.Networks {
		auth := wifi.AuthUnknown
		if n.Auth != "" {
			// Validated at profile load.
			auth, _ = wifi.ParseAuthMode(n.Auth)
		}
		networks = append(networks, wifi.Network{
			SSID:    n.SSID,
			Auth:    auth,
			RSSI:    n.RSSI,
			Channel: n.Channel,
		})
	}

	log.Printf("[SIM] Reporting %d network(s)", len(networks))
	return networks, nil
}

// provision implements the server's provisioning callback. It walks the
// status sequence up to the profile's fail stage, checking the submitted
// credential against the profile's networks on the way.
func (s *simulator) provision(ssid, secret string, report func(transport.ProvStatus, string)) {
	log.Printf("[SIM] Credential received for %q", ssid)

	step := func(status transport.ProvStatus, message string) {
		if d := s.profile.Provision.StepDelayMS; d > 0 {
			time.Sleep(time.Duration(d) * time.Millisecond)
		}
		if message != "" {
			log.Printf("[SIM] %s: %s", status, message)
		} else {
			log.Printf("[SIM] %s", status)
		}
		report(status, message)
	}

	if s.stage() == StageInit {
		step(transport.StatusInitFailed, "simulated session failure")
		return
	}

	step(transport.StatusConfigSent, "")

	if s.stage() == StageConfig {
		step(transport.StatusConfigFailed, "simulated configuration rejection")
		return
	}

	// Profiles with a network list only join what is in range, with the
	// right password where one is set.
	if len(s.profile.Networks) > 0 {
		network, ok := s.lookupNetwork(ssid)
		if !ok {
			step(transport.StatusApplyFailed, fmt.Sprintf("no network %q in range", ssid))
			return
		}
		if network.Password != "" && network.Password != secret {
			step(transport.StatusApplyFailed, "authentication failed")
			return
		}
	}

	if s.stage() == StageApply {
		step(transport.StatusApplyFailed, fmt.Sprintf("could not join %q", ssid))
		return
	}

	step(transport.StatusConfigApplied, "")

	if s.stage() == StageConfirm {
		step(transport.StatusProvFailed, "network did not confirm")
		return
	}

	step(transport.StatusCompleted, "joined "+ssid)
}

// customData implements the server's custom data callback.
func (s *simulator) customData(name string, payload []byte) (string, error) {
	log.Printf("[SIM] Custom data %q (%d bytes)", name, len(payload))

	if reply, ok := s.profile.Custom[name]; ok {
		return reply, nil
	}
	return "success", nil
}

func (s *simulator) stage() string {
	if s.profile.Provision.FailStage == "" {
		return StageNone
	}
	return s.profile.Provision.FailStage
}

func (s *simulator) lookupNetwork(ssid string) (ProfileNetwork, bool) {
	for _, n := range s.profile.Networks {
		if n.SSID == ssid {
			return n, true
		}
	}
	return ProfileNetwork{}, false
}
