package lan

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// mDNS constants.
const (
	// ServiceTypeSetup is the service type devices advertise while in
	// setup mode.
	ServiceTypeSetup = "_wisp-setup._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default setup protocol port.
	DefaultPort = 7632

	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63
)

// TXT record keys published with the setup service.
const (
	TXTKeyIdentity = "id"  // stable device identity
	TXTKeyName     = "dn"  // human-readable device name
	TXTKeyVersion  = "vn"  // protocol version "major.minor"
	TXTKeySecurity = "sec" // "1" when a proof of possession is required
)

// Discovery errors.
var (
	ErrMissingTXTKey   = errors.New("missing required TXT key")
	ErrInstanceNameLen = errors.New("instance name exceeds 63 characters")
)

// SetupInfo is the metadata a device publishes while in setup mode.
type SetupInfo struct {
	// Identity uniquely identifies the device.
	Identity string

	// Name is the human-readable device name, also used as the mDNS
	// instance name.
	Name string

	// Version is the protocol version the device speaks.
	Version string

	// ProofRequired indicates the device expects a proof of possession.
	ProofRequired bool
}

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeSetupTXT creates TXT records for a setup-mode advertisement.
func EncodeSetupTXT(info *SetupInfo) TXTRecordMap {
	txt := make(TXTRecordMap)
	txt[TXTKeyIdentity] = info.Identity
	txt[TXTKeyName] = info.Name
	txt[TXTKeyVersion] = info.Version
	if info.ProofRequired {
		txt[TXTKeySecurity] = "1"
	} else {
		txt[TXTKeySecurity] = "0"
	}
	return txt
}

// DecodeSetupTXT parses TXT records from a setup-mode advertisement.
func DecodeSetupTXT(txt TXTRecordMap) (*SetupInfo, error) {
	info := &SetupInfo{}

	var ok bool
	info.Identity, ok = txt[TXTKeyIdentity]
	if !ok || info.Identity == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingTXTKey, TXTKeyIdentity)
	}
	info.Name, ok = txt[TXTKeyName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingTXTKey, TXTKeyName)
	}
	info.Version, ok = txt[TXTKeyVersion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingTXTKey, TXTKeyVersion)
	}
	info.ProofRequired = txt[TXTKeySecurity] == "1"

	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to "key=value" strings,
// the form mDNS libraries expect.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			txt[parts[0]] = ""
		}
	}
	return txt
}

// SetupService is a device found via mDNS browsing.
type SetupService struct {
	InstanceName string
	Host         string
	Port         uint16
	Addresses    []string

	Identity      string
	Name          string
	Version       string
	ProofRequired bool
}

// Addr returns the dialable "host:port" address of the service, or ""
// when no address has been resolved yet.
func (s *SetupService) Addr() string {
	if len(s.Addresses) == 0 {
		return ""
	}
	return net.JoinHostPort(s.Addresses[0], strconv.FormatUint(uint64(s.Port), 10))
}

// AdvertiserConfig configures a setup-mode advertiser.
type AdvertiserConfig struct {
	// Interface restricts advertising to one network interface.
	// Empty uses all multicast-capable interfaces.
	Interface string

	// TTL overrides the record time-to-live. Zero uses the library
	// default.
	TTL time.Duration
}

// Advertiser publishes a setup-mode service over mDNS.
type Advertiser struct {
	config AdvertiserConfig

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewAdvertiser creates an advertiser.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	return &Advertiser{config: config}
}

// Advertise starts publishing the setup service. An existing
// advertisement is replaced.
func (a *Advertiser) Advertise(info *SetupInfo, port int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	instanceName := info.Name
	if instanceName == "" {
		instanceName = info.Identity
	}
	if len(instanceName) > MaxInstanceNameLen {
		instanceName = instanceName[:MaxInstanceNameLen]
	}

	if port == 0 {
		port = DefaultPort
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		instanceName,
		ServiceTypeSetup,
		Domain,
		port,
		TXTRecordsToStrings(EncodeSetupTXT(info)),
		interfacesByName(a.config.Interface),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register setup service: %w", err)
	}

	a.server = server
	return nil
}

// Stop withdraws the advertisement. Safe to call when not advertising.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// BrowserConfig configures a setup-mode browser.
type BrowserConfig struct {
	// Interface restricts browsing to one network interface.
	Interface string
}

// Browser searches for devices advertising the setup service.
type Browser struct {
	config BrowserConfig
}

// NewBrowser creates a browser.
func NewBrowser(config BrowserConfig) *Browser {
	return &Browser{config: config}
}

// Browse searches for setup-mode devices until ctx is done. Services
// are aggregated by instance name: addresses seen on multiple
// interfaces merge into one entry, and each service is emitted once.
func (b *Browser) Browse(ctx context.Context) (<-chan *SetupService, error) {
	out := make(chan *SetupService)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	var opts []zeroconf.ClientOption
	if ifaces := interfacesByName(b.config.Interface); ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}

	go func() {
		defer close(out)

		services := make(map[string]*SetupService)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToSetupService(entry)
				if svc == nil {
					continue
				}

				existing, found := services[svc.InstanceName]
				if found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
				} else {
					services[svc.InstanceName] = svc
					select {
					case out <- svc:
					case <-ctx.Done():
						return
					}
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				if existing, found := services[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entryAddresses(entry))
					if len(existing.Addresses) == 0 {
						delete(services, entry.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceTypeSetup, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// entryToSetupService converts a zeroconf entry, or returns nil when
// the TXT metadata is not a valid setup advertisement.
func entryToSetupService(entry *zeroconf.ServiceEntry) *SetupService {
	info, err := DecodeSetupTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}

	name := info.Name
	if name == "" {
		name = entry.Instance
	}

	return &SetupService{
		InstanceName:  entry.Instance,
		Host:          entry.HostName,
		Port:          uint16(entry.Port),
		Addresses:     entryAddresses(entry),
		Identity:      info.Identity,
		Name:          name,
		Version:       info.Version,
		ProofRequired: info.ProofRequired,
	}
}

// entryAddresses collects the IP addresses carried by a zeroconf entry.
func entryAddresses(entry *zeroconf.ServiceEntry) []string {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return addrs
}

// interfacesByName resolves an interface name, or returns nil for all
// interfaces.
func interfacesByName(name string) []net.Interface {
	if name == "" {
		return nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// mergeAddresses adds new addresses to the list, skipping duplicates.
func mergeAddresses(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range incoming {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses drops the given addresses from the list.
func removeAddresses(addresses, gone []string) []string {
	toRemove := make(map[string]bool, len(gone))
	for _, addr := range gone {
		toRemove[addr] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}
