// Package version provides setup-protocol version parsing, comparison,
// and negotiation-token helpers.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the protocol version implemented by this library.
const Current = "1.0"

// tokenPrefix precedes the major version in negotiation tokens, as
// published in discovery records and checked during the hello exchange.
const tokenPrefix = "wisp/"

// Proto represents a parsed "major.minor" protocol version.
type Proto struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (Proto, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return Proto{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return Proto{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return Proto{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return Proto{Major: uint16(major), Minor: uint16(minor)}, nil
}

// String returns the version as "major.minor".
func (v Proto) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
// Minor versions are additive and never break a session.
func (v Proto) Compatible(other Proto) bool {
	return v.Major == other.Major
}

// Token returns the negotiation token for a major version: "wisp/N".
func Token(major uint16) string {
	return tokenPrefix + strconv.FormatUint(uint64(major), 10)
}

// MajorFromToken extracts the major version from a negotiation token.
func MajorFromToken(token string) (uint16, error) {
	if !strings.HasPrefix(token, tokenPrefix) {
		return 0, fmt.Errorf("not a setup protocol token: %q", token)
	}

	suffix := token[len(tokenPrefix):]
	if suffix == "" {
		return 0, fmt.Errorf("empty major version in token: %q", token)
	}

	major, err := strconv.ParseUint(suffix, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid major version in token %q: %w", token, err)
	}

	return uint16(major), nil
}

// SupportedTokens returns the negotiation tokens for all supported major
// versions. Currently only major version 1.
func SupportedTokens() []string {
	current, _ := Parse(Current)
	return []string{Token(current.Major)}
}
