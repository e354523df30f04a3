package lan

import (
	"errors"
	"reflect"
	"testing"
)

func TestSetupTXTRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		info SetupInfo
	}{
		{
			name: "proof required",
			info: SetupInfo{
				Identity:      "WISP-7F3A",
				Name:          "Living Room Lamp",
				Version:       "1.0",
				ProofRequired: true,
			},
		},
		{
			name: "open device",
			info: SetupInfo{
				Identity: "WISP-0001",
				Name:     "Plug",
				Version:  "1.2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txt := EncodeSetupTXT(&tt.info)

			decoded, err := DecodeSetupTXT(txt)
			if err != nil {
				t.Fatalf("DecodeSetupTXT failed: %v", err)
			}
			if *decoded != tt.info {
				t.Errorf("decoded = %+v, want %+v", *decoded, tt.info)
			}
		})
	}
}

func TestDecodeSetupTXTMissingKeys(t *testing.T) {
	tests := []struct {
		name string
		txt  TXTRecordMap
	}{
		{
			name: "missing identity",
			txt:  TXTRecordMap{TXTKeyName: "Lamp", TXTKeyVersion: "1.0"},
		},
		{
			name: "empty identity",
			txt:  TXTRecordMap{TXTKeyIdentity: "", TXTKeyName: "Lamp", TXTKeyVersion: "1.0"},
		},
		{
			name: "missing name",
			txt:  TXTRecordMap{TXTKeyIdentity: "WISP-1", TXTKeyVersion: "1.0"},
		},
		{
			name: "missing version",
			txt:  TXTRecordMap{TXTKeyIdentity: "WISP-1", TXTKeyName: "Lamp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSetupTXT(tt.txt)
			if !errors.Is(err, ErrMissingTXTKey) {
				t.Errorf("expected ErrMissingTXTKey, got %v", err)
			}
		})
	}
}

func TestTXTRecordStringConversion(t *testing.T) {
	txt := TXTRecordMap{
		"id":  "WISP-7F3A",
		"dn":  "Living Room Lamp",
		"vn":  "1.0",
		"sec": "1",
	}

	strs := TXTRecordsToStrings(txt)
	if len(strs) != 4 {
		t.Fatalf("got %d strings, want 4", len(strs))
	}

	back := StringsToTXTRecords(strs)
	if !reflect.DeepEqual(back, txt) {
		t.Errorf("round trip = %v, want %v", back, txt)
	}
}

func TestStringsToTXTRecordsEdgeCases(t *testing.T) {
	txt := StringsToTXTRecords([]string{
		"id=WISP-1",
		"dn=Lamp=With=Equals", // value may contain '='
		"flag",                // bare key
		"",                    // empty string ignored
	})

	if txt["id"] != "WISP-1" {
		t.Errorf("id = %q", txt["id"])
	}
	if txt["dn"] != "Lamp=With=Equals" {
		t.Errorf("dn = %q", txt["dn"])
	}
	if v, ok := txt["flag"]; !ok || v != "" {
		t.Errorf("flag = %q, present %v", v, ok)
	}
	if len(txt) != 3 {
		t.Errorf("got %d records, want 3", len(txt))
	}
}

func TestSetupServiceAddr(t *testing.T) {
	tests := []struct {
		name string
		svc  SetupService
		want string
	}{
		{
			name: "ipv4",
			svc:  SetupService{Addresses: []string{"192.168.1.20"}, Port: 7632},
			want: "192.168.1.20:7632",
		},
		{
			name: "ipv6 gets brackets",
			svc:  SetupService{Addresses: []string{"fe80::1"}, Port: 7632},
			want: "[fe80::1]:7632",
		},
		{
			name: "first address wins",
			svc:  SetupService{Addresses: []string{"10.0.0.5", "10.0.0.6"}, Port: 1234},
			want: "10.0.0.5:1234",
		},
		{
			name: "no addresses",
			svc:  SetupService{Port: 7632},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.svc.Addr(); got != tt.want {
				t.Errorf("Addr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMergeAddresses(t *testing.T) {
	existing := []string{"192.168.1.20", "fe80::1"}

	merged := mergeAddresses(existing, []string{"192.168.1.20", "10.0.0.5"})
	want := []string{"192.168.1.20", "fe80::1", "10.0.0.5"}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("merged = %v, want %v", merged, want)
	}
}

func TestRemoveAddresses(t *testing.T) {
	addresses := []string{"192.168.1.20", "fe80::1", "10.0.0.5"}

	remaining := removeAddresses(addresses, []string{"fe80::1", "172.16.0.1"})
	want := []string{"192.168.1.20", "10.0.0.5"}
	if !reflect.DeepEqual(remaining, want) {
		t.Errorf("remaining = %v, want %v", remaining, want)
	}

	remaining = removeAddresses(remaining, want)
	if len(remaining) != 0 {
		t.Errorf("remaining = %v, want empty", remaining)
	}
}

func TestEncodeSetupTXTSecurityFlag(t *testing.T) {
	withProof := EncodeSetupTXT(&SetupInfo{Identity: "a", Name: "b", Version: "1.0", ProofRequired: true})
	if withProof[TXTKeySecurity] != "1" {
		t.Errorf("sec = %q, want \"1\"", withProof[TXTKeySecurity])
	}

	noProof := EncodeSetupTXT(&SetupInfo{Identity: "a", Name: "b", Version: "1.0"})
	if noProof[TXTKeySecurity] != "0" {
		t.Errorf("sec = %q, want \"0\"", noProof[TXTKeySecurity])
	}
}
