package qr

import (
	"encoding/base64"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCodeRoundTrip(t *testing.T) {
	p := Payload{
		Version:     PayloadVersion,
		EquipmentID: primitive.NewObjectID().Hex(),
		Serial:      "FX6-0001",
	}

	code, err := EncodeCode(p)
	if err != nil {
		t.Fatalf("EncodeCode() failed: %v", err)
	}

	got, err := DecodeCode(code)
	if err != nil {
		t.Fatalf("DecodeCode() failed: %v", err)
	}
	if *got != p {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, p)
	}
}

func TestDecodeCodeRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"base64 but not json", base64.RawURLEncoding.EncodeToString([]byte("plain text"))},
		{"wrong version", mustEncode(t, Payload{Version: 99, EquipmentID: "abc", Serial: "X"})},
		{"missing equipment id", mustEncode(t, Payload{Version: PayloadVersion, Serial: "X"})},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeCode(tt.code); !errors.Is(err, ErrInvalidCode) {
				t.Errorf("DecodeCode(%q) error = %v, want ErrInvalidCode", tt.code, err)
			}
		})
	}
}

func mustEncode(t *testing.T, p Payload) string {
	t.Helper()
	code, err := EncodeCode(p)
	if err != nil {
		t.Fatalf("EncodeCode() failed: %v", err)
	}
	return code
}
