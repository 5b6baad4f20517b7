package publish

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/mklimuk/cm1106/air"
)

type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingCBOR Encoding = "cbor"
)

// ParseEncoding parses a case-insensitive encoding name. Empty means JSON.
func ParseEncoding(name string) (Encoding, error) {
	switch Encoding(strings.ToLower(name)) {
	case EncodingJSON, "":
		return EncodingJSON, nil
	case EncodingCBOR:
		return EncodingCBOR, nil
	}
	return "", fmt.Errorf("unsupported payload encoding %q", name)
}

// Reading is the published payload.
type Reading struct {
	CO2        uint16    `json:"co2" cbor:"1,keyasint"`
	Status     byte      `json:"status" cbor:"2,keyasint"`
	StatusText string    `json:"status_text" cbor:"3,keyasint"`
	Time       time.Time `json:"time" cbor:"4,keyasint"`
}

// encMode produces deterministic CBOR with unix timestamps.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeUnixMicro,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}
}

func NewReading(m air.Measurement, v air.Variant) Reading {
	return Reading{
		CO2:        uint16(m.CO2),
		Status:     byte(m.Status),
		StatusText: m.Status.Describe(v),
		Time:       m.Time.UTC(),
	}
}

// Encode serializes a reading.
func Encode(enc Encoding, r Reading) ([]byte, error) {
	switch enc {
	case EncodingJSON, "":
		return json.Marshal(r)
	case EncodingCBOR:
		return encMode.Marshal(r)
	}
	return nil, fmt.Errorf("unsupported payload encoding %q", enc)
}
