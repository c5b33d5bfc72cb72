package headless

import (
	"fmt"
	"strings"
)

// Variant selects the frame producer.
type Variant uint8

const (
	// VariantClear clears the surface and reads it back.
	VariantClear Variant = iota
	// VariantQuad also draws an indexed quad with a shader program.
	VariantQuad
)

func (v Variant) String() string {
	switch v {
	case VariantClear:
		return "clear"
	case VariantQuad:
		return "quad"
	default:
		return fmt.Sprintf("Variant(%d)", uint8(v))
	}
}

// ParseVariant parses "clear" or "quad".
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "clear", "a":
		return VariantClear, nil
	case "quad", "b":
		return VariantQuad, nil
	default:
		return 0, fmt.Errorf("headless: unknown variant %q", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(text []byte) error {
	p, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) { return []byte(v.String()), nil }
