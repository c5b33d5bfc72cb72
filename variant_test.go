package headless

import "testing"

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in      string
		want    Variant
		wantErr bool
	}{
		{"clear", VariantClear, false},
		{"a", VariantClear, false},
		{"QUAD", VariantQuad, false},
		{"b", VariantQuad, false},
		{"c", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseVariant(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVariant(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVariant(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVariantText(t *testing.T) {
	var v Variant
	if err := v.UnmarshalText([]byte("quad")); err != nil || v != VariantQuad {
		t.Fatalf("UnmarshalText = %v, %v", v, err)
	}
	b, _ := v.MarshalText()
	if string(b) != "quad" {
		t.Errorf("MarshalText = %q", b)
	}
	if s := Variant(9).String(); s != "Variant(9)" {
		t.Errorf("String() = %q", s)
	}
}

func TestParseAdapterPreference(t *testing.T) {
	for _, p := range []AdapterPreference{AdapterHardware, AdapterLowPower, AdapterSoftware, AdapterAny} {
		got, err := ParseAdapterPreference(p.String())
		if err != nil || got != p {
			t.Errorf("ParseAdapterPreference(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := ParseAdapterPreference("gpu"); err == nil {
		t.Error("ParseAdapterPreference(\"gpu\") succeeded")
	}
}
