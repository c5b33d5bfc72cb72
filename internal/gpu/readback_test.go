package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestInstanceSoftwareAdapter(t *testing.T) {
	instances, err := CreateInstances([]gputypes.Backend{gputypes.BackendEmpty})
	if err != nil {
		t.Skipf("CPU backend not available: %v", err)
	}
	defer instances[0].Destroy()

	if b := instances[0].Backend(); b != gputypes.BackendEmpty {
		t.Errorf("Backend() = %v", b)
	}
	adapters := instances[0].Adapters()
	if len(adapters) == 0 {
		t.Fatal("no adapters")
	}
	for _, a := range adapters {
		if a.IsHardware() {
			t.Errorf("adapter %q reported as hardware", a.Info().Name)
		}
		if a.Limits().MaxTextureDimension2D == 0 {
			t.Errorf("adapter %q has no texture size limit", a.Info().Name)
		}
	}
}

func TestFrameClearReadback(t *testing.T) {
	d := openSoftwareDevice(t)
	const w, h = 13, 7

	target, err := NewTarget(d, TargetDescriptor{Label: "test", Width: w, Height: h})
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	defer target.Destroy(d)

	f := NewFrame(target)
	f.Clear(ClearOp{ClearColor: true, Color: gputypes.Color{R: 1, G: 0.5, B: 0, A: 1}})
	if f.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", f.Pending())
	}
	cmd, err := f.Encode(d, "test_frame")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if f.Pending() != 0 {
		t.Errorf("Pending() = %d after Encode, want 0", f.Pending())
	}
	if err := d.Submit(cmd); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	pix, err := ReadTarget(d, target, "test_readback")
	if err != nil {
		t.Fatalf("ReadTarget: %v", err)
	}
	if len(pix) != w*h*4 {
		t.Fatalf("len = %d, want %d", len(pix), w*h*4)
	}
	want := [4]byte{255, 127, 0, 255}
	for i := 0; i < len(pix); i += 4 {
		if got := [4]byte(pix[i : i+4]); got != want {
			t.Fatalf("pixel %d = %v, want %v", i/4, got, want)
		}
	}
}

func TestTargetDepthStencil(t *testing.T) {
	d := openSoftwareDevice(t)

	plain, err := NewTarget(d, TargetDescriptor{Label: "plain", Width: 4, Height: 4})
	if err != nil {
		t.Fatal(err)
	}
	defer plain.Destroy(d)
	if plain.HasDepthStencil() {
		t.Error("plain target has depth/stencil")
	}

	ds, err := NewTarget(d, TargetDescriptor{Label: "ds", Width: 4, Height: 4, DepthStencil: true, HostWritable: true})
	if err != nil {
		t.Fatal(err)
	}
	defer ds.Destroy(d)
	if !ds.HasDepthStencil() {
		t.Error("depth/stencil target has no attachment")
	}
	if w, h := ds.Size(); w != 4 || h != 4 {
		t.Errorf("Size() = %dx%d", w, h)
	}
}

func TestInvalidTarget(t *testing.T) {
	d := openSoftwareDevice(t)

	for _, desc := range []TargetDescriptor{
		{Label: "zero width", Width: 0, Height: 4},
		{Label: "zero height", Width: 4, Height: 0},
	} {
		if _, err := NewTarget(d, desc); !errors.Is(err, ErrInvalidTarget) {
			t.Errorf("NewTarget(%s) err = %v, want ErrInvalidTarget", desc.Label, err)
		}
	}
	if _, err := ReadTarget(d, nil, "nil_readback"); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("ReadTarget(nil) err = %v, want ErrInvalidTarget", err)
	}
}
