// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package platform

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/usbarmory/imx8ulp-boot/dram"
	"github.com/usbarmory/imx8ulp-boot/mmu"
	"github.com/usbarmory/imx8ulp-boot/soc/imx8ulp"
)

const (
	MiB = 1 << 20
	GiB = 1 << 30

	base = imx8ulp.PHYS_SDRAM
)

func newPlatform(t *testing.T, cfg Config, size uint64, c dram.CarveOut) *Platform {
	t.Helper()

	p, err := New(cfg, imx8ulp.MemoryMap())

	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	p.Probe = func() (uint64, error) { return size, nil }
	p.CarveOut = c

	return p
}

func dramRegions(p *Platform) (banks []dram.Bank) {
	for _, r := range p.Regions() {
		if !r.Empty() && r.Phys >= base {
			banks = append(banks, dram.Bank{Start: r.Phys, Size: r.Size})
		}
	}

	return
}

func TestInit(t *testing.T) {
	for _, tt := range []struct {
		name      string
		carve     dram.CarveOut
		banks     []dram.Bank
		mapped    []dram.Bank
		effective uint64
	}{
		{
			name:      "no carve-out",
			banks:     []dram.Bank{{Start: base, Size: 2 * GiB}},
			effective: 2 * GiB,
		},
		{
			name:  "carve-out in the middle",
			carve: dram.CarveOut{Start: base + GiB, Size: 32 * MiB},
			banks: []dram.Bank{
				{Start: base, Size: GiB},
				{Start: base + GiB + 32*MiB, Size: GiB - 32*MiB},
			},
			effective: GiB,
		},
		{
			name:      "carve-out at the top",
			carve:     dram.CarveOut{Start: base + GiB, Size: GiB},
			banks:     []dram.Bank{{Start: base, Size: GiB}},
			effective: GiB,
		},
		{
			name:  "carve-out at the base",
			carve: dram.CarveOut{Start: base, Size: 32 * MiB},
			banks: []dram.Bank{
				{Start: base, Size: 0},
				{Start: base + 32*MiB, Size: 2*GiB - 32*MiB},
			},
			mapped: []dram.Bank{
				{Start: base + 32*MiB, Size: 2*GiB - 32*MiB},
			},
			effective: 0,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var cached bool

			p := newPlatform(t, DefaultConfig(), 2*GiB, tt.carve)
			p.CacheEnable = func() { cached = true }

			if err := p.Init(); err != nil {
				t.Fatalf("Init() = %v", err)
			}

			if diff := cmp.Diff(tt.banks, p.Banks); diff != "" {
				t.Errorf("banks mismatch (-want +got):\n%s", diff)
			}

			mapped := tt.banks

			if tt.mapped != nil {
				mapped = tt.mapped
			}

			if diff := cmp.Diff(mapped, dramRegions(p)); diff != "" {
				t.Errorf("memory map mismatch (-want +got):\n%s", diff)
			}

			if got := p.EffectiveMemSize(); got != tt.effective {
				t.Errorf("EffectiveMemSize() = %#x, want %#x", got, tt.effective)
			}

			if got, want := p.RAMSize, 2*GiB-tt.carve.Size; got != want {
				t.Errorf("RAMSize = %#x, want %#x", got, want)
			}

			if !cached {
				t.Errorf("caches not enabled")
			}

			if p.MemoryMap() == nil {
				t.Fatalf("MemoryMap() = nil after activation")
			}

			for _, b := range mapped {
				if _, err := p.MemoryMap().Find(b.Start); err != nil {
					t.Errorf("Find(%#x) = %v", b.Start, err)
				}
			}

			if err := p.CheckLoad(base, MiB); tt.carve.Start == base && !errors.Is(err, dram.ErrSecure) {
				t.Errorf("CheckLoad(%#x) = %v, want %v", uint64(base), err, dram.ErrSecure)
			}
		})
	}
}

func TestInitBankCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Banks = 1

	p := newPlatform(t, cfg, 2*GiB, dram.CarveOut{Start: base + GiB, Size: 32 * MiB})

	err := p.Init()

	if !errors.Is(err, dram.ErrBankCapacity) {
		t.Fatalf("Init() = %v, want %v", err, dram.ErrBankCapacity)
	}

	if p.Banks != nil {
		t.Errorf("banks committed on error: %v", p.Banks)
	}

	if p.MemoryMap() != nil {
		t.Errorf("memory map activated on error")
	}

	// DRAM entry is left at the probed size
	if diff := cmp.Diff([]dram.Bank{{Start: base, Size: 2 * GiB}}, dramRegions(p)); diff != "" {
		t.Errorf("memory map mismatch (-want +got):\n%s", diff)
	}
}

func TestInitProbeError(t *testing.T) {
	probeErr := errors.New("training failed")

	p := newPlatform(t, DefaultConfig(), 0, dram.CarveOut{})
	p.Probe = func() (uint64, error) { return 0, probeErr }

	if err := p.Init(); err == nil {
		t.Fatalf("Init() = nil, want error")
	}

	if p.RAMSize != 0 || p.Banks != nil {
		t.Errorf("DRAM state updated on probe error")
	}

	p.Probe = func() (uint64, error) { return 0, nil }

	if err := p.DRAMInit(); err == nil {
		t.Errorf("DRAMInit() with zero size = nil, want error")
	}
}

func TestInitInvalidCarveOut(t *testing.T) {
	for _, c := range []dram.CarveOut{
		{Start: base - MiB, Size: 32 * MiB},
		{Start: base + 2*GiB - 16*MiB, Size: 32 * MiB},
	} {
		p := newPlatform(t, DefaultConfig(), 2*GiB, c)

		if err := p.Init(); !errors.Is(err, dram.ErrCarveOut) {
			t.Errorf("Init() with carve-out %#x-%#x = %v, want %v", c.Start, c.End(), err, dram.ErrCarveOut)
		}
	}
}

func TestDRAMInitSizeError(t *testing.T) {
	c := dram.CarveOut{Start: base + GiB, Size: 32 * MiB}
	p := newPlatform(t, DefaultConfig(), 2*GiB+1, c)

	if err := p.DRAMInit(); err == nil {
		t.Fatalf("DRAMInit() with unaligned size = nil, want error")
	}

	if p.RAMSize != 0 {
		t.Errorf("RAMSize = %#x after error, want 0", p.RAMSize)
	}

	if diff := cmp.Diff([]dram.Bank{{Start: base, Size: imx8ulp.PHYS_SDRAM_SIZE}}, dramRegions(p)); diff != "" {
		t.Errorf("memory map mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckLoad(t *testing.T) {
	c := dram.CarveOut{Start: base + GiB, Size: 32 * MiB}
	p := newPlatform(t, DefaultConfig(), 2*GiB, c)

	if err := p.Init(); err != nil {
		t.Fatal(err)
	}

	for _, tt := range []struct {
		addr    uint64
		size    uint64
		wantErr bool
		secure  bool
	}{
		{addr: base, size: MiB},
		{addr: base + GiB - MiB, size: MiB},
		{addr: base + GiB - MiB, size: 2 * MiB, wantErr: true, secure: true},
		{addr: base + GiB, size: MiB, wantErr: true, secure: true},
		{addr: base + GiB + 31*MiB, size: 2 * MiB, wantErr: true, secure: true},
		{addr: base + GiB + 32*MiB, size: GiB - 32*MiB},
		{addr: base - MiB, size: MiB, wantErr: true},
		{addr: base + 2*GiB, size: MiB, wantErr: true},
		{addr: 0xfffffffffffff000, size: 0x2000, wantErr: true},
	} {
		err := p.CheckLoad(tt.addr, tt.size)

		if (err != nil) != tt.wantErr {
			t.Errorf("CheckLoad(%#x, %#x) = %v, want error %v", tt.addr, tt.size, err, tt.wantErr)
		}

		if got := errors.Is(err, dram.ErrSecure); got != tt.secure {
			t.Errorf("CheckLoad(%#x, %#x) = %v, Secure World overlap %v", tt.addr, tt.size, err, tt.secure)
		}
	}
}

func TestDefaultProbe(t *testing.T) {
	p, err := New(DefaultConfig(), imx8ulp.MemoryMap())

	if err != nil {
		t.Fatal(err)
	}

	if err = p.Init(); err != nil {
		t.Fatalf("Init() = %v", err)
	}

	if p.RAMSize != imx8ulp.PHYS_SDRAM_SIZE {
		t.Errorf("RAMSize = %#x, want %#x", p.RAMSize, imx8ulp.PHYS_SDRAM_SIZE)
	}
}

func TestReserve(t *testing.T) {
	var reserved []dram.CarveOut

	c := dram.CarveOut{Start: base + GiB, Size: 32 * MiB}
	p := newPlatform(t, DefaultConfig(), 2*GiB, c)

	p.Reserve = func(c dram.CarveOut) error {
		reserved = append(reserved, c)
		return nil
	}

	if err := p.Init(); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]dram.CarveOut{c}, reserved); diff != "" {
		t.Errorf("reserved mismatch (-want +got):\n%s", diff)
	}

	// reservation failures are fatal
	p = newPlatform(t, DefaultConfig(), 2*GiB, c)
	p.Reserve = func(dram.CarveOut) error { return errors.New("overlap") }

	if err := p.Init(); err == nil {
		t.Errorf("Init() = nil, want error")
	}

	if p.Banks != nil {
		t.Errorf("banks committed on error: %v", p.Banks)
	}
}

func TestEnableCachesOnce(t *testing.T) {
	p := newPlatform(t, DefaultConfig(), 2*GiB, dram.CarveOut{})

	if err := p.EnableCaches(); err == nil {
		t.Errorf("EnableCaches() before bank initialization = nil, want error")
	}

	if err := p.Init(); err != nil {
		t.Fatal(err)
	}

	if err := p.EnableCaches(); !errors.Is(err, mmu.ErrActive) {
		t.Errorf("EnableCaches() = %v, want %v", err, mmu.ErrActive)
	}

	if err := p.DRAMInit(); !errors.Is(err, mmu.ErrActive) {
		t.Errorf("DRAMInit() = %v, want %v", err, mmu.ErrActive)
	}
}

func TestPageTableSize(t *testing.T) {
	p := newPlatform(t, DefaultConfig(), 2*GiB, dram.CarveOut{})

	if got, want := p.PageTableSize(), uint64(679936); got != want {
		t.Errorf("PageTableSize() = %d, want %d", got, want)
	}

	if err := p.Init(); err != nil {
		t.Fatal(err)
	}

	if tables := mmu.TableCount(p.MemoryMap().Regions()); uint64(tables)*mmu.PageSize > p.PageTableSize()/2 {
		t.Errorf("%d tables exceed estimate %d", tables, p.PageTableSize())
	}
}

func TestNewInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Banks = 0

	if _, err := New(cfg, imx8ulp.MemoryMap()); err == nil {
		t.Errorf("New() with no banks = nil, want error")
	}

	cfg = DefaultConfig()
	cfg.Banks = 3

	if _, err := New(cfg, imx8ulp.MemoryMap()); err == nil {
		t.Errorf("New() without split slots = nil, want error")
	}
}
