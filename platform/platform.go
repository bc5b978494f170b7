// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package platform implements the i.MX8ULP early boot sequence for DRAM
// sizing and partitioning, memory map adjustment and translation table
// sizing, ahead of caches and MMU activation.
//
// The sequence is strictly single threaded, each step is performed once and
// any failure must be treated as fatal by the caller.
package platform

import (
	"errors"
	"fmt"
	"log"

	"github.com/usbarmory/imx8ulp-boot/dram"
	"github.com/usbarmory/imx8ulp-boot/mmu"
	"github.com/usbarmory/imx8ulp-boot/soc/imx8ulp"
)

// Debug enables verbose logging of memory map changes.
var Debug = false

// Config represents the platform memory configuration.
type Config struct {
	// PhysSDRAM is the external DDR base address
	PhysSDRAM uint64
	// PhysSDRAMSize is the default DDR size
	PhysSDRAMSize uint64
	// Banks is the maximum number of DRAM banks
	Banks int
	// MaxPTEEntries is the number of descriptors per translation table
	MaxPTEEntries int
	// MaxRegions is the memory map region ceiling used for table sizing
	MaxRegions int
}

// DefaultConfig returns the i.MX8ULP memory configuration.
func DefaultConfig() Config {
	return Config{
		PhysSDRAM:     imx8ulp.PHYS_SDRAM,
		PhysSDRAMSize: imx8ulp.PHYS_SDRAM_SIZE,
		Banks:         imx8ulp.NR_DRAM_BANKS,
		MaxPTEEntries: imx8ulp.MAX_PTE_ENTRIES,
		MaxRegions:    imx8ulp.MAX_MEM_MAP_REGIONS,
	}
}

// Platform represents the board state built during early boot.
type Platform struct {
	Config

	// SoC is the application processor, nil to skip its initialization
	SoC *imx8ulp.SoC

	// Probe returns the board DRAM size, the default DDR size is assumed
	// when nil
	Probe func() (uint64, error)

	// CarveOut is the DRAM range claimed by the Secure World OS
	CarveOut dram.CarveOut

	// CacheEnable is invoked after the memory map activation to enable
	// instruction and data caches
	CacheEnable func()

	// RAMSize is the DRAM size available to the Normal World
	RAMSize uint64

	// Banks is the DRAM layout handed to the next boot stage
	Banks []dram.Bank

	// Reserve is invoked to exclude the carve-out from allocations of this
	// boot stage, nil to skip
	Reserve func(dram.CarveOut) error

	table *mmu.Table
	view  *mmu.View
}

// New returns a platform for the argument memory map, its DRAM entry must
// be followed by placeholders for all additional DRAM banks.
func New(cfg Config, regions []mmu.Region) (p *Platform, err error) {
	if cfg.Banks < 1 {
		return nil, fmt.Errorf("invalid DRAM bank count %d", cfg.Banks)
	}

	table, err := mmu.NewTable(regions, cfg.PhysSDRAM, cfg.Banks-1)

	if err != nil {
		return nil, fmt.Errorf("invalid memory map, %v", err)
	}

	p = &Platform{
		Config: cfg,
		table:  table,
	}

	return
}

func (p *Platform) sdramSize() (size uint64, err error) {
	if p.Probe == nil {
		return p.PhysSDRAMSize, nil
	}

	if size, err = p.Probe(); err != nil {
		return 0, fmt.Errorf("could not probe DRAM size, %v", err)
	}

	if size == 0 {
		return 0, errors.New("could not probe DRAM size, got zero")
	}

	return
}

// DRAMInit sizes DRAM, the Secure World carve-out is excluded from the
// Normal World RAM size.
func (p *Platform) DRAMInit() (err error) {
	if p.table.Active() {
		return mmu.ErrActive
	}

	size, err := p.sdramSize()

	if err != nil {
		return
	}

	if err = p.CarveOut.Validate(p.PhysSDRAM, size); err != nil {
		return
	}

	// the memory map reflects the full DDR size until banks are known
	if err = p.table.SetDRAMSize(size); err != nil {
		return
	}

	p.RAMSize = size - p.CarveOut.Size

	return
}

// DRAMInitBanksize partitions DRAM in banks, committing them only on
// success.
func (p *Platform) DRAMInitBanksize() (err error) {
	size, err := p.sdramSize()

	if err != nil {
		return
	}

	banks, err := dram.Partition(p.PhysSDRAM, size, p.CarveOut, p.Config.Banks)

	if err != nil {
		return
	}

	if p.CarveOut.Present() && p.Reserve != nil {
		if err = p.Reserve(p.CarveOut); err != nil {
			return fmt.Errorf("could not reserve carve-out, %v", err)
		}
	}

	p.Banks = banks

	for i, b := range p.Banks {
		log.Printf("dram bank %d %#x-%#x", i, b.Start, b.End())
	}

	return
}

// EnableCaches adjusts the memory map to the DRAM banks and activates it,
// the memory map is read-only from this point on.
func (p *Platform) EnableCaches() (err error) {
	if p.table.Active() {
		return mmu.ErrActive
	}

	if len(p.Banks) == 0 {
		return errors.New("DRAM banks not initialized")
	}

	// remove Secure World memory to avoid speculative prefetches
	if err = p.table.PatchDRAM(p.Banks); err != nil {
		return fmt.Errorf("could not update memory map, %v", err)
	}

	if Debug {
		for i, r := range p.table.Regions() {
			if !r.Empty() {
				log.Printf("memory mapping (%d) %#x %#x %s", i, r.Phys, r.Size, mmu.Describe(r.Attrs))
			}
		}
	}

	p.view = p.table.Activate()

	if p.CacheEnable != nil {
		p.CacheEnable()
	}

	return
}

// Init performs the early boot sequence.
func (p *Platform) Init() (err error) {
	if p.SoC != nil {
		if err = p.SoC.Init(); err != nil {
			return
		}
	}

	if err = p.DRAMInit(); err != nil {
		return fmt.Errorf("DRAM initialization failed, %w", err)
	}

	if err = p.DRAMInitBanksize(); err != nil {
		return fmt.Errorf("DRAM bank initialization failed, %w", err)
	}

	return p.EnableCaches()
}

// CheckLoad verifies that a range can receive next stage data, it must lie
// entirely within a single DRAM bank and never overlap the carve-out.
func (p *Platform) CheckLoad(addr uint64, size uint64) error {
	end := addr + size

	if end < addr {
		return fmt.Errorf("range %#x-%#x overflows", addr, end)
	}

	if p.CarveOut.Overlaps(addr, size) {
		return fmt.Errorf("%w, %#x-%#x", dram.ErrSecure, addr, end)
	}

	for _, b := range p.Banks {
		if addr >= b.Start && end <= b.End() {
			return nil
		}
	}

	return fmt.Errorf("range %#x-%#x outside DRAM banks", addr, end)
}

// MemoryMap returns the read-only memory map, nil until activation.
func (p *Platform) MemoryMap() *mmu.View {
	return p.view
}

// Regions returns a copy of the memory map entries.
func (p *Platform) Regions() []mmu.Region {
	return p.table.Regions()
}

// EffectiveMemSize returns the size of the memory which is guaranteed
// contiguous and free from the DRAM base.
func (p *Platform) EffectiveMemSize() uint64 {
	return dram.EffectiveMemSize(p.PhysSDRAM, p.RAMSize, p.CarveOut)
}

// PageTableSize returns the translation table memory pool size.
func (p *Platform) PageTableSize() uint64 {
	return mmu.PageTableSize(p.table.Len(), p.MaxPTEEntries, p.MaxRegions)
}
