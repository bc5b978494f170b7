// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package imx8ulp

// SIM1 registers
const (
	SIM1_SYSCTRL0 = SIM1_BASE_ADDR + 0x08
	SIM1_GPR0     = SIM1_BASE_ADDR + 0x30
	SIM1_DGO_GP8  = SIM1_BASE_ADDR + 0x5c

	SYSCTRL0_DGO_UPDATE = 24
	SYSCTRL0_DGO_ACK    = 26

	GPR0_CACHE_EN   = 4
	GPR0_CORE_RESET = 16

	// ROM reset vector
	ROM_RESET_VECTOR = 0x1000
)

// SetResetVector sets the Cortex-A35 core 0 reset vector.
func (hw *SoC) SetResetVector(entry uint32) {
	hw.Regs.Write(SIM1_DGO_GP8, entry)

	hw.set(SIM1_SYSCTRL0, SYSCTRL0_DGO_UPDATE)
	hw.wait(SIM1_SYSCTRL0, SYSCTRL0_DGO_ACK)
	hw.clear(SIM1_SYSCTRL0, SYSCTRL0_DGO_UPDATE)

	// write 1 to clear
	hw.set(SIM1_SYSCTRL0, SYSCTRL0_DGO_ACK)
}

// RestoreResetVector points the Cortex-A35 core 0 reset vector back to the
// boot ROM.
func (hw *SoC) RestoreResetVector() {
	hw.SetResetVector(ROM_RESET_VECTOR)
}

// Jump hands off execution to the next boot stage by resetting core 0 at the
// argument entry point, the caller must not expect any further instruction
// to be executed.
func (hw *SoC) Jump(entry uint32) {
	hw.SetResetVector(entry)

	// enable the 512KB cache
	hw.set(SIM1_GPR0, GPR0_CACHE_EN)

	hw.set(SIM1_GPR0, GPR0_CORE_RESET)
}
