package emu

// LoadStoreUnit implements the memory stage: word loads and stores on the
// address produced by the ALU.
type LoadStoreUnit struct {
	memory *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given memory.
func NewLoadStoreUnit(memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{memory: memory}
}

// LW performs a word load: value = mem[addr]
func (lsu *LoadStoreUnit) LW(addr uint32) (uint32, error) {
	return lsu.memory.ReadWord(addr)
}

// SW performs a word store: mem[addr] = value
func (lsu *LoadStoreUnit) SW(addr, value uint32) error {
	return lsu.memory.WriteWord(addr, value)
}
