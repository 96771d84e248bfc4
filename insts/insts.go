// Package insts provides RV32I instruction definitions and decoding.
//
// This package implements decoding of RV32I machine code into structured
// instruction representations. It supports the six base encoding formats:
//   - R-type: register-register ALU operations (ADD, SUB, SLL, ...)
//   - I-type: immediate ALU operations, loads, JALR
//   - S-type: stores
//   - B-type: conditional branches
//   - U-type: LUI, AUIPC
//   - J-type: JAL
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x00500093) // ADDI x1, x0, 5
//	fmt.Printf("Format: %v, Rd: %d, Rs1: %d, Imm: %d\n", inst.Format, inst.Rd, inst.Rs1, int32(inst.Imm))
package insts
