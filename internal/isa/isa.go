// Package isa defines the instruction set shared by the code generator and
// the virtual machine: the opcode enum, the instruction representation, and
// the textual dump format that lets a compiled program round-trip through a
// file.
package isa

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Opcode is a closed tagged enum over the machine's instruction set. Using a
// byte-backed sum type instead of string dispatch keeps the VM's hot loop a
// plain switch and makes an unhandled opcode a build-time impossibility once
// every case is covered.
type Opcode byte

const (
	ZERO Opcode = iota
	INC
	DEC
	SHL
	SHR
	LOAD
	STORE
	ADD
	SUB
	SCAN
	PRINT
	JUMP
	JZ
	JG
	JODD
	HALT
)

var opcodeNames = map[Opcode]string{
	ZERO:  "ZERO",
	INC:   "INC",
	DEC:   "DEC",
	SHL:   "SHL",
	SHR:   "SHR",
	LOAD:  "LOAD",
	STORE: "STORE",
	ADD:   "ADD",
	SUB:   "SUB",
	SCAN:  "SCAN",
	PRINT: "PRINT",
	JUMP:  "JUMP",
	JZ:    "JZ",
	JG:    "JG",
	JODD:  "JODD",
	HALT:  "HALT",
}

var namesToOpcode map[string]Opcode

func init() {
	namesToOpcode = make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		namesToOpcode[name] = op
	}
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "?unknown?"
}

// HasArg reports whether op carries an address or jump target argument.
func (op Opcode) HasArg() bool {
	switch op {
	case ZERO, INC, DEC, SHL, SHR, HALT:
		return false
	default:
		return true
	}
}

// IsBranch reports whether op's argument is an instruction index rather
// than a memory address.
func (op Opcode) IsBranch() bool {
	switch op {
	case JUMP, JZ, JG, JODD:
		return true
	default:
		return false
	}
}

// Instruction is a single opcode plus an optional argument. Arg is only
// meaningful when Op.HasArg() is true. Label is set only transiently during
// code generation, before backpatching resolves every branch target to a
// concrete instruction index; a finalized Program never has a non-empty
// Label on any instruction.
type Instruction struct {
	Op    Opcode
	Arg   int
	Label string
}

func (i Instruction) String() string {
	if i.Label != "" {
		return fmt.Sprintf("%s %s", i.Op, i.Label)
	}
	if i.Op.HasArg() {
		return fmt.Sprintf("%s %d", i.Op, i.Arg)
	}
	return i.Op.String()
}

// Program is a finalized instruction sequence together with the memory map
// that names its addresses. The final instruction is always HALT and no
// instruction carries a symbolic Label.
type Program struct {
	Code      []Instruction
	MemoryMap map[string]int
}

// Unresolved reports the index of the first instruction still carrying a
// symbolic label, or -1 if the program is fully backpatched.
func (p Program) Unresolved() int {
	for i, instr := range p.Code {
		if instr.Label != "" {
			return i
		}
	}
	return -1
}

// Encode writes one instruction per line as "OP" or "OP ARG", the textual
// dump format that Decode reads back. No header, no footer.
func Encode(w io.Writer, code []Instruction) error {
	bw := bufio.NewWriter(w)
	for _, instr := range code {
		if instr.Label != "" {
			return fmt.Errorf("cannot encode unresolved label %q at instruction %s", instr.Label, instr.Op)
		}
		if instr.Op.HasArg() {
			if _, err := fmt.Fprintf(bw, "%s %d\n", instr.Op, instr.Arg); err != nil {
				return err
			}
		} else {
			if _, err := fmt.Fprintf(bw, "%s\n", instr.Op); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// Decode parses the textual dump format back into an instruction slice.
// Accepts the same "OP" / "OP ARG" shape that Encode produces.
func Decode(r io.Reader) ([]Instruction, error) {
	scanner := bufio.NewScanner(r)
	code := make([]Instruction, 0)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		fields := strings.Fields(text)
		op, ok := namesToOpcode[strings.ToUpper(fields[0])]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown opcode %q", line, fields[0])
		}

		instr := Instruction{Op: op}
		switch {
		case op.HasArg() && len(fields) != 2:
			return nil, fmt.Errorf("line %d: %s requires one argument", line, op)
		case !op.HasArg() && len(fields) != 1:
			return nil, fmt.Errorf("line %d: %s takes no argument", line, op)
		case op.HasArg():
			arg, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid argument %q: %w", line, fields[1], err)
			}
			instr.Arg = arg
		}

		code = append(code, instr)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return code, nil
}
