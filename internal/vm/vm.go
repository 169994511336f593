// Package vm interprets a finalized isa.Program on a tiny accumulator
// machine: a single accumulator register A, an instruction counter K, and a
// flat memory array P. Grounded on the reference implementation's vm.py,
// with the console I/O wrapped behind an interface adapted from the
// teacher's devices.go consoleIO device so tests can feed input and capture
// output without touching os.Stdin/os.Stdout.
package vm

import (
	"bufio"
	"fmt"
	"io"

	"accvm/internal/isa"
)

// MinMemory is the smallest memory size the machine will run with. Programs
// compiled by internal/codegen never address a cell this high, but a
// hand-written or fuzzed program might; New always allocates at least
// this many cells.
const MinMemory = 1000

// IO is the machine's console device: SCAN reads one value, PRINT writes
// one. A synchronous interface is enough here; nothing in the instruction
// set can block on anything but these two operations. Read returning
// io.EOF tells SCAN the input is exhausted; the executor substitutes 0
// rather than failing the run. An interactive implementation is free to
// block and prompt instead of ever returning io.EOF.
type IO interface {
	Read() (int, error)
	Write(value int) error
}

// consoleIO is the default IO backed by arbitrary readers and writers, in
// the same bufio-wrapped shape as the teacher's consoleIO device, minus its
// goroutine and channel plumbing — this machine has no concurrent devices
// to arbitrate between, so a direct synchronous read/write is enough.
type consoleIO struct {
	in  *bufio.Reader
	out *bufio.Writer
}

// NewConsoleIO wraps r and w as an IO that scans whitespace-delimited
// integers and prints one integer per line.
func NewConsoleIO(r io.Reader, w io.Writer) IO {
	return &consoleIO{in: bufio.NewReader(r), out: bufio.NewWriter(w)}
}

func (c *consoleIO) Read() (int, error) {
	var value int
	_, err := fmt.Fscan(c.in, &value)
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (c *consoleIO) Write(value int) error {
	if _, err := fmt.Fprintln(c.out, value); err != nil {
		return err
	}
	return c.out.Flush()
}

// VM holds the complete machine state: accumulator, instruction counter,
// memory, the loaded program, and the running step-cost total.
type VM struct {
	A int // accumulator
	K int // instruction counter
	P []int

	Code         []isa.Instruction
	IO           IO
	Steps        int // cumulative cost of every executed instruction
	Instructions int // count of instructions fetched, regardless of cost

	halted bool
}

// New builds a machine for code, backed by an IO device. Memory is sized to
// at least MinMemory cells, and larger still if code addresses anything
// past that.
func New(code []isa.Instruction, device IO) *VM {
	size := MinMemory
	for _, instr := range code {
		if instr.Op.HasArg() && !instr.Op.IsBranch() && instr.Arg+1 > size {
			size = instr.Arg + 1
		}
	}
	return &VM{
		P:    make([]int, size),
		Code: code,
		IO:   device,
	}
}

// Halted reports whether the machine has stopped, either by executing a HALT
// instruction or by its instruction counter leaving the program.
func (vm *VM) Halted() bool {
	return vm.halted
}

// Run executes the loaded program from its current instruction counter
// until HALT, running out of instructions, or an execution error.
func (vm *VM) Run() error {
	for !vm.halted {
		if err := vm.Step(); err != nil {
			return err
		}
	}
	return nil
}
