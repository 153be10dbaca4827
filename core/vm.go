package core

import (
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

// Opcode is one whitespace-separated token of VM bytecode.
type Opcode string

const (
	OpPush  Opcode = "PUSH"
	OpPop   Opcode = "POP"
	OpAdd   Opcode = "ADD"
	OpSub   Opcode = "SUB"
	OpMul   Opcode = "MUL"
	OpDiv   Opcode = "DIV"
	OpStore Opcode = "STORE"
	OpLoad  Opcode = "LOAD"
)

// baseGasCost is charged for every opcode before it executes.
const baseGasCost uint64 = 1

// storeExtraGasCost is charged in addition to baseGasCost for STORE, which
// mutates VM memory.
const storeExtraGasCost uint64 = 5

// GasMeter tracks gas consumption against a fixed limit.
type GasMeter struct {
	used  uint64
	limit uint64
}

// NewGasMeter returns a meter with the given limit.
func NewGasMeter(limit uint64) *GasMeter {
	return &GasMeter{limit: limit}
}

// Consume charges amount gas, returning an error if doing so would exceed
// the meter's limit. On error the meter's used counter is left unchanged.
func (g *GasMeter) Consume(amount uint64) error {
	if g.used+amount > g.limit {
		return fmt.Errorf("core: out of gas: used=%d requested=%d limit=%d", g.used, amount, g.limit)
	}
	g.used += amount
	return nil
}

// Used returns gas consumed so far.
func (g *GasMeter) Used() uint64 { return g.used }

// Remaining returns gas left before the limit is hit.
func (g *GasMeter) Remaining() uint64 { return g.limit - g.used }

// tokenCache memoises the whitespace tokenisation of bytecode strings.
// Keyed by the raw source so identical contract code executed by every
// replica in a committed transaction is only split once per process.
var tokenCache, _ = lru.New[string, []string](256)

func tokenize(code string) []string {
	if cached, ok := tokenCache.Get(code); ok {
		return cached
	}
	fields := strings.Fields(code)
	tokenCache.Add(code, fields)
	return fields
}

// VM is a deterministic, stack-based bytecode interpreter with gas metering.
// Execution state (stack and memory) is not shared between calls to Execute.
type VM struct {
	log *logrus.Entry
}

// NewVM returns a ready-to-use VM.
func NewVM() *VM {
	return &VM{log: logrus.WithField("component", "vm")}
}

// Execute runs whitespace-tokenised bytecode against a fresh stack and
// memory, charging gas against limit. It returns the final stack, final
// memory and total gas consumed on success. An unknown opcode or exhausted
// gas aborts execution immediately; any stack or memory mutation performed
// by earlier, already-charged instructions is retained in the returned
// partial state via the returned error's absence of a rollback — callers
// that require atomicity must discard the result on error; there is no
// implicit rollback. Gas consumed is always returned, even on failure, so a
// caller can record it regardless of outcome.
func (vm *VM) Execute(code string, limit uint64) ([]int64, map[int64]int64, uint64, error) {
	meter := NewGasMeter(limit)
	stack := make([]int64, 0, 16)
	memory := make(map[int64]int64)

	pop := func() (int64, error) {
		if len(stack) == 0 {
			return 0, fmt.Errorf("core: stack underflow")
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}
	push := func(v int64) { stack = append(stack, v) }

	tokens := tokenize(code)
	for pc := 0; pc < len(tokens); pc++ {
		op := Opcode(tokens[pc])
		if err := meter.Consume(baseGasCost); err != nil {
			vm.log.WithError(err).Debug("vm: execution aborted")
			return stack, memory, meter.Used(), err
		}
		switch op {
		case OpPush:
			pc++
			if pc >= len(tokens) {
				return stack, memory, meter.Used(), fmt.Errorf("core: PUSH missing operand")
			}
			n, err := strconv.ParseInt(tokens[pc], 10, 64)
			if err != nil {
				return stack, memory, meter.Used(), fmt.Errorf("core: invalid PUSH operand %q: %w", tokens[pc], err)
			}
			push(n)
		case OpPop:
			if _, err := pop(); err != nil {
				return stack, memory, meter.Used(), err
			}
		case OpAdd:
			a, err := pop()
			if err != nil {
				return stack, memory, meter.Used(), err
			}
			b, err := pop()
			if err != nil {
				return stack, memory, meter.Used(), err
			}
			push(a + b)
		case OpSub:
			a, err := pop()
			if err != nil {
				return stack, memory, meter.Used(), err
			}
			b, err := pop()
			if err != nil {
				return stack, memory, meter.Used(), err
			}
			push(b - a)
		case OpMul:
			a, err := pop()
			if err != nil {
				return stack, memory, meter.Used(), err
			}
			b, err := pop()
			if err != nil {
				return stack, memory, meter.Used(), err
			}
			push(a * b)
		case OpDiv:
			a, err := pop()
			if err != nil {
				return stack, memory, meter.Used(), err
			}
			b, err := pop()
			if err != nil {
				return stack, memory, meter.Used(), err
			}
			if a == 0 {
				return stack, memory, meter.Used(), fmt.Errorf("core: division by zero")
			}
			push(floorDiv(b, a))
		case OpStore:
			addr, err := pop()
			if err != nil {
				return stack, memory, meter.Used(), err
			}
			value, err := pop()
			if err != nil {
				return stack, memory, meter.Used(), err
			}
			memory[addr] = value
			if err := meter.Consume(storeExtraGasCost); err != nil {
				vm.log.WithError(err).Debug("vm: execution aborted")
				return stack, memory, meter.Used(), err
			}
		case OpLoad:
			addr, err := pop()
			if err != nil {
				return stack, memory, meter.Used(), err
			}
			push(memory[addr])
		default:
			return stack, memory, meter.Used(), fmt.Errorf("core: invalid opcode %q", op)
		}
	}
	return stack, memory, meter.Used(), nil
}

// floorDiv performs Python-style floor division, matching the reference
// interpreter's `//` semantics rather than Go's truncating integer division.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
