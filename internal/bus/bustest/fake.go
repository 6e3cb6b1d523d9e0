// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package bustest provides an in-memory register transport for tests.
package bustest

import (
	"fmt"
	"sync"
)

// Op is one recorded transaction.
type Op struct {
	Write bool
	Addr  uint16
	Reg   uint8
	Value byte
}

func (o Op) String() string {
	if o.Write {
		return fmt.Sprintf("W 0x%02X[0x%02X]=0x%02X", o.Addr, o.Reg, o.Value)
	}
	return fmt.Sprintf("R 0x%02X[0x%02X]=0x%02X", o.Addr, o.Reg, o.Value)
}

type key struct {
	addr uint16
	reg  uint8
}

// Fake is a register file per bus address. Writes update the file, reads
// return queued values first and then the file. Every call is recorded.
type Fake struct {
	mu        sync.Mutex
	regs      map[key]byte
	queue     map[key][]byte
	readErrs  map[key]error
	writeErrs map[key]error
	ops       []Op
}

// New returns an empty Fake; unset registers read as zero.
func New() *Fake {
	return &Fake{
		regs:      map[key]byte{},
		queue:     map[key][]byte{},
		readErrs:  map[key]error{},
		writeErrs: map[key]error{},
	}
}

// Set stores v without recording an operation.
func (f *Fake) Set(addr uint16, reg uint8, v byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regs[key{addr, reg}] = v
}

// SetBlock stores consecutive registers starting at reg.
func (f *Fake) SetBlock(addr uint16, reg uint8, vals ...byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, v := range vals {
		f.regs[key{addr, reg + uint8(i)}] = v
	}
}

// Queue makes the next reads of reg return vals in order.
func (f *Fake) Queue(addr uint16, reg uint8, vals ...byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key{addr, reg}
	f.queue[k] = append(f.queue[k], vals...)
}

// FailRead makes reads of reg return err. A nil err clears the failure.
func (f *Fake) FailRead(addr uint16, reg uint8, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.readErrs, key{addr, reg})
		return
	}
	f.readErrs[key{addr, reg}] = err
}

// FailWrite makes writes of reg return err. A nil err clears the failure.
func (f *Fake) FailWrite(addr uint16, reg uint8, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.writeErrs, key{addr, reg})
		return
	}
	f.writeErrs[key{addr, reg}] = err
}

// Value returns the current register content.
func (f *Fake) Value(addr uint16, reg uint8) byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regs[key{addr, reg}]
}

func (f *Fake) ReadReg(addr uint16, reg uint8) (byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key{addr, reg}
	if err := f.readErrs[k]; err != nil {
		return 0, err
	}
	v := f.regs[k]
	if q := f.queue[k]; len(q) > 0 {
		v = q[0]
		f.queue[k] = q[1:]
	}
	f.ops = append(f.ops, Op{Addr: addr, Reg: reg, Value: v})
	return v, nil
}

func (f *Fake) WriteReg(addr uint16, reg uint8, v byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key{addr, reg}
	if err := f.writeErrs[k]; err != nil {
		return err
	}
	f.regs[k] = v
	f.ops = append(f.ops, Op{Write: true, Addr: addr, Reg: reg, Value: v})
	return nil
}

// Ops returns a copy of every recorded transaction.
func (f *Fake) Ops() []Op {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Op(nil), f.ops...)
}

// Reads returns recorded reads.
func (f *Fake) Reads() []Op {
	return f.filter(false)
}

// Writes returns recorded writes.
func (f *Fake) Writes() []Op {
	return f.filter(true)
}

// WritesTo returns the values written to one register, oldest first.
func (f *Fake) WritesTo(addr uint16, reg uint8) []byte {
	var out []byte
	for _, op := range f.Writes() {
		if op.Addr == addr && op.Reg == reg {
			out = append(out, op.Value)
		}
	}
	return out
}

// ClearOps forgets recorded transactions, keeping register contents.
func (f *Fake) ClearOps() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = nil
}

func (f *Fake) filter(write bool) []Op {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Op
	for _, op := range f.ops {
		if op.Write == write {
			out = append(out, op)
		}
	}
	return out
}
