// Package mcode is the calling convention between mission scripts and the
// engine: every opcode takes (result, params) and returns a Code.
package mcode

import (
	"fmt"
	"strconv"
)

// Code tells the script VM what to do after an opcode returns.
type Code int

const (
	Continue  Code = iota // carry on with the next statement
	Repeat                // call me again next tick
	Gosub                 // run an interact sub-script first
	Stop                  // end this script's logic for the tick
	Terminate             // fatal: content or script bug
)

func (c Code) String() string {
	switch c {
	case Continue:
		return "Continue"
	case Repeat:
		return "Repeat"
	case Gosub:
		return "Gosub"
	case Stop:
		return "Stop"
	case Terminate:
		return "Terminate"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Value is one opcode parameter: an integer or a string.
type Value struct {
	Int   int32
	Str   string
	IsStr bool
}

func Int(v int32) Value  { return Value{Int: v} }
func Str(s string) Value { return Value{Str: s, IsStr: true} }

func (v Value) String() string {
	if v.IsStr {
		return strconv.Quote(v.Str)
	}
	return strconv.Itoa(int(v.Int))
}

// Params is an opcode's argument list. Missing trailing arguments read as
// zero values.
type Params []Value

func (p Params) Int(i int) int32 {
	if i < 0 || i >= len(p) {
		return 0
	}
	if p[i].IsStr {
		n, _ := strconv.Atoi(p[i].Str)
		return int32(n)
	}
	return p[i].Int
}

func (p Params) Str(i int) string {
	if i < 0 || i >= len(p) {
		return ""
	}
	if !p[i].IsStr {
		return strconv.Itoa(int(p[i].Int))
	}
	return p[i].Str
}

func (p Params) Bool(i int) bool { return p.Int(i) != 0 }

// Len is the number of supplied arguments.
func (p Params) Len() int { return len(p) }
