// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Predicate is a range condition over column values. An absent bound is
// unbounded. When Anti is set the predicate matches values outside the range;
// an anti predicate with both bounds absent matches nothing.
type Predicate[T Value] struct {
	Low, High                   T
	HasLow, HasHigh             bool
	LowInclusive, HighInclusive bool
	Anti                        bool
}

// Range returns the predicate low <= v <= high.
func Range[T Value](low, high T) Predicate[T] {
	return Predicate[T]{
		Low: low, High: high,
		HasLow: true, HasHigh: true,
		LowInclusive: true, HighInclusive: true,
	}
}

// Equal returns the predicate v == x.
func Equal[T Value](x T) Predicate[T] {
	return Range(x, x)
}

// matchesNothing returns true if the predicate can be rejected without
// inspecting any values.
func (p Predicate[T]) matchesNothing() bool {
	return p.Anti && !p.HasLow && !p.HasHigh
}

// Match returns true if v satisfies the predicate.
func (p Predicate[T]) Match(v T) bool {
	in := true
	if p.HasLow {
		in = v > p.Low || (p.LowInclusive && v == p.Low)
	}
	if in && p.HasHigh {
		in = v < p.High || (p.HighInclusive && v == p.High)
	}
	return in != p.Anti
}

// String implements fmt.Stringer.
func (p Predicate[T]) String() string {
	var sb strings.Builder
	if p.Anti {
		sb.WriteString("not ")
	}
	switch {
	case !p.HasLow:
		sb.WriteString("(-inf")
	case p.LowInclusive:
		fmt.Fprintf(&sb, "[%v", p.Low)
	default:
		fmt.Fprintf(&sb, "(%v", p.Low)
	}
	sb.WriteString(", ")
	switch {
	case !p.HasHigh:
		sb.WriteString("+inf)")
	case p.HighInclusive:
		fmt.Fprintf(&sb, "%v]", p.High)
	default:
		fmt.Fprintf(&sb, "%v)", p.High)
	}
	return sb.String()
}

// Op is a comparison operator of a theta selection.
type Op uint8

const (
	OpLT Op = iota
	OpLE
	OpGT
	OpGE
	OpEQ
	OpNE
)

var opNames = [...]string{
	OpLT: "<",
	OpLE: "<=",
	OpGT: ">",
	OpGE: ">=",
	OpEQ: "=",
	OpNE: "<>",
}

// String implements fmt.Stringer.
func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "?"
}

// SafeFormat implements redact.SafeFormatter.
func (op Op) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(op.String()))
}

// ParseOp parses a comparison operator. Both "=" and "==" denote equality;
// both "<>" and "!=" denote inequality.
func ParseOp(s string) (Op, error) {
	switch s {
	case "<":
		return OpLT, nil
	case "<=":
		return OpLE, nil
	case ">":
		return OpGT, nil
	case ">=":
		return OpGE, nil
	case "=", "==":
		return OpEQ, nil
	case "<>", "!=":
		return OpNE, nil
	}
	return 0, errors.Newf("mosaic: unknown operator %q", redact.SafeString(s))
}

// ThetaPredicate returns the range predicate equivalent to "v op x". Strict
// comparisons are expressed with inclusive bounds on the neighbouring value,
// so "v < x" becomes "v <= predecessor(x)". A comparison no value can
// satisfy, such as "v < min", yields a predicate that matches nothing.
func ThetaPredicate[T Value](x T, op Op) Predicate[T] {
	nothing := Predicate[T]{Anti: true}
	switch op {
	case OpLT:
		hi, ok := predecessor(x)
		if !ok {
			return nothing
		}
		return Predicate[T]{High: hi, HasHigh: true, HighInclusive: true}
	case OpLE:
		return Predicate[T]{High: x, HasHigh: true, HighInclusive: true}
	case OpGT:
		lo, ok := successor(x)
		if !ok {
			return nothing
		}
		return Predicate[T]{Low: lo, HasLow: true, LowInclusive: true}
	case OpGE:
		return Predicate[T]{Low: x, HasLow: true, LowInclusive: true}
	case OpEQ:
		return Equal(x)
	case OpNE:
		p := Equal(x)
		p.Anti = true
		return p
	default:
		panic(errors.AssertionFailedf("unknown operator %d", op))
	}
}
