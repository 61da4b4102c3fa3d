package board

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the recoverable failures surfaced at API edges.
var (
	ErrInvalidFEN     = errors.New("invalid FEN")
	ErrIllegalMove    = errors.New("illegal move")
	ErrInvalidHistory = errors.New("invalid move history")
	ErrPoolExhausted  = errors.New("board state pool exhausted")
)

// InvariantError describes corrupted engine state. It is only ever raised
// through panic; callers that recover can inspect it with errors.As.
type InvariantError struct {
	Op     string
	Slot   Slot
	From   Square
	To     Square
	Detail string
	Err    error
}

func (e *InvariantError) Error() string {
	var sb strings.Builder
	sb.WriteString("board invariant violated")
	if e.Op != "" {
		sb.WriteString(" in ")
		sb.WriteString(e.Op)
	}
	if e.Slot != NoSlot {
		fmt.Fprintf(&sb, " slot=%d", e.Slot)
	}
	if e.From.Valid() {
		fmt.Fprintf(&sb, " from=%s", e.From)
	}
	if e.To.Valid() {
		fmt.Fprintf(&sb, " to=%s", e.To)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying error.
func (e *InvariantError) Unwrap() error {
	return e.Err
}

// fatal panics with an InvariantError.
func fatal(op string, slot Slot, from, to Square, format string, args ...any) {
	panic(&InvariantError{
		Op:     op,
		Slot:   slot,
		From:   from,
		To:     to,
		Detail: fmt.Sprintf(format, args...),
	})
}

// fatalErr panics with an InvariantError wrapping err.
func fatalErr(op string, err error) {
	panic(&InvariantError{Op: op, Slot: NoSlot, From: NoSquare, To: NoSquare, Err: err})
}
