package command

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vovakirdan/solar-scene/internal/core"
	"github.com/vovakirdan/solar-scene/internal/world"
)

var (
	// ErrEmpty is returned for blank lines.
	ErrEmpty = errors.New("command: empty line")

	// ErrUnknownOpcode is returned when the first three characters name no command.
	ErrUnknownOpcode = errors.New("command: unknown opcode")

	// ErrMalformed is wrapped by every *ParseError.
	ErrMalformed = errors.New("command: malformed")

	errNotFinite = errors.New("not a finite number")
)

// ParseError reports a missing or unparsable field.
type ParseError struct {
	Opcode Opcode
	Field  string
	Value  string // empty when the field is missing
	Err    error  // strconv error, if any
}

func (e *ParseError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("command: %s: missing field %s", e.Opcode, e.Field)
	}
	return fmt.Sprintf("command: %s: field %s: invalid value %q", e.Opcode, e.Field, e.Value)
}

// Unwrap lets errors.Is match ErrMalformed.
func (e *ParseError) Unwrap() error {
	return ErrMalformed
}

// Parse converts a command line into a Command.
// The line ends at the first NUL byte. Line terminators and surplus fields
// are ignored.
func Parse(line string) (Command, error) {
	line, _, _ = strings.Cut(line, "\x00")
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil, ErrEmpty
	}
	if line[0] == 'X' {
		return Quit{}, nil
	}
	if len(line) < 3 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOpcode, line)
	}

	op := Opcode(line[:3])
	sc := &scanner{op: op, fields: strings.Fields(line[3:])}

	switch op {
	case OpCreateObject:
		var spec world.ObjectSpec
		spec.Name = sc.str("name")
		spec.Position = sc.vec("px", "py", "pz")
		spec.Scale = sc.vec("sx", "sy", "sz")
		spec.Rotation = sc.vec("qx", "qy", "qz")
		spec.Model = sc.str("model")
		spec.Material1 = sc.str("mat1")
		spec.Material2 = sc.str("mat2")
		spec.Visible = sc.int("vis")
		if sc.err != nil {
			return nil, sc.err
		}
		return CreateObject{Spec: spec}, nil

	case OpCreateObjectAtPoint:
		var spec world.ObjectSpec
		spec.Name = sc.str("name")
		point := sc.str("pointname")
		spec.Scale = sc.vec("sx", "sy", "sz")
		spec.Rotation = sc.vec("qx", "qy", "qz")
		spec.Model = sc.str("model")
		spec.Material1 = sc.str("mat1")
		spec.Material2 = sc.str("mat2")
		spec.Visible = sc.int("vis")
		if sc.err != nil {
			return nil, sc.err
		}
		return CreateObjectAtPoint{Spec: spec, Point: point}, nil

	case OpCreatePoint:
		name := sc.str("name")
		pos := sc.vec("px", "py", "pz")
		if sc.err != nil {
			return nil, sc.err
		}
		return CreatePoint{Name: name, Position: pos}, nil

	case OpMoveObject:
		object := sc.str("name")
		point := sc.str("pointname")
		if sc.err != nil {
			return nil, sc.err
		}
		return MoveObject{Object: object, Point: point}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownOpcode, string(op))
}

// scanner consumes fields in order and keeps the first error.
type scanner struct {
	op     Opcode
	fields []string
	pos    int
	err    error
}

func (s *scanner) next(field string) (string, bool) {
	if s.err != nil {
		return "", false
	}
	if s.pos >= len(s.fields) {
		s.err = &ParseError{Opcode: s.op, Field: field}
		return "", false
	}
	v := s.fields[s.pos]
	s.pos++
	return v, true
}

func (s *scanner) str(field string) string {
	v, _ := s.next(field)
	return v
}

func (s *scanner) float(field string) float32 {
	v, ok := s.next(field)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 32)
	if err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
		err = errNotFinite
	}
	if err != nil {
		s.err = &ParseError{Opcode: s.op, Field: field, Value: v, Err: err}
		return 0
	}
	return float32(f)
}

func (s *scanner) vec(x, y, z string) core.Vec3 {
	return core.V3(s.float(x), s.float(y), s.float(z))
}

func (s *scanner) int(field string) int {
	v, ok := s.next(field)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		s.err = &ParseError{Opcode: s.op, Field: field, Value: v, Err: err}
		return 0
	}
	return n
}
