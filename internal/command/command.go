// Package command implements the line-oriented scene command language.
//
// A command line is ASCII text whose first three characters select the opcode;
// the remaining fields are whitespace separated, in fixed positional order,
// and scanned starting at offset 3:
//
//	CRO name px py pz sx sy sz qx qy qz model mat1 mat2 vis
//	CRT name pointname sx sy sz qx qy qz model mat1 mat2 vis
//	CRP name px py pz
//	MOV name pointname
//	X
//
// X only ends a console client's input loop and does nothing on the host.
package command

import (
	"strconv"
	"strings"

	"github.com/vovakirdan/solar-scene/internal/core"
	"github.com/vovakirdan/solar-scene/internal/world"
)

// Opcode identifies a command.
type Opcode string

const (
	OpCreateObject        Opcode = "CRO"
	OpCreateObjectAtPoint Opcode = "CRT"
	OpCreatePoint         Opcode = "CRP"
	OpMoveObject          Opcode = "MOV"
	OpQuit                Opcode = "X"
)

// Command is a parsed scene command.
type Command interface {
	// Opcode returns the command's opcode.
	Opcode() Opcode

	// Apply performs the command against w.
	Apply(w *world.World) error

	// String renders the command back into its canonical line form.
	String() string
}

// CreateObject creates a named object at an explicit transform.
type CreateObject struct {
	Spec world.ObjectSpec
}

func (CreateObject) Opcode() Opcode { return OpCreateObject }

func (c CreateObject) Apply(w *world.World) error {
	_, err := w.CreateObject(c.Spec)
	return err
}

func (c CreateObject) String() string {
	s := c.Spec
	return join(OpCreateObject, s.Name,
		vec(s.Position), vec(s.Scale), vec(s.Rotation),
		s.Model, s.Material1, s.Material2, strconv.Itoa(s.Visible))
}

// CreateObjectAtPoint creates a named object at a previously created point.
type CreateObjectAtPoint struct {
	Spec  world.ObjectSpec
	Point string
}

func (CreateObjectAtPoint) Opcode() Opcode { return OpCreateObjectAtPoint }

func (c CreateObjectAtPoint) Apply(w *world.World) error {
	_, err := w.CreateObjectAtPoint(c.Spec, c.Point)
	return err
}

func (c CreateObjectAtPoint) String() string {
	s := c.Spec
	return join(OpCreateObjectAtPoint, s.Name, c.Point,
		vec(s.Scale), vec(s.Rotation),
		s.Model, s.Material1, s.Material2, strconv.Itoa(s.Visible))
}

// CreatePoint registers a named point.
type CreatePoint struct {
	Name     string
	Position core.Vec3
}

func (CreatePoint) Opcode() Opcode { return OpCreatePoint }

func (c CreatePoint) Apply(w *world.World) error {
	return w.CreatePoint(c.Name, c.Position)
}

func (c CreatePoint) String() string {
	return join(OpCreatePoint, c.Name, vec(c.Position))
}

// MoveObject moves a named object to a named point.
type MoveObject struct {
	Object string
	Point  string
}

func (MoveObject) Opcode() Opcode { return OpMoveObject }

func (c MoveObject) Apply(w *world.World) error {
	return w.MoveObjectToPoint(c.Object, c.Point)
}

func (c MoveObject) String() string {
	return join(OpMoveObject, c.Object, c.Point)
}

// Quit ends a console client's input loop.
type Quit struct{}

func (Quit) Opcode() Opcode { return OpQuit }

func (Quit) Apply(*world.World) error { return nil }

func (Quit) String() string { return string(OpQuit) }

// Execute parses line and applies it to w. The parsed command is returned even
// when Apply fails.
func Execute(w *world.World, line string) (Command, error) {
	cmd, err := Parse(line)
	if err != nil {
		return nil, err
	}
	return cmd, cmd.Apply(w)
}

func join(op Opcode, parts ...string) string {
	return string(op) + " " + strings.Join(parts, " ")
}

func vec(v core.Vec3) string {
	return num(v[0]) + " " + num(v[1]) + " " + num(v[2])
}

func num(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
