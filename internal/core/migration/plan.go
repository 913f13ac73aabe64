package migration

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction is the direction a migration is applied in.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Migration is a numbered, named group of structural operations.
type Migration struct {
	Version int
	Name    string
	Ops     []Op
}

// Up returns the operations that move the schema forward.
func (m Migration) Up() []Op {
	return m.Ops
}

// Down returns the computed inverse: each op inverted, in reverse order.
func (m Migration) Down() []Op {
	down := make([]Op, 0, len(m.Ops))
	for i := len(m.Ops) - 1; i >= 0; i-- {
		down = append(down, m.Ops[i].Inverse())
	}
	return down
}

// OpsFor returns the operations for the given direction.
func (m Migration) OpsFor(dir Direction) []Op {
	if dir == DirectionDown {
		return m.Down()
	}
	return m.Up()
}

// Step is one migration applied in one direction.
type Step struct {
	Migration Migration
	Direction Direction
}

// ResultingVersion is the schema version after the step has been applied.
func (s Step) ResultingVersion() int {
	if s.Direction == DirectionDown {
		return s.Migration.Version - 1
	}
	return s.Migration.Version
}

// Validate checks that migrations are numbered 1..n without gaps and that
// each one has a name and at least one operation.
func Validate(migrations []Migration) error {
	for i, m := range migrations {
		if m.Version != i+1 {
			return fmt.Errorf("migration at position %d has version %d, expected %d", i, m.Version, i+1)
		}
		if m.Name == "" {
			return fmt.Errorf("migration %d has no name", m.Version)
		}
		if len(m.Ops) == 0 {
			return fmt.Errorf("migration %d (%s) has no operations", m.Version, m.Name)
		}
	}
	return nil
}

// Latest returns the highest version in the list, or 0 when empty.
func Latest(migrations []Migration) int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}

// Plan computes the ordered steps that move the schema from current to target.
// Moving up applies current+1..target; moving down reverts current..target+1.
func Plan(migrations []Migration, current, target int) ([]Step, error) {
	latest := Latest(migrations)
	if target < 0 || target > latest {
		return nil, fmt.Errorf("target version %d out of range [0, %d]", target, latest)
	}
	if current < 0 || current > latest {
		return nil, fmt.Errorf("current version %d is unknown (latest is %d)", current, latest)
	}

	var steps []Step
	switch {
	case target > current:
		for _, m := range migrations[current:target] {
			steps = append(steps, Step{Migration: m, Direction: DirectionUp})
		}
	case target < current:
		for i := current - 1; i >= target; i-- {
			steps = append(steps, Step{Migration: migrations[i], Direction: DirectionDown})
		}
	}
	return steps, nil
}

// VersionAfter derives the current version from the last ledger entry.
func VersionAfter(lastVersion int, lastDirection Direction) int {
	if lastDirection == DirectionDown {
		return lastVersion - 1
	}
	return lastVersion
}

// Render returns every Up statement of every migration as one SQL script.
// Bind arguments are inlined as literals.
func Render(migrations []Migration) string {
	var b strings.Builder
	for _, m := range migrations {
		fmt.Fprintf(&b, "-- %03d %s\n", m.Version, m.Name)
		for _, op := range m.Up() {
			for _, stmt := range op.Statements() {
				b.WriteString(inline(stmt))
				b.WriteString(";\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func inline(stmt Statement) string {
	if len(stmt.Args) == 0 {
		return stmt.SQL
	}
	var b strings.Builder
	arg := 0
	for _, r := range stmt.SQL {
		if r == '?' && arg < len(stmt.Args) {
			b.WriteString(literal(stmt.Args[arg]))
			arg++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func literal(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(t, "'", "''") + "'"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(t), "'", "''") + "'"
	}
}
