// Package schema compiles CUE record schemas into record.Schema values.
//
// The built-in schemas (consumption_unit, tribute, tribute_input) are
// embedded; additional schemas can be loaded from .cue files. Every file is
// unified with a prelude that constrains its shape, so typos in kinds or
// field names are reported with their CUE position.
package schema

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/outbe/tribute-attest/internal/record"
)

// Built-in schema names.
const (
	ConsumptionUnit = "consumption_unit"
	Tribute         = "tribute"
	TributeInput    = "tribute_input"
)

//go:embed prelude.cue
var preludeSrc string

//go:embed schemas.cue
var builtinSrc []byte

// Registry holds compiled schemas by name.
// Registry is NOT safe for concurrent mutation; build it once, then share.
type Registry struct {
	schemas map[string]*record.Schema
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*record.Schema)}
}

var (
	builtinOnce sync.Once
	builtinReg  *Registry
	builtinErr  error
)

// Builtin returns a fresh registry holding the embedded schemas.
// Compilation happens once; callers may extend the returned copy.
func Builtin() (*Registry, error) {
	builtinOnce.Do(func() {
		builtinReg = NewRegistry()
		builtinErr = builtinReg.Extend("schemas.cue", builtinSrc)
	})
	if builtinErr != nil {
		return nil, builtinErr
	}
	return builtinReg.clone(), nil
}

// MustBuiltin is Builtin that panics on error. The embedded schemas are
// covered by tests, so a panic here means the binary was built broken.
func MustBuiltin() *Registry {
	r, err := Builtin()
	if err != nil {
		panic(fmt.Sprintf("schema: builtin schemas: %v", err))
	}
	return r
}

// Lookup returns the schema with the given name.
func (r *Registry) Lookup(name string) (*record.Schema, error) {
	s, ok := r.schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q (known: %v)", name, r.Names())
	}
	return s, nil
}

// MustLookup is Lookup that panics on error. For built-in names only.
func (r *Registry) MustLookup(name string) *record.Schema {
	s, err := r.Lookup(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Names returns the schema names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadFile compiles a .cue file into the registry.
func (r *Registry) LoadFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema file: %w", err)
	}
	return r.Extend(path, src)
}

// Extend compiles CUE source and adds its schemas to the registry.
// Struct references may point at schemas already in the registry. Nothing is
// added if any schema fails to compile or a name is already taken.
func (r *Registry) Extend(filename string, src []byte) error {
	ctx := cuecontext.New()

	prelude := ctx.CompileString(preludeSrc, cue.Filename("prelude.cue"))
	if err := prelude.Err(); err != nil {
		return formatCUEError(err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return formatCUEError(err)
	}
	v = prelude.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}

	defs, err := parseSchemas(v)
	if err != nil {
		return err
	}
	for _, d := range defs {
		if _, exists := r.schemas[d.name]; exists {
			return &CompileError{Field: "schema." + d.name, Message: "schema already defined", Pos: d.pos}
		}
	}

	compiled, err := resolve(defs, r.schemas)
	if err != nil {
		return err
	}
	for name, s := range compiled {
		r.schemas[name] = s
	}
	return nil
}

func (r *Registry) clone() *Registry {
	c := NewRegistry()
	for name, s := range r.schemas {
		c.schemas[name] = s
	}
	return c
}
