// Package schema validates records against an optional CUE schema shipped
// with a cartridge template (schema.cue next to mapping.yaml).
//
// The schema is unified with the record and the result must be concrete and
// free of conflicts. Fields declared without "?" are therefore required.
//
//	paymentId: string & !=""
//	amount:    number & >0
//	currency:  =~"^[A-Z]{3}$"
//	payee?: bankCode?: =~"^[A-Z0-9]{8,11}$"
package schema

import (
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"cartridge-engine/internal/diagnostic"
	"cartridge-engine/internal/resource"
)

// Validator loads and caches schemas by path. A missing schema is cached as
// absent and checked under a read lock. CUE values are not safe for
// concurrent use, so validation against a present schema is serialized.
type Validator struct {
	res resource.Loader

	mu      sync.RWMutex
	ctx     *cue.Context
	schemas map[string]*cue.Value
}

// NewValidator creates a Validator reading schemas through res.
func NewValidator(res resource.Loader) *Validator {
	return &Validator{
		res:     res,
		ctx:     cuecontext.New(),
		schemas: make(map[string]*cue.Value),
	}
}

// Has reports whether a schema exists at path, compiling it on first use.
func (v *Validator) Has(path string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	s, err := v.load(path)

	return s != nil, err
}

// Validate checks body against the schema at path. Without a schema every
// body is valid. A violation is a FUNCTIONAL validation.schema error.
func (v *Validator) Validate(path string, body any) error {
	if v.absent(path) {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	s, err := v.load(path)
	if err != nil || s == nil {
		return err
	}

	data := v.ctx.Encode(body)
	if data.Err() != nil {
		return diagnostic.Technical(diagnostic.CodeGenericTechnical, diagnostic.StepValidation, "",
			"failed to encode record for schema validation").Wrap(data.Err())
	}

	err = s.Unify(data).Validate(cue.Concrete(true))
	if err != nil {
		return violation(err)
	}

	return nil
}

// Clear drops every cached schema.
func (v *Validator) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()

	clear(v.schemas)
}

func (v *Validator) absent(path string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s, ok := v.schemas[path]

	return ok && s == nil
}

func (v *Validator) load(path string) (*cue.Value, error) {
	if s, ok := v.schemas[path]; ok {
		return s, nil
	}

	if !v.res.Exists(path) {
		v.schemas[path] = nil
		return nil, nil
	}

	src, err := v.res.Read(path)
	if err != nil {
		return nil, diagnostic.Technical(diagnostic.CodeGenericTechnical, diagnostic.StepValidation, "",
			"failed to read schema: %s", path).Wrap(err)
	}

	compiled := v.ctx.CompileBytes(src, cue.Filename(path))
	if compiled.Err() != nil {
		return nil, diagnostic.Technical(diagnostic.CodeGenericTechnical, diagnostic.StepValidation, "",
			"failed to compile schema: %s", path).Wrap(compiled.Err())
	}

	v.schemas[path] = &compiled

	return &compiled, nil
}

func violation(err error) *diagnostic.Error {
	field := ""
	msg := err.Error()

	if errs := cueerrors.Errors(err); len(errs) > 0 {
		first := errs[0]
		msg = first.Error()

		if p := first.Path(); len(p) > 0 {
			field = "$." + strings.Join(p, ".")
		}
	}

	return diagnostic.Functional(diagnostic.CodeValidationSchema, diagnostic.StepValidation, field,
		"Validation failed: schema violation: %s", msg)
}
