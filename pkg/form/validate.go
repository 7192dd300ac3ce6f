package form

import (
	"context"
	"fmt"

	"github.com/goliatone/go-schemaform/pkg/events"
	"github.com/goliatone/go-schemaform/pkg/schema"
	"github.com/goliatone/go-schemaform/pkg/validation"
)

// Validate checks the data GetData exports against the loaded schema,
// re-evaluates rules and emits form:validate with the Result. Hidden and
// disabled fields are validated like any other. When a background compilation is pending,
// Validate waits for it.
func (f *Form[V]) Validate() validation.Result {
	if f.root == nil {
		res := validation.Result{Errors: []validation.Error{{Message: "No schema loaded"}}}
		f.bus.Emit(events.FormValidate, res)
		return res
	}
	if err := f.Await(context.Background()); err != nil {
		f.logger.Debug("form: validating without a validator", "error", err)
	}

	f.mu.Lock()
	validator := f.validator
	f.mu.Unlock()

	res := validation.Result{Valid: true}
	if validator != nil {
		res = validation.Map(validator.Validate(f.GetData()), f.catalog, f.locale)
	}
	f.last = res
	f.applyRules()
	f.bus.Emit(events.FormValidate, res)
	return res
}

// Errors returns the result of the last validation.
func (f *Form[V]) Errors() validation.Result { return f.last }

// Submit validates and, when the data is valid, emits form:submit and
// returns a copy of the data. Invalid data yields *ValidationFailure.
func (f *Form[V]) Submit() (any, error) {
	res := f.Validate()
	if !res.Valid {
		return nil, &ValidationFailure{Result: res}
	}
	data := f.GetData()
	f.bus.Emit(events.FormSubmit, events.FormChangeDetail{Data: data})
	return data, nil
}

// Await blocks until the validator of the current schema is ready and
// returns its compilation error, if any.
func (f *Form[V]) Await(ctx context.Context) error {
	f.mu.Lock()
	pending := f.pending
	f.mu.Unlock()

	if pending != nil {
		select {
		case <-pending:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.compileErr
}

// startCompile begins a new schema generation. Synchronous compilation
// errors are returned before any state changes.
func (f *Form[V]) startCompile(root *schema.Node) (uint64, error) {
	if !f.cfg.async {
		validator, err := f.cfg.compiler.Compile(context.Background(), root)
		if err != nil {
			return 0, fmt.Errorf("form: compile schema: %w", err)
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.supersede()
		f.generation++
		f.validator, f.compileErr, f.pending = validator, nil, nil
		return f.generation, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	f.mu.Lock()
	f.supersede()
	f.generation++
	gen := f.generation
	f.validator, f.compileErr, f.pending, f.cancel = nil, nil, done, cancel
	f.mu.Unlock()

	go f.compileAsync(ctx, cancel, gen, root, done)
	return gen, nil
}

func (f *Form[V]) compileAsync(ctx context.Context, cancel context.CancelFunc, gen uint64, root *schema.Node, done chan struct{}) {
	defer close(done)
	defer cancel()

	validator, err := f.cfg.compiler.Compile(ctx, root)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		f.logger.Warn("form: discarded validator of a superseded schema",
			"generation", gen,
			"current", f.generation,
		)
		return
	}
	f.cancel = nil
	if err != nil {
		f.compileErr = fmt.Errorf("form: compile schema: %w", err)
		f.logger.Warn("form: validator compilation failed", "generation", gen, "error", err)
		return
	}
	f.validator = validator
}

// supersede cancels the compilation of the previous generation. Callers
// hold f.mu.
func (f *Form[V]) supersede() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}
