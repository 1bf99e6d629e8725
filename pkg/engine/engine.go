package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formcheck/pkg/attribution"
	"github.com/goliatone/go-formcheck/pkg/layout"
	"github.com/goliatone/go-formcheck/pkg/layout/expr"
	"github.com/goliatone/go-formcheck/pkg/messages"
	"github.com/goliatone/go-formcheck/pkg/metrics"
	"github.com/goliatone/go-formcheck/pkg/rules"
	"github.com/goliatone/go-formcheck/pkg/schemavalidator"
	"github.com/goliatone/go-formcheck/pkg/validation"
)

// Operation labels used in logs and metrics.
const (
	OperationForm      = "form"
	OperationGroup     = "group"
	OperationComponent = "component"
	OperationServer    = "server"
)

// Engine runs the validation passes over form state. It holds no form state
// itself and is safe for concurrent use.
type Engine struct {
	cache      *schemavalidator.Cache
	texts      rules.Texts
	logger     *slog.Logger
	metrics    *metrics.Collector
	schemaOpts rules.SchemaOptions
	now        func() time.Time
	evaluator  *expr.Evaluator
}

// New constructs an Engine applying any provided options.
func New(options ...Option) *Engine {
	e := &Engine{
		logger: discardLogger(),
		now:    time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.cache == nil {
		e.cache = schemavalidator.NewCache(schemavalidator.WithLogger(e.logger))
	}
	if e.texts == nil {
		e.texts = messages.New()
	}
	if e.evaluator == nil {
		e.evaluator = expr.New()
	}
	return e
}

// Cache returns the validator cache the engine evaluates with.
func (e *Engine) Cache() *schemavalidator.Cache {
	return e.cache
}

// ValidateForm runs every pass over every page, or over the current page
// when state.CurrentPageOnly is set. The result is meant to replace the
// stored tree for the pages it lists.
func (e *Engine) ValidateForm(ctx context.Context, state State) (validation.Result, error) {
	if ctx == nil {
		return validation.Result{}, errors.New("engine: context is required")
	}
	logger := e.logger.With("run", uuid.NewString(), "operation", OperationForm)
	e.metrics.Run(OperationForm)

	var inputs []rules.Input
	for _, page := range e.pages(state) {
		inputs = append(inputs, e.input(state, page, nil))
	}
	result, err := e.run(ctx, logger, state, inputs)
	if err != nil {
		return validation.Result{}, err
	}
	logger.Info("form validated",
		"pages", len(inputs),
		"errors", result.Validations.Count(validation.SeverityError),
		"invalidDataTypes", result.InvalidDataTypes,
	)
	return result, nil
}

// ValidateGroup runs every pass restricted to the subtree of group instance
// groupID, or to a single row of it when onlyRow is set. Messages are keyed
// under the page rendering the group. The result is meant to be merged into
// the stored tree.
func (e *Engine) ValidateGroup(ctx context.Context, state State, groupID string, onlyRow *int) (validation.Result, error) {
	if ctx == nil {
		return validation.Result{}, errors.New("engine: context is required")
	}
	logger := e.logger.With("run", uuid.NewString(), "operation", OperationGroup, "group", groupID)
	e.metrics.Run(OperationGroup)

	page, forest, err := e.locate(state, groupID)
	if err != nil {
		return validation.Result{}, err
	}
	scope, err := rules.GroupScope(forest, groupID, onlyRow)
	if err != nil {
		return validation.Result{}, fmt.Errorf("engine: validate group: %w", err)
	}
	return e.partial(ctx, logger, state, page, forest, scope)
}

// ValidateComponent runs every pass for one rendered instance, typically on
// blur. Messages state.Previous holds for that instance which no longer
// apply are emitted as fixed so merging clears them.
func (e *Engine) ValidateComponent(ctx context.Context, state State, instanceID string) (validation.Result, error) {
	if ctx == nil {
		return validation.Result{}, errors.New("engine: context is required")
	}
	logger := e.logger.With("run", uuid.NewString(), "operation", OperationComponent, "component", instanceID)
	e.metrics.Run(OperationComponent)

	page, forest, err := e.locate(state, instanceID)
	if err != nil {
		return validation.Result{}, err
	}
	scope, err := rules.NodeScope(forest, instanceID)
	if err != nil {
		return validation.Result{}, fmt.Errorf("engine: validate component: %w", err)
	}
	return e.partial(ctx, logger, state, page, forest, scope)
}

// MapServerIssues attributes externally produced issues to the pages of the
// form. Unattributable issues are kept under `unmapped` on every page.
func (e *Engine) MapServerIssues(state State, issues []validation.RawIssue) validation.Validations {
	e.metrics.Run(OperationServer)
	forests := make(map[string]layout.Forest)
	for _, page := range state.Layouts.OrderedPages() {
		forests[page.ID] = e.resolve(state, page)
	}
	out := attribution.MapExternalIssues(issues, forests, e.texts)
	e.logger.Debug("server issues mapped",
		"operation", OperationServer,
		"issues", len(issues),
		"unmapped", countUnmapped(out),
	)
	return out
}

func (e *Engine) partial(ctx context.Context, logger *slog.Logger, state State, page *layout.Layout, forest layout.Forest, scope *rules.Scope) (validation.Result, error) {
	in := e.input(state, page, forest)
	in.Scope = scope
	result, err := e.run(ctx, logger, state, []rules.Input{in})
	if err != nil {
		return validation.Result{}, err
	}
	markFixed(result.Validations, state.Previous, page.ID, scope.InstanceIDs())
	logger.Debug("partial validation done",
		"page", page.ID,
		"instances", len(scope.InstanceIDs()),
		"errors", result.Validations.Count(validation.SeverityError),
	)
	return result, nil
}

// run executes the required, component and schema passes and merges their
// trees. The context is checked between passes.
func (e *Engine) run(ctx context.Context, logger *slog.Logger, state State, inputs []rules.Input) (validation.Result, error) {
	var partials []validation.Validations
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return validation.Result{}, err
		}
		partials = append(partials, e.timed("required", func() validation.Validations { return rules.Required(in) }))
		partials = append(partials, e.timed("components", func() validation.Validations { return rules.Components(in) }))
	}
	if err := ctx.Err(); err != nil {
		return validation.Result{}, err
	}

	result := validation.Result{}
	if state.TypeID != "" && len(inputs) > 0 {
		v, err := e.cache.Get(ctx, state.TypeID)
		if err != nil {
			var compileErr *schemavalidator.CompileError
			if errors.As(err, &compileErr) {
				e.metrics.CompileError()
			}
			logger.Error("schema validator unavailable", "type", state.TypeID, "err", err)
			return validation.Result{}, fmt.Errorf("engine: data model %q: %w", state.TypeID, err)
		}
		var schemaResult validation.Result
		partials = append(partials, e.timed("schema", func() validation.Validations {
			schemaResult = rules.Schema(v, e.schemaOpts, inputs...)
			return schemaResult.Validations
		}))
		result.InvalidDataTypes = schemaResult.InvalidDataTypes
	}

	result.Validations = validation.Merge(partials...)
	if result.InvalidDataTypes {
		e.metrics.InvalidDataTypes()
	}
	return result, nil
}

func (e *Engine) timed(pass string, fn func() validation.Validations) validation.Validations {
	start := time.Now()
	out := fn()
	e.metrics.Pass(pass, time.Since(start), severityCounts(out))
	return out
}

func (e *Engine) input(state State, page *layout.Layout, forest layout.Forest) rules.Input {
	if forest == nil {
		forest = e.resolve(state, page)
	}
	return rules.Input{
		LayoutID:    page.ID,
		Forest:      forest,
		Data:        state.Data,
		Attachments: state.Attachments,
		Texts:       e.texts,
		Now:         e.now,
	}
}

func (e *Engine) resolve(state State, page *layout.Layout) layout.Forest {
	return layout.Resolve(page, layout.ResolveOptions{
		Groups:    state.groupsFor(page),
		Data:      state.Data,
		Hidden:    state.Hidden,
		Evaluator: e.evaluator,
	})
}

func (e *Engine) pages(state State) []*layout.Layout {
	if state.CurrentPageOnly {
		if page, ok := state.Layouts.Page(state.CurrentPage); ok {
			return []*layout.Layout{page}
		}
		return nil
	}
	return state.Layouts.OrderedPages()
}

// locate finds the page rendering instanceID, trying the current page
// first.
func (e *Engine) locate(state State, instanceID string) (*layout.Layout, layout.Forest, error) {
	candidates := state.Layouts.OrderedPages()
	if current, ok := state.Layouts.Page(state.CurrentPage); ok {
		candidates = append([]*layout.Layout{current}, candidates...)
	}
	for _, page := range candidates {
		forest := e.resolve(state, page)
		if forest.Find(instanceID) != nil {
			return page, forest, nil
		}
	}
	return nil, nil, fmt.Errorf("engine: instance %q: %w", instanceID, layout.ErrUnknownComponent)
}

// markFixed adds, for every instance in scope, the messages previous holds
// that fresh no longer reports to fresh as fixed entries.
func markFixed(fresh, previous validation.Validations, layoutID string, instanceIDs []string) {
	prevPage := previous[layoutID]
	for _, id := range instanceIDs {
		for binding, stored := range prevPage[id] {
			current := fresh[layoutID][id][binding]
			for _, sev := range reportedSeverities {
				for _, message := range stored.List(sev) {
					if !reported(current, message) {
						fresh.Add(layoutID, id, binding, validation.SeverityFixed, message)
					}
				}
			}
		}
	}
}

var reportedSeverities = []validation.Severity{
	validation.SeverityError, validation.SeverityWarning,
	validation.SeverityInfo, validation.SeveritySuccess,
}

func reported(b validation.BindingValidation, message string) bool {
	for _, sev := range reportedSeverities {
		if contains(b.List(sev), message) {
			return true
		}
	}
	return false
}

func contains(list []string, message string) bool {
	for _, item := range list {
		if item == message {
			return true
		}
	}
	return false
}

func severityCounts(v validation.Validations) map[string]int {
	out := make(map[string]int, len(reportedSeverities))
	for _, sev := range reportedSeverities {
		out[sev.String()] = v.Count(sev)
	}
	return out
}

func countUnmapped(v validation.Validations) int {
	total := 0
	for _, page := range v {
		for _, bv := range page[validation.Unmapped] {
			total += len(bv.Errors) + len(bv.Warnings) + len(bv.Info) + len(bv.Success)
		}
	}
	return total
}
