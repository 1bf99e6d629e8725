package formcheck

import (
	"context"

	"github.com/goliatone/go-formcheck/pkg/engine"
	"github.com/goliatone/go-formcheck/pkg/rules"
	"github.com/goliatone/go-formcheck/pkg/schemavalidator"
	"github.com/goliatone/go-formcheck/pkg/validation"
)

// State aliases engine.State, the form snapshot a run validates.
type State = engine.State

// Result aliases validation.Result.
type Result = validation.Result

// Validations aliases validation.Validations.
type Validations = validation.Validations

// RawIssue aliases validation.RawIssue for callers mapping server results.
type RawIssue = validation.RawIssue

// Attachment aliases rules.Attachment.
type Attachment = rules.Attachment

// NewEngine exposes the engine constructor from the top-level module.
func NewEngine(options ...engine.Option) *engine.Engine {
	return engine.New(options...)
}

// NewCache exposes the validator cache constructor.
func NewCache(options ...schemavalidator.Option) *schemavalidator.Cache {
	return schemavalidator.NewCache(options...)
}

// ValidateForm runs a full validation of state with a one-off engine. Hosts
// validating repeatedly should keep an Engine and a shared Cache instead.
func ValidateForm(ctx context.Context, state State, options ...engine.Option) (Result, error) {
	return engine.New(options...).ValidateForm(ctx, state)
}

// CanFormBeSaved reports whether result allows persisting the form in mode.
func CanFormBeSaved(result Result, mode validation.SubmitMode) bool {
	return validation.CanFormBeSaved(&result, mode)
}
