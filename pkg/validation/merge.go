package validation

// MergeBinding folds binding message sets. Each severity list keeps the first
// occurrence of every message in argument order; any message listed as Fixed
// by any argument is removed from every severity. The Fixed lists themselves
// are consumed and never appear in the result.
//
// Because removal is driven by the union of Fixed lists, the resulting
// message sets do not depend on argument order.
func MergeBinding(items ...BindingValidation) BindingValidation {
	fixed := make(map[string]struct{})
	for _, item := range items {
		for _, message := range item.Fixed {
			fixed[message] = struct{}{}
		}
	}

	collect := func(pick func(BindingValidation) []string) []string {
		var out []string
		seen := make(map[string]struct{})
		for _, item := range items {
			for _, message := range pick(item) {
				if _, removed := fixed[message]; removed {
					continue
				}
				if _, dup := seen[message]; dup {
					continue
				}
				seen[message] = struct{}{}
				out = append(out, message)
			}
		}
		return out
	}

	return BindingValidation{
		Errors:   collect(func(b BindingValidation) []string { return b.Errors }),
		Warnings: collect(func(b BindingValidation) []string { return b.Warnings }),
		Info:     collect(func(b BindingValidation) []string { return b.Info }),
		Success:  collect(func(b BindingValidation) []string { return b.Success }),
	}
}

// MergeComponent folds component validations binding by binding. Bindings
// left without messages are dropped; nil is returned when nothing remains.
func MergeComponent(items ...ComponentValidations) ComponentValidations {
	grouped := make(map[string][]BindingValidation)
	var order []string
	for _, item := range items {
		for binding, messages := range item {
			if _, ok := grouped[binding]; !ok {
				order = append(order, binding)
			}
			grouped[binding] = append(grouped[binding], messages)
		}
	}

	out := make(ComponentValidations, len(order))
	for _, binding := range order {
		merged := MergeBinding(grouped[binding]...)
		if merged.IsEmpty() {
			continue
		}
		out[binding] = merged
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// MergeLayout folds page validations component by component.
func MergeLayout(items ...LayoutValidations) LayoutValidations {
	grouped := make(map[string][]ComponentValidations)
	var order []string
	for _, item := range items {
		for id, component := range item {
			if _, ok := grouped[id]; !ok {
				order = append(order, id)
			}
			grouped[id] = append(grouped[id], component)
		}
	}

	out := make(LayoutValidations, len(order))
	for _, id := range order {
		if merged := MergeComponent(grouped[id]...); merged != nil {
			out[id] = merged
		}
	}
	return out
}

// Merge folds any number of validation trees into a new one. Pages present in
// any input are present in the output, even when they end up empty.
func Merge(trees ...Validations) Validations {
	grouped := make(map[string][]LayoutValidations)
	var order []string
	for _, tree := range trees {
		for layoutID, page := range tree {
			if _, ok := grouped[layoutID]; !ok {
				order = append(order, layoutID)
			}
			grouped[layoutID] = append(grouped[layoutID], page)
		}
	}

	out := make(Validations, len(order))
	for _, layoutID := range order {
		out[layoutID] = MergeLayout(grouped[layoutID]...)
	}
	return out
}

// ReplaceLayouts returns existing with every page present in fresh replaced
// wholesale. Pages fresh does not mention are carried over unchanged.
func ReplaceLayouts(existing, fresh Validations) Validations {
	out := existing.Clone()
	if out == nil {
		out = make(Validations, len(fresh))
	}
	for layoutID, page := range fresh {
		out[layoutID] = MergeLayout(page)
	}
	return out
}

// WithoutComponents returns v with the listed instance ids removed from the
// page. Used before merging a pass that fully re-evaluated those instances.
func WithoutComponents(v Validations, layoutID string, instanceIDs ...string) Validations {
	out := v.Clone()
	page, ok := out[layoutID]
	if !ok {
		return out
	}
	for _, id := range instanceIDs {
		delete(page, id)
	}
	return out
}
