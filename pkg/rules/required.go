package rules

import (
	"github.com/goliatone/go-formcheck/pkg/datapath"
	"github.com/goliatone/go-formcheck/pkg/layout"
	"github.com/goliatone/go-formcheck/pkg/validation"
)

const (
	keyRequired     = "form_filler.error_required"
	keyNoFieldName  = "form_filler.no_field_name"
	bindingRequired = "requiredValidation"
)

var addressFieldKeys = map[string]string{
	"address":     "address_component.address",
	"zipCode":     "address_component.zip_code",
	"postPlace":   "address_component.post_place",
	"careOf":      "address_component.care_of",
	"houseNumber": "address_component.house_number",
}

// Required emits one error per empty binding of every visible component
// flagged required. Attachment components are skipped; their count checks
// live in Components.
func Required(in Input) validation.Validations {
	out := validation.Validations{}
	out.EnsureLayout(in.LayoutID)
	texts := in.texts()

	in.visit(func(node *layout.Node) {
		if !node.Component.Required {
			return
		}
		for _, key := range requiredBindings(node) {
			value, _ := datapath.Lookup(in.Data, node.Bindings[key])
			if !datapath.IsEmpty(value) {
				continue
			}
			out.Add(in.LayoutID, node.ID, key, validation.SeverityError, requiredMessage(texts, node, key))
		}
	})
	return out
}

// requiredBindings lists the binding keys the required pass checks for a
// node.
func requiredBindings(node *layout.Node) []string {
	switch node.Kind() {
	case layout.KindInput, layout.KindTextArea, layout.KindCheckboxes,
		layout.KindRadioButtons, layout.KindDropdown, layout.KindDatePicker,
		layout.KindLikert:
		return sortedKeys(node.Bindings)
	case layout.KindAddress:
		var keys []string
		for _, key := range sortedKeys(node.Bindings) {
			if key == "careOf" || key == "houseNumber" {
				continue
			}
			keys = append(keys, key)
		}
		return keys
	case layout.KindFileUpload, layout.KindFileUploadWithTag:
		return nil
	case layout.KindGroup, layout.KindParagraph, layout.KindHeader,
		layout.KindButton, layout.KindNavigationButtons, layout.KindUnknown:
		return nil
	default:
		return nil
	}
}

func requiredMessage(texts Texts, node *layout.Node, bindingKey string) string {
	if custom := node.Component.TextResourceBindings[bindingRequired]; custom != "" {
		return texts.Resolve(custom, nil)
	}
	return texts.Text(keyRequired, map[string]any{"field": fieldName(texts, node, bindingKey)})
}

func fieldName(texts Texts, node *layout.Node, bindingKey string) string {
	if node.Kind() == layout.KindAddress {
		if key, ok := addressFieldKeys[bindingKey]; ok {
			return texts.Text(key, nil)
		}
	}
	if title := node.Component.Title(); title != "" {
		return texts.Resolve(title, nil)
	}
	return texts.Text(keyNoFieldName, nil)
}
