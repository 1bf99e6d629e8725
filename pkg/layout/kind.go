package layout

import (
	"fmt"
	"strings"
)

// Kind is the closed set of component types the engine knows about. Every
// validation pass switches over it exhaustively; adding a kind means deciding
// what each pass does with it.
type Kind int

const (
	KindUnknown Kind = iota
	KindInput
	KindTextArea
	KindCheckboxes
	KindRadioButtons
	KindDropdown
	KindDatePicker
	KindFileUpload
	KindFileUploadWithTag
	KindGroup
	KindLikert
	KindAddress
	KindParagraph
	KindHeader
	KindButton
	KindNavigationButtons
)

var kindNames = map[Kind]string{
	KindUnknown:           "Unknown",
	KindInput:             "Input",
	KindTextArea:          "TextArea",
	KindCheckboxes:        "Checkboxes",
	KindRadioButtons:      "RadioButtons",
	KindDropdown:          "Dropdown",
	KindDatePicker:        "DatePicker",
	KindFileUpload:        "FileUpload",
	KindFileUploadWithTag: "FileUploadWithTag",
	KindGroup:             "Group",
	KindLikert:            "Likert",
	KindAddress:           "AddressComponent",
	KindParagraph:         "Paragraph",
	KindHeader:            "Header",
	KindButton:            "Button",
	KindNavigationButtons: "NavigationButtons",
}

// String returns the layout document spelling of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a layout document type tag to a Kind, case-insensitively.
// Unrecognised tags become KindUnknown so foreign components are tolerated.
func ParseKind(raw string) Kind {
	trimmed := strings.TrimSpace(raw)
	for kind, name := range kindNames {
		if strings.EqualFold(name, trimmed) {
			return kind
		}
	}
	if strings.EqualFold(trimmed, "Address") {
		return KindAddress
	}
	return KindUnknown
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	*k = ParseKind(string(text))
	return nil
}
