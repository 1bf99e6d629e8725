package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-formcheck/pkg/datapath"
	"github.com/goliatone/go-formcheck/pkg/layout"
	"github.com/goliatone/go-formcheck/pkg/validation"
)

// AttachmentSeparator joins an attachment id and the message about it, so
// the renderer can place per-file messages next to the right upload.
const AttachmentSeparator = "\x1f"

const (
	keyFileNumber   = "form_filler.file_uploader_validation_error_file_number"
	keyTooManyFiles = "form_filler.file_uploader_validation_error_too_many_files"
	keyNoChosenTag  = "form_filler.file_uploader_validation_error_no_chosen_tag"
	keyInvalidDate  = "date_picker.invalid_date_message"
	keyMinDate      = "date_picker.min_date_exeeded"
	keyMaxDate      = "date_picker.max_date_exeeded"
)

// Date defaults used when a constraint is absent or unreadable.
const (
	DefaultDateFormat = "DD.MM.YYYY"
	DefaultMinDate    = "1900-01-01"
	DefaultMaxDate    = "2100-01-01"
	constraintToday   = "today"
)

// Components runs the checks specific to a component kind: attachment
// counts, attachment tags and date values.
func Components(in Input) validation.Validations {
	out := validation.Validations{}
	out.EnsureLayout(in.LayoutID)
	texts := in.texts()

	in.visit(func(node *layout.Node) {
		add := func(message string) {
			out.Add(in.LayoutID, node.ID, validation.SimpleBinding, validation.SeverityError, message)
		}
		switch node.Kind() {
		case layout.KindFileUpload:
			for _, message := range attachmentCount(texts, node, in.attachments(node)) {
				add(message)
			}
		case layout.KindFileUploadWithTag:
			attachments := in.attachments(node)
			for _, message := range attachmentCount(texts, node, attachments) {
				add(message)
			}
			for _, message := range attachmentTags(texts, node, attachments) {
				add(message)
			}
		case layout.KindDatePicker:
			value, _ := datapath.Lookup(in.Data, node.Bindings[layout.BindingSimple])
			for _, message := range dateMessages(texts, node.Component, value, in.now()) {
				add(message)
			}
		case layout.KindInput, layout.KindTextArea, layout.KindCheckboxes,
			layout.KindRadioButtons, layout.KindDropdown, layout.KindLikert,
			layout.KindAddress, layout.KindGroup, layout.KindParagraph,
			layout.KindHeader, layout.KindButton, layout.KindNavigationButtons,
			layout.KindUnknown:
		}
	})
	return out
}

func attachmentCount(texts Texts, node *layout.Node, attachments []Attachment) []string {
	comp := node.Component
	var out []string
	if len(attachments) < comp.MinNumberOfAttachments {
		out = append(out, texts.Text(keyFileNumber, map[string]any{"min": comp.MinNumberOfAttachments}))
	}
	if comp.MaxNumberOfAttachments > 0 && len(attachments) > comp.MaxNumberOfAttachments {
		out = append(out, texts.Text(keyTooManyFiles, map[string]any{"max": comp.MaxNumberOfAttachments}))
	}
	return out
}

func attachmentTags(texts Texts, node *layout.Node, attachments []Attachment) []string {
	var out []string
	for _, attachment := range attachments {
		if hasTag(attachment.Tags) {
			continue
		}
		tag := texts.Resolve(node.Component.TextResourceBindings["tagTitle"], nil)
		out = append(out, attachment.ID+AttachmentSeparator+texts.Text(keyNoChosenTag, map[string]any{"tag": tag}))
	}
	return out
}

func hasTag(tags []string) bool {
	for _, tag := range tags {
		if strings.TrimSpace(tag) != "" {
			return true
		}
	}
	return false
}

func dateMessages(texts Texts, comp *layout.Component, value any, now time.Time) []string {
	raw := strings.TrimSpace(fmt.Sprint(value))
	if value == nil || raw == "" {
		return nil
	}
	format := comp.Format
	if format == "" {
		format = DefaultDateFormat
	}
	date, ok := ParseDate(raw, format)
	if !ok {
		return []string{texts.Text(keyInvalidDate, map[string]any{"format": format})}
	}

	var out []string
	minDate := DateConstraint(comp.MinDate, DefaultMinDate, now)
	maxDate := DateConstraint(comp.MaxDate, DefaultMaxDate, now)
	if date.Before(minDate) {
		out = append(out, texts.Text(keyMinDate, map[string]any{"limit": FormatDate(minDate, format)}))
	}
	if date.After(maxDate) {
		out = append(out, texts.Text(keyMaxDate, map[string]any{"limit": FormatDate(maxDate, format)}))
	}
	return out
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04:05.000"}

// ParseDate reads a stored date value: ISO-8601 dates and timestamps, or the
// component's display format. The result is truncated to the day.
func ParseDate(raw, format string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	layouts := dateLayouts
	if format != "" {
		layouts = append(append([]string(nil), dateLayouts...), goLayout(format))
	}
	for _, candidate := range layouts {
		if parsed, err := time.Parse(candidate, raw); err == nil {
			return day(parsed), true
		}
	}
	return time.Time{}, false
}

// DateConstraint resolves a minDate/maxDate expression: `today`, an ISO
// date, or fallback when the expression is empty or unreadable.
func DateConstraint(expr, fallback string, now time.Time) time.Time {
	expr = strings.TrimSpace(expr)
	if strings.EqualFold(expr, constraintToday) {
		return day(now)
	}
	if parsed, ok := ParseDate(expr, ""); ok {
		return parsed
	}
	parsed, _ := ParseDate(fallback, "")
	return parsed
}

// FormatDate renders t in a display format such as `DD.MM.YYYY`.
func FormatDate(t time.Time, format string) string {
	if format == "" {
		format = DefaultDateFormat
	}
	return t.Format(goLayout(format))
}

var displayTokens = strings.NewReplacer("YYYY", "2006", "YY", "06", "MM", "01", "DD", "02")

func goLayout(format string) string {
	return displayTokens.Replace(strings.ToUpper(format))
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
