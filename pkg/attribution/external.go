package attribution

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formcheck/pkg/layout"
	"github.com/goliatone/go-formcheck/pkg/messages"
	"github.com/goliatone/go-formcheck/pkg/validation"
)

// Soft-validation prefixes re-route an error-severity description to a
// softer list.
const (
	PrefixWarning = "*WARNING*"
	PrefixInfo    = "*INFO*"
	PrefixSuccess = "*SUCCESS*"
)

// TextResolver resolves a description that may be a text resource key.
type TextResolver interface {
	Resolve(keyOrText string, params map[string]any) string
}

// MapExternalIssues attributes externally supplied issues (server-side
// validation results) to the rendered pages. Descriptions are resolved
// through texts, then sanitised. Issues that match no node on any page are
// kept under the `unmapped` instance of every page, keyed by the raw field.
func MapExternalIssues(issues []validation.RawIssue, pages map[string]layout.Forest, texts TextResolver) validation.Validations {
	out := make(validation.Validations)
	pageIDs := make([]string, 0, len(pages))
	for id := range pages {
		pageIDs = append(pageIDs, id)
		out.EnsureLayout(id)
	}
	sort.Strings(pageIDs)

	for _, issue := range issues {
		severity, text := Classify(issue.Severity, issue.Description)
		if texts != nil {
			text = texts.Resolve(text, nil)
		}
		text = messages.Sanitize(text)
		if text == "" {
			continue
		}

		matched := false
		for _, pageID := range pageIDs {
			target, ok := AttributeExternalIssue(issue, pages[pageID])
			if !ok {
				continue
			}
			matched = true
			out.Add(pageID, target.InstanceID, target.BindingKey, severity, text)
		}
		if matched {
			continue
		}
		field := issue.Field
		if field == "" {
			field = issue.Path
		}
		for _, pageID := range pageIDs {
			out.Add(pageID, validation.Unmapped, field, severity, text)
		}
	}
	return out
}

// Classify strips soft-validation prefixes from description and returns the
// severity the message is filed under. Prefixes only soften error-severity
// (or unspecified) issues; on other severities they are just removed.
func Classify(severity validation.Severity, description string) (validation.Severity, string) {
	text := strings.TrimSpace(description)
	target := validation.SeverityUnspecified
	for prefix, sev := range map[string]validation.Severity{
		PrefixWarning: validation.SeverityWarning,
		PrefixInfo:    validation.SeverityInfo,
		PrefixSuccess: validation.SeveritySuccess,
	} {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimSpace(strings.TrimPrefix(text, prefix))
			target = sev
			break
		}
	}
	if severity == validation.SeverityUnspecified {
		severity = validation.SeverityError
	}
	if severity == validation.SeverityError && target != validation.SeverityUnspecified {
		severity = target
	}
	return severity, text
}
