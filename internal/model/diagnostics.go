package model

import (
	"fmt"
	"strings"
)

// Diagnostic codes reported by the builder and the validator.
const (
	CodeUnknownType       = "unknown_type"
	CodeUnresolvedExtends = "unresolved_extends"
	CodeInvalidExpression = "invalid_expression"
	CodeUnknownHook       = "unknown_hook"
	CodeCoerced           = "coerced"
	CodeDefaultApplied    = "default_applied"
	CodeI18nKeyMinted     = "i18n_key_minted"
	CodeEnableWhenError   = "enable_when_error"
	CodeHookError         = "hook_error"
	CodeDisabled          = "disabled"
)

// Diagnostic records a non-fatal anomaly: something the engine recovered from
// by falling back to a default.
type Diagnostic struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	path := d.Path
	if path == "" {
		path = "(root)"
	}
	return fmt.Sprintf("%s: %s: %s", path, d.Code, d.Message)
}

// Diagnostics is an ordered list of anomalies. It satisfies error so callers
// can surface it directly, but a non-empty list never means an operation
// failed.
type Diagnostics []Diagnostic

func (d Diagnostics) Error() string {
	if len(d) == 0 {
		return ""
	}
	const limit = 3
	var parts []string
	for i, diag := range d {
		if i == limit {
			parts = append(parts, fmt.Sprintf("and %d more", len(d)-limit))
			break
		}
		parts = append(parts, diag.String())
	}
	return strings.Join(parts, "; ")
}

// HasCode reports whether any diagnostic carries code.
func (d Diagnostics) HasCode(code string) bool {
	for _, diag := range d {
		if diag.Code == code {
			return true
		}
	}
	return false
}

// Codes lists the codes in order of appearance.
func (d Diagnostics) Codes() []string {
	out := make([]string, 0, len(d))
	for _, diag := range d {
		out = append(out, diag.Code)
	}
	return out
}

// AtPath filters diagnostics recorded for path.
func (d Diagnostics) AtPath(path string) Diagnostics {
	var out Diagnostics
	for _, diag := range d {
		if diag.Path == path {
			out = append(out, diag)
		}
	}
	return out
}
