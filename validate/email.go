// validate/email.go
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fixed limits applied by every EmailValidator.
const (
	MinLength       = 3   // minimum length of the trimmed candidate
	MaxLocalLength  = 64  // RFC 5321 local part limit
	MaxDomainLength = 255 // domain part limit
)

// emailPattern is the final shape check. RE2 runs in linear time and
// cannot fail at match time, so the catch-all in Check is a safety net only.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Limits groups the length limits an EmailValidator enforces.
type Limits struct {
	MinLength       int `json:"min_length"`
	MaxLocalLength  int `json:"max_local_length"`
	MaxDomainLength int `json:"max_domain_length"`
}

// DefaultLimits returns the fixed limits (3, 64, 255).
func DefaultLimits() Limits {
	return Limits{
		MinLength:       MinLength,
		MaxLocalLength:  MaxLocalLength,
		MaxDomainLength: MaxDomainLength,
	}
}

// Result is the outcome of validating one candidate.
// Valid is true if and only if Rule is RuleOK.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	Rule    Rule   `json:"rule"`
}

// EmailValidator checks whether a string is a syntactically plausible email
// address. It is a deliberately simplified, ASCII-oriented subset of the
// email grammar: no quoted local parts, no comments, no IDN.
//
// An EmailValidator is immutable after construction and safe for concurrent
// use by multiple goroutines.
type EmailValidator struct {
	limits  Limits
	pattern *regexp.Regexp
}

// NewEmailValidator returns a validator using DefaultLimits.
func NewEmailValidator() *EmailValidator {
	return &EmailValidator{
		limits:  DefaultLimits(),
		pattern: emailPattern,
	}
}

// Limits returns the limits the validator enforces.
func (v *EmailValidator) Limits() Limits {
	return v.limits
}

// ValidateEmail reports whether candidate is a plausible email address along
// with a human-readable message naming the first rule it violates, or
// "Email is valid".
func (v *EmailValidator) ValidateEmail(candidate string) (bool, string) {
	res := v.Check(candidate)
	return res.Valid, res.Message
}

// CheckValue validates an arbitrary value. nil, a nil *string and any
// non-string value are treated as empty input.
func (v *EmailValidator) CheckValue(x any) Result {
	switch t := x.(type) {
	case string:
		return v.Check(t)
	case *string:
		if t == nil {
			return v.Check("")
		}
		return v.Check(*t)
	default:
		return v.Check("")
	}
}

// Check runs the ordered rule chain against candidate and returns the result
// of the first failing rule. The order is part of the contract: an input
// that violates several rules always reports the earliest one.
func (v *EmailValidator) Check(candidate string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Valid:   false,
				Message: fmt.Sprintf("Validation error: %v", r),
				Rule:    RuleInternal,
			}
		}
	}()
	return v.check(candidate)
}

func (v *EmailValidator) check(candidate string) Result {
	if candidate == "" {
		return v.fail(RuleEmpty)
	}

	email := trimSpace(candidate)

	if utf8.RuneCountInString(email) < v.limits.MinLength {
		return v.fail(RuleTooShort)
	}

	if strings.Count(email, "@") != 1 {
		return v.fail(RuleAtCount)
	}
	local, domain, _ := strings.Cut(email, "@")

	if utf8.RuneCountInString(local) > v.limits.MaxLocalLength {
		return v.fail(RuleLocalTooLong)
	}
	if utf8.RuneCountInString(domain) > v.limits.MaxDomainLength {
		return v.fail(RuleDomainTooLong)
	}

	if local == "" {
		return v.fail(RuleLocalEmpty)
	}
	if domain == "" {
		return v.fail(RuleDomainEmpty)
	}

	// Scans the whole address, not just one side of the '@'.
	if strings.Contains(email, "..") {
		return v.fail(RuleConsecutiveDots)
	}

	if !strings.Contains(domain, ".") {
		return v.fail(RuleDomainNoDot)
	}

	tld := domain[strings.LastIndexByte(domain, '.')+1:]
	if utf8.RuneCountInString(tld) < 2 {
		return v.fail(RuleTLDTooShort)
	}

	if !v.pattern.MatchString(email) {
		return v.fail(RulePattern)
	}

	return Result{Valid: true, Message: englishMessage(RuleOK, v.limits), Rule: RuleOK}
}

func (v *EmailValidator) fail(rule Rule) Result {
	return Result{Valid: false, Message: englishMessage(rule, v.limits), Rule: rule}
}

var defaultValidator = NewEmailValidator()

// ValidateEmail validates candidate with a validator using DefaultLimits.
func ValidateEmail(candidate string) (bool, string) {
	return defaultValidator.ValidateEmail(candidate)
}

// Check is like ValidateEmail but returns the full Result.
func Check(candidate string) Result {
	return defaultValidator.Check(candidate)
}

// trimSpace strips Unicode white space plus the ASCII separators
// U+001C..U+001F, which unicode.IsSpace does not count.
func trimSpace(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
	})
}
