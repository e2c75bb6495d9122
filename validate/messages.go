package validate

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Rule identifies the check that decided a Result.
type Rule string

// Rules in evaluation order, followed by the success and catch-all values.
const (
	RuleEmpty           Rule = "empty"
	RuleTooShort        Rule = "too_short"
	RuleAtCount         Rule = "at_count"
	RuleLocalTooLong    Rule = "local_too_long"
	RuleDomainTooLong   Rule = "domain_too_long"
	RuleLocalEmpty      Rule = "local_empty"
	RuleDomainEmpty     Rule = "domain_empty"
	RuleConsecutiveDots Rule = "consecutive_dots"
	RuleDomainNoDot     Rule = "domain_no_dot"
	RuleTLDTooShort     Rule = "tld_too_short"
	RulePattern         Rule = "pattern"

	RuleOK       Rule = "ok"
	RuleInternal Rule = "internal"
)

// Rules lists the checks in the order they run.
var Rules = []Rule{
	RuleEmpty,
	RuleTooShort,
	RuleAtCount,
	RuleLocalTooLong,
	RuleDomainTooLong,
	RuleLocalEmpty,
	RuleDomainEmpty,
	RuleConsecutiveDots,
	RuleDomainNoDot,
	RuleTLDTooShort,
	RulePattern,
}

// MessageValid is the only message paired with a true verdict.
const MessageValid = "Email is valid"

// englishMessages are the canonical diagnostics. {param} is replaced with
// the limit the rule enforces.
var englishMessages = map[Rule]string{
	RuleEmpty:           "Email cannot be empty",
	RuleTooShort:        "Email is too short",
	RuleAtCount:         "Email must contain exactly one '@' symbol",
	RuleLocalTooLong:    "Local part cannot exceed {param} characters",
	RuleDomainTooLong:   "Domain cannot exceed {param} characters",
	RuleLocalEmpty:      "Local part cannot be empty",
	RuleDomainEmpty:     "Domain cannot be empty",
	RuleConsecutiveDots: "Email cannot contain consecutive dots",
	RuleDomainNoDot:     "Domain must contain at least one dot",
	RuleTLDTooShort:     "Top-level domain must be at least 2 characters",
	RulePattern:         "Email contains invalid characters or format",
	RuleOK:              MessageValid,
}

var spanishMessages = map[Rule]string{
	RuleEmpty:           "El correo no puede estar vacío",
	RuleTooShort:        "El correo es demasiado corto",
	RuleAtCount:         "El correo debe contener exactamente un símbolo '@'",
	RuleLocalTooLong:    "La parte local no puede superar {param} caracteres",
	RuleDomainTooLong:   "El dominio no puede superar {param} caracteres",
	RuleLocalEmpty:      "La parte local no puede estar vacía",
	RuleDomainEmpty:     "El dominio no puede estar vacío",
	RuleConsecutiveDots: "El correo no puede contener puntos consecutivos",
	RuleDomainNoDot:     "El dominio debe contener al menos un punto",
	RuleTLDTooShort:     "El dominio de nivel superior debe tener al menos 2 caracteres",
	RulePattern:         "El correo contiene caracteres o un formato no válidos",
	RuleOK:              "El correo es válido",
}

var frenchMessages = map[Rule]string{
	RuleEmpty:           "L'adresse e-mail ne peut pas être vide",
	RuleTooShort:        "L'adresse e-mail est trop courte",
	RuleAtCount:         "L'adresse e-mail doit contenir exactement un symbole '@'",
	RuleLocalTooLong:    "La partie locale ne peut pas dépasser {param} caractères",
	RuleDomainTooLong:   "Le domaine ne peut pas dépasser {param} caractères",
	RuleLocalEmpty:      "La partie locale ne peut pas être vide",
	RuleDomainEmpty:     "Le domaine ne peut pas être vide",
	RuleConsecutiveDots: "L'adresse e-mail ne peut pas contenir de points consécutifs",
	RuleDomainNoDot:     "Le domaine doit contenir au moins un point",
	RuleTLDTooShort:     "Le domaine de premier niveau doit comporter au moins 2 caractères",
	RulePattern:         "L'adresse e-mail contient des caractères ou un format invalides",
	RuleOK:              "L'adresse e-mail est valide",
}

var germanMessages = map[Rule]string{
	RuleEmpty:           "E-Mail darf nicht leer sein",
	RuleTooShort:        "E-Mail ist zu kurz",
	RuleAtCount:         "E-Mail muss genau ein '@'-Zeichen enthalten",
	RuleLocalTooLong:    "Lokaler Teil darf höchstens {param} Zeichen lang sein",
	RuleDomainTooLong:   "Domain darf höchstens {param} Zeichen lang sein",
	RuleLocalEmpty:      "Lokaler Teil darf nicht leer sein",
	RuleDomainEmpty:     "Domain darf nicht leer sein",
	RuleConsecutiveDots: "E-Mail darf keine aufeinanderfolgenden Punkte enthalten",
	RuleDomainNoDot:     "Domain muss mindestens einen Punkt enthalten",
	RuleTLDTooShort:     "Top-Level-Domain muss mindestens 2 Zeichen lang sein",
	RulePattern:         "E-Mail enthält ungültige Zeichen oder ein ungültiges Format",
	RuleOK:              "E-Mail ist gültig",
}

var portugueseMessages = map[Rule]string{
	RuleEmpty:           "O email não pode estar vazio",
	RuleTooShort:        "O email é muito curto",
	RuleAtCount:         "O email deve conter exatamente um símbolo '@'",
	RuleLocalTooLong:    "A parte local não pode exceder {param} caracteres",
	RuleDomainTooLong:   "O domínio não pode exceder {param} caracteres",
	RuleLocalEmpty:      "A parte local não pode estar vazia",
	RuleDomainEmpty:     "O domínio não pode estar vazio",
	RuleConsecutiveDots: "O email não pode conter pontos consecutivos",
	RuleDomainNoDot:     "O domínio deve conter pelo menos um ponto",
	RuleTLDTooShort:     "O domínio de topo deve ter pelo menos 2 caracteres",
	RulePattern:         "O email contém caracteres ou formato inválidos",
	RuleOK:              "O email é válido",
}

// ruleParam returns the limit substituted into a rule's message.
func ruleParam(rule Rule, l Limits) string {
	switch rule {
	case RuleLocalTooLong:
		return strconv.Itoa(l.MaxLocalLength)
	case RuleDomainTooLong:
		return strconv.Itoa(l.MaxDomainLength)
	case RuleTooShort:
		return strconv.Itoa(l.MinLength)
	}
	return ""
}

func englishMessage(rule Rule, l Limits) string {
	return format(englishMessages[rule], ruleParam(rule, l))
}

func format(msg, param string) string {
	return strings.ReplaceAll(msg, "{param}", param)
}

// MessageProvider renders validation results in other locales.
// English is always the fallback.
type MessageProvider struct {
	mu       sync.RWMutex
	messages map[string]map[Rule]string // locale -> rule -> message
	fallback string
	limits   Limits
}

// NewMessageProvider creates an empty provider with an "en" fallback.
func NewMessageProvider() *MessageProvider {
	return &MessageProvider{
		messages: make(map[string]map[Rule]string),
		fallback: "en",
		limits:   DefaultLimits(),
	}
}

// DefaultMessages returns a provider holding only the English messages.
func DefaultMessages() *MessageProvider {
	m := NewMessageProvider()
	m.RegisterLocale("en", englishMessages)
	return m
}

// RegisterLocale registers messages for a locale.
func (m *MessageProvider) RegisterLocale(locale string, messages map[Rule]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[locale] = messages
}

// RegisterBuiltinLocales registers all built-in locales.
func (m *MessageProvider) RegisterBuiltinLocales() {
	m.RegisterLocale("en", englishMessages)
	m.RegisterLocale("es", spanishMessages)
	m.RegisterLocale("fr", frenchMessages)
	m.RegisterLocale("de", germanMessages)
	m.RegisterLocale("pt", portugueseMessages)
}

// Locales returns the registered locale tags, fallback first and the rest
// sorted.
func (m *MessageProvider) Locales() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rest []string
	for l := range m.messages {
		if l != m.fallback {
			rest = append(rest, l)
		}
	}
	sort.Strings(rest)

	if _, ok := m.messages[m.fallback]; ok {
		return append([]string{m.fallback}, rest...)
	}
	return rest
}

// HasLocale reports whether locale has registered messages.
func (m *MessageProvider) HasLocale(locale string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.messages[locale]
	return ok
}

// Get returns the message for rule in locale, falling back to the
// fallback locale and then to the canonical English text.
func (m *MessageProvider) Get(locale string, rule Rule) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	param := ruleParam(rule, m.limits)
	if msgs, ok := m.messages[locale]; ok {
		if msg, ok := msgs[rule]; ok {
			return format(msg, param)
		}
	}
	if msgs, ok := m.messages[m.fallback]; ok {
		if msg, ok := msgs[rule]; ok {
			return format(msg, param)
		}
	}
	return englishMessage(rule, m.limits)
}

// Localize returns res with its message rendered in locale. The verdict and
// rule are unchanged. RuleInternal results keep their fault message
// since it carries the fault description.
func (m *MessageProvider) Localize(res Result, locale string) Result {
	if res.Rule == RuleInternal || res.Rule == "" {
		return res
	}
	res.Message = m.Get(locale, res.Rule)
	return res
}
