// api/api.go
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dalemusser/emailcheck/httputil"
	"github.com/dalemusser/emailcheck/logging"
	"github.com/dalemusser/emailcheck/metrics"
	"github.com/dalemusser/emailcheck/middleware"
	"github.com/dalemusser/emailcheck/validate"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// ValidateRequest is the body of POST /validate. A missing or null email
// is validated as empty input.
type ValidateRequest struct {
	Email *string `json:"email"`
}

// BatchRequest is the body of POST /validate/batch.
type BatchRequest struct {
	Emails []*string `json:"emails"`
}

// ValidationResponse reports the verdict for one candidate.
type ValidationResponse struct {
	Email   string        `json:"email"`
	Valid   bool          `json:"valid"`
	Message string        `json:"message"`
	Rule    validate.Rule `json:"rule"`
}

// BatchResponse reports the verdicts for a batch, in request order.
type BatchResponse struct {
	Results []ValidationResponse `json:"results"`
	Valid   int                  `json:"valid"`
	Invalid int                  `json:"invalid"`
}

// Handler serves the validation endpoints.
type Handler struct {
	validator *validate.EmailValidator
	messages  *validate.MessageProvider
	locales   []string
	matcher   language.Matcher
	maxBatch  int
	logger    *zap.Logger
}

// New builds a Handler. messages selects which locales responses can be
// rendered in; its first locale is the default. maxBatch bounds the size of
// a batch request.
func New(v *validate.EmailValidator, messages *validate.MessageProvider, maxBatch int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if messages == nil {
		messages = validate.DefaultMessages()
	}

	locales := messages.Locales()
	if len(locales) == 0 {
		locales = []string{"en"}
	}
	tags := make([]language.Tag, len(locales))
	for i, l := range locales {
		tags[i] = language.Make(l)
	}

	return &Handler{
		validator: v,
		messages:  messages,
		locales:   locales,
		matcher:   language.NewMatcher(tags),
		maxBatch:  maxBatch,
		logger:    logger,
	}
}

// Mount attaches the validation routes to r:
//
//	GET  /validate?email=...
//	POST /validate
//	POST /validate/batch
func (h *Handler) Mount(r chi.Router) {
	r.Route("/validate", func(r chi.Router) {
		r.Get("/", h.validateQuery)
		r.With(middleware.RequireJSON()).Post("/", h.validateJSON)
		r.With(middleware.RequireJSON()).Post("/batch", h.validateBatch)
	})
}

func (h *Handler) validateQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var email *string
	if q.Has("email") {
		s := q.Get("email")
		email = &s
	}
	locale := h.locale(r)
	w.Header().Set("Content-Language", locale)
	httputil.WriteJSON(w, http.StatusOK, h.check(email, locale))
}

func (h *Handler) validateJSON(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := httputil.BindJSON(r, &req); err != nil {
		h.bindError(w, err)
		return
	}
	locale := h.locale(r)
	w.Header().Set("Content-Language", locale)
	httputil.WriteJSON(w, http.StatusOK, h.check(req.Email, locale))
}

func (h *Handler) validateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := httputil.BindJSON(r, &req); err != nil {
		h.bindError(w, err)
		return
	}
	if len(req.Emails) == 0 {
		httputil.JSONError(w, http.StatusBadRequest, "empty_batch", "emails must contain at least one address")
		return
	}
	if len(req.Emails) > h.maxBatch {
		httputil.JSONError(w, http.StatusRequestEntityTooLarge, "batch_too_large",
			"emails may contain at most "+strconv.Itoa(h.maxBatch)+" addresses")
		return
	}
	metrics.ObserveBatch(len(req.Emails))

	locale := h.locale(r)
	resp := BatchResponse{Results: make([]ValidationResponse, 0, len(req.Emails))}
	for _, e := range req.Emails {
		res := h.check(e, locale)
		if res.Valid {
			resp.Valid++
		} else {
			resp.Invalid++
		}
		resp.Results = append(resp.Results, res)
	}

	h.logger.Info("batch validated",
		zap.Int("count", len(req.Emails)),
		zap.Int("valid", resp.Valid),
		zap.Int("invalid", resp.Invalid))

	w.Header().Set("Content-Language", locale)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// check validates one candidate, records it, and renders the message in locale.
func (h *Handler) check(email *string, locale string) ValidationResponse {
	res := h.validator.CheckValue(email)

	var raw string
	if email != nil {
		raw = *email
	}
	metrics.ObserveValidation(res.Valid, string(res.Rule))
	h.logger.Debug("email validated", logging.ValidationFields(raw, res.Valid, string(res.Rule))...)

	res = h.messages.Localize(res, locale)
	return ValidationResponse{
		Email:   raw,
		Valid:   res.Valid,
		Message: res.Message,
		Rule:    res.Rule,
	}
}

// locale picks the response locale from ?lang= or Accept-Language,
// falling back to the default locale.
func (h *Handler) locale(r *http.Request) string {
	var want []language.Tag
	if lang := r.URL.Query().Get("lang"); lang != "" {
		if t, err := language.Parse(lang); err == nil {
			want = append(want, t)
		}
	}
	if al := r.Header.Get("Accept-Language"); al != "" {
		if tags, _, err := language.ParseAcceptLanguage(al); err == nil {
			want = append(want, tags...)
		}
	}
	if len(want) == 0 {
		return h.locales[0]
	}

	_, idx, conf := h.matcher.Match(want...)
	if conf == language.No {
		return h.locales[0]
	}
	return h.locales[idx]
}

func (h *Handler) bindError(w http.ResponseWriter, err error) {
	if errors.Is(err, httputil.ErrBodyTooLarge) {
		httputil.JSONError(w, http.StatusRequestEntityTooLarge, "body_too_large", err.Error())
		return
	}
	httputil.JSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
}
