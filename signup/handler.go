package signup

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkevan/wp-chargify/chargify"
	"github.com/pkevan/wp-chargify/customers"
	"github.com/pkevan/wp-chargify/form"
	"github.com/pkevan/wp-chargify/trweb"
	"github.com/pkevan/wp-chargify/values"
)

// SessionCookie names the cookie that ties a visitor's form to their
// submission.
const SessionCookie = "wpchargify_session"

// ObjectID is sent with every form as object_id.
const ObjectID = "signup"

// A TokenIssuer creates anti-forgery tokens.
type TokenIssuer interface {
	Create(action, session string) (string, error)
}

// A Subscriber creates subscriptions.
type Subscriber interface {
	CreateSubscription(ctx context.Context, req any) (chargify.Subscription, error)
}

// Handler serves the signup form and takes its submissions.
type Handler struct {
	Builder    *Builder
	Resolver   *form.Resolver // nil means submitted values only
	Tokens     TokenIssuer
	Billing    Subscriber
	Reconciler *customers.Reconciler
	Metrics    *Metrics // optional

	// SecureCookies marks the session cookie Secure.
	SecureCookies bool

	Logf func(format string, args ...any)
}

func (h *Handler) logf(format string, args ...any) {
	if h.Logf != nil {
		h.Logf(format, args...)
	}
}

// Register adds the signup routes to r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/signup", h.serveForm).Methods("GET")
	r.HandleFunc("/signup", h.serveSubmit).Methods("POST")
}

func (h *Handler) serveForm(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	rc, err := form.FromRequest(r, session)
	if err != nil {
		trweb.WriteError(w, trweb.InvalidRequest.WithErr(err))
		return
	}
	field := h.Builder.nonceField()
	tok, err := h.Tokens.Create(field, session)
	if err != nil {
		h.logf("signup: creating token: %v", err)
		trweb.WriteError(w, trweb.InternalError.WithErr(err))
		return
	}

	page := formPage{
		NonceField: field,
		Nonce:      tok,
		ObjectID:   ObjectID,
	}
	for _, f := range h.Builder.fields() {
		pf := pageField{Key: f.Key, Label: f.Label, Input: inputType(f.Type)}
		switch f.Type {
		case form.Password:
			// never echoed
		case form.Checkbox:
			if values.Checked(h.fieldDefault(r.Context(), rc, f.Key)) {
				pf.Value = "on"
			}
		default:
			pf.Value = h.fieldDefault(r.Context(), rc, f.Key)
		}
		page.Fields = append(page.Fields, pf)
	}
	render(w, http.StatusOK, formTmpl, page)
}

func (h *Handler) fieldDefault(ctx context.Context, rc form.RequestContext, key string) string {
	if h.Resolver == nil {
		return form.FieldDefault(rc, key)
	}
	return h.Resolver.Default(ctx, rc, key)
}

func (h *Handler) serveSubmit(w http.ResponseWriter, r *http.Request) {
	var session string
	if c, err := r.Cookie(SessionCookie); err == nil {
		session = c.Value
	}
	rc, err := form.FromRequest(r, session)
	if err != nil {
		trweb.WriteError(w, trweb.InvalidRequest.WithErr(err))
		return
	}

	sub, ok, err := h.Builder.Build(rc)
	var se *SecurityError
	var ve *ValidationError
	switch {
	case errors.As(err, &se):
		h.logf("signup: %v", err)
		h.Metrics.outcome(outcomeSecurity)
		trweb.WriteError(w, trweb.SecurityFail.WithErr(err))
		return
	case errors.As(err, &ve):
		h.logf("signup: %v", err)
		h.Metrics.outcome(outcomeInvalid)
		trweb.WriteError(w, trweb.InvalidRequest.WithErr(err))
		return
	case err != nil:
		h.Metrics.outcome(outcomeInvalid)
		trweb.WriteError(w, trweb.InternalError.WithErr(err))
		return
	case !ok:
		h.Metrics.outcome(outcomeNoop)
		http.Redirect(w, r, r.URL.String(), http.StatusSeeOther)
		return
	}

	start := time.Now()
	s, err := h.Billing.CreateSubscription(r.Context(), sub.Request)
	h.Metrics.billing(start)
	if err != nil {
		h.logf("signup: creating subscription: %v", err)
		h.Metrics.outcome(outcomeBilling)
		var ce *chargify.Error
		if errors.As(err, &ce) {
			trweb.WriteError(w, trweb.BillingError(ce.Detail(), ce))
			return
		}
		trweb.WriteError(w, trweb.InternalError.WithErr(err))
		return
	}

	rec := customers.FromChargify(s.Customer)
	id, err := h.Reconciler.ReconcileWithCredentials(r.Context(), rec, sub.Credentials.Username, sub.Credentials.Password)
	if err != nil {
		h.logf("signup: subscription %d created but syncing %s failed: %v", s.ID, rec.Email, err)
		h.Metrics.outcome(outcomeUser)
		h.Metrics.reconcileFailed()
		trweb.WriteError(w, trweb.UserError(err))
		return
	}
	h.logf("signup: subscription %d (%s) for user %d", s.ID, s.State, id)
	h.Metrics.outcome(outcomeSubscribed)
	render(w, http.StatusOK, doneTmpl, donePage{
		SubscriptionID: s.ID,
		State:          s.State,
		Email:          rec.Email,
	})
}

// session returns the visitor's session, starting one if needed.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func render(w http.ResponseWriter, code int, t *template.Template, data any) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		trweb.WriteError(w, trweb.InternalError.WithErr(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}
