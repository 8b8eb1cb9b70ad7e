package trweb

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type HTTPError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"` // (e.g. "security_fail")
	Message string `json:"message"`

	Err error `json:"-"` // the underlying error, if any; never sent
}

var (
	NotFound         = &HTTPError{Status: 404, Code: "not_found", Message: "Not Found"}
	InternalError    = &HTTPError{Status: 500, Code: "internal_error", Message: "Internal Server Error"}
	MethodNotAllowed = &HTTPError{Status: 405, Code: "method_not_allowed", Message: "Method Not Allowed"}
	InvalidRequest   = &HTTPError{Status: 400, Code: "invalid_request", Message: "Invalid Request"}
	SecurityFail     = &HTTPError{Status: 403, Code: "security_fail", Message: "Security check failed."}
)

func Error(status int, code string, message string) error {
	return &HTTPError{Status: status, Code: code, Message: message}
}

// BillingError reports a failure from the billing provider. The provider's
// message is passed on verbatim.
func BillingError(message string, err error) error {
	return &HTTPError{Status: 502, Code: "billing_error", Message: message, Err: err}
}

// UserError reports a failure to create or update a local account.
func UserError(err error) error {
	return &HTTPError{Status: 500, Code: "user_error", Message: "The account could not be saved.", Err: err}
}

// WriteError encodes err to w, setting the approriate headers, if the underlying
// type of err is an HTTPError and returns true; otherwise it does nothing and
// returns false.
func WriteError(w http.ResponseWriter, err error) bool {
	var he *HTTPError
	if errors.As(err, &he) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(he.Status)
		e := json.NewEncoder(w)
		e.SetIndent("", "    ")
		_ = e.Encode(he)
		return true
	}
	return false
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("httpError{status:%d code:%q message:%q}",
		e.Status, e.Code, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// WithErr returns a copy of e that wraps err.
func (e *HTTPError) WithErr(err error) *HTTPError {
	c := *e
	c.Err = err
	return &c
}
