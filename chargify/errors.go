package chargify

import (
	"errors"
	"net/http"
)

// IsNotFound reports whether err is a 404 from Chargify.
func IsNotFound(err error) bool {
	return isStatus(err, http.StatusNotFound)
}

func isStatus(err error, code int) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Status == code
	}
	return false
}
