package errx

import "net/http"

// WrapSearch wraps a book-search API failure. A zero status means the request
// never produced an HTTP response (network error, timeout).
func WrapSearch(err error, status int) error {
	if err == nil {
		return nil
	}
	if status == 0 {
		status = http.StatusBadGateway
	}
	return New(err, status, SearchErrorMessage)
}
