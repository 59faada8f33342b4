package dispatcher

import (
	"fmt"
	"net/http"

	"golang.org/x/net/http/httpguts"
)

var standardMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodConnect: {},
	http.MethodOptions: {},
	http.MethodTrace:   {},
}

// ParseMethod resolves s to an HTTP method. The standard verbs match
// case-sensitively; any other string must be a valid RFC 7230 token and is
// then used as an extension method exactly as spelled.
func ParseMethod(s string) (string, error) {
	if IsStandardMethod(s) {
		return s, nil
	}
	if !httpguts.ValidHeaderFieldName(s) {
		return "", fmt.Errorf("%q is not a valid HTTP method", s)
	}
	return s, nil
}

// IsStandardMethod reports whether s is one of the verbs defined by RFC 9110
// or RFC 5789.
func IsStandardMethod(s string) bool {
	_, ok := standardMethods[s]
	return ok
}
