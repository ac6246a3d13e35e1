// Package httperr defines the fixed set of HTTP failure categories raised
// by request handling code. Each category carries a stable status code and
// status message; the transport layer serializes them without rewriting.
package httperr

import (
	"fmt"
	"net/http"
)

// Kind identifies one failure category.
type Kind int

const (
	KindNotFound Kind = iota
	KindForbidden
	KindUnauthorized
	KindBadRequest
	KindUnsupportedMethod
	KindInternalServer
	KindMissingIDParam
)

var kindNames = [...]string{
	KindNotFound:          "not_found",
	KindForbidden:         "forbidden",
	KindUnauthorized:      "unauthorized",
	KindBadRequest:        "bad_request",
	KindUnsupportedMethod: "unsupported_method",
	KindInternalServer:    "internal_server",
	KindMissingIDParam:    "missing_id_param",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("httperr.Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Error is a category instance. Values are compared by Kind; the code and
// message pair is fixed per category and never constructed ad hoc.
type Error struct {
	Kind          Kind   `json:"-"`
	StatusCode    int    `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
}

func (e Error) Error() string {
	return fmt.Sprintf("%d %s", e.StatusCode, e.StatusMessage)
}

var table = [...]Error{
	KindNotFound:          {Kind: KindNotFound, StatusCode: http.StatusNotFound, StatusMessage: "Not found"},
	KindForbidden:         {Kind: KindForbidden, StatusCode: http.StatusForbidden, StatusMessage: "Forbidden"},
	KindUnauthorized:      {Kind: KindUnauthorized, StatusCode: http.StatusUnauthorized, StatusMessage: "Unauthorized"},
	KindBadRequest:        {Kind: KindBadRequest, StatusCode: http.StatusBadRequest, StatusMessage: "Bad request"},
	KindUnsupportedMethod: {Kind: KindUnsupportedMethod, StatusCode: http.StatusMethodNotAllowed, StatusMessage: "Unsupported method"},
	KindInternalServer:    {Kind: KindInternalServer, StatusCode: http.StatusInternalServerError, StatusMessage: "Internal server error"},
	KindMissingIDParam:    {Kind: KindMissingIDParam, StatusCode: http.StatusBadRequest, StatusMessage: "No param id"},
}

// Lookup returns the error value registered for kind. Kinds outside the
// table collapse to the internal server category so a bogus kind can never
// leak a zero status code.
func Lookup(k Kind) Error {
	if k < 0 || int(k) >= len(table) {
		return table[KindInternalServer]
	}
	return table[k]
}

// Kinds lists every registered category in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(table))
	for i := range table {
		out[i] = Kind(i)
	}
	return out
}

// NotFound and friends are shorthands for Lookup on the matching kind.
func NotFound() Error          { return table[KindNotFound] }
func Forbidden() Error         { return table[KindForbidden] }
func Unauthorized() Error      { return table[KindUnauthorized] }
func BadRequest() Error        { return table[KindBadRequest] }
func UnsupportedMethod() Error { return table[KindUnsupportedMethod] }
func InternalServer() Error    { return table[KindInternalServer] }
func MissingIDParam() Error    { return table[KindMissingIDParam] }
