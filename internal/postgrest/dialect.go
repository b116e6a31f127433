package postgrest

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// RESTPrefix is the path under which tables are exposed.
const RESTPrefix = "/rest/v1/"

// Header names used by the dialect.
const (
	HeaderAPIKey = "apikey"
	HeaderPrefer = "Prefer"

	PreferRepresentation = "return=representation"
)

// Query parameters.
const (
	ParamOrder  = "order"
	ParamSelect = "select"
	OrderByPos  = "position.asc"
)

// ErrorBody is the JSON error document returned for non-2xx responses.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

type errorCode struct {
	err    error
	status int
	code   string
}

// Codes follow PostgREST and Postgres where one exists.
var errorCodes = []errorCode{
	{types.ErrNotFound, http.StatusNotFound, "PGRST116"},
	{types.ErrMalformed, http.StatusBadRequest, "PGRST102"},
	{types.ErrCategoryInUse, http.StatusConflict, "23503"},
	{types.ErrInvalidID, http.StatusBadRequest, "22P02"},
	{types.ErrEmptyText, http.StatusBadRequest, "SBG01"},
	{types.ErrEmptyName, http.StatusBadRequest, "SBG02"},
	{types.ErrEmptyNote, http.StatusBadRequest, "SBG03"},
	{types.ErrInvalidColor, http.StatusBadRequest, "SBG04"},
}

// UndefinedTable is returned for requests naming an unknown table.
const UndefinedTable = "42P01"

// StatusFor maps err to an HTTP status and error body.
func StatusFor(err error) (int, ErrorBody) {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.status, ErrorBody{Code: c.code, Message: err.Error()}
		}
	}
	return http.StatusInternalServerError, ErrorBody{Code: "XX000", Message: err.Error()}
}

// ErrorFor turns a non-2xx response back into an error wrapping the
// matching sentinel from pkg/types.
func ErrorFor(status int, body ErrorBody) error {
	for _, c := range errorCodes {
		if body.Code == c.code {
			return fmt.Errorf("%w: %s", c.err, body.Message)
		}
	}
	switch {
	case body.Code == UndefinedTable, status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", types.ErrNotFound, describe(status, body))
	case status >= 500:
		return fmt.Errorf("%w: %s", types.ErrRemoteUnavailable, describe(status, body))
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", types.ErrRemoteUnavailable, describe(status, body))
	default:
		return fmt.Errorf("%w: %s", types.ErrMalformed, describe(status, body))
	}
}

func describe(status int, body ErrorBody) string {
	if body.Message == "" {
		return http.StatusText(status)
	}
	return fmt.Sprintf("%d %s", status, body.Message)
}

// Eq renders an equality filter value, e.g. "eq.42".
func Eq(v string) string {
	return "eq." + v
}

// ParseEq extracts the operand of an "eq." filter.
func ParseEq(v string) (string, bool) {
	operand, ok := strings.CutPrefix(v, "eq.")
	if !ok || operand == "" {
		return "", false
	}
	return operand, true
}

// IDFilter returns the query selecting a single row by id.
func IDFilter(id string) url.Values {
	return url.Values{"id": {Eq(id)}}
}
