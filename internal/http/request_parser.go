// Package http serves the SalesPulse dashboard.
//
// This file parses and validates request data shared by the handlers.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"salespulse/internal/core"
	"salespulse/internal/services"
)

// maxBodyBytes bounds form and JSON bodies.
const maxBodyBytes = 64 << 10

// RequestBodyParser reads a request body once and exposes its fields whether
// it was sent as JSON or form-encoded (the HTMX default).
type RequestBodyParser struct {
	body        []byte
	contentType string
	query       url.Values
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
		query:       r.URL.Query(),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized value from the body, falling back to the query
// string (hx-delete sends its parameters there).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
	}
	if p.formData != nil {
		if v := p.formData.Get(key); v != "" {
			return sanitizeInput(v)
		}
	}
	return sanitizeInput(p.query.Get(key))
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseBodyOrFail parses the request body and returns an error response on failure.
func ParseBodyOrFail(r *http.Request) (*RequestBodyParser, *HTMXResponseBuilder) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, RequestEntityTooLargeError("Requisição muito grande")
		}
		return nil, BadRequestError("Formato de requisição inválido")
	}
	return p, nil
}

// SaleFormError names the form field that failed to parse.
type SaleFormError struct {
	Field string
	Err   error
}

func (e *SaleFormError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *SaleFormError) Unwrap() error {
	return e.Err
}

// ParseSaleForm maps the "Registrar Venda" form to a NewSale. Empty date,
// amount and status are left zero for the service to default.
func ParseSaleForm(p *RequestBodyParser) (services.NewSale, error) {
	in := services.NewSale{
		Customer:       p.Get("customer"),
		Representative: p.Get("representative"),
		Product:        p.Get("product"),
	}

	if v := p.Get("date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return services.NewSale{}, &SaleFormError{Field: "date", Err: err}
		}
		in.Date = d
	}

	amount, err := parseOptionalMoney(p.Get("amount"))
	if err != nil {
		return services.NewSale{}, &SaleFormError{Field: "amount", Err: err}
	}
	in.Amount = amount

	if v := p.Get("status"); v != "" {
		status, err := core.ParseSaleStatus(v)
		if err != nil {
			return services.NewSale{}, &SaleFormError{Field: "status", Err: err}
		}
		in.Status = status
	}
	return in, nil
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireGET is a convenience function for read-only handlers.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}

// RequireDeleteOrPOST is a convenience function for DELETE/POST handlers.
func RequireDeleteOrPOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodDelete, http.MethodPost)
}
