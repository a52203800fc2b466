package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"salespulse/internal/core"
)

// templateFuncs are available to every template in web/templates.
var templateFuncs = template.FuncMap{
	"brl":         core.FormatBRL,
	"brlWhole":    core.FormatBRLWhole,
	"pct":         core.FormatPercent,
	"progress":    progressWidth,
	"date":        formatDate,
	"decimal":     formatDecimal,
	"statusLabel": statusLabel,
}

func statusLabel(s core.SaleStatus) string {
	switch s {
	case core.StatusPending:
		return "Pendente"
	case core.StatusCanceled:
		return "Cancelada"
	default:
		return "Fechada"
	}
}

// formatDate renders a date as DD/MM/YYYY.
func formatDate(d core.Date) string {
	return d.Format("02/01/2006")
}

// formatDecimal renders money as a plain decimal for form inputs ("5000.00").
func formatDecimal(m core.Money) string {
	if m.Cents == 0 {
		return ""
	}
	return fmt.Sprintf("%d.%02d", m.Cents/100, m.Cents%100)
}

// progressWidth clamps a percentage to a CSS width between 0 and 100.
func progressWidth(p float64) int {
	switch {
	case p <= 0:
		return 0
	case p >= 100:
		return 100
	default:
		return int(p + 0.5)
	}
}

// parseOptionalMoney returns zero for an empty string.
func parseOptionalMoney(s string) (core.Money, error) {
	if strings.TrimSpace(s) == "" {
		return core.Money{}, nil
	}
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// requestID reuses an inbound X-Request-ID or generates one.
func requestID(r *http.Request) string {
	if id := sanitizeInput(r.Header.Get("X-Request-ID")); id != "" && len(id) <= 64 {
		return id
	}
	return generateRequestID()
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return "req_" + strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return "req_" + hex.EncodeToString(bytes)
}
