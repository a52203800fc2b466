package google

import (
	"fmt"
	"strconv"
	"strings"

	"salespulse/internal/core"
)

// parseTarget reads key/value rows: Month, Amount, DaysInMonth, WorkingDays.
func parseTarget(values [][]interface{}) (core.SalesTarget, error) {
	kv := map[string]string{}
	for _, raw := range values {
		row := toStrings(raw)
		key := strings.ToLower(strings.ReplaceAll(safeGet(row, 0), " ", ""))
		if key != "" {
			kv[key] = safeGet(row, 1)
		}
	}

	month, err := core.ParsePeriod(kv["month"])
	if err != nil {
		return core.SalesTarget{}, fmt.Errorf("target month %q: %w", kv["month"], err)
	}
	cents, err := core.ParseDecimalToCents(kv["amount"])
	if err != nil {
		return core.SalesTarget{}, fmt.Errorf("target amount %q: %w", kv["amount"], err)
	}
	t := core.SalesTarget{Month: month, Amount: core.Money{Cents: cents}, DaysInMonth: month.Days()}
	if v := kv["daysinmonth"]; v != "" {
		if t.DaysInMonth, err = strconv.Atoi(v); err != nil {
			return core.SalesTarget{}, fmt.Errorf("days in month %q: %w", v, err)
		}
	}
	if v := kv["workingdays"]; v != "" {
		if t.WorkingDays, err = strconv.Atoi(v); err != nil {
			return core.SalesTarget{}, fmt.Errorf("working days %q: %w", v, err)
		}
	}
	return t, nil
}

// parseProducts expects a header row with Name and Price, and optionally ID.
func parseProducts(values [][]interface{}) ([]core.Product, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := toStrings(values[0])
	colID := indexOf(headers, "ID")
	colName := indexOf(headers, "Name")
	colPrice := indexOf(headers, "Price")
	if colName == -1 || colPrice == -1 {
		return nil, fmt.Errorf("unexpected products header: need Name and Price; got headers=%v", headers)
	}

	var out []core.Product
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		name := safeGet(row, colName)
		if name == "" {
			continue
		}
		cents, err := core.ParseDecimalToCents(safeGet(row, colPrice))
		if err != nil {
			return nil, fmt.Errorf("product %q price: %w", name, err)
		}
		out = append(out, core.Product{ID: safeGet(row, colID), Name: name, DefaultPrice: core.Money{Cents: cents}})
	}
	return out, nil
}

// parseColumn returns the non-empty cells of the first column, skipping the header.
func parseColumn(values [][]interface{}) []string {
	var out []string
	for i := 1; i < len(values); i++ {
		if v := safeGet(toStrings(values[i]), 0); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
