package normalize

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// text returns the first non-empty value among keys as an NFC-normalized, trimmed string.
func text(props map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := stringify(props[key]); s != "" {
			return s
		}
	}
	return ""
}

// number returns the first key whose value is a finite number.
// Keys holding an empty value are skipped; a present but invalid value yields nil.
func number(props map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		v, ok := props[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return toFloat(v)
	}
	return nil
}

func integer(props map[string]any, keys ...string) *int {
	f := number(props, keys...)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(norm.NFC.String(t))
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}

func toFloat(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func atoi(s string) *int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &i
}
