package sheetmanager

import (
	"math"
	"strconv"
	"strings"

	"github.com/anand-gl/jsoncanonicalizer"
	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"

	"github.com/gridbase/sheetsrv/internal/common/apperrors"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Token sets for bool fields. Tokens arrive from spreadsheet-style
// imports, so the Portuguese yes/no variants are accepted alongside the
// literals.
var (
	boolTrueTokens  = map[string]bool{"true": true, "1": true, "sim": true}
	boolFalseTokens = map[string]bool{"false": true, "0": true, "nao": true, "não": true}
)

// NormalizeCellValue is the single source of truth for the kind to slot
// mapping. It converts a raw JSON-decoded value into the one slot
// selected by the field's declared type; every other slot stays nil.
// A nil value or empty string clears the cell.
func NormalizeCellValue(fieldType models.FieldType, raw any) (models.CellValue, apperrors.Error) {
	value := models.CellValue{}

	if raw == nil {
		return value, nil
	}
	if s, ok := raw.(string); ok && s == "" {
		return value, nil
	}

	switch fieldType {
	case models.FieldTypeNumber:
		n, err := normalizeNumber(raw)
		if err != nil {
			return value, err
		}
		value.Number = &n

	case models.FieldTypeBool:
		b, err := normalizeBool(raw)
		if err != nil {
			return value, err
		}
		value.Bool = &b

	case models.FieldTypeDate:
		// Dates pass through opaque; the store's date column enforces
		// the format.
		s, ok := raw.(string)
		if !ok {
			return value, ErrValidationFailed.Msg("date value must be a string")
		}
		value.Date = &s

	case models.FieldTypeJSON:
		s, err := normalizeJSON(raw)
		if err != nil {
			return value, err
		}
		value.JSON = &s

	default:
		// text, select, multi_select, link
		s := coerceToString(raw)
		value.Text = &s
	}

	return value, nil
}

func normalizeNumber(raw any) (float64, apperrors.Error) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, ErrValidationFailed.Msg("value is not a number")
		}
		n = parsed
	default:
		return 0, ErrValidationFailed.Msg("value is not a number")
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, ErrValidationFailed.Msg("number is not finite")
	}
	return n, nil
}

func normalizeBool(raw any) (bool, apperrors.Error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case float64:
		if v == 1 {
			return true, nil
		}
		if v == 0 {
			return false, nil
		}
	case string:
		token := strings.ToLower(strings.TrimSpace(v))
		if boolTrueTokens[token] {
			return true, nil
		}
		if boolFalseTokens[token] {
			return false, nil
		}
	}
	return false, ErrValidationFailed.Msg("value is not a boolean")
}

// normalizeJSON renders the value in canonical form so equal documents
// store as equal strings. Raw strings must already be valid JSON;
// structured input is serialized first.
func normalizeJSON(raw any) (string, apperrors.Error) {
	var doc []byte
	if s, ok := raw.(string); ok {
		if !gjson.Valid(s) {
			return "", ErrValidationFailed.Msg("value is not valid JSON")
		}
		doc = []byte(s)
	} else {
		serialized, err := json.Marshal(raw)
		if err != nil {
			return "", ErrValidationFailed.Msg("value cannot be serialized to JSON")
		}
		doc = serialized
	}
	canonical, err := jsoncanonicalizer.Transform(doc)
	if err != nil {
		return "", ErrValidationFailed.Msg("value cannot be canonicalized")
	}
	return string(canonical), nil
}

func coerceToString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		serialized, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(serialized)
	}
}
