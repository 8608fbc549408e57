package sheetmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
)

func TestNormalizeClearingWrites(t *testing.T) {
	for _, fieldType := range []models.FieldType{
		models.FieldTypeText, models.FieldTypeNumber, models.FieldTypeBool,
		models.FieldTypeDate, models.FieldTypeJSON, models.FieldTypeSelect,
	} {
		value, err := NormalizeCellValue(fieldType, nil)
		assert.NoError(t, err)
		assert.True(t, value.IsEmpty())

		value, err = NormalizeCellValue(fieldType, "")
		assert.NoError(t, err)
		assert.True(t, value.IsEmpty())
	}
}

func TestNormalizeNumber(t *testing.T) {
	value, err := NormalizeCellValue(models.FieldTypeNumber, float64(42))
	require.NoError(t, err)
	require.NotNil(t, value.Number)
	assert.Equal(t, float64(42), *value.Number)
	assert.Nil(t, value.Text)

	value, err = NormalizeCellValue(models.FieldTypeNumber, " 3.14 ")
	require.NoError(t, err)
	assert.Equal(t, 3.14, *value.Number)

	_, err = NormalizeCellValue(models.FieldTypeNumber, "not a number")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = NormalizeCellValue(models.FieldTypeNumber, []any{1})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestNormalizeBoolTokens(t *testing.T) {
	truthy := []any{true, "true", "TRUE", "1", "sim", "Sim", float64(1)}
	for _, raw := range truthy {
		value, err := NormalizeCellValue(models.FieldTypeBool, raw)
		require.NoError(t, err, "raw=%v", raw)
		require.NotNil(t, value.Bool)
		assert.True(t, *value.Bool, "raw=%v", raw)
	}

	falsy := []any{false, "false", "0", "nao", "não", "NÃO", float64(0)}
	for _, raw := range falsy {
		value, err := NormalizeCellValue(models.FieldTypeBool, raw)
		require.NoError(t, err, "raw=%v", raw)
		require.NotNil(t, value.Bool)
		assert.False(t, *value.Bool, "raw=%v", raw)
	}

	_, err := NormalizeCellValue(models.FieldTypeBool, "maybe")
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = NormalizeCellValue(models.FieldTypeBool, float64(2))
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestNormalizeDate(t *testing.T) {
	value, err := NormalizeCellValue(models.FieldTypeDate, "2024-06-30")
	require.NoError(t, err)
	require.NotNil(t, value.Date)
	assert.Equal(t, "2024-06-30", *value.Date)

	_, err = NormalizeCellValue(models.FieldTypeDate, float64(20240630))
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestNormalizeJSON(t *testing.T) {
	value, err := NormalizeCellValue(models.FieldTypeJSON, map[string]any{"b": 2, "a": 1})
	require.NoError(t, err)
	require.NotNil(t, value.JSON)
	// canonical form orders keys
	assert.Equal(t, `{"a":1,"b":2}`, *value.JSON)

	value, err = NormalizeCellValue(models.FieldTypeJSON, `{"x": [1, 2]}`)
	require.NoError(t, err)
	assert.Equal(t, `{"x":[1,2]}`, *value.JSON)

	_, err = NormalizeCellValue(models.FieldTypeJSON, "{broken")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestNormalizeTextCoercion(t *testing.T) {
	value, err := NormalizeCellValue(models.FieldTypeText, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", *value.Text)

	value, err = NormalizeCellValue(models.FieldTypeSelect, float64(7))
	require.NoError(t, err)
	assert.Equal(t, "7", *value.Text)

	value, err = NormalizeCellValue(models.FieldTypeLink, true)
	require.NoError(t, err)
	assert.Equal(t, "true", *value.Text)

	// multi_select stores its coerced string in the text slot too
	value, err = NormalizeCellValue(models.FieldTypeMultiSelect, []any{"a", "b"})
	require.NoError(t, err)
	require.NotNil(t, value.Text)
	assert.Equal(t, `["a","b"]`, *value.Text)
}

func TestProjectValueSelectsDeclaredSlot(t *testing.T) {
	n := 42.0
	s := "stale"
	value := models.CellValue{Number: &n, Text: &s}

	// only the slot matching the declared type is exposed
	assert.Equal(t, 42.0, projectValue(models.FieldTypeNumber, value))
	assert.Equal(t, "stale", projectValue(models.FieldTypeText, value))
	assert.Nil(t, projectValue(models.FieldTypeBool, value))
	assert.Nil(t, projectValue(models.FieldTypeNumber, models.CellValue{}))
}
