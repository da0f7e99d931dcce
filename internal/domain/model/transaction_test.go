package model_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudguard/scoring-service/internal/domain/model"
)

// validRecord builds a complete raw transaction mapping.
func validRecord() map[string]any {
	raw := map[string]any{
		"Time":   0.0,
		"Amount": 149.62,
	}
	for i := 1; i <= 28; i++ {
		raw[fmt.Sprintf("V%d", i)] = 0.0
	}
	return raw
}

func TestFeatureOrder(t *testing.T) {
	order := model.FeatureOrder()

	require.Len(t, order, 30)
	assert.Equal(t, "Time", order[0])
	assert.Equal(t, "Amount", order[29])
	for i := 1; i <= 28; i++ {
		assert.Equal(t, fmt.Sprintf("V%d", i), order[i])
	}
}

func TestNewTransaction(t *testing.T) {
	t.Run("accepts a complete record", func(t *testing.T) {
		tx, err := model.NewTransaction(validRecord())

		require.NoError(t, err)
		assert.Equal(t, 149.62, tx.Amount())
		assert.Equal(t, 0.0, tx.ElapsedTime())
	})

	t.Run("ignores unknown extra fields", func(t *testing.T) {
		raw := validRecord()
		raw["merchant_id"] = "m-42"
		raw["V99"] = 1.5

		tx, err := model.NewTransaction(raw)

		require.NoError(t, err)
		features := tx.Features()
		assert.Len(t, features, 30)
		assert.NotContains(t, features, "merchant_id")
	})

	t.Run("lists every missing field", func(t *testing.T) {
		raw := validRecord()
		delete(raw, "V7")
		delete(raw, "Amount")

		_, err := model.NewTransaction(raw)

		var schemaErr *model.SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Contains(t, schemaErr.Missing, "V7")
		assert.Contains(t, schemaErr.Missing, "Amount")
		assert.Empty(t, schemaErr.Invalid)
	})

	t.Run("lists wrong-typed fields", func(t *testing.T) {
		raw := validRecord()
		raw["V3"] = "not a number"
		raw["Time"] = true

		_, err := model.NewTransaction(raw)

		var schemaErr *model.SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Contains(t, schemaErr.Invalid, "V3")
		assert.Contains(t, schemaErr.Invalid, "Time")
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		raw := validRecord()
		raw["Amount"] = -5.0

		_, err := model.NewTransaction(raw)

		var schemaErr *model.SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Contains(t, schemaErr.Invalid, "Amount")
	})

	t.Run("accepts integer-typed values", func(t *testing.T) {
		raw := validRecord()
		raw["Amount"] = 100

		tx, err := model.NewTransaction(raw)

		require.NoError(t, err)
		assert.Equal(t, 100.0, tx.Amount())
	})

	t.Run("empty record reports all 30 fields missing", func(t *testing.T) {
		_, err := model.NewTransaction(map[string]any{})

		var schemaErr *model.SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Len(t, schemaErr.Missing, 30)
	})
}

func TestTransactionFeaturesIsACopy(t *testing.T) {
	tx, err := model.NewTransaction(validRecord())
	require.NoError(t, err)

	features := tx.Features()
	features["Amount"] = -1

	assert.Equal(t, 149.62, tx.Amount())
}
