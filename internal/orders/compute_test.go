package orders

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novapos/novapos-backend/pkg/db/models"
	pkgerrors "github.com/novapos/novapos-backend/pkg/errors"
)

func catalogWith(prices map[uuid.UUID]string) map[uuid.UUID]models.Product {
	catalog := make(map[uuid.UUID]models.Product, len(prices))
	for id, price := range prices {
		catalog[id] = models.Product{ID: id, UnitPrice: decimal.RequireFromString(price)}
	}
	return catalog
}

func TestComputeRoundsOnceAtNormalization(t *testing.T) {
	productID := uuid.New()
	catalog := catalogWith(map[uuid.UUID]string{productID: "19.999"})

	// 19.999 rounds half-up to 20.00 only at the subtotal, and 800 bps on
	// the unrounded subtotal gives 1.59992 -> 1.60.
	result, err := compute([]LineInput{{ProductID: productID, Quantity: 1}}, catalog, 800, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), result.SubtotalMinor)
	assert.Equal(t, int64(160), result.TaxMinor)
	assert.Equal(t, int64(2160), result.TotalMinor)
}

func TestComputeDoesNotRoundPerLine(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	catalog := catalogWith(map[uuid.UUID]string{
		a: "0.333",
		b: "0.333",
		c: "0.333",
	})

	// Per-line rounding would give 0.33*3 = 0.99; a single normalization of
	// 0.999 gives 1.00.
	result, err := compute([]LineInput{
		{ProductID: a, Quantity: 1},
		{ProductID: b, Quantity: 1},
		{ProductID: c, Quantity: 1},
	}, catalog, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.SubtotalMinor)
	assert.Equal(t, int64(100), result.TotalMinor)
}

func TestComputeHalfUpTiesAwayFromZero(t *testing.T) {
	productID := uuid.New()

	result, err := compute(
		[]LineInput{{ProductID: productID, Quantity: 1}},
		catalogWith(map[uuid.UUID]string{productID: "2.505"}), 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(251), result.SubtotalMinor)

	// Returns negate quantities; -2.505 rounds symmetrically to -2.51.
	result, err = compute(
		[]LineInput{{ProductID: productID, Quantity: 1}},
		catalogWith(map[uuid.UUID]string{productID: "2.505"}), 0, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(-251), result.SubtotalMinor)

	result, err = compute(
		[]LineInput{{ProductID: productID, Quantity: 1}},
		catalogWith(map[uuid.UUID]string{productID: "2.504"}), 0, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(-250), result.SubtotalMinor)
}

func TestComputeTotalsIdentity(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	catalog := catalogWith(map[uuid.UUID]string{
		a: "12.345",
		b: "0.995",
	})

	result, err := compute([]LineInput{
		{ProductID: a, Quantity: 3},
		{ProductID: b, Quantity: 2},
	}, catalog, 825, 1)
	require.NoError(t, err)

	// subtotal = 37.035 + 1.99 = 39.025 -> 39.03
	// tax = 39.025 * 0.0825 = 3.2195625 -> 3.22
	assert.Equal(t, int64(3903), result.SubtotalMinor)
	assert.Equal(t, int64(322), result.TaxMinor)
	assert.Equal(t, result.SubtotalMinor+result.TaxMinor, result.TotalMinor)
}

func TestComputeRejectsBadInput(t *testing.T) {
	productID := uuid.New()
	catalog := catalogWith(map[uuid.UUID]string{productID: "1.00"})

	_, err := compute(nil, catalog, 0, 1)
	require.Error(t, err)

	_, err = compute([]LineInput{{ProductID: productID, Quantity: 0}}, catalog, 0, 1)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = compute([]LineInput{{ProductID: uuid.New(), Quantity: 1}}, catalog, 0, 1)
	require.Error(t, err)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
