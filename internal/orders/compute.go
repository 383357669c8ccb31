package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/novapos/novapos-backend/pkg/db/models"
	pkgerrors "github.com/novapos/novapos-backend/pkg/errors"
	"github.com/novapos/novapos-backend/pkg/money"
)

// LineInput is one cart line as submitted by the client.
type LineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// ComputedLine pairs a cart line with the unit price captured at compute time.
type ComputedLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// Computation is the rounded money outcome for one cart.
//
// Rounding is applied exactly once, at monetary normalization: line amounts
// accumulate at full catalog precision and the half-up rounding to cents
// happens on the subtotal and on the tax amount, never per line. That keeps
// total == round(subtotal) + round(subtotal*rate/10000) and avoids
// compounding per-line rounding error.
type Computation struct {
	Lines         []ComputedLine
	SubtotalMinor int64
	TaxMinor      int64
	TotalMinor    int64
	RateBps       int
}

// compute prices the cart against the catalog at the resolved rate. The sign
// knob lets returns reuse the same arithmetic with negated quantities.
func compute(lines []LineInput, catalog map[uuid.UUID]models.Product, rateBps int, sign int) (*Computation, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one line")
	}

	subtotal := decimal.Zero
	computed := make([]ComputedLine, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		product, ok := catalog[line.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown product "+line.ProductID.String())
		}

		qty := line.Quantity * sign
		subtotal = subtotal.Add(product.UnitPrice.Mul(decimal.NewFromInt(int64(qty))))
		computed = append(computed, ComputedLine{
			ProductID: line.ProductID,
			Quantity:  qty,
			UnitPrice: product.UnitPrice,
		})
	}

	subtotalMinor := money.MinorUnits(money.RoundHalfUp(subtotal))
	taxMinor := money.MinorUnits(money.RoundHalfUp(money.ApplyBps(subtotal, rateBps)))

	return &Computation{
		Lines:         computed,
		SubtotalMinor: subtotalMinor,
		TaxMinor:      taxMinor,
		TotalMinor:    subtotalMinor + taxMinor,
		RateBps:       rateBps,
	}, nil
}
