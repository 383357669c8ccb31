package enums

import "fmt"

// PaymentState tracks the lifecycle of a payment intent.
type PaymentState string

const (
	PaymentStateCreated    PaymentState = "created"
	PaymentStateAuthorized PaymentState = "authorized"
	PaymentStateCaptured   PaymentState = "captured"
	PaymentStateRefunded   PaymentState = "refunded"
	PaymentStateVoided     PaymentState = "voided"
	PaymentStateFailed     PaymentState = "failed"
)

var validPaymentStates = []PaymentState{
	PaymentStateCreated,
	PaymentStateAuthorized,
	PaymentStateCaptured,
	PaymentStateRefunded,
	PaymentStateVoided,
	PaymentStateFailed,
}

// String implements fmt.Stringer.
func (p PaymentState) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentState.
func (p PaymentState) IsValid() bool {
	for _, candidate := range validPaymentStates {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state admits no further transitions.
func (p PaymentState) IsTerminal() bool {
	switch p {
	case PaymentStateRefunded, PaymentStateVoided, PaymentStateFailed:
		return true
	default:
		return false
	}
}

// ParsePaymentState converts raw input into a PaymentState.
func ParsePaymentState(value string) (PaymentState, error) {
	for _, candidate := range validPaymentStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment state %q", value)
}
