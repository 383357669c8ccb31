package payments

import "github.com/novapos/novapos-backend/pkg/enums"

// canTransition encodes the legal edges of the payment lifecycle.
//
// The happy path is created -> authorized -> captured -> refunded. Voiding
// and failing are allowed from any non-terminal state; a closed intent never
// reopens.
func canTransition(from, to enums.PaymentState) bool {
	switch to {
	case enums.PaymentStateAuthorized:
		return from == enums.PaymentStateCreated
	case enums.PaymentStateCaptured:
		return from == enums.PaymentStateAuthorized
	case enums.PaymentStateRefunded:
		return from == enums.PaymentStateCaptured
	case enums.PaymentStateVoided:
		return !from.IsTerminal()
	case enums.PaymentStateFailed:
		return !from.IsTerminal()
	default:
		return false
	}
}

// eventForState maps a committed target state to its outbox event type.
func eventForState(to enums.PaymentState) (enums.OutboxEventType, bool) {
	switch to {
	case enums.PaymentStateAuthorized:
		return enums.EventPaymentAuthorized, true
	case enums.PaymentStateCaptured:
		return enums.EventPaymentCaptured, true
	case enums.PaymentStateRefunded:
		return enums.EventPaymentRefunded, true
	case enums.PaymentStateVoided:
		return enums.EventPaymentVoided, true
	case enums.PaymentStateFailed:
		return enums.EventPaymentFailed, true
	default:
		return "", false
	}
}
