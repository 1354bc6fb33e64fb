package asaas

import "github.com/quitanza/paycore/internal/pkg/payment"

// Asaas status vocabulary includes a long tail of chargeback and dunning
// states; they collapse into the internal set here.
var statusMap = map[string]payment.Status{
	"PENDING":                      payment.StatusPending,
	"CONFIRMED":                    payment.StatusConfirmed,
	"RECEIVED":                     payment.StatusReceived,
	"OVERDUE":                      payment.StatusOverdue,
	"REFUNDED":                     payment.StatusRefunded,
	"DELETED":                      payment.StatusDeleted,
	"REFUND_REQUESTED":             payment.StatusRefunded,
	"CHARGEBACK_REQUESTED":         payment.StatusRefunded,
	"CHARGEBACK_DISPUTE":           payment.StatusRefunded,
	"AWAITING_CHARGEBACK_REVERSAL": payment.StatusRefunded,
	"DUNNING_REQUESTED":            payment.StatusOverdue,
	"DUNNING_RECEIVED":             payment.StatusReceived,
	"AWAITING_RISK_ANALYSIS":       payment.StatusPending,
}

func mapStatus(asaasStatus string) payment.Status {
	if s, ok := statusMap[asaasStatus]; ok {
		return s
	}
	return payment.StatusPending
}

var eventMap = map[string]payment.EventType{
	"PAYMENT_CREATED":                      payment.EventPaymentCreated,
	"PAYMENT_UPDATED":                      payment.EventPaymentConfirmed,
	"PAYMENT_CONFIRMED":                    payment.EventPaymentConfirmed,
	"PAYMENT_RECEIVED":                     payment.EventPaymentReceived,
	"PAYMENT_OVERDUE":                      payment.EventPaymentOverdue,
	"PAYMENT_DELETED":                      payment.EventPaymentDeleted,
	"PAYMENT_RESTORED":                     payment.EventPaymentCreated,
	"PAYMENT_REFUNDED":                     payment.EventPaymentRefunded,
	"PAYMENT_RECEIVED_IN_CASH_UNDONE":      payment.EventPaymentRefunded,
	"PAYMENT_CHARGEBACK_REQUESTED":         payment.EventPaymentRefunded,
	"PAYMENT_CHARGEBACK_DISPUTE":           payment.EventPaymentRefunded,
	"PAYMENT_AWAITING_CHARGEBACK_REVERSAL": payment.EventPaymentRefunded,
	"PAYMENT_DUNNING_RECEIVED":             payment.EventPaymentReceived,
	"PAYMENT_DUNNING_REQUESTED":            payment.EventPaymentOverdue,
	"PAYMENT_BANK_SLIP_VIEWED":             payment.EventPaymentConfirmed,
	"PAYMENT_CHECKOUT_VIEWED":              payment.EventPaymentConfirmed,
}

func mapEvent(asaasEvent string) payment.EventType {
	if e, ok := eventMap[asaasEvent]; ok {
		return e
	}
	return payment.EventPaymentCreated
}
