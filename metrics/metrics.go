// Package metrics defines the instrumentation hooks used by the payment
// pipeline. The default NoopRecorder keeps metrics strictly opt-in.
package metrics

import "time"

type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}

// Counter and operation names recorded by the gateway.
const (
	CounterPaymentAccepted   = "payment_accepted"
	CounterPaymentRejected   = "payment_rejected"
	CounterPaymentFailed     = "payment_failed"
	CounterCallbackDelivered = "callback_delivered"
	CounterCallbackFailed    = "callback_failed"

	OpSubmit = "submit"
)
