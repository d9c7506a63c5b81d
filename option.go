package gateway

import (
	"time"

	"github.com/merakinexus/payment-gateway/logger"
	"github.com/merakinexus/payment-gateway/metrics"
	gwtypes "github.com/merakinexus/payment-gateway/types"
)

type Option func(*Gateway)

func WithLogger(l logger.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(g *Gateway) { g.metrics = r }
}

// WithTimeout bounds the broadcast-and-wait-for-receipt call.
func WithTimeout(t time.Duration) Option {
	return func(g *Gateway) { g.receiptTimeout = t }
}

// WithSubmitMode selects direct transfers or contract-mediated payments.
func WithSubmitMode(mode gwtypes.SubmitMode) Option {
	return func(g *Gateway) { g.mode = mode }
}

// WithGasStrategy selects legacy or dynamic fee pricing.
func WithGasStrategy(strategy gwtypes.GasStrategy) Option {
	return func(g *Gateway) { g.gasStrategy = strategy }
}

// WithDefaultSigningKey sets the key used when a request carries none
// (server-signing deployments).
func WithDefaultSigningKey(keyHex string) Option {
	return func(g *Gateway) { g.defaultSigningKey = keyHex }
}

// WithSelfPaymentRejection enforces sender != receiver in the validator
// instead of leaving the rule to the payment contract.
func WithSelfPaymentRejection() Option {
	return func(g *Gateway) { g.rejectSelfPayment = true }
}
