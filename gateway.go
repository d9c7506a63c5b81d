// Package gateway wires the payment request validator and the submission
// pipeline behind a single facade. All collaborators are injected; the
// package holds no process-wide state, so tests can run the full pipeline
// against a fake chain client.
package gateway

import (
	"context"
	"time"

	"github.com/merakinexus/payment-gateway/clients"
	"github.com/merakinexus/payment-gateway/logger"
	"github.com/merakinexus/payment-gateway/metrics"
	"github.com/merakinexus/payment-gateway/submit"
	gwtypes "github.com/merakinexus/payment-gateway/types"
	"github.com/merakinexus/payment-gateway/validation"
)

// Gateway validates payment requests and submits them to the chain.
type Gateway struct {
	client    clients.ChainClient
	validator *validation.Validator
	submitter *submit.Submitter

	log     logger.Logger
	metrics metrics.Recorder

	mode           gwtypes.SubmitMode
	gasStrategy    gwtypes.GasStrategy
	receiptTimeout time.Duration

	defaultSigningKey string
	rejectSelfPayment bool
}

// New constructs a Gateway around the given chain client. The submit mode
// defaults to direct transfers; configure a contract-mediated deployment
// with WithSubmitMode(ModeContract).
func New(client clients.ChainClient, opts ...Option) (*Gateway, error) {
	g := &Gateway{
		client:         client,
		log:            logger.NoopLogger{},
		metrics:        metrics.NoopRecorder{},
		mode:           gwtypes.ModeDirect,
		gasStrategy:    gwtypes.GasLegacy,
		receiptTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}

	valOpts := []validation.Option{}
	if g.defaultSigningKey != "" {
		valOpts = append(valOpts, validation.WithDefaultSigningKey(g.defaultSigningKey))
	}
	if g.rejectSelfPayment {
		valOpts = append(valOpts, validation.WithSelfPaymentRejection())
	}
	g.validator = validation.New(valOpts...)

	submitter, err := submit.New(client,
		submit.WithLogger(g.log),
		submit.WithMetrics(g.metrics),
		submit.WithGasStrategy(g.gasStrategy),
		submit.WithReceiptTimeout(g.receiptTimeout),
	)
	if err != nil {
		return nil, err
	}
	g.submitter = submitter

	return g, nil
}

// ProcessPayment runs the full pipeline for one request. Validation
// failures return before any network call; submission failures come back
// already classified. The returned error is always a *types.GatewayError.
func (g *Gateway) ProcessPayment(ctx context.Context, req *gwtypes.PaymentRequest) (*gwtypes.PaymentReceipt, error) {
	payment, err := g.validator.Validate(req)
	if err != nil {
		g.metrics.IncCounter(metrics.CounterPaymentRejected, map[string]string{"mode": string(g.mode)})
		g.log.Warn("payment request rejected", map[string]any{
			"sender": req.Sender,
			"error":  err.Error(),
		})
		return nil, err.(*gwtypes.GatewayError)
	}

	g.log.Info("processing payment", map[string]any{
		"sender":   payment.Sender.Hex(),
		"receiver": payment.Receiver.Hex(),
		"amount":   payment.Amount.String(),
		"mode":     string(g.mode),
	})

	return g.submitter.Submit(ctx, payment, g.mode)
}

// Mode reports the configured submission strategy.
func (g *Gateway) Mode() gwtypes.SubmitMode {
	return g.mode
}

// Close releases the underlying chain client.
func (g *Gateway) Close() {
	g.client.Close()
}
