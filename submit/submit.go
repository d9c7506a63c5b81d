// Package submit implements the payment submission pipeline: amount in
// base units, transaction build, sign, broadcast, receipt wait, and the
// optional contract read-back. One call makes exactly one network write.
package submit

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/merakinexus/payment-gateway/clients"
	"github.com/merakinexus/payment-gateway/logger"
	"github.com/merakinexus/payment-gateway/metrics"
	gwtypes "github.com/merakinexus/payment-gateway/types"
)

const (
	// defaultGasLimit leaves headroom over the ~50k gas a contract
	// payment needs.
	defaultGasLimit = 300_000

	// defaultReceiptTimeout bounds the broadcast-and-wait call: a few
	// multiples of a mainnet block interval.
	defaultReceiptTimeout = 60 * time.Second

	// defaultTipWei is the priority fee used by the dynamic strategy
	// when the node offers no suggestion (2 gwei).
	defaultTipWei = 2_000_000_000
)

// sendPaymentABI duplicates the single function the submitter encodes, so
// building calldata never needs a node round trip.
const sendPaymentABI = `[{
  "name": "sendPayment",
  "type": "function",
  "stateMutability": "payable",
  "inputs": [{"name": "receiver", "type": "address"}],
  "outputs": []
}]`

// Submitter turns validated payments into confirmed transactions.
type Submitter struct {
	client  clients.ChainClient
	log     logger.Logger
	metrics metrics.Recorder

	gasStrategy    gwtypes.GasStrategy
	gasLimit       uint64
	fixedGasPrice  *big.Int // legacy strategy only; nil means ask the node
	receiptTimeout time.Duration

	contractABI abi.ABI
}

type Option func(*Submitter)

func WithLogger(l logger.Logger) Option {
	return func(s *Submitter) { s.log = l }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(s *Submitter) { s.metrics = r }
}

// WithGasStrategy selects legacy or dynamic fee pricing.
func WithGasStrategy(strategy gwtypes.GasStrategy) Option {
	return func(s *Submitter) { s.gasStrategy = strategy }
}

// WithGasLimit overrides the fixed gas limit headroom.
func WithGasLimit(limit uint64) Option {
	return func(s *Submitter) { s.gasLimit = limit }
}

// WithFixedGasPrice pins the legacy strategy to a fixed price in wei
// instead of the node's suggestion.
func WithFixedGasPrice(wei *big.Int) Option {
	return func(s *Submitter) { s.fixedGasPrice = wei }
}

// WithReceiptTimeout bounds how long one submission may wait for
// inclusion.
func WithReceiptTimeout(d time.Duration) Option {
	return func(s *Submitter) { s.receiptTimeout = d }
}

func New(client clients.ChainClient, opts ...Option) (*Submitter, error) {
	parsed, err := abi.JSON(strings.NewReader(sendPaymentABI))
	if err != nil {
		return nil, fmt.Errorf("parse sendPayment abi: %w", err)
	}

	s := &Submitter{
		client:         client,
		log:            logger.NoopLogger{},
		metrics:        metrics.NoopRecorder{},
		gasStrategy:    gwtypes.GasLegacy,
		gasLimit:       defaultGasLimit,
		receiptTimeout: defaultReceiptTimeout,
		contractABI:    parsed,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Submit broadcasts the payment and blocks until the network reports
// inclusion or the receipt timeout expires. A failed broadcast is never
// retried; resubmission risks a duplicate spend on a half-propagated
// transaction.
func (s *Submitter) Submit(ctx context.Context, payment *gwtypes.ValidatedPayment, mode gwtypes.SubmitMode) (*gwtypes.PaymentReceipt, error) {
	started := time.Now()
	labels := map[string]string{"mode": string(mode)}

	receipt, err := s.submit(ctx, payment, mode)
	s.metrics.ObserveLatency(metrics.OpSubmit, time.Since(started), labels)
	if err != nil {
		s.metrics.IncCounter(metrics.CounterPaymentFailed, labels)
		gwErr := clients.Classify(err)
		s.log.Error("payment submission failed", map[string]any{
			"sender":   payment.Sender.Hex(),
			"receiver": payment.Receiver.Hex(),
			"code":     string(gwErr.Code),
			"error":    err.Error(),
		})
		return nil, gwErr
	}

	s.metrics.IncCounter(metrics.CounterPaymentAccepted, labels)
	s.log.Info("payment confirmed", map[string]any{
		"sender":   payment.Sender.Hex(),
		"receiver": payment.Receiver.Hex(),
		"txHash":   receipt.TxHash,
		"gasUsed":  receipt.GasUsed,
		"block":    receipt.BlockNumber,
	})
	return receipt, nil
}

func (s *Submitter) submit(ctx context.Context, payment *gwtypes.ValidatedPayment, mode gwtypes.SubmitMode) (*gwtypes.PaymentReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.receiptTimeout)
	defer cancel()

	chainID, err := s.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch chain id: %w", err)
	}

	nonce, err := s.client.PendingNonceAt(ctx, payment.Sender)
	if err != nil {
		return nil, fmt.Errorf("fetch nonce: %w", err)
	}

	to, data, err := s.destination(payment, mode)
	if err != nil {
		return nil, err
	}

	tx, err := s.buildTransaction(ctx, chainID, nonce, to, payment.AmountWei, data)
	if err != nil {
		return nil, err
	}

	signed, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(chainID), payment.Key)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("broadcast transaction: %w", err)
	}

	mined, err := s.client.WaitForReceipt(ctx, signed.Hash())
	if err != nil {
		return nil, err
	}

	receipt := &gwtypes.PaymentReceipt{
		TxHash:      mined.TxHash.Hex(),
		GasUsed:     mined.GasUsed,
		BlockNumber: mined.BlockNumber.Uint64(),
		Status:      statusString(mined.Status),
		Timestamp:   time.Now().UTC(),
	}

	if mode == gwtypes.ModeContract {
		s.attachRecord(ctx, receipt)
	}

	return receipt, nil
}

// destination resolves the transaction target: the receiver itself for a
// direct transfer, or the contract plus sendPayment calldata.
func (s *Submitter) destination(payment *gwtypes.ValidatedPayment, mode gwtypes.SubmitMode) (common.Address, []byte, error) {
	switch mode {
	case gwtypes.ModeDirect:
		return payment.Receiver, nil, nil
	case gwtypes.ModeContract:
		contract, ok := s.client.ContractAddress()
		if !ok {
			return common.Address{}, nil, gwtypes.NewGatewayError(gwtypes.ErrConfig,
				"contract mode requested but no contract address configured")
		}
		data, err := s.contractABI.Pack("sendPayment", payment.Receiver)
		if err != nil {
			return common.Address{}, nil, fmt.Errorf("encode sendPayment: %w", err)
		}
		return contract, data, nil
	default:
		return common.Address{}, nil, gwtypes.NewGatewayError(gwtypes.ErrConfig,
			fmt.Sprintf("unknown submit mode %q", mode))
	}
}

func (s *Submitter) buildTransaction(ctx context.Context, chainID *big.Int, nonce uint64, to common.Address, value *big.Int, data []byte) (*ethtypes.Transaction, error) {
	switch s.gasStrategy {
	case gwtypes.GasDynamic:
		tip, err := s.client.SuggestGasTipCap(ctx)
		if err != nil || tip.Sign() == 0 {
			tip = big.NewInt(defaultTipWei)
		}
		gasPrice, err := s.client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("suggest gas price: %w", err)
		}
		feeCap := new(big.Int).Add(gasPrice, tip)

		return ethtypes.NewTx(&ethtypes.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			To:        &to,
			Value:     value,
			Gas:       s.gasLimit,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Data:      data,
		}), nil

	default: // GasLegacy
		gasPrice := s.fixedGasPrice
		if gasPrice == nil {
			suggested, err := s.client.SuggestGasPrice(ctx)
			if err != nil {
				return nil, fmt.Errorf("suggest gas price: %w", err)
			}
			gasPrice = suggested
		}

		return ethtypes.NewTx(&ethtypes.LegacyTx{
			Nonce:    nonce,
			To:       &to,
			Value:    value,
			Gas:      s.gasLimit,
			GasPrice: gasPrice,
			Data:     data,
		}), nil
	}
}

// attachRecord reads the contract counter and, when possible, the stored
// record for this payment. Both reads are best effort; a confirmed
// payment is reported even if the read-back fails.
func (s *Submitter) attachRecord(ctx context.Context, receipt *gwtypes.PaymentReceipt) {
	count, err := s.client.PaymentCount(ctx)
	if err != nil || count.Sign() == 0 {
		if err != nil {
			s.log.Warn("payment counter read failed", map[string]any{"error": err.Error()})
		}
		return
	}

	id := new(big.Int).Sub(count, big.NewInt(1))
	idVal := id.Uint64()
	receipt.TransactionID = &idVal

	record, err := s.client.PaymentRecord(ctx, id)
	if err != nil {
		s.log.Warn("payment record read failed", map[string]any{
			"transactionId": idVal,
			"error":         err.Error(),
		})
		return
	}
	receipt.Record = record
}

func statusString(status uint64) string {
	if status == ethtypes.ReceiptStatusSuccessful {
		return "success"
	}
	return "error"
}
