// Package types defines the domain types shared by the payment gateway:
// the inbound payment request, its validated form, the receipt produced
// after on-chain inclusion, and the gateway error taxonomy.
package types

import (
	"crypto/ecdsa"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// PaymentRequest is the raw, untrusted request body of POST /api/payment.
// Amount is kept as a string so that no precision is lost before the
// decimal parse in the validator.
type PaymentRequest struct {
	Sender   string `json:"sender" validate:"required"`
	Receiver string `json:"receiver" validate:"required"`
	Amount   string `json:"amount" validate:"required"`

	// SenderPrivateKey is only present in server-signing mode. Accepted
	// with or without the 0x prefix.
	SenderPrivateKey string `json:"senderPrivateKey,omitempty"`

	// Callback, when set, receives a best-effort POST of the final
	// response body. Delivery failures never affect the response itself.
	Callback string `json:"callback,omitempty"`
}

// ValidatedPayment is a PaymentRequest that passed every validator check.
// Key is the account derived from the signing key; its address is known
// to match Sender.
type ValidatedPayment struct {
	Sender   common.Address
	Receiver common.Address

	// Amount is the display-unit (ether) amount as submitted.
	Amount decimal.Decimal
	// AmountWei is Amount scaled to base units, exact.
	AmountWei *big.Int

	Key *ecdsa.PrivateKey
}

// PaymentReceipt is produced once the network confirms inclusion of the
// payment transaction.
type PaymentReceipt struct {
	TxHash      string    `json:"transactionHash"`
	GasUsed     uint64    `json:"gasUsed"`
	BlockNumber uint64    `json:"blockNumber"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`

	// TransactionID is the payment contract's sequential counter value
	// for this payment. Nil for direct transfers.
	TransactionID *uint64 `json:"transactionId,omitempty"`

	// Record is the contract's stored record for TransactionID, when the
	// read-back succeeded. Informational only.
	Record *TransactionRecord `json:"record,omitempty"`
}

// TransactionRecord mirrors the payment contract's internal bookkeeping
// for a single payment. It is owned by the contract; the gateway only
// ever reads it.
type TransactionRecord struct {
	ID        uint64 `json:"id"`
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver"`
	AmountWei string `json:"amountWei"`
	Timestamp uint64 `json:"timestamp"`
	Completed bool   `json:"completed"`
}

// SubmitMode selects how a validated payment reaches the chain.
type SubmitMode string

const (
	// ModeDirect sends a plain value transfer to the receiver.
	ModeDirect SubmitMode = "direct"
	// ModeContract routes the value through the payment contract's
	// sendPayment function, which records a TransactionRecord.
	ModeContract SubmitMode = "contract"
)

// GasStrategy selects how transaction fees are priced. The choice is an
// explicit deployment decision, never inferred.
type GasStrategy string

const (
	// GasLegacy prices the transaction with a single gas price.
	GasLegacy GasStrategy = "legacy"
	// GasDynamic prices the transaction with a fee cap and a tip
	// (EIP-1559 style).
	GasDynamic GasStrategy = "dynamic"
)
