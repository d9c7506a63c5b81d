// Package clients wraps the blockchain node behind a narrow interface so
// the submission pipeline can be exercised against an in-memory fake.
package clients

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	gwtypes "github.com/merakinexus/payment-gateway/types"
)

// ChainClient is the gateway's only view of the chain. One submission
// makes at most one write (SendTransaction) and a handful of reads.
type ChainClient interface {
	// ChainID returns the chain identifier used for transaction signing.
	ChainID(ctx context.Context) (*big.Int, error)

	// PendingNonceAt returns the next nonce for the account, including
	// pending transactions.
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)

	// SuggestGasPrice returns the node's gas price suggestion.
	SuggestGasPrice(ctx context.Context) (*big.Int, error)

	// SuggestGasTipCap returns the node's priority fee suggestion.
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)

	// SendTransaction broadcasts a signed transaction.
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error

	// WaitForReceipt blocks until the transaction is included or ctx
	// expires.
	WaitForReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)

	// PaymentCount reads the payment contract's transaction counter.
	PaymentCount(ctx context.Context) (*big.Int, error)

	// PaymentRecord reads the contract's stored record for id.
	PaymentRecord(ctx context.Context, id *big.Int) (*gwtypes.TransactionRecord, error)

	// ContractAddress returns the configured payment contract address
	// and whether one is configured at all.
	ContractAddress() (common.Address, bool)

	Close()
}
