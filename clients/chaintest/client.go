// Package chaintest provides an in-memory ChainClient for exercising the
// submission pipeline without a node. Every method bumps a call counter
// so tests can assert that validation failures never reach the network.
package chaintest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/merakinexus/payment-gateway/clients"
	gwtypes "github.com/merakinexus/payment-gateway/types"
)

var _ clients.ChainClient = (*Client)(nil)

// Client is a configurable fake chain.
type Client struct {
	mu sync.Mutex

	ChainIDValue *big.Int
	Nonce        uint64
	GasPrice     *big.Int
	GasTip       *big.Int

	Contract    common.Address
	HasContract bool

	// Receipt is returned by WaitForReceipt for any hash.
	Receipt *ethtypes.Receipt
	// Count and Record back the contract read methods.
	Count  *big.Int
	Record *gwtypes.TransactionRecord

	// SendErr, when set, fails the broadcast.
	SendErr error
	// WaitErr, when set, fails the receipt wait.
	WaitErr error

	// Sent collects every broadcast transaction.
	Sent []*ethtypes.Transaction

	calls map[string]int
}

// New returns a fake with sane mainnet-ish defaults and a successful
// receipt.
func New() *Client {
	return &Client{
		ChainIDValue: big.NewInt(1337),
		Nonce:        7,
		GasPrice:     big.NewInt(20_000_000_000),
		GasTip:       big.NewInt(2_000_000_000),
		Receipt: &ethtypes.Receipt{
			Status:      ethtypes.ReceiptStatusSuccessful,
			GasUsed:     21_000,
			BlockNumber: big.NewInt(42),
			TxHash:      common.HexToHash("0xabcd"),
		},
		calls: make(map[string]int),
	}
}

// WithContract configures the fake for contract-mediated payments.
func (c *Client) WithContract(addr string, count int64) *Client {
	c.Contract = common.HexToAddress(addr)
	c.HasContract = true
	c.Count = big.NewInt(count)
	return c
}

func (c *Client) record(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[method]++
}

// NetworkCalls reports the total number of chain interactions.
func (c *Client) NetworkCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.calls {
		total += n
	}
	return total
}

// Calls reports how often one method was invoked.
func (c *Client) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	c.record("ChainID")
	return c.ChainIDValue, nil
}

func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	c.record("PendingNonceAt")
	return c.Nonce, nil
}

func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	c.record("SuggestGasPrice")
	return c.GasPrice, nil
}

func (c *Client) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	c.record("SuggestGasTipCap")
	return c.GasTip, nil
}

func (c *Client) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	c.record("SendTransaction")
	if c.SendErr != nil {
		return c.SendErr
	}
	c.mu.Lock()
	c.Sent = append(c.Sent, tx)
	c.mu.Unlock()
	return nil
}

func (c *Client) WaitForReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	c.record("WaitForReceipt")
	if c.WaitErr != nil {
		return nil, c.WaitErr
	}
	receipt := *c.Receipt
	receipt.TxHash = txHash
	return &receipt, nil
}

func (c *Client) PaymentCount(ctx context.Context) (*big.Int, error) {
	c.record("PaymentCount")
	if !c.HasContract {
		return nil, fmt.Errorf("no payment contract configured")
	}
	return c.Count, nil
}

func (c *Client) PaymentRecord(ctx context.Context, id *big.Int) (*gwtypes.TransactionRecord, error) {
	c.record("PaymentRecord")
	if c.Record == nil {
		return nil, fmt.Errorf("no record for id %s", id)
	}
	return c.Record, nil
}

func (c *Client) ContractAddress() (common.Address, bool) {
	return c.Contract, c.HasContract
}

func (c *Client) Close() {}
