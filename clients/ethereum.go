package clients

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	gwtypes "github.com/merakinexus/payment-gateway/types"
)

// paymentContractABI covers the three functions the gateway touches:
// the payable forward, the counter, and the record lookup.
const paymentContractABI = `[
  {
    "name": "sendPayment",
    "type": "function",
    "stateMutability": "payable",
    "inputs": [{"name": "receiver", "type": "address"}],
    "outputs": []
  },
  {
    "name": "getTransactionCount",
    "type": "function",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [{"name": "", "type": "uint256"}]
  },
  {
    "name": "getTransaction",
    "type": "function",
    "stateMutability": "view",
    "inputs": [{"name": "transactionId", "type": "uint256"}],
    "outputs": [
      {"name": "id", "type": "uint256"},
      {"name": "sender", "type": "address"},
      {"name": "receiver", "type": "address"},
      {"name": "amount", "type": "uint256"},
      {"name": "timestamp", "type": "uint256"},
      {"name": "completed", "type": "bool"}
    ]
  }
]`

const defaultReceiptPoll = 2 * time.Second

var _ ChainClient = (*EthereumClient)(nil)

// EthereumClient is the production ChainClient backed by a JSON-RPC node.
type EthereumClient struct {
	rpcURL      string
	eth         *ethclient.Client
	contract    common.Address
	hasContract bool
	contractABI abi.ABI
	pollEvery   time.Duration
}

// NewEthereumClient dials the node and, when contractAddr is non-empty,
// binds the payment contract. An empty contractAddr puts the client in
// direct-transfer-only mode.
func NewEthereumClient(rpcURL, contractAddr string) (*EthereumClient, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("ethereum rpc dial: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(paymentContractABI))
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("parse payment contract abi: %w", err)
	}

	c := &EthereumClient{
		rpcURL:      rpcURL,
		eth:         eth,
		contractABI: parsed,
		pollEvery:   defaultReceiptPoll,
	}

	addr := strings.TrimSpace(contractAddr)
	if addr != "" {
		if !common.IsHexAddress(addr) {
			eth.Close()
			return nil, fmt.Errorf("invalid contract address: %s", contractAddr)
		}
		c.contract = common.HexToAddress(addr)
		c.hasContract = true
	}

	return c, nil
}

func (c *EthereumClient) ChainID(ctx context.Context) (*big.Int, error) {
	return c.eth.ChainID(ctx)
}

func (c *EthereumClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return c.eth.PendingNonceAt(ctx, account)
}

func (c *EthereumClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return c.eth.SuggestGasPrice(ctx)
}

func (c *EthereumClient) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return c.eth.SuggestGasTipCap(ctx)
}

func (c *EthereumClient) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	return c.eth.SendTransaction(ctx, tx)
}

// WaitForReceipt polls the node until the transaction is mined. The
// caller bounds the wait through ctx; a stalled node surfaces as
// ctx.Err(), never as an indefinite hang.
func (c *EthereumClient) WaitForReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	ticker := time.NewTicker(c.pollEvery)
	defer ticker.Stop()

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("fetch receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for receipt of %s: %w", txHash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *EthereumClient) PaymentCount(ctx context.Context) (*big.Int, error) {
	if !c.hasContract {
		return nil, fmt.Errorf("no payment contract configured")
	}

	data, err := c.contractABI.Pack("getTransactionCount")
	if err != nil {
		return nil, err
	}

	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call getTransactionCount: %w", err)
	}

	values, err := c.contractABI.Unpack("getTransactionCount", out)
	if err != nil {
		return nil, fmt.Errorf("unpack getTransactionCount: %w", err)
	}
	count, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected counter type %T", values[0])
	}
	return count, nil
}

func (c *EthereumClient) PaymentRecord(ctx context.Context, id *big.Int) (*gwtypes.TransactionRecord, error) {
	if !c.hasContract {
		return nil, fmt.Errorf("no payment contract configured")
	}

	data, err := c.contractABI.Pack("getTransaction", id)
	if err != nil {
		return nil, err
	}

	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call getTransaction: %w", err)
	}

	values, err := c.contractABI.Unpack("getTransaction", out)
	if err != nil {
		return nil, fmt.Errorf("unpack getTransaction: %w", err)
	}
	if len(values) != 6 {
		return nil, fmt.Errorf("unexpected getTransaction arity %d", len(values))
	}

	recID, _ := values[0].(*big.Int)
	sender, _ := values[1].(common.Address)
	receiver, _ := values[2].(common.Address)
	amount, _ := values[3].(*big.Int)
	ts, _ := values[4].(*big.Int)
	completed, _ := values[5].(bool)
	if recID == nil || amount == nil || ts == nil {
		return nil, fmt.Errorf("malformed getTransaction result")
	}

	return &gwtypes.TransactionRecord{
		ID:        recID.Uint64(),
		Sender:    sender.Hex(),
		Receiver:  receiver.Hex(),
		AmountWei: amount.String(),
		Timestamp: ts.Uint64(),
		Completed: completed,
	}, nil
}

func (c *EthereumClient) ContractAddress() (common.Address, bool) {
	return c.contract, c.hasContract
}

func (c *EthereumClient) Close() {
	c.eth.Close()
}
