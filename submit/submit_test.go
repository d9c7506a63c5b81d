package submit

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merakinexus/payment-gateway/clients/chaintest"
	gwtypes "github.com/merakinexus/payment-gateway/types"
)

const (
	testKey      = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testReceiver = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	testContract = "0xda9053D313bdE1FA8E3917aa82b0E1B2329531cd"
)

func testPayment(t *testing.T) *gwtypes.ValidatedPayment {
	t.Helper()

	key, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)

	wei, _ := new(big.Int).SetString("100000000000000000", 10) // 0.1 ether
	return &gwtypes.ValidatedPayment{
		Sender:    crypto.PubkeyToAddress(key.PublicKey),
		Receiver:  common.HexToAddress(testReceiver),
		Amount:    decimal.RequireFromString("0.1"),
		AmountWei: wei,
		Key:       key,
	}
}

func TestSubmitDirect(t *testing.T) {
	fake := chaintest.New()
	sub, err := New(fake, WithFixedGasPrice(big.NewInt(20_000_000_000)))
	require.NoError(t, err)

	payment := testPayment(t)
	receipt, err := sub.Submit(context.Background(), payment, gwtypes.ModeDirect)
	require.NoError(t, err)

	assert.Equal(t, "success", receipt.Status)
	assert.Equal(t, uint64(21_000), receipt.GasUsed)
	assert.Equal(t, uint64(42), receipt.BlockNumber)
	assert.Len(t, receipt.TxHash, 66, "32-byte hex hash with 0x prefix")
	assert.Nil(t, receipt.TransactionID)

	require.Len(t, fake.Sent, 1)
	tx := fake.Sent[0]
	assert.Equal(t, uint8(ethtypes.LegacyTxType), tx.Type())
	assert.Equal(t, payment.Receiver, *tx.To())
	assert.Equal(t, 0, tx.Value().Cmp(payment.AmountWei))
	assert.Equal(t, 0, tx.GasPrice().Cmp(big.NewInt(20_000_000_000)))
	assert.Empty(t, tx.Data())
	assert.Equal(t, uint64(7), tx.Nonce())
}

func TestSubmitDynamicFee(t *testing.T) {
	fake := chaintest.New()
	sub, err := New(fake, WithGasStrategy(gwtypes.GasDynamic))
	require.NoError(t, err)

	_, err = sub.Submit(context.Background(), testPayment(t), gwtypes.ModeDirect)
	require.NoError(t, err)

	require.Len(t, fake.Sent, 1)
	tx := fake.Sent[0]
	assert.Equal(t, uint8(ethtypes.DynamicFeeTxType), tx.Type())
	assert.Equal(t, 0, tx.GasTipCap().Cmp(fake.GasTip))

	wantCap := new(big.Int).Add(fake.GasPrice, fake.GasTip)
	assert.Equal(t, 0, tx.GasFeeCap().Cmp(wantCap))
}

func TestSubmitContractMode(t *testing.T) {
	fake := chaintest.New().WithContract(testContract, 5)
	fake.Record = &gwtypes.TransactionRecord{
		ID:        4,
		Sender:    "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		Receiver:  testReceiver,
		AmountWei: "100000000000000000",
		Completed: true,
	}

	sub, err := New(fake)
	require.NoError(t, err)

	payment := testPayment(t)
	receipt, err := sub.Submit(context.Background(), payment, gwtypes.ModeContract)
	require.NoError(t, err)

	require.NotNil(t, receipt.TransactionID)
	assert.Equal(t, uint64(4), *receipt.TransactionID, "counter value before this call")
	require.NotNil(t, receipt.Record)
	assert.True(t, receipt.Record.Completed)

	require.Len(t, fake.Sent, 1)
	tx := fake.Sent[0]
	assert.Equal(t, common.HexToAddress(testContract), *tx.To())
	assert.Equal(t, 0, tx.Value().Cmp(payment.AmountWei), "value rides along with the call")
	// selector (4 bytes) + one address argument (32 bytes)
	assert.Len(t, tx.Data(), 36)
}

func TestSubmitContractModeRecordReadFailureIsBestEffort(t *testing.T) {
	fake := chaintest.New().WithContract(testContract, 3)
	// No Record configured: the read-back fails.

	sub, err := New(fake)
	require.NoError(t, err)

	receipt, err := sub.Submit(context.Background(), testPayment(t), gwtypes.ModeContract)
	require.NoError(t, err)
	require.NotNil(t, receipt.TransactionID)
	assert.Equal(t, uint64(2), *receipt.TransactionID)
	assert.Nil(t, receipt.Record)
}

func TestSubmitContractModeWithoutContract(t *testing.T) {
	fake := chaintest.New()
	sub, err := New(fake)
	require.NoError(t, err)

	_, err = sub.Submit(context.Background(), testPayment(t), gwtypes.ModeContract)
	require.Error(t, err)
	assert.Equal(t, gwtypes.ErrConfig, err.(*gwtypes.GatewayError).Code)
	assert.Zero(t, fake.Calls("SendTransaction"), "nothing must be broadcast")
}

func TestSubmitBroadcastErrorClassifiedNoRetry(t *testing.T) {
	fake := chaintest.New()
	fake.SendErr = errors.New("insufficient funds for gas * price + value")

	sub, err := New(fake)
	require.NoError(t, err)

	_, err = sub.Submit(context.Background(), testPayment(t), gwtypes.ModeDirect)
	require.Error(t, err)
	assert.Equal(t, gwtypes.ErrInsufficientFunds, err.(*gwtypes.GatewayError).Code)
	assert.Equal(t, 1, fake.Calls("SendTransaction"), "a failed broadcast is never retried")
	assert.Zero(t, fake.Calls("WaitForReceipt"))
}

func TestSubmitReceiptTimeout(t *testing.T) {
	fake := chaintest.New()
	fake.WaitErr = context.DeadlineExceeded

	sub, err := New(fake)
	require.NoError(t, err)

	_, err = sub.Submit(context.Background(), testPayment(t), gwtypes.ModeDirect)
	require.Error(t, err)
	assert.Equal(t, gwtypes.ErrNetwork, err.(*gwtypes.GatewayError).Code)
}

func TestSubmitRevertedTransaction(t *testing.T) {
	fake := chaintest.New()
	fake.Receipt.Status = ethtypes.ReceiptStatusFailed

	sub, err := New(fake)
	require.NoError(t, err)

	receipt, err := sub.Submit(context.Background(), testPayment(t), gwtypes.ModeDirect)
	require.NoError(t, err)
	assert.Equal(t, "error", receipt.Status)
}
