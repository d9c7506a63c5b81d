package clients

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gwtypes "github.com/merakinexus/payment-gateway/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		code gwtypes.ErrorCode
	}{
		{"insufficient funds for transfer", gwtypes.ErrInsufficientFunds},
		// "gas" also appears here; the funds pattern must win.
		{"insufficient funds for gas * price + value", gwtypes.ErrInsufficientFunds},
		{"INSUFFICIENT FUNDS", gwtypes.ErrInsufficientFunds},
		{"insufficient balance for transfer", gwtypes.ErrInsufficientFunds},
		{"user rejected the request", gwtypes.ErrUserRejected},
		{"MetaMask Tx Signature: User denied transaction signature", gwtypes.ErrUserRejected},
		{"nonce too low: next nonce 8, tx nonce 7", gwtypes.ErrNetwork},
		{"replacement transaction underpriced", gwtypes.ErrNetwork},
		{"already known", gwtypes.ErrNetwork},
		{"dial tcp 127.0.0.1:8545: connection refused", gwtypes.ErrNetwork},
		{"request timeout", gwtypes.ErrNetwork},
		{"intrinsic gas too low", gwtypes.ErrGasEstimation},
		{"gas required exceeds allowance", gwtypes.ErrGasEstimation},
		{"execution reverted", gwtypes.ErrTransactionFailed},
		{"something completely novel", gwtypes.ErrTransactionFailed},
	}

	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			gwErr := Classify(errors.New(tc.text))
			require.NotNil(t, gwErr)
			assert.Equal(t, tc.code, gwErr.Code)
			assert.NotEmpty(t, gwErr.Message)
			assert.Equal(t, tc.text, gwErr.Data, "raw text must travel in Data")
		})
	}
}

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestClassifyContextErrors(t *testing.T) {
	gwErr := Classify(fmt.Errorf("waiting for receipt: %w", context.DeadlineExceeded))
	require.NotNil(t, gwErr)
	assert.Equal(t, gwtypes.ErrNetwork, gwErr.Code)

	gwErr = Classify(context.Canceled)
	require.NotNil(t, gwErr)
	assert.Equal(t, gwtypes.ErrNetwork, gwErr.Code)
}

func TestClassifyPassesThroughGatewayErrors(t *testing.T) {
	orig := gwtypes.NewGatewayError(gwtypes.ErrConfig, "contract mode requested but no contract address configured")

	gwErr := Classify(fmt.Errorf("submit: %w", orig))
	assert.Same(t, orig, gwErr)
}
