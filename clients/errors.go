package clients

import (
	"context"
	"errors"
	"strings"

	gwtypes "github.com/merakinexus/payment-gateway/types"
)

// classification maps one substring of a node error message to an error
// code. The table is ordered and the first match wins, so broader
// patterns ("gas") must come after the narrower ones that contain them
// ("insufficient funds for gas").
type classification struct {
	substr string
	code   gwtypes.ErrorCode
}

var classificationTable = []classification{
	{"insufficient funds", gwtypes.ErrInsufficientFunds},
	{"insufficient balance", gwtypes.ErrInsufficientFunds},
	{"user rejected", gwtypes.ErrUserRejected},
	{"user denied", gwtypes.ErrUserRejected},
	{"nonce too low", gwtypes.ErrNetwork},
	{"replacement transaction underpriced", gwtypes.ErrNetwork},
	{"already known", gwtypes.ErrNetwork},
	{"connection refused", gwtypes.ErrNetwork},
	{"connection reset", gwtypes.ErrNetwork},
	{"no such host", gwtypes.ErrNetwork},
	{"timeout", gwtypes.ErrNetwork},
	{"deadline exceeded", gwtypes.ErrNetwork},
	{"gas", gwtypes.ErrGasEstimation},
}

// messages surfaced for each execution code; node error text only travels
// in GatewayError.Data, never in Message.
var codeMessages = map[gwtypes.ErrorCode]string{
	gwtypes.ErrInsufficientFunds: "Insufficient funds for transaction",
	gwtypes.ErrUserRejected:      "Transaction rejected by user",
	gwtypes.ErrGasEstimation:     "Gas estimation failed",
	gwtypes.ErrNetwork:           "Blockchain node unreachable or transaction not accepted",
	gwtypes.ErrTransactionFailed: "Transaction failed",
}

// Classify maps a chain client error to the gateway taxonomy. A
// *GatewayError passes through untouched; anything unmatched becomes
// TRANSACTION_FAILED.
func Classify(err error) *gwtypes.GatewayError {
	if err == nil {
		return nil
	}

	var gwErr *gwtypes.GatewayError
	if errors.As(err, &gwErr) {
		return gwErr
	}

	code := gwtypes.ErrTransactionFailed
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		code = gwtypes.ErrNetwork
	} else {
		text := strings.ToLower(err.Error())
		for _, entry := range classificationTable {
			if strings.Contains(text, entry.substr) {
				code = entry.code
				break
			}
		}
	}

	return &gwtypes.GatewayError{
		Code:    code,
		Message: codeMessages[code],
		Data:    err.Error(),
	}
}
