// Package validation turns a raw PaymentRequest into a ValidatedPayment
// or a structured rejection. Checks run in a fixed order and stop at the
// first failure; nothing here touches the network.
package validation

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-playground/validator/v10"

	gwtypes "github.com/merakinexus/payment-gateway/types"
	"github.com/merakinexus/payment-gateway/utils"
)

// Validator checks payment requests. Construct once and share; it is
// safe for concurrent use.
type Validator struct {
	validate *validator.Validate

	// defaultKey is the deployment-wide signing key, used when the
	// request carries none. Empty means every request must bring its own.
	defaultKey string

	// rejectSelfPayment additionally enforces sender != receiver at this
	// layer. Off by default; the payment contract owns the rule otherwise.
	rejectSelfPayment bool
}

type Option func(*Validator)

// WithDefaultSigningKey sets the fallback key for requests that omit
// senderPrivateKey.
func WithDefaultSigningKey(keyHex string) Option {
	return func(v *Validator) { v.defaultKey = keyHex }
}

// WithSelfPaymentRejection makes the validator refuse sender == receiver.
func WithSelfPaymentRejection() Option {
	return func(v *Validator) { v.rejectSelfPayment = true }
}

func New(opts ...Option) *Validator {
	v := &Validator{
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the full check sequence. The returned error is always a
// *types.GatewayError with a validation code.
func (v *Validator) Validate(req *gwtypes.PaymentRequest) (*gwtypes.ValidatedPayment, error) {
	// 1. Required fields.
	if err := v.validate.Struct(req); err != nil {
		missing := make([]string, 0, 3)
		for _, fe := range err.(validator.ValidationErrors) {
			missing = append(missing, fieldName(fe.Field()))
		}
		return nil, &gwtypes.GatewayError{
			Code:    gwtypes.ErrMissingField,
			Message: "Missing required fields: " + strings.Join(missing, ", "),
		}
	}

	keyHex := req.SenderPrivateKey
	if keyHex == "" {
		keyHex = v.defaultKey
	}
	if keyHex == "" {
		return nil, gwtypes.NewGatewayError(gwtypes.ErrMissingField,
			"Missing required fields: senderPrivateKey")
	}

	// 2. Address syntax.
	if !common.IsHexAddress(req.Sender) || !common.IsHexAddress(req.Receiver) {
		return nil, gwtypes.NewGatewayError(gwtypes.ErrInvalidAddress,
			"Invalid Ethereum addresses")
	}

	sender := common.HexToAddress(req.Sender)
	receiver := common.HexToAddress(req.Receiver)

	if v.rejectSelfPayment && sender == receiver {
		return nil, gwtypes.NewGatewayError(gwtypes.ErrInvalidAddress,
			"Sender and receiver must differ")
	}

	// 3. Amount.
	amount, err := utils.ParseEtherAmount(req.Amount)
	if err != nil {
		return nil, gwtypes.NewGatewayError(gwtypes.ErrInvalidAmount,
			"Amount must be a positive number")
	}
	amountWei, err := utils.EtherToWei(amount)
	if err != nil {
		return nil, gwtypes.NewGatewayError(gwtypes.ErrInvalidAmount,
			"Amount must be a positive number")
	}

	// 4. Key derivation and sender cross-check.
	key, err := crypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		return nil, gwtypes.NewGatewayError(gwtypes.ErrInvalidKey,
			"Invalid private key format")
	}

	derived := crypto.PubkeyToAddress(key.PublicKey)
	if !strings.EqualFold(derived.Hex(), sender.Hex()) {
		return nil, gwtypes.NewGatewayError(gwtypes.ErrSenderKeyMismatch,
			"Sender address does not match the provided private key")
	}

	return &gwtypes.ValidatedPayment{
		Sender:    sender,
		Receiver:  receiver,
		Amount:    amount,
		AmountWei: amountWei,
		Key:       key,
	}, nil
}

// fieldName maps struct field names back to their wire names.
func fieldName(field string) string {
	switch field {
	case "Sender":
		return "sender"
	case "Receiver":
		return "receiver"
	case "Amount":
		return "amount"
	default:
		return field
	}
}
