package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/merakinexus/payment-gateway/metrics"
	gwtypes "github.com/merakinexus/payment-gateway/types"
)

// errorEnvelope is the shape of every non-2xx body.
type errorEnvelope struct {
	Status    string      `json:"status"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// paymentResponse echoes the request identity alongside the receipt.
type paymentResponse struct {
	Status        string                     `json:"status"`
	Sender        string                     `json:"sender"`
	Receiver      string                     `json:"receiver"`
	Amount        string                     `json:"amount"`
	TxHash        string                     `json:"transactionHash"`
	TransactionID *uint64                    `json:"transactionId,omitempty"`
	GasUsed       uint64                     `json:"gasUsed"`
	BlockNumber   uint64                     `json:"blockNumber"`
	Record        *gwtypes.TransactionRecord `json:"record,omitempty"`
	Timestamp     time.Time                  `json:"timestamp"`
}

type healthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Blockchain  string            `json:"blockchain"`
	Contract    string            `json:"contract"`
	Environment map[string]string `json:"environment"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:     "healthy",
		Timestamp:  time.Now().UTC(),
		Blockchain: orNotSet(s.health.RPCURL),
		Contract:   orNotSet(s.health.ContractAddress),
		Environment: map[string]string{
			"NODE_ENV":         s.health.Environment,
			"CONTRACT_ADDRESS": setOrNot(s.health.ContractAddress != ""),
			"PRIVATE_KEY":      setOrNot(s.health.SigningKeySet),
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	var req gwtypes.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}

	// The callback target may travel in the body or as a query parameter
	// so the browser path can use the same mechanism.
	callback := req.Callback
	if callback == "" {
		callback = r.URL.Query().Get("callback")
	}

	receipt, err := s.processor.ProcessPayment(r.Context(), &req)
	if err != nil {
		var gwErr *gwtypes.GatewayError
		if !errors.As(err, &gwErr) {
			gwErr = &gwtypes.GatewayError{
				Code:    gwtypes.ErrTransactionFailed,
				Message: "Transaction failed",
			}
		}

		status := http.StatusInternalServerError
		if gwErr.Code.ClientError() {
			status = http.StatusBadRequest
		}

		var details interface{}
		if !s.production && !gwErr.Code.ClientError() {
			details = gwErr.Data
		}

		body := errorEnvelope{
			Status:    "error",
			Message:   gwErr.Message,
			Details:   details,
			Timestamp: time.Now().UTC(),
		}
		writeJSON(w, status, body)
		s.deliverCallback(callback, body)
		return
	}

	resp := paymentResponse{
		Status:        receipt.Status,
		Sender:        req.Sender,
		Receiver:      req.Receiver,
		Amount:        req.Amount + " ETH",
		TxHash:        receipt.TxHash,
		TransactionID: receipt.TransactionID,
		GasUsed:       receipt.GasUsed,
		BlockNumber:   receipt.BlockNumber,
		Record:        receipt.Record,
		Timestamp:     receipt.Timestamp,
	}
	writeJSON(w, http.StatusOK, resp)
	s.deliverCallback(callback, resp)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	s.writeError(w, http.StatusNotFound, "Not found", nil)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	// Preflights reach here because the routes only declare GET/POST.
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string, details interface{}) {
	writeJSON(w, status, errorEnvelope{
		Status:    "error",
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) countCallback(ok bool) {
	name := metrics.CounterCallbackDelivered
	if !ok {
		name = metrics.CounterCallbackFailed
	}
	s.metrics.IncCounter(name, map[string]string{"mode": ""})
}

func orNotSet(v string) string {
	if v == "" {
		return "Not set"
	}
	return v
}

func setOrNot(set bool) string {
	if set {
		return "Set"
	}
	return "Not set"
}
