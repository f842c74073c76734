package relayer

import (
	"errors"
	"fmt"
)

// Speed is the fee tier a relayer uses when submitting a transaction.
type Speed string

const (
	SpeedAverage Speed = "average"
	SpeedFast    Speed = "fast"
	SpeedFastest Speed = "fastest"
)

func ParseSpeed(s string) (Speed, error) {
	switch sp := Speed(s); sp {
	case SpeedAverage, SpeedFast, SpeedFastest:
		return sp, nil
	default:
		return "", fmt.Errorf("unknown speed %q, expected one of average, fast, fastest", s)
	}
}

// Transaction statuses reported by the relayer.
const (
	StatusPending   = "pending"
	StatusSent      = "sent"
	StatusSubmitted = "submitted"
	StatusMined     = "mined"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
	StatusExpired   = "expired"
)

// ErrUnsuccessful is returned by Envelope.Err when the relayer answered with
// success set to false.
type ErrUnsuccessful struct {
	Message string
}

func (e ErrUnsuccessful) Error() string {
	if e.Message == "" {
		return "relayer request unsuccessful"
	}
	return fmt.Sprintf("relayer request unsuccessful: %s", e.Message)
}

var ErrEmptyTransactionID = errors.New("relayer accepted transaction without an id")

type (
	// Envelope is the common shape of every relayer response.
	Envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error,omitempty"`
	}

	Pagination struct {
		CurrentPage int `json:"current_page"`
		PerPage     int `json:"per_page"`
		TotalItems  int `json:"total_items"`
	}

	Relayer struct {
		ID             string `json:"id"`
		Name           string `json:"name"`
		Address        string `json:"address"`
		Network        string `json:"network"`
		NetworkType    string `json:"network_type"`
		Paused         bool   `json:"paused"`
		SystemDisabled bool   `json:"system_disabled"`
		// Policies is passed through as the relayer reports it.
		Policies map[string]any `json:"policies,omitempty"`
	}

	ListRelayersResponse struct {
		Envelope
		Data       []Relayer   `json:"data"`
		Pagination *Pagination `json:"pagination,omitempty"`
	}

	Balance struct {
		Balance float64 `json:"balance"`
		Unit    string  `json:"unit"`
	}

	BalanceResponse struct {
		Envelope
		Data Balance `json:"data"`
	}

	// TransactionRequest asks a relayer to send value and data to an address.
	TransactionRequest struct {
		Value    uint64 `json:"value"`
		To       string `json:"to"`
		Data     string `json:"data"`
		GasLimit uint64 `json:"gas_limit"`
		Speed    Speed  `json:"speed"`
	}

	Transaction struct {
		ID          string `json:"id"`
		Hash        string `json:"hash"`
		Status      string `json:"status"`
		CreatedAt   string `json:"created_at"`
		SentAt      string `json:"sent_at"`
		ConfirmedAt string `json:"confirmed_at"`
		GasPrice    string `json:"gas_price"`
		GasLimit    uint64 `json:"gas_limit"`
		Nonce       uint64 `json:"nonce"`
		Value       string `json:"value"`
		From        string `json:"from"`
		To          string `json:"to"`
		RelayerID   string `json:"relayer_id"`
	}

	TransactionResponse struct {
		Envelope
		Data Transaction `json:"data"`
	}
)

// Err converts an unsuccessful envelope into an error.
func (e Envelope) Err() error {
	if e.Success {
		return nil
	}
	return ErrUnsuccessful{Message: e.Error}
}

// Available reports whether the relayer can currently submit transactions.
func (r Relayer) Available() bool {
	return !r.Paused && !r.SystemDisabled
}

// Mined reports whether the transaction has been included in a block.
func (t Transaction) Mined() bool {
	return t.Status == StatusMined || t.Status == StatusConfirmed
}

// Failed reports whether the transaction reached a terminal failure state.
func (t Transaction) Failed() bool {
	switch t.Status {
	case StatusFailed, StatusCanceled, StatusExpired:
		return true
	}
	return false
}
