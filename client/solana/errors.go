package solana

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mintly-cc/mintly/client/solana/txsubmitter"
)

var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrAccountInUse        = errors.New("account already in use")
	ErrAccountNotFound     = errors.New("account not found")
	ErrConfirmationTimeout = txsubmitter.ErrConfirmationTimeout
	ErrTransactionFailed   = txsubmitter.ErrTransactionFailed
)

/*
LedgerError is returned by the Client methods. Kind is one of the sentinel errors
of the package (or nil when the reason couldn't be classified), both Kind and the
underlying error can be tested with errors.Is.
*/
type LedgerError struct {
	Op   string
	Kind error
	Err  error
}

func (e *LedgerError) Error() string {
	if e.Kind == nil || errors.Is(e.Err, e.Kind) {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *LedgerError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

// ledger error messages (simulation logs included) and what they mean
var errorPatterns = []struct {
	substr string
	kind   error
}{
	{"insufficient funds", ErrInsufficientFunds},
	{"insufficient lamports", ErrInsufficientFunds},
	{"no record of a prior credit", ErrInsufficientFunds},
	{"already in use", ErrAccountInUse},
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var le *LedgerError
	if errors.As(err, &le) {
		return err
	}
	return &LedgerError{Op: op, Kind: errorKind(err), Err: err}
}

func errorKind(err error) error {
	switch {
	case errors.Is(err, ErrConfirmationTimeout):
		return ErrConfirmationTimeout
	case errors.Is(err, ErrAccountNotFound):
		return ErrAccountNotFound
	}

	msg := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(msg, p.substr) {
			return p.kind
		}
	}
	if errors.Is(err, ErrTransactionFailed) {
		return ErrTransactionFailed
	}
	return nil
}
