package txsubmitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/blocto/solana-go-sdk/types"
)

const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"

	DefaultPollInterval = 500 * time.Millisecond
	DefaultTimeout      = 90 * time.Second
)

var (
	ErrConfirmationTimeout = errors.New("confirmation timeout")
	ErrTransactionFailed   = errors.New("transaction failed")
)

type (
	RpcClient interface {
		SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
		// GetSignatureStatus returns nil status when the ledger doesn't know the signature (yet).
		GetSignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error)
	}

	SignatureStatus struct {
		Slot       uint64
		Commitment string
		// non-nil when the transaction was executed but failed
		Err error
	}

	TxSubmission struct {
		// short human readable description used in logs, ie "create mint"
		Description string
		Transaction types.Transaction
		Signature   string
		Status      *SignatureStatus
	}

	TxSubmissionBatch struct {
		submissions  []*TxSubmission
		rpcClient    RpcClient
		commitment   string
		pollInterval time.Duration
		timeout      time.Duration
		log          *slog.Logger
	}

	Option func(*TxSubmissionBatch)
)

func WithPollInterval(d time.Duration) Option {
	return func(b *TxSubmissionBatch) {
		b.pollInterval = d
	}
}

func WithTimeout(d time.Duration) Option {
	return func(b *TxSubmissionBatch) {
		b.timeout = d
	}
}

// WithCommitment sets the commitment level transactions must reach to be considered confirmed.
func WithCommitment(commitment string) Option {
	return func(b *TxSubmissionBatch) {
		b.commitment = commitment
	}
}

func New(description string, tx types.Transaction) *TxSubmission {
	return &TxSubmission{
		Description: description,
		Transaction: tx,
	}
}

func (s *TxSubmission) ToBatch(rpcClient RpcClient, log *slog.Logger, opts ...Option) *TxSubmissionBatch {
	b := NewBatch(rpcClient, log, opts...)
	b.Add(s)
	return b
}

func (s *TxSubmission) Confirmed(commitment string) bool {
	return s.Status != nil && s.Status.Err == nil && commitmentReached(s.Status.Commitment, commitment)
}

func (s *TxSubmission) Failed() bool {
	return s.Status != nil && s.Status.Err != nil
}

func NewBatch(rpcClient RpcClient, log *slog.Logger, opts ...Option) *TxSubmissionBatch {
	b := &TxSubmissionBatch{
		rpcClient:    rpcClient,
		commitment:   CommitmentConfirmed,
		pollInterval: DefaultPollInterval,
		timeout:      DefaultTimeout,
		log:          log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (t *TxSubmissionBatch) Add(sub *TxSubmission) {
	t.submissions = append(t.submissions, sub)
}

func (t *TxSubmissionBatch) Submissions() []*TxSubmission {
	return t.submissions
}

/*
SendTx sends all the transactions of the batch and when "confirmTx" is true waits
until all of them have reached the commitment level of the batch.
*/
func (t *TxSubmissionBatch) SendTx(ctx context.Context, confirmTx bool) error {
	if len(t.submissions) == 0 {
		return errors.New("no transactions to send")
	}
	for _, sub := range t.submissions {
		sig, err := t.rpcClient.SendTransaction(ctx, sub.Transaction)
		if err != nil {
			return fmt.Errorf("sending %s transaction: %w", sub.Description, err)
		}
		sub.Signature = sig
		t.log.DebugContext(ctx, "transaction sent", slog.String("tx", sub.Description), slog.String("signature", sig))
	}
	if confirmTx {
		return t.confirmTx(ctx)
	}
	return nil
}

// Confirm waits for transactions which were sent by other means, ie faucet transfers.
func (t *TxSubmissionBatch) Confirm(ctx context.Context) error {
	if len(t.submissions) == 0 {
		return errors.New("no transactions to confirm")
	}
	return t.confirmTx(ctx)
}

func (t *TxSubmissionBatch) confirmTx(ctx context.Context) error {
	t.log.DebugContext(ctx, "Confirming submitted transactions", slog.String("commitment", t.commitment))
	deadline := time.Now().Add(t.timeout)

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("confirming transactions interrupted: %w", err)
		}

		unconfirmed := false
		for _, sub := range t.submissions {
			if sub.Confirmed(t.commitment) {
				continue
			}
			status, err := t.rpcClient.GetSignatureStatus(ctx, sub.Signature)
			if err != nil {
				return fmt.Errorf("reading status of %s transaction: %w", sub.Description, err)
			}
			if status != nil {
				sub.Status = status
				if status.Err != nil {
					t.log.InfoContext(ctx, fmt.Sprintf("Tx failed: %s, signature=%s", sub.Description, sub.Signature), slog.Any("err", status.Err))
					return fmt.Errorf("%w: %s (%s): %w", ErrTransactionFailed, sub.Description, sub.Signature, status.Err)
				}
				if sub.Confirmed(t.commitment) {
					t.log.DebugContext(ctx, fmt.Sprintf("Tx confirmed: %s, signature=%s, slot=%d", sub.Description, sub.Signature, status.Slot))
				}
			}
			unconfirmed = unconfirmed || !sub.Confirmed(t.commitment)
		}
		if !unconfirmed {
			t.log.DebugContext(ctx, "All transactions confirmed")
			return nil
		}

		if time.Now().After(deadline) {
			for _, sub := range t.submissions {
				if !sub.Confirmed(t.commitment) {
					t.log.InfoContext(ctx, fmt.Sprintf("Tx not confirmed: %s, signature=%s", sub.Description, sub.Signature))
				}
			}
			return fmt.Errorf("%w: transactions not %s within %s", ErrConfirmationTimeout, t.commitment, t.timeout)
		}

		select {
		case <-ctx.Done():
		case <-time.After(t.pollInterval):
		}
	}
}

func commitmentReached(actual, required string) bool {
	return commitmentRank(actual) >= commitmentRank(required)
}

func commitmentRank(c string) int {
	switch c {
	case CommitmentProcessed:
		return 1
	case CommitmentConfirmed:
		return 2
	case CommitmentFinalized:
		return 3
	default:
		return 0
	}
}
