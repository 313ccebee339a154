package rpcclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
)

// ErrExecutionFailed is returned when a transaction was included but failed.
var ErrExecutionFailed = errors.New("transaction execution failed")

// ExecutionStatus is the final status of a transaction or receipt.
type ExecutionStatus struct {
	// SuccessValue is the base64 return value of a successful call, empty for no value.
	SuccessValue *string `json:"SuccessValue,omitempty"`
	// SuccessReceiptID is set when the outcome is another receipt.
	SuccessReceiptID *string `json:"SuccessReceiptId,omitempty"`
	// Failure holds the structured failure when the execution failed.
	Failure json.RawMessage `json:"Failure,omitempty"`
}

// TransactionView is the transaction echoed back by the node.
type TransactionView struct {
	SignerID   string `json:"signer_id"`
	ReceiverID string `json:"receiver_id"`
	Nonce      uint64 `json:"nonce"`
	Hash       string `json:"hash"`
}

// ExecutionOutcome is the outcome of a transaction or receipt.
type ExecutionOutcome struct {
	Logs        []string        `json:"logs"`
	GasBurnt    uint64          `json:"gas_burnt"`
	TokensBurnt string          `json:"tokens_burnt"`
	Status      ExecutionStatus `json:"status"`
}

// OutcomeWithID pairs an outcome with the receipt or transaction id it belongs to.
type OutcomeWithID struct {
	ID      string           `json:"id"`
	Outcome ExecutionOutcome `json:"outcome"`
}

// FinalExecutionOutcome is the result of broadcast_tx_commit.
type FinalExecutionOutcome struct {
	Status             ExecutionStatus `json:"status"`
	Transaction        TransactionView `json:"transaction"`
	TransactionOutcome OutcomeWithID   `json:"transaction_outcome"`
	ReceiptsOutcome    []OutcomeWithID `json:"receipts_outcome"`
}

// Logs returns the logs of every receipt in execution order.
func (o FinalExecutionOutcome) Logs() []string {
	var logs []string
	logs = append(logs, o.TransactionOutcome.Outcome.Logs...)
	for _, r := range o.ReceiptsOutcome {
		logs = append(logs, r.Outcome.Logs...)
	}

	return logs
}

// ReturnValue returns the decoded return value of a successful transaction, nil when the call
// returned nothing, or ErrExecutionFailed.
func (o FinalExecutionOutcome) ReturnValue() ([]byte, error) {
	if len(o.Status.Failure) > 0 && string(o.Status.Failure) != "null" {
		return nil, fmt.Errorf("%w: %s: %s", ErrExecutionFailed, o.Transaction.Hash, o.Status.Failure)
	}
	if o.Status.SuccessValue == nil {
		return nil, nil
	}

	b, err := base64.StdEncoding.DecodeString(*o.Status.SuccessValue)
	if err != nil {
		return nil, fmt.Errorf("invalid success value of %s: %w", o.Transaction.Hash, err)
	}

	return b, nil
}

// BroadcastTxCommit submits a signed transaction and waits until it is executed.
func (c *Client) BroadcastTxCommit(ctx context.Context, tx SignedTransaction) (FinalExecutionOutcome, error) {
	b, err := tx.Encode()
	if err != nil {
		return FinalExecutionOutcome{}, fmt.Errorf("failed to encode transaction: %w", err)
	}

	var out FinalExecutionOutcome
	if err := c.call(ctx, "broadcast_tx_commit", []string{base64.StdEncoding.EncodeToString(b)}, &out); err != nil {
		return FinalExecutionOutcome{}, err
	}

	return out, nil
}

// FunctionCallRequest describes a signed function call.
type FunctionCallRequest struct {
	Signer   string
	Key      KeyPair
	Receiver string
	Method   string
	Args     []byte
	Gas      uint64
	Deposit  *big.Int
}

// SignAndSendFunctionCall builds a single action transaction for req using the next nonce of
// the signer's access key and the latest final block, signs it and broadcasts it.
func (c *Client) SignAndSendFunctionCall(ctx context.Context, req FunctionCallRequest) (FinalExecutionOutcome, error) {
	pk := req.Key.PublicKey()

	key, err := c.ViewAccessKey(ctx, req.Signer, pk)
	if err != nil {
		return FinalExecutionOutcome{}, fmt.Errorf("failed to get access key nonce: %w", err)
	}

	block, err := c.LatestBlock(ctx)
	if err != nil {
		return FinalExecutionOutcome{}, fmt.Errorf("failed to get latest block: %w", err)
	}
	blockHash, err := DecodeHash(block.Hash)
	if err != nil {
		return FinalExecutionOutcome{}, err
	}

	tx := Transaction{
		SignerID:   req.Signer,
		PublicKey:  pk,
		Nonce:      key.Nonce + 1,
		ReceiverID: req.Receiver,
		BlockHash:  blockHash,
		Actions: []FunctionCall{{
			MethodName: req.Method,
			Args:       req.Args,
			Gas:        req.Gas,
			Deposit:    req.Deposit,
		}},
	}

	signed, err := tx.Sign(req.Key)
	if err != nil {
		return FinalExecutionOutcome{}, err
	}

	return c.BroadcastTxCommit(ctx, signed)
}
