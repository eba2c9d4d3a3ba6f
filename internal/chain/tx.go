package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
)

// ErrReverted indicates a mined transaction whose execution failed.
var ErrReverted = errors.New("transaction execution reverted")

// Signer provides the account and transaction-signing capability. The
// wallet package implements it; tests stub it.
type Signer interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// TxHandle tracks one submitted transaction until confirmation.
type TxHandle struct {
	hash    common.Hash
	client  *Client
	timeout time.Duration
}

// Hash returns the transaction hash.
func (h *TxHandle) Hash() common.Hash {
	return h.hash
}

// AwaitConfirmation blocks until the transaction is mined. A receipt with
// failed status returns ErrReverted.
func (h *TxHandle) AwaitConfirmation(ctx context.Context) error {
	timeout := h.timeout
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := h.client.getClient(ctx)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for transaction %s: %w", h.hash.Hex(), ctx.Err())
		case <-ticker.C:
			receipt, err := client.TransactionReceipt(ctx, h.hash)
			if err != nil || receipt == nil {
				// Not mined yet; keep polling.
				continue
			}
			if receipt.Status == types.ReceiptStatusFailed {
				return fmt.Errorf("transaction %s: %w", h.hash.Hex(), ErrReverted)
			}
			return nil
		}
	}
}

func participateCallData(roundID uint64) ([]byte, error) {
	return saleABI.Pack("participate", new(big.Int).SetUint64(roundID))
}

// EstimateParticipate dry-runs the contribution call and returns the gas
// estimate. A failing estimate means the contract-side guards would reject
// the call; no funds are risked.
func (c *Client) EstimateParticipate(ctx context.Context, signer Signer, saleAddr common.Address, roundID uint64, valueWei decimal.Decimal) (uint64, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return 0, err
	}

	data, err := participateCallData(roundID)
	if err != nil {
		return 0, err
	}

	from := signer.Address()
	return client.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &saleAddr,
		Data:  data,
		Value: valueWei.BigInt(),
	})
}

// SubmitParticipate signs and sends the contribution call with the amount
// attached as native value, returning a handle for confirmation tracking.
func (c *Client) SubmitParticipate(ctx context.Context, signer Signer, saleAddr common.Address, roundID uint64, valueWei decimal.Decimal) (*TxHandle, error) {
	data, err := participateCallData(roundID)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, signer, saleAddr, data, valueWei.BigInt())
}

// SubmitFinish signs and sends the finishSale call.
func (c *Client) SubmitFinish(ctx context.Context, signer Signer, saleAddr common.Address) (*TxHandle, error) {
	data, err := saleABI.Pack("finishSale")
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, signer, saleAddr, data, nil)
}

func (c *Client) submit(ctx context.Context, signer Signer, to common.Address, data []byte, value *big.Int) (*TxHandle, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return nil, err
	}

	from := signer.Address()

	nonce, err := client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("fetch nonce: %w", err)
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}

	gasLimit, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &to,
		Data:  data,
		Value: value,
	})
	if err != nil {
		return nil, fmt.Errorf("estimate gas: %w", err)
	}
	// Headroom against estimation drift between blocks.
	gasLimit = gasLimit * 120 / 100

	tx := types.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)

	signedTx, err := signer.SignTx(tx, big.NewInt(c.opts.ChainID))
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	if err := client.SendTransaction(ctx, signedTx); err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}

	c.logger.Info().
		Str("tx_hash", signedTx.Hash().Hex()).
		Str("to", to.Hex()).
		Uint64("nonce", nonce).
		Uint64("gas_limit", gasLimit).
		Msg("transaction sent")

	return &TxHandle{hash: signedTx.Hash(), client: c, timeout: c.opts.ConfirmTimeout}, nil
}
