// Package chain adapts the launchpad contract surface over Ethereum RPC:
// balance and participation reads, gas estimation, transaction submission,
// and confirmation tracking.
package chain

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"launchpad-client/internal/participation"
	"launchpad-client/internal/sale"
)

// Options parameterise the chain client.
type Options struct {
	RPCURL         string
	ChainID        int64
	RequestTimeout time.Duration
	ConfirmTimeout time.Duration
	FactoryAddress string
}

// Client provides read and write access to a sale contract.
type Client struct {
	opts      Options
	logger    zerolog.Logger
	client    *ethclient.Client
	clientMux sync.Mutex
}

// NewClient builds a lazily-dialled chain client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	return &Client{opts: opts, logger: logger.With().Str("component", "chain_client").Logger()}
}

func (c *Client) getClient(ctx context.Context) (*ethclient.Client, error) {
	c.clientMux.Lock()
	defer c.clientMux.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	if c.opts.RPCURL == "" {
		return nil, errors.New("chain rpc url not configured")
	}

	client, err := ethclient.DialContext(ctx, c.opts.RPCURL)
	if err != nil {
		return nil, err
	}
	c.client = client
	return client, nil
}

func (c *Client) callTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := c.opts.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// ReadBalance returns the native-currency balance of an account in wei.
func (c *Client) ReadBalance(ctx context.Context, account common.Address) (decimal.Decimal, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}

	balance, err := client.BalanceAt(ctx, account, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromBigInt(balance, 0), nil
}

// ReadParticipation returns the recorded contribution of an account.
func (c *Client) ReadParticipation(ctx context.Context, saleAddr, account common.Address) (participation.Record, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return participation.Record{}, err
	}

	payload, err := saleABI.Pack("getParticipation", account)
	if err != nil {
		return participation.Record{}, err
	}

	res, err := client.CallContract(ctx, ethereum.CallMsg{To: &saleAddr, Data: payload}, nil)
	if err != nil {
		return participation.Record{}, err
	}

	outputs, err := saleABI.Unpack("getParticipation", res)
	if err != nil {
		return participation.Record{}, err
	}
	if len(outputs) != 2 {
		return participation.Record{}, errors.New("unexpected getParticipation response")
	}

	tokens, ok := outputs[0].(*big.Int)
	if !ok {
		return participation.Record{}, errors.New("failed to decode token amount")
	}
	native, ok := outputs[1].(*big.Int)
	if !ok {
		return participation.Record{}, errors.New("failed to decode participation amount")
	}

	return participation.Record{
		TokenAmount:  decimal.NewFromBigInt(tokens, 0),
		NativeAmount: decimal.NewFromBigInt(native, 0),
	}, nil
}

// ReadRaised returns the sale's total raised amount in wei.
func (c *Client) ReadRaised(ctx context.Context, saleAddr common.Address) (decimal.Decimal, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}

	payload, err := saleABI.Pack("totalRaised")
	if err != nil {
		return decimal.Decimal{}, err
	}

	res, err := client.CallContract(ctx, ethereum.CallMsg{To: &saleAddr, Data: payload}, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}

	outputs, err := saleABI.Unpack("totalRaised", res)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(outputs) != 1 {
		return decimal.Decimal{}, errors.New("unexpected totalRaised response")
	}

	raised, ok := outputs[0].(*big.Int)
	if !ok {
		return decimal.Decimal{}, errors.New("failed to decode totalRaised output")
	}
	return decimal.NewFromBigInt(raised, 0), nil
}

// TokenInfo reads ERC-20 metadata for the token on offer. Used to fill in
// fields the sale API response leaves empty.
func (c *Client) TokenInfo(ctx context.Context, tokenAddr common.Address) (sale.TokenMeta, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return sale.TokenMeta{}, err
	}

	meta := sale.TokenMeta{Address: tokenAddr}

	call := func(method string, out interface{}) error {
		payload, packErr := erc20ABI.Pack(method)
		if packErr != nil {
			return packErr
		}
		res, callErr := client.CallContract(ctx, ethereum.CallMsg{To: &tokenAddr, Data: payload}, nil)
		if callErr != nil {
			return callErr
		}
		outputs, unpackErr := erc20ABI.Unpack(method, res)
		if unpackErr != nil {
			return unpackErr
		}
		if len(outputs) != 1 {
			return errors.New("unexpected " + method + " response")
		}
		switch v := out.(type) {
		case *string:
			s, ok := outputs[0].(string)
			if !ok {
				return errors.New("failed to decode " + method + " output")
			}
			*v = s
		case *uint8:
			d, ok := outputs[0].(uint8)
			if !ok {
				return errors.New("failed to decode " + method + " output")
			}
			*v = d
		case **big.Int:
			b, ok := outputs[0].(*big.Int)
			if !ok {
				return errors.New("failed to decode " + method + " output")
			}
			*v = b
		}
		return nil
	}

	if err := call("name", &meta.Name); err != nil {
		return sale.TokenMeta{}, err
	}
	if err := call("symbol", &meta.Symbol); err != nil {
		return sale.TokenMeta{}, err
	}
	if err := call("decimals", &meta.Decimals); err != nil {
		return sale.TokenMeta{}, err
	}

	var supply *big.Int
	if err := call("totalSupply", &supply); err != nil {
		return sale.TokenMeta{}, err
	}
	if supply != nil {
		meta.TotalSupply = decimal.NewFromBigInt(supply, 0)
	}

	return meta, nil
}

// ServiceFee reads the factory's service fee in wei.
func (c *Client) ServiceFee(ctx context.Context) (decimal.Decimal, error) {
	if c.opts.FactoryAddress == "" {
		return decimal.Decimal{}, errors.New("factory address not configured")
	}

	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}

	factory := common.HexToAddress(c.opts.FactoryAddress)
	payload, err := factoryABI.Pack("serviceFee")
	if err != nil {
		return decimal.Decimal{}, err
	}

	res, err := client.CallContract(ctx, ethereum.CallMsg{To: &factory, Data: payload}, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}

	outputs, err := factoryABI.Unpack("serviceFee", res)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(outputs) != 1 {
		return decimal.Decimal{}, errors.New("unexpected serviceFee response")
	}

	fee, ok := outputs[0].(*big.Int)
	if !ok {
		return decimal.Decimal{}, errors.New("failed to decode serviceFee output")
	}
	return decimal.NewFromBigInt(fee, 0), nil
}
