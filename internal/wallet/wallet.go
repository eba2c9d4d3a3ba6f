// Package wallet supplies the signing capability consumed by the chain
// adapter. An unconfigured key yields a disconnected wallet; read-only
// operation remains available.
package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNotConnected indicates a signing operation without a configured key.
var ErrNotConnected = errors.New("wallet: not connected")

// Wallet holds the account key, if any.
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// New builds a wallet from a hex-encoded private key. An empty key returns
// a disconnected wallet rather than an error.
func New(privateKeyHex string) (*Wallet, error) {
	keyHex := strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if keyHex == "" {
		return &Wallet{}, nil
	}

	privateKey, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("unexpected public key type")
	}

	return &Wallet{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(*publicKey),
	}, nil
}

// Connected reports whether a signing key is loaded.
func (w *Wallet) Connected() bool {
	return w != nil && w.privateKey != nil
}

// Address returns the wallet account. The zero address means disconnected.
func (w *Wallet) Address() common.Address {
	if !w.Connected() {
		return common.Address{}
	}
	return w.address
}

// SignTx signs a transaction for the given chain.
func (w *Wallet) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if !w.Connected() {
		return nil, ErrNotConnected
	}
	return types.SignTx(tx, types.NewEIP155Signer(chainID), w.privateKey)
}
