package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	saleABIJSON = `[
{"inputs":[{"internalType":"uint256","name":"roundId","type":"uint256"}],"name":"participate","outputs":[],"stateMutability":"payable","type":"function"},
{"inputs":[],"name":"finishSale","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"getParticipation","outputs":[{"internalType":"uint256","name":"tokenAmount","type":"uint256"},{"internalType":"uint256","name":"participationAmount","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"totalRaised","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

	factoryABIJSON = `[
{"inputs":[],"name":"serviceFee","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

	erc20ABIJSON = `[
{"inputs":[],"name":"name","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"symbol","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"totalSupply","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`
)

var (
	saleABI    abi.ABI
	factoryABI abi.ABI
	erc20ABI   abi.ABI
)

func init() {
	parsed, err := abi.JSON(strings.NewReader(saleABIJSON))
	if err != nil {
		panic("failed to parse sale ABI: " + err.Error())
	}
	saleABI = parsed

	parsed, err = abi.JSON(strings.NewReader(factoryABIJSON))
	if err != nil {
		panic("failed to parse factory ABI: " + err.Error())
	}
	factoryABI = parsed

	parsed, err = abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		panic("failed to parse erc20 ABI: " + err.Error())
	}
	erc20ABI = parsed
}
