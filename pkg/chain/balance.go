package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
)

type Balance struct {
	Address common.Address `json:"address"`
	Wei     *big.Int       `json:"wei"`
	Ether   string         `json:"ether"`
}

// BalanceOf returns the latest balance of addr.
func BalanceOf(ctx context.Context, client Client, addr common.Address) (Balance, error) {
	wei, err := client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return Balance{}, fmt.Errorf("getting balance of %s: %w", addr, err)
	}
	return Balance{Address: addr, Wei: wei, Ether: FormatEther(wei)}, nil
}

// FormatEther renders a wei amount in ether without losing precision.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	neg := wei.Sign() < 0
	abs := new(big.Int).Abs(wei)
	whole, frac := new(big.Int).QuoRem(abs, big.NewInt(params.Ether), new(big.Int))

	out := whole.String()
	if frac.Sign() != 0 {
		f := fmt.Sprintf("%018s", frac.String())
		out += "." + strings.TrimRight(f, "0")
	}
	if neg {
		out = "-" + out
	}
	return out
}
