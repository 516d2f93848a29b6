package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/memoio/vana-wallet/lib/address"
	logging "github.com/memoio/vana-wallet/lib/log"
)

var logger = logging.Logger("chain")

// Client reads account state from an rpc endpoint. Each call dials anew.
type Client struct {
	endPoint string
}

func NewClient(endPoint string) *Client {
	return &Client{endPoint: endPoint}
}

// Balance returns the latest balance of addr in wei.
func (c *Client) Balance(ctx context.Context, addr address.Address) (*big.Int, error) {
	client, err := ethclient.DialContext(ctx, c.endPoint)
	if err != nil {
		return nil, xerrors.Errorf("dial %s: %w", c.endPoint, err)
	}
	defer client.Close()

	val, err := client.BalanceAt(ctx, addr.Common(), nil)
	if err != nil {
		return nil, xerrors.Errorf("balance of %s: %w", addr, err)
	}
	logger.Debugw("balance", "address", addr, "wei", val)
	return val, nil
}

const maxInflight = 4

// Balances reads the balances of addrs over one connection, in order.
func (c *Client) Balances(ctx context.Context, addrs []address.Address) ([]*big.Int, error) {
	client, err := ethclient.DialContext(ctx, c.endPoint)
	if err != nil {
		return nil, xerrors.Errorf("dial %s: %w", c.endPoint, err)
	}
	defer client.Close()

	res := make([]*big.Int, len(addrs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInflight)
	for i, addr := range addrs {
		i, addr := i, addr
		g.Go(func() error {
			val, err := client.BalanceAt(gctx, addr.Common(), nil)
			if err != nil {
				return xerrors.Errorf("balance of %s: %w", addr, err)
			}
			res[i] = val
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// ChainID asks the endpoint for its chain id.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	client, err := ethclient.DialContext(ctx, c.endPoint)
	if err != nil {
		return nil, xerrors.Errorf("dial %s: %w", c.endPoint, err)
	}
	defer client.Close()

	return client.ChainID(ctx)
}

// FormatEther renders wei as a decimal ether amount.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	f := new(big.Float).SetPrec(256).SetInt(wei)
	f.Quo(f, big.NewFloat(1e18))
	return f.Text('f', 6)
}
