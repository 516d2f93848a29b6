package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"golang.org/x/xerrors"

	"github.com/memoio/vana-wallet/lib/address"
)

// MaxTransfers bounds one history query.
const MaxTransfers = 1000

const (
	graphqlPath = "/graphiql"
	historyWait = 30 * time.Second
)

const transfersQuery = `query ($first: Int!, $filter: TransferFilter, $order: [TransfersOrderBy!]!) {
  transfers(first: $first, filter: $filter, orderBy: $order) {
    nodes { id from to amount extrinsicId blockNumber }
    totalCount
  }
}`

// Transfer is one native transfer touching a wallet, newest first.
type Transfer struct {
	ID          string
	From        string
	To          string
	Amount      string
	ExtrinsicID string
	BlockNumber string
}

// Wei parses Amount; ok is false when the explorer sent something else.
func (t Transfer) Wei() (*big.Int, bool) {
	return new(big.Int).SetString(t.Amount, 10)
}

// Link points at the transfer's extrinsic on the explorer.
func (t Transfer) Link(explorer string) string {
	return strings.TrimRight(explorer, "/") + "/extrinsic/" + t.BlockNumber + "-" + t.ExtrinsicID
}

// Explorer queries the block explorer's graphql index.
type Explorer struct {
	base       string
	httpClient *http.Client
}

func NewExplorer(base string) *Explorer {
	return &Explorer{
		base:       strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: historyWait},
	}
}

// History returns up to MaxTransfers transfers from or to addr.
func (e *Explorer) History(ctx context.Context, addr address.Address) ([]Transfer, error) {
	who := addr.String()
	body, err := json.Marshal(map[string]interface{}{
		"query": transfersQuery,
		"variables": map[string]interface{}{
			"first": MaxTransfers,
			"filter": map[string]interface{}{
				"or": []interface{}{
					map[string]interface{}{"from": map[string]string{"equalTo": who}},
					map[string]interface{}{"to": map[string]string{"equalTo": who}},
				},
			},
			"order": "BLOCK_NUMBER_DESC",
		},
	})
	if err != nil {
		return nil, err
	}

	url := e.base + graphqlPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, xerrors.Errorf("history request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, xerrors.Errorf("query %s: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, xerrors.Errorf("read %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, xerrors.Errorf("query %s: status %d: %s", url, resp.StatusCode, bytes.TrimSpace(data))
	}

	var out struct {
		Data struct {
			Transfers struct {
				Nodes      []transferNode `json:"nodes"`
				TotalCount int            `json:"totalCount"`
			} `json:"transfers"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, xerrors.Errorf("decode history: %w", err)
	}
	if len(out.Errors) > 0 {
		return nil, xerrors.Errorf("query %s: %s", url, out.Errors[0].Message)
	}

	res := make([]Transfer, 0, len(out.Data.Transfers.Nodes))
	for _, n := range out.Data.Transfers.Nodes {
		res = append(res, Transfer{
			ID:          string(n.ID),
			From:        string(n.From),
			To:          string(n.To),
			Amount:      string(n.Amount),
			ExtrinsicID: string(n.ExtrinsicID),
			BlockNumber: string(n.BlockNumber),
		})
	}
	logger.Debugw("history", "address", who, "got", len(res), "total", out.Data.Transfers.TotalCount)
	return res, nil
}

type transferNode struct {
	ID          text `json:"id"`
	From        text `json:"from"`
	To          text `json:"to"`
	Amount      text `json:"amount"`
	ExtrinsicID text `json:"extrinsicId"`
	BlockNumber text `json:"blockNumber"`
}

// text takes a json string or number.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = text(n)
	return nil
}
