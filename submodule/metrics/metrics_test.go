package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opencensus.io/stats/view"
	"golang.org/x/xerrors"

	"github.com/memoio/vana-wallet/lib/types"
)

func TestOutcomeOf(t *testing.T) {
	require.Equal(t, "ok", OutcomeOf(nil))
	require.Equal(t, "auth", OutcomeOf(xerrors.Errorf("open: %w", types.ErrAuthentication)))
	require.Equal(t, "busy", OutcomeOf(types.ErrWalletBusy))
	require.Equal(t, "invalid", OutcomeOf(types.ErrInvalidKeyMaterial))
	require.Equal(t, "error", OutcomeOf(xerrors.New("disk on fire")))
}

func TestOp(t *testing.T) {
	require.NoError(t, view.Register(OpCountView))
	defer view.Unregister(OpCountView)

	done := Op(context.Background(), "create")
	done(nil)
	done = Op(context.Background(), "create")
	done(types.ErrAlreadyExists)

	rows, err := view.RetrieveData(OpCountView.Name)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var total int64
	for _, r := range rows {
		total += r.Data.(*view.CountData).Value
	}
	require.Equal(t, int64(2), total)
}

func TestStartSummary(t *testing.T) {
	require.NoError(t, Start(context.Background(), "0.1.0", "abc"))
	defer Stop()

	Op(context.Background(), "update")(nil)
	Timer(context.Background(), LockWait)()

	rows, err := view.RetrieveData(InfoView.Name)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	out := strings.Join(Summary(), "\n")
	require.Contains(t, out, "operation=update outcome=ok count=1")
	require.Contains(t, out, "operation=update count=1")
	require.Contains(t, out, LockWaitView.Name+" count=1")
}
