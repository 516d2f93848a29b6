package metrics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"

	"github.com/memoio/vana-wallet/lib/types"
)

var defaultMillisecondsDistribution = view.Distribution(0.01, 0.05, 0.1, 0.3, 0.6, 0.8, 1, 2, 3, 4, 5, 6, 8, 10, 13, 16, 20, 25, 30, 40, 50, 65, 80, 100, 130, 160, 200, 250, 300, 400, 500, 650, 800, 1000, 2000, 3000, 4000, 5000, 7500, 10000, 20000, 50000, 100000)

var (
	Version, _   = tag.NewKey("version")
	Commit, _    = tag.NewKey("commit")
	Operation, _ = tag.NewKey("operation")
	Outcome, _   = tag.NewKey("outcome")
)

var (
	WalletInfo = stats.Int64("info", "Wallet info", stats.UnitDimensionless)

	// operations
	OpCount    = stats.Int64("wallet/op", "Counter for wallet operations", stats.UnitDimensionless)
	OpDuration = stats.Float64("wallet/op_duration_ms", "Duration of wallet operations", stats.UnitMilliseconds)

	// lock
	LockWait = stats.Float64("wallet/lock_wait_ms", "Time spent waiting for the wallet lock", stats.UnitMilliseconds)
)

var (
	InfoView = &view.View{
		Name:        "info",
		Description: "vana wallet information",
		Measure:     WalletInfo,
		Aggregation: view.LastValue(),
		TagKeys:     []tag.Key{Version, Commit},
	}
	OpCountView = &view.View{
		Measure:     OpCount,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{Operation, Outcome},
	}
	OpDurationView = &view.View{
		Measure:     OpDuration,
		Aggregation: defaultMillisecondsDistribution,
		TagKeys:     []tag.Key{Operation},
	}
	LockWaitView = &view.View{
		Measure:     LockWait,
		Aggregation: defaultMillisecondsDistribution,
	}
)

var DefaultViews = func() []*view.View {
	views := []*view.View{
		InfoView,
		OpCountView,
		OpDurationView,
		LockWaitView,
	}
	return views
}()

func SinceInMilliseconds(startTime time.Time) float64 {
	return float64(time.Since(startTime).Nanoseconds()) / 1e6
}

func Timer(ctx context.Context, m *stats.Float64Measure) func() {
	start := time.Now()
	return func() {
		stats.Record(ctx, m.M(SinceInMilliseconds(start)))
	}
}

// OutcomeOf buckets an operation result by error kind.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, types.ErrAuthentication):
		return "auth"
	case errors.Is(err, types.ErrAlreadyExists):
		return "exists"
	case errors.Is(err, types.ErrWalletBusy):
		return "busy"
	case errors.Is(err, types.ErrNotFound):
		return "notfound"
	case errors.Is(err, types.ErrInvalidMnemonic), errors.Is(err, types.ErrInvalidKeyMaterial):
		return "invalid"
	case errors.Is(err, types.ErrCorruptKeyFile), errors.Is(err, types.ErrUnsupportedScheme):
		return "corrupt"
	default:
		return "error"
	}
}

// Op starts timing a wallet operation. The returned func records its
// duration and outcome; pass it the operation's final error.
func Op(ctx context.Context, name string) func(error) {
	start := time.Now()
	return func(err error) {
		_ = stats.RecordWithTags(ctx,
			[]tag.Mutator{tag.Upsert(Operation, name), tag.Upsert(Outcome, OutcomeOf(err))},
			OpCount.M(1), OpDuration.M(SinceInMilliseconds(start)))
	}
}

// Start registers the default views and records the build info.
func Start(ctx context.Context, version, commit string) error {
	if err := view.Register(DefaultViews...); err != nil {
		return err
	}
	return stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(Version, version), tag.Upsert(Commit, commit)},
		WalletInfo.M(1))
}

func Stop() {
	view.Unregister(DefaultViews...)
}

// Summary renders the operation and lock views, one line per row.
func Summary() []string {
	var out []string
	for _, v := range []*view.View{OpCountView, OpDurationView, LockWaitView} {
		rows, err := view.RetrieveData(v.Name)
		if err != nil {
			continue
		}
		for _, r := range rows {
			out = append(out, v.Name+" "+formatRow(r))
		}
	}
	sort.Strings(out)
	return out
}

func formatRow(r *view.Row) string {
	var b strings.Builder
	for _, t := range r.Tags {
		fmt.Fprintf(&b, "%s=%s ", t.Key.Name(), t.Value)
	}
	switch d := r.Data.(type) {
	case *view.CountData:
		fmt.Fprintf(&b, "count=%d", d.Value)
	case *view.DistributionData:
		fmt.Fprintf(&b, "count=%d mean=%.2fms", d.Count, d.Mean)
	case *view.LastValueData:
		fmt.Fprintf(&b, "value=%g", d.Value)
	}
	return b.String()
}
