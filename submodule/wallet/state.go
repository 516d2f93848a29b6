package wallet

import (
	"context"

	"github.com/memoio/vana-wallet/submodule/metrics"
)

type state uint8

const (
	stateIdle state = iota
	stateMaterial
	stateValidated
	statePersisted
	stateDone
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateMaterial:
		return "material"
	case stateValidated:
		return "validated"
	case statePersisted:
		return "persisted"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// op tracks one wallet operation. Only the final state is reported to
// callers; intermediate ones go to the debug log.
type op struct {
	name   string
	wallet string
	st     state
	record func(error)
}

func (w *Wallet) begin(ctx context.Context, name, wallet string) *op {
	return &op{
		name:   name,
		wallet: wallet,
		st:     stateIdle,
		record: metrics.Op(ctx, name),
	}
}

func (o *op) advance(s state) {
	logger.Debugw("wallet op", "op", o.name, "wallet", o.wallet, "from", o.st, "to", s)
	o.st = s
}

func (o *op) finish(err error) error {
	if err != nil {
		logger.Warnw("wallet op failed", "op", o.name, "wallet", o.wallet, "state", o.st, "err", err)
		o.st = stateFailed
	} else {
		o.advance(stateDone)
	}
	o.record(err)
	return err
}
