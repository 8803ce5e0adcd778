package postgres

import (
	"context"
	"fmt"

	"stockpro/internal/core/tenant"
)

// MustGetTxManager returns the request's *TxManager, placed in context
// by the tenant middleware. Repositories call it to reach GetQuerier;
// domain services stay on the tx.Manager interface and never see the
// concrete type. A mismatch means the middleware chain is miswired, so
// panicking at the first query beats limping on.
func MustGetTxManager(ctx context.Context) *TxManager {
	txm := tenant.MustGetTxManager(ctx)
	postgresTxm, ok := txm.(*TxManager)
	if !ok || postgresTxm == nil {
		panic(fmt.Sprintf("context TxManager has unexpected type %T", txm))
	}
	return postgresTxm
}

