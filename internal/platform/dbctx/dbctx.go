package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries the request context together with an optional transaction.
// Repos fall back to their own connection when Tx is nil, so services can run
// the same code inside or outside a transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

func New(ctx context.Context) Context {
	return Context{Ctx: ctx}
}

func WithTx(ctx context.Context, tx *gorm.DB) Context {
	return Context{Ctx: ctx, Tx: tx}
}
