package database

import (
	"context"
	"fmt"
)

type scopeKey struct{}

// scopeTx returns the transaction of an enclosing InTx call, if any.
func scopeTx(ctx context.Context) *Cursor {
	c, _ := ctx.Value(scopeKey{}).(*Cursor)
	return c
}

// InScope reports whether ctx carries an InTx transaction.
func InScope(ctx context.Context) bool {
	return scopeTx(ctx) != nil
}

// Cursor returns a statement handle. Inside an InTx scope it is bound to the
// scope's transaction; otherwise to the live connection.
func (m *Manager) Cursor(ctx context.Context) (*Cursor, error) {
	if s := scopeTx(ctx); s != nil {
		return &Cursor{ex: s.tx, dialect: m.dialect, tx: s.tx}, nil
	}
	db, err := m.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return &Cursor{ex: db, dialect: m.dialect}, nil
}

// Begin returns a transactional cursor. Inside an InTx scope the cursor
// joins the scope and its Commit and Rollback do nothing.
func (m *Manager) Begin(ctx context.Context) (*Cursor, error) {
	if s := scopeTx(ctx); s != nil {
		return &Cursor{ex: s.tx, dialect: m.dialect, tx: s.tx}, nil
	}
	db, err := m.Connect(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	return &Cursor{ex: tx, dialect: m.dialect, tx: tx, owned: true}, nil
}

// Write runs fn in a transaction: commit when fn succeeds, rollback when it
// fails. Every repository mutation goes through Write.
func (m *Manager) Write(ctx context.Context, fn func(*Cursor) error) error {
	c, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	defer c.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if err := fn(c); err != nil {
		return err
	}
	return c.Commit()
}

// InTx runs fn inside one transaction spanning every repository call made
// with the context fn receives. The scope commits when fn returns nil and
// rolls back otherwise. Nested calls join the outer scope.
//
// Example:
//
//	err := db.InTx(ctx, func(ctx context.Context) error {
//	    if _, err := homes.GetByID(ctx, homeID); err != nil {
//	        return err
//	    }
//	    return devices.Insert(ctx, d)
//	})
func (m *Manager) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InScope(ctx) {
		return fn(ctx)
	}

	c, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	defer c.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if err := fn(context.WithValue(ctx, scopeKey{}, c)); err != nil {
		return err
	}
	return c.Commit()
}
