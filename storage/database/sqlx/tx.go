package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

// withTx runs fn in a transaction, committed only when fn succeeds.
func withTx(ctx context.Context, db core.DB, fn func(tx core.DBExecutor) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	var dbTx core.DBTransactor = tx

	if err = fn(dbTx); err != nil {
		_ = dbTx.Rollback()
		return err
	}
	return errors.Wrap(dbTx.Commit(), "committing transaction")
}
