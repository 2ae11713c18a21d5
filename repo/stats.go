package repo

import (
	"context"

	pkgerrors "github.com/pkg/errors"

	"github.com/htol/booksapi/aggregate"
	"github.com/htol/booksapi/book"
)

// GenreStats runs the per-genre price rollup
func (r *Repo) GenreStats(ctx context.Context) ([]book.GenreStats, error) {
	cur, err := r.coll.Aggregate(ctx, aggregate.GenreStats())
	if err != nil {
		return nil, pkgerrors.Wrap(err, "aggregate genre stats")
	}
	defer cur.Close(ctx)

	stats := make([]book.GenreStats, 0)
	if err := cur.All(ctx, &stats); err != nil {
		return nil, pkgerrors.Wrap(err, "decode genre stats")
	}
	return stats, nil
}

// MonthlyPlan runs the per-month tour rollup for year. A year without
// tours yields an empty, non-nil slice.
func (r *Repo) MonthlyPlan(ctx context.Context, year int) ([]book.MonthlyStats, error) {
	cur, err := r.coll.Aggregate(ctx, aggregate.MonthlyPlan(year))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "aggregate monthly plan for %d", year)
	}
	defer cur.Close(ctx)

	plan := make([]book.MonthlyStats, 0)
	if err := cur.All(ctx, &plan); err != nil {
		return nil, pkgerrors.Wrap(err, "decode monthly plan")
	}
	return plan, nil
}
