package querybuilder

import (
	"context"

	"github.com/denisvmedia/sqlbuilder/executor"
)

// Page is the result of Paginate.
type Page struct {
	Rows       []executor.Row
	Page       int
	PerPage    int
	Total      int64
	TotalPages int64
}

// Paginate is sugar over Limit/Offset that also runs a Count against a
// cloned snapshot of the pending query (so the caller's builder is not
// disturbed by the count) to report the total row/page counts. page is
// 1-based; values below 1 are clamped to 1.
func (b *Builder) Paginate(ctx context.Context, page, perPage int) (*Page, error) {
	if b.err != nil {
		err := b.err
		b.reset()
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}

	counter := b.clone()
	total, err := counter.Count(ctx)
	if err != nil {
		b.reset()
		return nil, err
	}

	b.q.limit = intPtr(perPage)
	b.q.offset = intPtr((page - 1) * perPage)
	defer b.reset()

	rows, err := b.fetchAndProcess(ctx)
	if err != nil {
		return nil, err
	}

	totalPages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		totalPages++
	}

	return &Page{Rows: rows, Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}, nil
}
