package repository

import "context"

const eventColumns = `id, name, date, time, location, total_revenue, total_revenue_change,
	tickets_available, tickets_sold, tickets_sold_change, page_views, page_views_change,
	status, img_url, thumb_url, created_at, updated_at`

const listEvents = `SELECT ` + eventColumns + `
FROM events
ORDER BY created_at DESC`

func (q *Queries) ListEvents(ctx context.Context) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listEvents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Event
	for rows.Next() {
		i, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getEvent = `SELECT ` + eventColumns + `
FROM events
WHERE id = $1`

func (q *Queries) GetEvent(ctx context.Context, id int64) (Event, error) {
	row := q.db.QueryRowContext(ctx, getEvent, id)
	return scanEvent(row)
}

func scanEvent(row rowScanner) (Event, error) {
	var i Event
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Date,
		&i.Time,
		&i.Location,
		&i.TotalRevenue,
		&i.TotalRevenueChange,
		&i.TicketsAvailable,
		&i.TicketsSold,
		&i.TicketsSoldChange,
		&i.PageViews,
		&i.PageViewsChange,
		&i.Status,
		&i.ImgUrl,
		&i.ThumbUrl,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
