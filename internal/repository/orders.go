package repository

import "context"

const orderDetailSelect = `SELECT o.id, o.date, o.amount_usd, o.amount_cad, o.fee, o.net,
	o.transaction_id, o.customer_id, o.event_id, o.created_at,
	c.name, c.email, c.address, c.country, c.flag_url,
	e.name, e.date, e.time, e.location, e.status, e.thumb_url,
	p.card_number, p.card_type, p.card_expiry
FROM orders o
JOIN customers c ON c.id = o.customer_id
JOIN events e ON e.id = o.event_id
LEFT JOIN payments p ON p.order_id = o.id`

const listOrders = orderDetailSelect + `
ORDER BY o.created_at DESC`

func (q *Queries) ListOrders(ctx context.Context) ([]OrderDetail, error) {
	return q.queryOrderDetails(ctx, listOrders)
}

const listRecentOrders = orderDetailSelect + `
ORDER BY o.created_at DESC
LIMIT $1`

func (q *Queries) ListRecentOrders(ctx context.Context, limit int32) ([]OrderDetail, error) {
	return q.queryOrderDetails(ctx, listRecentOrders, limit)
}

const listEventOrders = orderDetailSelect + `
WHERE o.event_id = $1
ORDER BY o.created_at DESC`

func (q *Queries) ListEventOrders(ctx context.Context, eventID int64) ([]OrderDetail, error) {
	return q.queryOrderDetails(ctx, listEventOrders, eventID)
}

const getOrder = orderDetailSelect + `
WHERE o.id = $1`

func (q *Queries) GetOrder(ctx context.Context, id int64) (OrderDetail, error) {
	row := q.db.QueryRowContext(ctx, getOrder, id)
	return scanOrderDetail(row)
}

func (q *Queries) queryOrderDetails(ctx context.Context, query string, args ...interface{}) ([]OrderDetail, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderDetail
	for rows.Next() {
		i, err := scanOrderDetail(rows)
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

func scanOrderDetail(row rowScanner) (OrderDetail, error) {
	var i OrderDetail
	err := row.Scan(
		&i.ID,
		&i.Date,
		&i.AmountUsd,
		&i.AmountCad,
		&i.Fee,
		&i.Net,
		&i.TransactionID,
		&i.CustomerID,
		&i.EventID,
		&i.CreatedAt,
		&i.CustomerName,
		&i.CustomerEmail,
		&i.CustomerAddress,
		&i.CustomerCountry,
		&i.CustomerFlagUrl,
		&i.EventName,
		&i.EventDate,
		&i.EventTime,
		&i.EventLocation,
		&i.EventStatus,
		&i.EventThumbUrl,
		&i.PaymentCardNumber,
		&i.PaymentCardType,
		&i.PaymentCardExpiry,
	)
	return i, err
}
