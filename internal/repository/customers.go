package repository

import "context"

const getCustomer = `SELECT id, name, email, address, country, flag_url, created_at
FROM customers
WHERE id = $1`

func (q *Queries) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	row := q.db.QueryRowContext(ctx, getCustomer, id)
	return scanCustomer(row)
}

const getCustomerByEmail = `SELECT id, name, email, address, country, flag_url, created_at
FROM customers
WHERE email = $1`

func (q *Queries) GetCustomerByEmail(ctx context.Context, email string) (Customer, error) {
	row := q.db.QueryRowContext(ctx, getCustomerByEmail, email)
	return scanCustomer(row)
}

func scanCustomer(row rowScanner) (Customer, error) {
	var i Customer
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Email,
		&i.Address,
		&i.Country,
		&i.FlagUrl,
		&i.CreatedAt,
	)
	return i, err
}
