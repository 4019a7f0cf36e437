package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Newsletter   bool
	CreatedAt    sql.NullTime
	UpdatedAt    sql.NullTime
}

type Event struct {
	ID                 int64
	Name               string
	Date               string
	Time               string
	Location           string
	TotalRevenue       string
	TotalRevenueChange string
	TicketsAvailable   int32
	TicketsSold        int32
	TicketsSoldChange  string
	PageViews          string
	PageViewsChange    string
	Status             string
	ImgUrl             string
	ThumbUrl           string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Customer struct {
	ID        int64
	Name      string
	Email     string
	Address   string
	Country   string
	FlagUrl   string
	CreatedAt time.Time
}

type Country struct {
	ID      int64
	Name    string
	Code    string
	FlagUrl string
	Regions []string
}

// OrderDetail is an order joined with its customer, a summary of its event
// and its payment, if one was captured.
type OrderDetail struct {
	ID            int64
	Date          string
	AmountUsd     string
	AmountCad     string
	Fee           string
	Net           string
	TransactionID string
	CustomerID    int64
	EventID       int64
	CreatedAt     time.Time

	CustomerName    string
	CustomerEmail   string
	CustomerAddress string
	CustomerCountry string
	CustomerFlagUrl string

	EventName     string
	EventDate     string
	EventTime     string
	EventLocation string
	EventStatus   string
	EventThumbUrl string

	PaymentCardNumber sql.NullString
	PaymentCardType   sql.NullString
	PaymentCardExpiry sql.NullString
}
