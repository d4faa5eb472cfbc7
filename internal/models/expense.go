package models

import "time"

// User represents a user account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expense represents a single financial transaction belonging to a user.
type Expense struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category"`
	Vendor      string    `json:"vendor,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	ReceiptPath string    `json:"receipt_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultCurrency is the base currency all amounts are normalized to.
const DefaultCurrency = "RON"

// Placeholder exchange rates into RON, pending a live rate source.
// Unrecognized codes pass through unconverted.
var baseRates = map[string]float64{
	"RON": 1,
	"EUR": 5.1,
	"USD": 4.28,
	"VND": 0.00016,
}

// AmountInBase returns the expense amount converted to the base currency
// using the fixed exchange rate for its currency code.
func (e Expense) AmountInBase() float64 {
	if rate, ok := baseRates[e.Currency]; ok {
		return e.Amount * rate
	}
	return e.Amount
}

// Session represents a user session.
type Session struct {
	Token     string        `json:"token"`
	UserID    int64         `json:"user_id"`
	Duration  time.Duration `json:"duration"`
	ExpiresAt time.Time     `json:"expires_at"`
}
