package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a guild-scoped betting account with a balance
type Account struct {
	ID            int64           `db:"id"`
	GuildID       int64           `db:"guild_id"`
	AccountNumber int64           `db:"account_number"`
	Name          string          `db:"name"`
	Balance       decimal.Decimal `db:"balance"`
	CreatedAt     time.Time       `db:"created_at"`
}

// CanAfford checks whether the account balance covers the given amount
func (a *Account) CanAfford(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}
