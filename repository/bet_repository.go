package repository

import (
	"context"
	"fmt"

	"marketbot/database"
	"marketbot/models"

	"github.com/shopspring/decimal"
)

// BetRepository implements bet data access
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository bound to a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

// Upsert records a stake on an option. The first bet per
// (account, option) inserts a row; later bets accumulate into it.
// The caller must have already debited the account in this transaction.
func (r *BetRepository) Upsert(ctx context.Context, accountID, optionID int64, stake decimal.Decimal) (*models.Bet, error) {
	query := `
		INSERT INTO bets (account_id, option_id, stake)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, option_id)
		DO UPDATE SET
			stake = bets.stake + EXCLUDED.stake,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, account_id, option_id, stake, created_at, updated_at
	`

	var bet models.Bet
	err := r.q.QueryRow(ctx, query, accountID, optionID, stake.Round(2)).Scan(
		&bet.ID,
		&bet.AccountID,
		&bet.OptionID,
		&bet.Stake,
		&bet.CreatedAt,
		&bet.UpdatedAt,
	)

	if err != nil {
		return nil, mapConstraintError(err, fmt.Sprintf("failed to place bet for account %d on option %d", accountID, optionID))
	}

	return &bet, nil
}

// StakeTotalsByOption returns one stake aggregate per option of the
// poll, in option-index order. Options with no bets report zero.
func (r *BetRepository) StakeTotalsByOption(ctx context.Context, pollID int64) ([]decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(b.stake), 0)
		FROM poll_options po
		LEFT JOIN bets b ON b.option_id = po.id
		WHERE po.poll_id = $1
		GROUP BY po.id, po.option_index
		ORDER BY po.option_index ASC
	`

	rows, err := r.q.Query(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stake totals for poll %d: %w", pollID, err)
	}
	defer rows.Close()

	var totals []decimal.Decimal
	for rows.Next() {
		var total decimal.Decimal
		if err := rows.Scan(&total); err != nil {
			return nil, fmt.Errorf("failed to scan stake total: %w", err)
		}
		totals = append(totals, total)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stake totals: %w", err)
	}

	return totals, nil
}

// WinningBets returns every bet on the poll's winning option(s),
// joined with the holding account for payout crediting
func (r *BetRepository) WinningBets(ctx context.Context, pollID int64) ([]*models.WinningBet, error) {
	query := `
		SELECT b.id, b.account_id, b.option_id, b.stake, b.created_at, b.updated_at,
		       a.account_number, a.name
		FROM bets b
		JOIN poll_options po ON po.id = b.option_id
		JOIN accounts a ON a.id = b.account_id
		WHERE po.poll_id = $1 AND po.winning
		ORDER BY b.id ASC
	`

	rows, err := r.q.Query(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get winning bets for poll %d: %w", pollID, err)
	}
	defer rows.Close()

	var bets []*models.WinningBet
	for rows.Next() {
		var bet models.WinningBet
		err := rows.Scan(
			&bet.ID,
			&bet.AccountID,
			&bet.OptionID,
			&bet.Stake,
			&bet.CreatedAt,
			&bet.UpdatedAt,
			&bet.AccountNumber,
			&bet.AccountName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan winning bet: %w", err)
		}
		bets = append(bets, &bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate winning bets: %w", err)
	}

	return bets, nil
}
