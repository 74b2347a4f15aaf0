package repository

import (
	"context"
	"fmt"
	"time"

	"marketbot/apperrors"
	"marketbot/database"
	"marketbot/models"

	"github.com/jackc/pgx/v5"
)

// PollRepository implements poll and poll option data access and is the
// sole mutator of poll status
type PollRepository struct {
	q queryable
}

// NewPollRepository creates a new poll repository
func NewPollRepository(db *database.DB) *PollRepository {
	return &PollRepository{q: db.Pool}
}

// newPollRepositoryWithTx creates a new poll repository bound to a transaction
func newPollRepositoryWithTx(tx queryable) *PollRepository {
	return &PollRepository{q: tx}
}

// CreateWithOptions creates a poll and its ordered options atomically.
// Options are indexed from 1 in the order given.
func (r *PollRepository) CreateWithOptions(ctx context.Context, poll *models.Poll, optionValues []string) ([]*models.PollOption, error) {
	if len(optionValues) < 2 {
		return nil, apperrors.InvalidInputf("a poll needs at least 2 options, got %d", len(optionValues))
	}

	query := `
		INSERT INTO polls (account_id, status, question, created_at, lockin_by, reference)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		poll.AccountID,
		poll.Status,
		poll.Question,
		poll.CreatedAt,
		poll.LockinBy,
		poll.Reference,
	).Scan(&poll.ID)

	if err != nil {
		return nil, mapConstraintError(err, "failed to create poll")
	}

	optionQuery := `
		INSERT INTO poll_options (poll_id, option_index, value)
		VALUES
	`

	var args []interface{}
	for i, value := range optionValues {
		if i > 0 {
			optionQuery += ","
		}
		paramIndex := i * 3
		optionQuery += fmt.Sprintf(" ($%d, $%d, $%d)", paramIndex+1, paramIndex+2, paramIndex+3)
		args = append(args, poll.ID, i+1, value)
	}

	optionQuery += " RETURNING id"

	rows, err := r.q.Query(ctx, optionQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create poll options: %w", err)
	}
	defer rows.Close()

	options := make([]*models.PollOption, 0, len(optionValues))
	i := 0
	for rows.Next() {
		option := &models.PollOption{
			PollID: poll.ID,
			Index:  i + 1,
			Value:  optionValues[i],
		}
		if err := rows.Scan(&option.ID); err != nil {
			return nil, fmt.Errorf("failed to scan option ID: %w", err)
		}
		options = append(options, option)
		i++
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate created options: %w", err)
	}

	return options, nil
}

// GetByID retrieves a poll by its ID
func (r *PollRepository) GetByID(ctx context.Context, id int64) (*models.Poll, error) {
	query := `
		SELECT id, account_id, status, question, created_at, lockin_by, finalized_at, reference
		FROM polls
		WHERE id = $1
	`

	var poll models.Poll
	err := r.q.QueryRow(ctx, query, id).Scan(
		&poll.ID,
		&poll.AccountID,
		&poll.Status,
		&poll.Question,
		&poll.CreatedAt,
		&poll.LockinBy,
		&poll.FinalizedAt,
		&poll.Reference,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll %d: %w", id, err)
	}

	return &poll, nil
}

// SetReference records the announcement message backing the poll
func (r *PollRepository) SetReference(ctx context.Context, id int64, reference string) error {
	query := `
		UPDATE polls
		SET reference = $1
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, reference, id)
	if err != nil {
		return mapConstraintError(err, fmt.Sprintf("failed to set reference for poll %d", id))
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFoundf("poll %d not found", id)
	}

	return nil
}

// GetDetailByID retrieves a poll with its owner and options in index order
func (r *PollRepository) GetDetailByID(ctx context.Context, id int64) (*models.PollDetail, error) {
	poll, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if poll == nil {
		return nil, nil
	}

	ownerQuery := `
		SELECT id, guild_id, account_number, name, balance, created_at
		FROM accounts
		WHERE id = $1
	`

	var owner models.Account
	err = r.q.QueryRow(ctx, ownerQuery, poll.AccountID).Scan(
		&owner.ID,
		&owner.GuildID,
		&owner.AccountNumber,
		&owner.Name,
		&owner.Balance,
		&owner.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll %d owner: %w", id, err)
	}

	optionsQuery := `
		SELECT id, poll_id, option_index, value, winning
		FROM poll_options
		WHERE poll_id = $1
		ORDER BY option_index ASC
	`

	rows, err := r.q.Query(ctx, optionsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll %d options: %w", id, err)
	}
	defer rows.Close()

	var options []*models.PollOption
	for rows.Next() {
		var option models.PollOption
		err := rows.Scan(
			&option.ID,
			&option.PollID,
			&option.Index,
			&option.Value,
			&option.Winning,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, &option)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate options: %w", err)
	}

	return &models.PollDetail{
		Poll:    poll,
		Owner:   &owner,
		Options: options,
	}, nil
}

// ListByStatus returns all polls in the given status
func (r *PollRepository) ListByStatus(ctx context.Context, status models.PollStatus) ([]*models.Poll, error) {
	query := `
		SELECT id, account_id, status, question, created_at, lockin_by, finalized_at, reference
		FROM polls
		WHERE status = $1
		ORDER BY created_at ASC
	`

	return r.listPolls(ctx, query, status)
}

// ListOpenPollsDue returns open polls whose lock-in deadline has elapsed
func (r *PollRepository) ListOpenPollsDue(ctx context.Context, now time.Time) ([]*models.Poll, error) {
	query := `
		SELECT id, account_id, status, question, created_at, lockin_by, finalized_at, reference
		FROM polls
		WHERE status = $1 AND lockin_by <= $2
		ORDER BY lockin_by ASC
	`

	return r.listPolls(ctx, query, models.PollStatusOpen, now)
}

func (r *PollRepository) listPolls(ctx context.Context, query string, args ...any) ([]*models.Poll, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	var polls []*models.Poll
	for rows.Next() {
		var poll models.Poll
		err := rows.Scan(
			&poll.ID,
			&poll.AccountID,
			&poll.Status,
			&poll.Question,
			&poll.CreatedAt,
			&poll.LockinBy,
			&poll.FinalizedAt,
			&poll.Reference,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, &poll)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate polls: %w", err)
	}

	return polls, nil
}

// Transition moves a poll to the target status, applying any fields in
// update. The previous status guards the UPDATE, so a concurrent
// transition makes this one fail with InvalidState instead of tearing.
func (r *PollRepository) Transition(ctx context.Context, poll *models.Poll, target models.PollStatus, update models.PollUpdate) error {
	if !poll.CanTransitionTo(target) {
		return apperrors.InvalidStatef("cannot transition poll %d from %s to %s", poll.ID, poll.Status, target)
	}

	query := `
		UPDATE polls
		SET status = $1,
		    lockin_by = COALESCE($2, lockin_by),
		    finalized_at = COALESCE($3, finalized_at)
		WHERE id = $4 AND status = $5
	`

	result, err := r.q.Exec(ctx, query, target, update.LockinBy, update.FinalizedAt, poll.ID, poll.Status)
	if err != nil {
		return mapConstraintError(err, fmt.Sprintf("failed to transition poll %d", poll.ID))
	}

	if result.RowsAffected() == 0 {
		return apperrors.InvalidStatef("poll %d is no longer %s", poll.ID, poll.Status)
	}

	poll.Status = target
	if update.LockinBy != nil {
		poll.LockinBy = *update.LockinBy
	}
	if update.FinalizedAt != nil {
		poll.FinalizedAt = update.FinalizedAt
	}

	return nil
}

// MarkWinning flags the option as the poll's winning outcome. Exactly
// one option per poll may ever win; a second call fails with
// InvalidState.
func (r *PollRepository) MarkWinning(ctx context.Context, option *models.PollOption) error {
	query := `
		UPDATE poll_options
		SET winning = TRUE
		WHERE id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM poll_options other
			WHERE other.poll_id = poll_options.poll_id AND other.winning
		  )
	`

	result, err := r.q.Exec(ctx, query, option.ID)
	if err != nil {
		return fmt.Errorf("failed to mark option %d winning: %w", option.ID, err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.InvalidStatef("poll %d already has a winning option", option.PollID)
	}

	option.Winning = true
	return nil
}
