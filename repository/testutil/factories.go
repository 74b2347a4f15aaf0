package testutil

import (
	"time"

	"marketbot/models"

	"github.com/shopspring/decimal"
)

// CreateTestPoll builds an open poll struct ready for insertion
func CreateTestPoll(accountID int64, question string) *models.Poll {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Poll{
		AccountID: accountID,
		Status:    models.PollStatusOpen,
		Question:  question,
		CreatedAt: now,
		LockinBy:  now.Add(24 * time.Hour),
	}
}

// CreateTestPollWithDeadline builds an open poll with a specific deadline
func CreateTestPollWithDeadline(accountID int64, question string, lockinBy time.Time) *models.Poll {
	poll := CreateTestPoll(accountID, question)
	if lockinBy.After(poll.CreatedAt) {
		poll.LockinBy = lockinBy
	} else {
		// keep the check constraint satisfied for already-elapsed deadlines
		poll.CreatedAt = lockinBy.Add(-time.Hour)
		poll.LockinBy = lockinBy
	}
	return poll
}

// Money builds a decimal from a float for test literals
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
