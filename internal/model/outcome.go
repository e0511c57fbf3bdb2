package model

import (
	"time"

	"github.com/google/uuid"
)

type OutcomeKind string

const (
	OutcomeCompleted        OutcomeKind = "completed"
	OutcomeAlreadyCompleted OutcomeKind = "already_completed"
)

type Outcome struct {
	Kind           OutcomeKind
	Credits        int
	DiceRolls      []int
	NextEligibleAt time.Time
}

type CycleResult struct {
	AccountIndex    int
	AccountOK       bool
	Email           string
	NextEligibleAt  *time.Time
	SocialCompleted int
	Roll            *Outcome
	Error           string
}

type PassReport struct {
	ID         uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []CycleResult
	Wait       time.Duration
	NextPassAt time.Time
}

// NextEligibleTimes returns the next-eligible timestamps of the accounts that
// finished their cycle successfully.
func (r *PassReport) NextEligibleTimes() []*time.Time {
	times := make([]*time.Time, 0, len(r.Results))
	for _, res := range r.Results {
		if res.AccountOK && res.NextEligibleAt != nil {
			times = append(times, res.NextEligibleAt)
		}
	}
	return times
}

func (r *PassReport) AccountsOK() int {
	n := 0
	for _, res := range r.Results {
		if res.AccountOK {
			n++
		}
	}
	return n
}
