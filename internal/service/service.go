package service

import (
	"context"
	"errors"
	"time"

	"rewards_quest_bot/internal/model"

	"github.com/jonboulle/clockwork"
)

var (
	ErrRollInProgress        = errors.New("roll sequence already in progress for this account")
	ErrRollAttemptsExhausted = errors.New("roll attempts exhausted without a completed status")
	ErrQuestNotFound         = errors.New("quest not found")
)

const (
	DefaultTimeGatedTitle  = "Daily Dice Roll"
	DefaultSocialPrefix    = "Follow "
	DefaultMaxRollAttempts = 50
	DefaultPause           = time.Second
)

var DefaultSocialExcluded = []string{"Follow Discord Server"}

type PortalClient interface {
	GetProfile(ctx context.Context, token string) (*model.Profile, error)
	GetQuests(ctx context.Context, token string) ([]model.Quest, error)
	GetUserQuests(ctx context.Context, token string) ([]model.UserQuest, error)
	SubmitQuest(ctx context.Context, token, questID string, metadata map[string]any) (*model.ActionResult, error)
}

type AccountProcessor interface {
	ProcessAccount(ctx context.Context, account model.Account) model.CycleResult
}

type HistoryRepository interface {
	RecordPass(ctx context.Context, report *model.PassReport) error
}

type Notifier interface {
	NotifyPass(ctx context.Context, report *model.PassReport) error
}

// Options tunes pacing and quest selection. Zero values fall back to the
// package defaults, except pauses: a zero pause disables it.
type Options struct {
	ActionPause     time.Duration
	AccountPause    time.Duration
	RollPause       time.Duration
	MaxRollAttempts int

	TimeGatedTitle string
	SocialPrefix   string
	SocialExcluded []string
}

func DefaultOptions() Options {
	return Options{
		ActionPause:     DefaultPause,
		AccountPause:    DefaultPause,
		RollPause:       DefaultPause,
		MaxRollAttempts: DefaultMaxRollAttempts,
		TimeGatedTitle:  DefaultTimeGatedTitle,
		SocialPrefix:    DefaultSocialPrefix,
		SocialExcluded:  DefaultSocialExcluded,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxRollAttempts <= 0 {
		o.MaxRollAttempts = DefaultMaxRollAttempts
	}
	if o.TimeGatedTitle == "" {
		o.TimeGatedTitle = DefaultTimeGatedTitle
	}
	if o.SocialPrefix == "" {
		o.SocialPrefix = DefaultSocialPrefix
	}
	if o.SocialExcluded == nil {
		o.SocialExcluded = DefaultSocialExcluded
	}
	return o
}

func pause(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clock.After(d):
		return nil
	}
}
