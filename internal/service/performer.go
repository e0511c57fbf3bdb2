package service

import (
	"context"
	"sync"
	"time"

	"rewards_quest_bot/internal/model"
	"rewards_quest_bot/internal/portal"
	"rewards_quest_bot/pkg/console"
	"rewards_quest_bot/pkg/logger"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const rollAction = "ROLL"

type Performer struct {
	client  PortalClient
	clock   clockwork.Clock
	printer *console.Printer

	rollPause   time.Duration
	maxAttempts int

	inFlight map[string]struct{}
	sync.Mutex
}

func NewPerformer(client PortalClient, clock clockwork.Clock, printer *console.Printer, opts Options) *Performer {
	opts = opts.withDefaults()
	return &Performer{
		client:      client,
		clock:       clock,
		printer:     printer,
		rollPause:   opts.RollPause,
		maxAttempts: opts.MaxRollAttempts,
		inFlight:    make(map[string]struct{}),
	}
}

// PerformOnce submits a one-shot quest. The returned error is the failure
// reason; an "already completed" reply is a successful outcome.
func (p *Performer) PerformOnce(ctx context.Context, token string, quest model.Quest) (model.Outcome, error) {
	res, err := p.client.SubmitQuest(ctx, token, quest.ID, nil)
	if err != nil {
		if errors.Is(err, portal.ErrAlreadyCompleted) {
			return model.Outcome{Kind: model.OutcomeAlreadyCompleted}, nil
		}
		return model.Outcome{}, errors.Wrapf(err, "submit quest %q", quest.Title)
	}

	return model.Outcome{
		Kind:      model.OutcomeCompleted,
		Credits:   res.Credits,
		DiceRolls: res.DiceRolls,
	}, nil
}

// RollDice drives the time-gated quest until the server reports it
// COMPLETED, accumulating the rolls and credits of every submission.
func (p *Performer) RollDice(ctx context.Context, token, questID string) (model.Outcome, error) {
	key := token + "|" + questID
	if !p.acquire(key) {
		return model.Outcome{}, ErrRollInProgress
	}
	defer p.release(key)

	records, err := p.client.GetUserQuests(ctx, token)
	if err != nil {
		return model.Outcome{}, errors.Wrap(err, "read quest statuses")
	}
	// A completion inside the current window means another run already rolled.
	if done := LatestCompleted(records, questID); done != nil && !IsActionable(done, p.clock.Now(), Cooldown).Actionable {
		return alreadyCompleted(done), nil
	}

	var (
		rolls   []int
		credits int
	)
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		res, err := p.client.SubmitQuest(ctx, token, questID, map[string]any{"action": rollAction})
		if err != nil {
			if errors.Is(err, portal.ErrAlreadyCompleted) {
				return p.resolveCompleted(ctx, token, questID)
			}
			return model.Outcome{}, errors.Wrapf(err, "submit roll attempt %d", attempt)
		}

		rolls = append(rolls, res.DiceRolls...)
		credits += res.Credits
		p.printer.Infof("Rolls: %s", console.FormatRolls(res.DiceRolls))

		if res.Status.Terminal() {
			updatedAt := res.UpdatedAt
			if updatedAt.IsZero() {
				updatedAt = p.clock.Now()
			}
			return model.Outcome{
				Kind:           model.OutcomeCompleted,
				Credits:        credits,
				DiceRolls:      rolls,
				NextEligibleAt: updatedAt.Add(Cooldown),
			}, nil
		}

		if res.Status != model.QuestStatusPending {
			logger.Logger().Warn("Unexpected roll status, resubmitting",
				zap.String("questID", questID),
				zap.String("status", string(res.Status)),
				zap.Int("attempt", attempt),
			)
		}

		if err := pause(ctx, p.clock, p.rollPause); err != nil {
			return model.Outcome{}, err
		}
	}

	return model.Outcome{}, ErrRollAttemptsExhausted
}

func (p *Performer) resolveCompleted(ctx context.Context, token, questID string) (model.Outcome, error) {
	records, err := p.client.GetUserQuests(ctx, token)
	if err != nil {
		return model.Outcome{}, errors.Wrap(err, "re-read quest statuses")
	}
	done := LatestCompleted(records, questID)
	if done == nil {
		return model.Outcome{}, errors.Wrap(ErrQuestNotFound, "no completed record after already-completed reply")
	}
	return alreadyCompleted(done), nil
}

func alreadyCompleted(r *model.UserQuest) model.Outcome {
	return model.Outcome{
		Kind:           model.OutcomeAlreadyCompleted,
		Credits:        r.Credits,
		DiceRolls:      r.DiceRolls,
		NextEligibleAt: r.UpdatedAt.Add(Cooldown),
	}
}

func (p *Performer) acquire(key string) bool {
	p.Lock()
	defer p.Unlock()

	if _, exists := p.inFlight[key]; exists {
		return false
	}
	p.inFlight[key] = struct{}{}
	return true
}

func (p *Performer) release(key string) {
	p.Lock()
	defer p.Unlock()

	delete(p.inFlight, key)
}
