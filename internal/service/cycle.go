package service

import (
	"context"
	"time"

	"rewards_quest_bot/internal/model"
	"rewards_quest_bot/pkg/console"
	"rewards_quest_bot/pkg/logger"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type CycleService struct {
	client    PortalClient
	performer *Performer
	clock     clockwork.Clock
	printer   *console.Printer

	matcher        QuestMatcher
	timeGatedTitle string
	actionPause    time.Duration
}

func NewCycleService(client PortalClient, performer *Performer, clock clockwork.Clock, printer *console.Printer, opts Options) *CycleService {
	opts = opts.withDefaults()
	return &CycleService{
		client:         client,
		performer:      performer,
		clock:          clock,
		printer:        printer,
		matcher:        NewQuestMatcher(opts.SocialPrefix, opts.SocialExcluded),
		timeGatedTitle: opts.TimeGatedTitle,
		actionPause:    opts.ActionPause,
	}
}

// ProcessAccount runs one full cycle for the account. Failures are reported
// in the result and never returned, so the caller can move on to the next
// account.
func (s *CycleService) ProcessAccount(ctx context.Context, account model.Account) model.CycleResult {
	log := logger.Logger().With(zap.Int("account", account.Index))
	result := model.CycleResult{AccountIndex: account.Index}

	fail := func(msg string, err error) model.CycleResult {
		s.printer.Errorf("%s: %v", msg, err)
		log.Error(msg, zap.String("token", account.Masked()), zap.Error(err))
		result.Error = errors.Wrap(err, msg).Error()
		return result
	}

	s.printer.Banner("Account %d", account.Index)

	profile, err := s.client.GetProfile(ctx, account.Token)
	if err != nil {
		return fail("Failed to fetch profile", err)
	}
	result.Email = profile.Email
	s.printer.Infof("Account %s | refcode: %s", s.printer.Highlight(profile.Email), s.printer.Highlight(profile.RefCode))

	catalog, err := s.client.GetQuests(ctx, account.Token)
	if err != nil {
		return fail("Failed to fetch quests", err)
	}
	records, err := s.client.GetUserQuests(ctx, account.Token)
	if err != nil {
		return fail("Failed to fetch quest statuses", err)
	}

	result.SocialCompleted = s.sweepSocial(ctx, account, catalog, records)

	questID, ok := FindQuestID(catalog, s.timeGatedTitle)
	if !ok {
		return fail("Time-gated quest unavailable", errors.Wrap(ErrQuestNotFound, s.timeGatedTitle))
	}

	now := s.clock.Now()
	eligibility := IsActionable(LatestCompleted(records, questID), now, Cooldown)
	if eligibility.Actionable {
		outcome, err := s.performer.RollDice(ctx, account.Token, questID)
		if err != nil {
			s.printer.Errorf("Dice roll failed: %v", err)
			log.Warn("Dice roll failed", zap.String("questID", questID), zap.Error(err))
		} else {
			result.Roll = &outcome
			s.reportRoll(outcome)
		}
	} else {
		s.printer.Warnf("Dice roll not available yet. Wait %d more hours", eligibility.RemainingHours(now))
		s.printer.Infof("Next roll: %s", console.FormatTime(eligibility.NextEligibleAt))
	}

	result.AccountOK = true

	fresh, err := s.client.GetUserQuests(ctx, account.Token)
	if err != nil {
		s.printer.Warnf("Could not refresh next roll time: %v", err)
		log.Warn("Failed to refresh quest statuses", zap.Error(err))
		return result
	}
	next := NextEligibleAt(fresh, questID, s.clock.Now(), Cooldown)
	result.NextEligibleAt = &next

	return result
}

func (s *CycleService) sweepSocial(ctx context.Context, account model.Account, catalog []model.Quest, records []model.UserQuest) int {
	completed := CompletedQuestIDs(records)
	done := 0
	submitted := 0

	for _, quest := range s.matcher.SocialQuests(catalog) {
		if _, ok := completed[quest.ID]; ok {
			continue
		}
		if submitted > 0 {
			if err := pause(ctx, s.clock, s.actionPause); err != nil {
				return done
			}
		}
		submitted++

		outcome, err := s.performer.PerformOnce(ctx, account.Token, quest)
		if err != nil {
			s.printer.Errorf("Failed to complete %s: %v", quest.Title, err)
			logger.Logger().Warn("Social quest failed",
				zap.Int("account", account.Index),
				zap.String("questID", quest.ID),
				zap.Error(err),
			)
			continue
		}

		switch outcome.Kind {
		case model.OutcomeCompleted:
			done++
			s.printer.Successf("Completed %s: +%d credits", quest.Title, outcome.Credits)
		case model.OutcomeAlreadyCompleted:
			s.printer.Infof("%s already completed", quest.Title)
		}
	}

	return done
}

func (s *CycleService) reportRoll(outcome model.Outcome) {
	switch outcome.Kind {
	case model.OutcomeCompleted:
		s.printer.Successf("Dice roll completed: +%d credits", outcome.Credits)
	case model.OutcomeAlreadyCompleted:
		s.printer.Warnf("Dice roll already completed: %d credits", outcome.Credits)
	}
	s.printer.Customf("All rolls: %s", console.FormatRolls(outcome.DiceRolls))
	s.printer.Infof("Next roll: %s", console.FormatTime(outcome.NextEligibleAt))
}
