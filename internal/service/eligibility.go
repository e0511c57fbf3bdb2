package service

import (
	"math"
	"time"

	"rewards_quest_bot/internal/model"
)

const Cooldown = 24 * time.Hour

type Eligibility struct {
	Actionable     bool
	NextEligibleAt time.Time
}

func (e Eligibility) Remaining(now time.Time) time.Duration {
	if !e.NextEligibleAt.After(now) {
		return 0
	}
	return e.NextEligibleAt.Sub(now)
}

// RemainingHours rounds the remaining wait up to whole hours.
func (e Eligibility) RemainingHours(now time.Time) int {
	return int(math.Ceil(e.Remaining(now).Hours()))
}

func IsActionable(record *model.UserQuest, now time.Time, cooldown time.Duration) Eligibility {
	if record == nil {
		return Eligibility{Actionable: true, NextEligibleAt: now}
	}
	return Eligibility{
		Actionable:     now.Sub(record.UpdatedAt) >= cooldown,
		NextEligibleAt: record.UpdatedAt.Add(cooldown),
	}
}

// LatestCompleted picks the most recently updated COMPLETED record of the
// quest. Non-terminal records are ignored.
func LatestCompleted(records []model.UserQuest, questID string) *model.UserQuest {
	var latest *model.UserQuest
	for i := range records {
		r := &records[i]
		if r.QuestID != questID || !r.Status.Terminal() {
			continue
		}
		if latest == nil || r.UpdatedAt.After(latest.UpdatedAt) {
			latest = r
		}
	}
	return latest
}

func NextEligibleAt(records []model.UserQuest, questID string, now time.Time, cooldown time.Duration) time.Time {
	return IsActionable(LatestCompleted(records, questID), now, cooldown).NextEligibleAt
}

func CompletedQuestIDs(records []model.UserQuest) map[string]struct{} {
	ids := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.Status.Terminal() {
			ids[r.QuestID] = struct{}{}
		}
	}
	return ids
}
