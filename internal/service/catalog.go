package service

import (
	"strings"

	"rewards_quest_bot/internal/model"
)

// FindQuestID looks a quest up by exact title. A missing quest is reported
// through ok, not as an error.
func FindQuestID(catalog []model.Quest, title string) (id string, ok bool) {
	for _, q := range catalog {
		if q.Title == title {
			return q.ID, true
		}
	}
	return "", false
}

type QuestMatcher struct {
	Prefix   string
	Excluded []string
}

func NewQuestMatcher(prefix string, excluded []string) QuestMatcher {
	return QuestMatcher{Prefix: prefix, Excluded: excluded}
}

func (m QuestMatcher) Match(title string) bool {
	if !strings.HasPrefix(title, m.Prefix) {
		return false
	}
	for _, ex := range m.Excluded {
		if title == ex {
			return false
		}
	}
	return true
}

// SocialQuests returns the one-shot quests of the catalog in catalog order.
func (m QuestMatcher) SocialQuests(catalog []model.Quest) []model.Quest {
	var quests []model.Quest
	for _, q := range catalog {
		if m.Match(q.Title) {
			quests = append(quests, q)
		}
	}
	return quests
}
