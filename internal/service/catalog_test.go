package service

import (
	"testing"

	"rewards_quest_bot/internal/model"

	"github.com/stretchr/testify/assert"
)

var testCatalog = []model.Quest{
	{ID: "q-roll", Title: "Daily Dice Roll"},
	{ID: "q-x", Title: "Follow X"},
	{ID: "q-discord", Title: "Follow Discord Server"},
	{ID: "q-tg", Title: "Follow Telegram"},
	{ID: "q-invite", Title: "Invite a friend"},
	{ID: "q-lower", Title: "follow lowercase"},
	{ID: "q-noprefix", Title: "Follow"},
}

func TestFindQuestID(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expectID string
		expectOK bool
	}{
		{name: "Exact match", title: "Daily Dice Roll", expectID: "q-roll", expectOK: true},
		{name: "Case differs", title: "daily dice roll"},
		{name: "Prefix only", title: "Daily Dice"},
		{name: "Missing", title: "Weekly Spin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := FindQuestID(testCatalog, tt.title)
			assert.Equal(t, tt.expectOK, ok)
			assert.Equal(t, tt.expectID, id)
		})
	}
}

func TestQuestMatcher_SocialQuests(t *testing.T) {
	m := NewQuestMatcher(DefaultSocialPrefix, DefaultSocialExcluded)

	quests := m.SocialQuests(testCatalog)
	assert.Equal(t, []model.Quest{
		{ID: "q-x", Title: "Follow X"},
		{ID: "q-tg", Title: "Follow Telegram"},
	}, quests)

	assert.Empty(t, m.SocialQuests(nil))
}
