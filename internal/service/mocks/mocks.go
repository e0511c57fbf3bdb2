package mocks

import (
	"context"

	"rewards_quest_bot/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockPortalClient struct {
	mock.Mock
}

func (m *MockPortalClient) GetProfile(ctx context.Context, token string) (*model.Profile, error) {
	args := m.Called(ctx, token)
	var profile *model.Profile
	if v := args.Get(0); v != nil {
		profile = v.(*model.Profile)
	}
	return profile, args.Error(1)
}

func (m *MockPortalClient) GetQuests(ctx context.Context, token string) ([]model.Quest, error) {
	args := m.Called(ctx, token)
	var quests []model.Quest
	if v := args.Get(0); v != nil {
		quests = v.([]model.Quest)
	}
	return quests, args.Error(1)
}

func (m *MockPortalClient) GetUserQuests(ctx context.Context, token string) ([]model.UserQuest, error) {
	args := m.Called(ctx, token)
	var records []model.UserQuest
	if v := args.Get(0); v != nil {
		records = v.([]model.UserQuest)
	}
	return records, args.Error(1)
}

func (m *MockPortalClient) SubmitQuest(ctx context.Context, token, questID string, metadata map[string]any) (*model.ActionResult, error) {
	args := m.Called(ctx, token, questID, metadata)
	var res *model.ActionResult
	if v := args.Get(0); v != nil {
		res = v.(*model.ActionResult)
	}
	return res, args.Error(1)
}

type MockAccountProcessor struct {
	mock.Mock
}

func (m *MockAccountProcessor) ProcessAccount(ctx context.Context, account model.Account) model.CycleResult {
	args := m.Called(ctx, account)
	return args.Get(0).(model.CycleResult)
}

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) RecordPass(ctx context.Context, report *model.PassReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyPass(ctx context.Context, report *model.PassReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}
