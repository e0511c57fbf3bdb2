package portal

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"rewards_quest_bot/internal/model"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const (
	DefaultBaseURL    = "https://www.magicnewton.com/portal"
	DefaultReferer    = "https://www.magicnewton.com/portal/rewards"
	DefaultCookieName = "__Secure-next-auth.session-token"
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"
	DefaultTimeout    = 30 * time.Second
)

const (
	userPath       = "/api/user"
	questsPath     = "/api/quests"
	userQuestsPath = "/api/userQuests"
)

type Config struct {
	BaseURL    string        `mapstructure:"baseURL"`
	Referer    string        `mapstructure:"referer"`
	UserAgent  string        `mapstructure:"userAgent"`
	CookieName string        `mapstructure:"cookieName"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Referer == "" {
		c.Referer = DefaultReferer
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Client talks to the rewards portal. It holds no per-account state: the
// session token is passed to every call.
type Client struct {
	hc      *http.Client
	cfg     Config
	headers http.Header
}

func New(cfg Config) *Client {
	cfg = cfg.withDefaults()

	headers := http.Header{}
	headers.Set("Accept", "*/*")
	headers.Set("Accept-Language", "en-US,en;q=0.9")
	headers.Set("Content-Type", "application/json")
	headers.Set("Referer", cfg.Referer)
	headers.Set("User-Agent", cfg.UserAgent)

	return &Client{
		hc:      &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		headers: headers,
	}
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type userResponse struct {
	Email   string `json:"email"`
	RefCode string `json:"refCode"`
}

type questResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type userQuestResponse struct {
	ID        string    `json:"id"`
	QuestID   string    `json:"questId"`
	Status    string    `json:"status"`
	Credits   int       `json:"credits"`
	DiceRolls []int     `json:"_diceRolls"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type submitRequest struct {
	QuestID  string         `json:"questId"`
	Metadata map[string]any `json:"metadata"`
}

func (c *Client) GetProfile(ctx context.Context, token string) (*model.Profile, error) {
	var u userResponse
	if err := c.do(ctx, http.MethodGet, userPath, token, nil, &u); err != nil {
		return nil, err
	}
	return &model.Profile{Email: u.Email, RefCode: u.RefCode}, nil
}

func (c *Client) GetQuests(ctx context.Context, token string) ([]model.Quest, error) {
	var qs []questResponse
	if err := c.do(ctx, http.MethodGet, questsPath, token, nil, &qs); err != nil {
		return nil, err
	}

	quests := make([]model.Quest, len(qs))
	for i, q := range qs {
		quests[i] = model.Quest{ID: q.ID, Title: q.Title}
	}
	return quests, nil
}

func (c *Client) GetUserQuests(ctx context.Context, token string) ([]model.UserQuest, error) {
	var uqs []userQuestResponse
	if err := c.do(ctx, http.MethodGet, userQuestsPath, token, nil, &uqs); err != nil {
		return nil, err
	}

	userQuests := make([]model.UserQuest, len(uqs))
	for i, uq := range uqs {
		userQuests[i] = model.UserQuest{
			ID:        uq.ID,
			QuestID:   uq.QuestID,
			Status:    model.QuestStatus(uq.Status),
			UpdatedAt: uq.UpdatedAt,
			Credits:   uq.Credits,
			DiceRolls: uq.DiceRolls,
		}
	}
	return userQuests, nil
}

// SubmitQuest posts a quest action. An "already completed" rejection is
// returned as an error matching ErrAlreadyCompleted.
func (c *Client) SubmitQuest(ctx context.Context, token, questID string, metadata map[string]any) (*model.ActionResult, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}

	var uq userQuestResponse
	req := submitRequest{QuestID: questID, Metadata: metadata}
	if err := c.do(ctx, http.MethodPost, userQuestsPath, token, req, &uq); err != nil {
		return nil, err
	}

	return &model.ActionResult{
		Status:    model.QuestStatus(uq.Status),
		Credits:   uq.Credits,
		DiceRolls: uq.DiceRolls,
		UpdatedAt: uq.UpdatedAt,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrapf(err, "encode %s request", path)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return errors.Wrapf(err, "build %s request", path)
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Cookie", c.cfg.CookieName+"="+token)

	res, err := c.hc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "read %s response", path)
	}

	var env envelope
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		_ = json.Unmarshal(raw, &env)
		return &APIError{Endpoint: path, StatusCode: res.StatusCode, Message: env.Message}
	}

	if err := json.Unmarshal(raw, &env); err != nil {
		return errors.Wrapf(ErrInvalidResponse, "%s: %v", path, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return errors.Wrap(ErrInvalidResponse, path)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrapf(ErrInvalidResponse, "%s: %v", path, err)
	}

	return nil
}
