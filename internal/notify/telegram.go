package notify

import (
	"context"
	"fmt"
	"strings"

	"rewards_quest_bot/internal/model"
	"rewards_quest_bot/pkg/console"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Config struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"botToken"`
	ChatID   int64  `mapstructure:"chatID"`
	Debug    bool   `mapstructure:"debug"`
}

// Sender is the part of *tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	bot    Sender
	chatID int64
}

func NewTelegramNotifier(cfg Config) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	bot.Debug = cfg.Debug

	return NewWithSender(bot, cfg.ChatID), nil
}

func NewWithSender(bot Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

func (n *TelegramNotifier) NotifyPass(ctx context.Context, report *model.PassReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatPassSummary(report))
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send pass summary: %w", err)
	}
	return nil
}

func FormatPassSummary(report *model.PassReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Pass finished: %d/%d accounts OK\n", report.AccountsOK(), len(report.Results))
	for _, res := range report.Results {
		name := res.Email
		if name == "" {
			name = fmt.Sprintf("account %d", res.AccountIndex)
		}

		if !res.AccountOK {
			fmt.Fprintf(&b, "\n#%d %s: failed (%s)", res.AccountIndex, name, res.Error)
			continue
		}

		fmt.Fprintf(&b, "\n#%d %s", res.AccountIndex, name)
		if res.SocialCompleted > 0 {
			fmt.Fprintf(&b, " | follows +%d", res.SocialCompleted)
		}
		if res.Roll != nil {
			fmt.Fprintf(&b, " | %s %d credits %s", res.Roll.Kind, res.Roll.Credits, console.FormatRolls(res.Roll.DiceRolls))
		}
		if res.NextEligibleAt != nil {
			fmt.Fprintf(&b, " | next %s", console.FormatTime(*res.NextEligibleAt))
		}
	}

	fmt.Fprintf(&b, "\n\nNext pass in %s at %s", report.Wait, console.FormatTime(report.NextPassAt))
	return b.String()
}
