package main

import (
	"fmt"
	"strings"
	"time"

	"rewards_quest_bot/internal/notify"
	"rewards_quest_bot/internal/portal"
	"rewards_quest_bot/internal/repository"
	"rewards_quest_bot/internal/service"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	LogLevel     string `mapstructure:"logLevel"`
	LogEncoding  string `mapstructure:"logEncoding"`
	AccountsFile string `mapstructure:"accountsFile"`

	Portal   portal.Config  `mapstructure:"portal"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Quests   QuestsConfig   `mapstructure:"quests"`

	Database repository.Config `mapstructure:"database"`
	Server   ServerConfig      `mapstructure:"server"`
	Telegram notify.Config     `mapstructure:"telegram"`
}

type ScheduleConfig struct {
	ActionPause     time.Duration `mapstructure:"actionPause"`
	AccountPause    time.Duration `mapstructure:"accountPause"`
	RollPause       time.Duration `mapstructure:"rollPause"`
	MaxRollAttempts int           `mapstructure:"maxRollAttempts"`
}

type QuestsConfig struct {
	TimeGatedTitle string   `mapstructure:"timeGatedTitle"`
	SocialPrefix   string   `mapstructure:"socialPrefix"`
	SocialExcluded []string `mapstructure:"socialExcluded"`
}

type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	Token   string `mapstructure:"token"`
}

func (c *Config) ServiceOptions() service.Options {
	return service.Options{
		ActionPause:     c.Schedule.ActionPause,
		AccountPause:    c.Schedule.AccountPause,
		RollPause:       c.Schedule.RollPause,
		MaxRollAttempts: c.Schedule.MaxRollAttempts,
		TimeGatedTitle:  c.Quests.TimeGatedTitle,
		SocialPrefix:    c.Quests.SocialPrefix,
		SocialExcluded:  c.Quests.SocialExcluded,
	}
}

func setDefaults(v *viper.Viper) {
	opts := service.DefaultOptions()

	v.SetDefault("logLevel", "info")
	v.SetDefault("logEncoding", "console")
	v.SetDefault("accountsFile", "data.txt")

	v.SetDefault("portal.baseURL", portal.DefaultBaseURL)
	v.SetDefault("portal.referer", portal.DefaultReferer)
	v.SetDefault("portal.userAgent", portal.DefaultUserAgent)
	v.SetDefault("portal.cookieName", portal.DefaultCookieName)
	v.SetDefault("portal.timeout", portal.DefaultTimeout)

	v.SetDefault("schedule.actionPause", opts.ActionPause)
	v.SetDefault("schedule.accountPause", opts.AccountPause)
	v.SetDefault("schedule.rollPause", opts.RollPause)
	v.SetDefault("schedule.maxRollAttempts", opts.MaxRollAttempts)

	v.SetDefault("quests.timeGatedTitle", opts.TimeGatedTitle)
	v.SetDefault("quests.socialPrefix", opts.SocialPrefix)
	v.SetDefault("quests.socialExcluded", opts.SocialExcluded)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")

	v.SetDefault("server.enabled", false)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.token", "")

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.botToken", "")
	v.SetDefault("telegram.chatID", 0)
	v.SetDefault("telegram.debug", false)
}

// LoadConfig reads config.yaml from the working directory, or configFile when
// given, with APP_* environment overrides. A missing default config file is
// not an error.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(configPath)
		v.SetConfigType(configFormat)
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
