package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/target/mmk-unsubscribe/config"
	"github.com/target/mmk-unsubscribe/internal/adapters/browser"
	"github.com/target/mmk-unsubscribe/internal/adapters/gmail"
	"github.com/target/mmk-unsubscribe/internal/adapters/mailto"
	"github.com/target/mmk-unsubscribe/internal/adapters/oneclick"
	"github.com/target/mmk-unsubscribe/internal/service"
)

// StrategyConfig groups the configuration the execution strategies are built from.
type StrategyConfig struct {
	Unsubscribe config.UnsubscribeConfig
	Gmail       config.GmailConfig
	Logger      *slog.Logger
}

// BuildStrategies wires the one-click, browser and mailto strategies. Without
// Gmail credentials the mail sender is left nil and mailto attempts fail.
func BuildStrategies(cfg StrategyConfig) (service.Strategies, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	u := cfg.Unsubscribe

	s := service.Strategies{
		OneClick: oneclick.NewClient(oneclick.Config{
			Timeout:       u.HTTPTimeout,
			MaxRetries:    u.HTTPMaxRetries,
			BackoffFactor: u.HTTPBackoffFactor,
			BaseDelay:     time.Second,
			UserAgent:     u.UserAgent,
		}),
		Browser: browser.New(browser.Config{
			PageLoadTimeout: u.PageLoadTimeout,
			ElementWait:     u.ElementWait,
			UserAgent:       u.UserAgent,
			Logger:          logger,
		}),
		Mailto: mailto.Sender{},
	}

	if !cfg.Gmail.IsEnabled() {
		logger.Warn("gmail credentials not configured; mailto unsubscribes will fail")
		return s, nil
	}
	sender, err := gmail.NewSender(gmail.Config{
		ClientID:     cfg.Gmail.ClientID,
		ClientSecret: cfg.Gmail.ClientSecret,
		RefreshToken: cfg.Gmail.RefreshToken,
		TokenURL:     cfg.Gmail.TokenURL,
		APIBaseURL:   cfg.Gmail.APIBaseURL,
		UserID:       cfg.Gmail.From,
	})
	if err != nil {
		return service.Strategies{}, fmt.Errorf("gmail sender: %w", err)
	}
	s.Mail = sender
	return s, nil
}
