// Package chat posts plain text messages to the sales team channel.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"forumregistrations/internal/domain"
)

// Config holds configuration for creating a chat notifier.
type Config struct {
	Provider         string
	SlackWebhookURL  string
	DiscordBotToken  string
	DiscordChannelID string
}

// NewNotifier creates a chat notifier from config. Provider "slack" posts to an
// incoming webhook, "discord" posts through a bot session; "noop" or unknown
// uses a no-op notifier.
func NewNotifier(cfg Config) (domain.ChatNotifier, error) {
	switch cfg.Provider {
	case "slack":
		if cfg.SlackWebhookURL == "" {
			return nil, fmt.Errorf("slack notifier: webhook url is required")
		}
		return NewSlackNotifier(cfg.SlackWebhookURL, nil), nil
	case "discord":
		if cfg.DiscordBotToken == "" || cfg.DiscordChannelID == "" {
			return nil, fmt.Errorf("discord notifier: bot token and channel id are required")
		}
		s, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			return nil, fmt.Errorf("discord session: %w", err)
		}
		return &discordNotifier{session: s, channelID: cfg.DiscordChannelID}, nil
	case "noop":
		return &noopNotifier{}, nil
	default:
		log.Printf("[CHAT] Unknown chat provider %q, using noop", cfg.Provider)
		return &noopNotifier{}, nil
	}
}

// SlackNotifier posts to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	http       *http.Client
}

// NewSlackNotifier returns a SlackNotifier. A nil httpClient uses a client with a 10s timeout.
func NewSlackNotifier(webhookURL string, httpClient *http.Client) *SlackNotifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &SlackNotifier{webhookURL: webhookURL, http: httpClient}
}

func (s *SlackNotifier) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("encode slack message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return &domain.ProviderError{Provider: "slack", Op: "post message", Message: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &domain.ProviderError{
			Provider:   "slack",
			Op:         "post message",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}
	return nil
}

// discordSender is satisfied by *discordgo.Session.
type discordSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type discordNotifier struct {
	session   discordSender
	channelID string
}

func (d *discordNotifier) Send(ctx context.Context, text string) error {
	if _, err := d.session.ChannelMessageSend(d.channelID, text, discordgo.WithContext(ctx)); err != nil {
		return &domain.ProviderError{Provider: "discord", Op: "post message", Message: err.Error()}
	}
	return nil
}

type noopNotifier struct{}

func (n *noopNotifier) Send(_ context.Context, text string) error {
	log.Printf("[CHAT] Message would be posted (noop): %s", text)
	return nil
}
