package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds configuration for ingestion notifications. Notifications are disabled when no bot token is set.
type Slack struct {
	botToken  string
	channelID string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token for ingestion notifications",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("TECHINSIGHTS_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel ID to post ingestion summaries",
			Category:    "Slack",
			Destination: &x.channelID,
			Sources:     cli.EnvVars("TECHINSIGHTS_SLACK_CHANNEL_ID"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel-id", x.channelID),
	)
}

// IsConfigured checks if Slack notification is enabled
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// Missing implements Requirement. Only the channel is required once a token is given.
func (x *Slack) Missing() []string {
	if x.botToken != "" && x.channelID == "" {
		return []string{"slack-channel-id"}
	}
	return nil
}

// Configure creates the notifier, or returns nil when Slack is not configured
func (x *Slack) Configure() (*slack.Notifier, error) {
	if !x.IsConfigured() {
		return nil, nil
	}

	n, err := slack.New(x.botToken, x.channelID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Slack notifier")
	}
	return n, nil
}
