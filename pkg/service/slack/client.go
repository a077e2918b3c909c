package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/domain/interfaces"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/slack-go/slack"
)

// maxSectionText is the Slack limit for a section block text
const maxSectionText = 3000

// Notifier posts ingestion results to a Slack channel
type Notifier struct {
	api       *slack.Client
	channelID string
}

var _ interfaces.Notifier = &Notifier{}

type options struct {
	apiURL string
}

// Option is a functional option for Notifier configuration
type Option func(*options)

// WithAPIURL points the client to another Slack API endpoint. The URL must end with "/".
func WithAPIURL(u string) Option {
	return func(o *options) {
		o.apiURL = u
	}
}

// New creates a new Slack notifier with the provided bot token
func New(token, channelID string, opts ...Option) (*Notifier, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var slackOpts []slack.Option
	if o.apiURL != "" {
		slackOpts = append(slackOpts, slack.OptionAPIURL(o.apiURL))
	}

	return &Notifier{
		api:       slack.New(token, slackOpts...),
		channelID: channelID,
	}, nil
}

// NotifyIngestion posts the summary with new and existing counts
func (n *Notifier) NotifyIngestion(ctx context.Context, result *model.IngestionResult) error {
	header := fmt.Sprintf("Tech insights: %d new, %d already stored", result.NewCount, result.ExistingCount)

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, header, false, false)),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, truncate(result.Summary, maxSectionText), false, false),
			nil, nil),
	}

	if links := articleLinks(result.Articles); links != "" {
		blocks = append(blocks,
			slack.NewDividerBlock(),
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, truncate(links, maxSectionText), false, false),
				nil, nil),
		)
	}

	_, _, err := n.api.PostMessageContext(ctx, n.channelID,
		slack.MsgOptionText(header, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post ingestion result to Slack", goerr.V("channel", n.channelID))
	}

	return nil
}

func articleLinks(articles []*model.Article) string {
	var lines []string
	for _, a := range articles {
		if a.URL == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("• <%s|%s>", a.URL, a.Title))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
