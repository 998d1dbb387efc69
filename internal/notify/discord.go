package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type messageSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts messages to a single channel through the REST API. No gateway
// connection is opened.
type Discord struct {
	sender    messageSender
	channelID string
}

func NewDiscord(token, channelID string) (*Discord, error) {
	if token == "" || channelID == "" {
		return nil, errors.New("NewDiscord: token and channel id are required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("NewDiscord: %w", err)
	}
	return &Discord{sender: session, channelID: channelID}, nil
}

func (d *Discord) NotifySuccess(ctx context.Context, message string) error {
	if _, err := d.sender.ChannelMessageSend(d.channelID, message, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("NotifySuccess: discord channel %s: %w", d.channelID, err)
	}
	return nil
}
