package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"task-manager-be/internal/dto"
	"task-manager-be/internal/pkg/clock"
)

// IPublisherService puts activity signals on the in-process bus. Everything
// that counts as "the user did something" funnels through here so the
// inactivity bookkeeping has a single entry point.
type IPublisherService interface {
	PublishActivity(ctx context.Context, sessionID, kind string) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
	clk       clock.Clock
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel, clk clock.Clock) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
		clk:       clk,
	}
}

func (ps *publisherService) PublishActivity(ctx context.Context, sessionID, kind string) error {
	payload := dto.ActivityMessage{
		SessionId: sessionID,
		Kind:      kind,
		At:        ps.clk.Now(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	return ps.pubSub.Publish(ps.topicName, msg)
}
