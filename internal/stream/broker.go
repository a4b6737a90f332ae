package stream

import (
	"context"
	"encoding/json"
	"fmt"

	"agent-orchestrator/internal/pkg/logger"
	"agent-orchestrator/pkg/events"
	"agent-orchestrator/pkg/pipeline"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const topicPrefix = "pipeline.transitions."

// TransitionFrame is the decoded payload of one transition message.
type TransitionFrame struct {
	TaskID         string `json:"task_id"`
	Status         string `json:"status"`
	IterationCount int    `json:"iteration_count"`
	MessageCount   int    `json:"message_count"`
}

// Broker fans pipeline transitions out to in-process subscribers. Each
// stream gets its own topic, so concurrent runs never see each other's
// frames. Subscribe before starting the run: the GoChannel drops messages
// published with no subscriber attached.
type Broker struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

func NewBroker(pubSub *gochannel.GoChannel, log logger.ILogger) *Broker {
	return &Broker{pubSub: pubSub, logger: log}
}

func topic(streamID string) string {
	return topicPrefix + streamID
}

// Observer adapts the broker into a per-transition callback for the
// orchestrator. Every stage invocation publishes one transition event on
// the stream's topic.
func (b *Broker) Observer(streamID string) func(*pipeline.State) {
	return func(st *pipeline.State) {
		ev := events.NewPipelineTransition(st.TaskID, string(st.Status), st.IterationCount, len(st.Messages))
		if err := b.publish(streamID, ev); err != nil {
			b.logger.Warn("Stream", "Failed to publish transition", map[string]interface{}{
				"stream_id": streamID,
				"task_id":   st.TaskID,
				"error":     err.Error(),
			})
		}
	}
}

func (b *Broker) publish(streamID string, ev events.Event) error {
	payload, err := json.Marshal(ev.Payload())
	if err != nil {
		return fmt.Errorf("marshal transition: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", ev.EventType())
	return b.pubSub.Publish(topic(streamID), msg)
}

// Subscribe returns the message channel for one stream. The channel closes
// when ctx is cancelled.
func (b *Broker) Subscribe(ctx context.Context, streamID string) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, topic(streamID))
}

// DecodeTransition unmarshals and acks a transition message. Malformed
// frames are acked too: the GoChannel redelivers on nack, and redelivery
// cannot repair a bad payload.
func DecodeTransition(msg *message.Message) (*TransitionFrame, error) {
	defer msg.Ack()

	var frame TransitionFrame
	if err := json.Unmarshal(msg.Payload, &frame); err != nil {
		return nil, fmt.Errorf("decode transition: %w", err)
	}
	return &frame, nil
}
