// Package notification tells sellers that a buyer is interested in one of
// their listings.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"property-marketplace/internal/logger"
)

// InterestEvent is the payload published when a buyer expresses interest.
type InterestEvent struct {
	PropertyID    int64     `json:"property_id"`
	PropertyTitle string    `json:"property_title"`
	SellerID      int64     `json:"seller_id"`
	BuyerID       int64     `json:"buyer_id"`
	BuyerName     string    `json:"buyer_name"`
	BuyerEmail    string    `json:"buyer_email"`
	BuyerPhone    string    `json:"buyer_phone"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type InterestPublisher interface {
	PublishInterest(ctx context.Context, event InterestEvent) error
}

// ErrBrokerUnavailable is returned without waiting when the client has lost
// its broker connection and is still reconnecting.
var ErrBrokerUnavailable = errors.New("mqtt broker unavailable")

// Publisher is the subset of the MQTT client used here.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	IsConnected() bool
}

type MQTTPublisher struct {
	client       Publisher
	topicPattern string
	qos          byte
}

// NewMQTTPublisher publishes to topicPattern formatted with the seller's id,
// e.g. "marketplace/sellers/%d/interest", so a seller subscribes once for
// all of their listings.
func NewMQTTPublisher(client Publisher, topicPattern string, qos byte) *MQTTPublisher {
	return &MQTTPublisher{
		client:       client,
		topicPattern: topicPattern,
		qos:          qos,
	}
}

func (p *MQTTPublisher) Topic(sellerID int64) string {
	return fmt.Sprintf(p.topicPattern, sellerID)
}

func (p *MQTTPublisher) PublishInterest(ctx context.Context, event InterestEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode interest event: %w", err)
	}

	topic := p.Topic(event.SellerID)
	if !p.client.IsConnected() {
		return fmt.Errorf("failed to publish interest event to %s: %w", topic, ErrBrokerUnavailable)
	}
	if err := p.client.Publish(topic, p.qos, false, payload); err != nil {
		return fmt.Errorf("failed to publish interest event to %s: %w", topic, err)
	}

	logger.Debug("Interest event published",
		zap.String("topic", topic),
		zap.Int64("property_id", event.PropertyID),
		zap.Int64("seller_id", event.SellerID),
		zap.Int64("buyer_id", event.BuyerID),
		zap.String("event", "interest_published"),
	)
	return nil
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishInterest(context.Context, InterestEvent) error {
	return nil
}
