package services

import (
	"encoding/json"
	"log"
)

// EventPublisher is the notification side channel. *rabbitmq.Client
// satisfies it; tests pass a mock. Publishing is fire-and-forget:
// failures are logged and never abort a settlement.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

func publishEvent(pub EventPublisher, routingKey string, payload map[string]interface{}) {
	if pub == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := pub.Publish(routingKey, body); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", routingKey, err)
	}
}
