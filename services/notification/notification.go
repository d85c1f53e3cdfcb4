package notification

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/olahol/melody"
)

// Change types published on the websocket feed
const (
	Created  = "created"
	Updated  = "updated"
	Deleted  = "deleted"
	Linked   = "linked"
	Unlinked = "unlinked"
	Imported = "imported"
	Expired  = "expired"
)

// ReservationEvent is one change pushed to connected dashboards
type ReservationEvent struct {
	Type          string `json:"type"`
	ReservationID uint   `json:"reservationId,omitempty"`
	ResourceType  string `json:"resourceType,omitempty"`
	ResourceID    string `json:"resourceId,omitempty"`
	Status        string `json:"status,omitempty"`
	Count         int    `json:"count,omitempty"`
}

type Service interface {
	Publish(event ReservationEvent) error
}

type MelodyService struct {
	m *melody.Melody
}

func NewMelodyService(m *melody.Melody) *MelodyService {
	return &MelodyService{m: m}
}

func (s *MelodyService) Publish(event ReservationEvent) error {
	if s.m == nil {
		return fmt.Errorf("melody instance is nil")
	}
	msg, err := NewMessageBuilder(event).Build()
	if err != nil {
		return err
	}
	return s.m.Broadcast(msg)
}

// Nop drops every event
type Nop struct{}

func (Nop) Publish(ReservationEvent) error { return nil }

// Recorder keeps published events in memory
type Recorder struct {
	Events []ReservationEvent
}

func (r *Recorder) Publish(event ReservationEvent) error {
	r.Events = append(r.Events, event)
	return nil
}

type MessageBuilder struct {
	event ReservationEvent
}

func NewMessageBuilder(event ReservationEvent) *MessageBuilder {
	return &MessageBuilder{event: event}
}

func (b *MessageBuilder) Build() ([]byte, error) {
	return json.Marshal(b.event)
}
