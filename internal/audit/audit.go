// Package audit turns flight events consumed from Kafka into structured audit log entries.
package audit

import (
	"context"
	"encoding/json"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Recorder struct {
	log logrus.FieldLogger
}

func NewRecorder(log logrus.FieldLogger) *Recorder {
	return &Recorder{log: log}
}

func (r *Recorder) Record(_ context.Context, event domain.FlightEvent) error {
	fields := logrus.Fields{
		"event_id":    event.ID,
		"event_type":  event.Type,
		"flight_ids":  event.FlightIDs,
		"occurred_at": event.OccurredAt,
	}
	if event.DepartureAirport != "" {
		fields["route"] = event.DepartureAirport + "-" + event.ArrivalAirport
	}
	if event.DepartureTime != nil {
		fields["departure_time"] = *event.DepartureTime
	}
	if event.PriceCents > 0 {
		fields["price_cents"] = event.PriceCents
	}
	r.log.WithFields(fields).Info("flight event")
	return nil
}

// HandleMessage decodes a Kafka message. Undecodable messages are logged and skipped
// so a single bad record cannot stall the consumer group.
func (r *Recorder) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var event domain.FlightEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		r.log.WithError(err).WithField("offset", msg.Offset).Warn("decode flight event")
		return nil
	}
	return r.Record(ctx, event)
}
