package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/messaging"
	"storefront/internal/models"
)

// eventLog is the part of database.DB the subscriber writes to
type eventLog interface {
	Exec(ctx context.Context, sql string, args ...interface{}) error
}

// consumer is the part of messaging.Consumer the subscriber drives
type consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Subscriber prints order and payment events and keeps an audit log of them
type Subscriber struct {
	consumer consumer
	events   eventLog
	logger   *logger.Logger
	out      io.Writer
}

// NewSubscriber creates a new notification subscriber. events may be nil to skip the audit log.
func NewSubscriber(consumer *messaging.Consumer, events *database.DB, log *logger.Logger) *Subscriber {
	s := &Subscriber{
		consumer: consumer,
		logger:   log,
		out:      os.Stdout,
	}
	if events != nil {
		s.events = events
	}
	return s
}

// Start consumes until ctx is cancelled or the consumer gives up
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, map[string]interface{}{
		"queue": messaging.OrderEventsQueue,
	})

	err := s.consumer.StartConsuming(ctx, s.handleEvent)

	s.logger.Info("graceful_shutdown", "Stopping notification subscriber", requestID, nil)
	if closeErr := s.consumer.Close(); closeErr != nil {
		s.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, closeErr, nil)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("consumer_failed", "Notification consumer failed", requestID, err, nil)
		return err
	}
	return nil
}

// handleEvent dispatches on the routing key prefix
func (s *Subscriber) handleEvent(ctx context.Context, routingKey string, body []byte) error {
	requestID := logger.GenerateRequestID()

	var (
		kind      models.EventKind
		orderID   string
		paymentID string
		line      string
	)

	switch {
	case strings.HasPrefix(routingKey, string(models.EventOrderStatusChanged)):
		var msg models.StatusUpdateMessage
		if err := messaging.ParseMessage(body, &msg); err != nil {
			return s.parseFailed(requestID, routingKey, err)
		}
		kind, orderID = models.EventOrderStatusChanged, msg.OrderID
		line = formatStatusChange(&msg)

	case strings.HasPrefix(routingKey, string(models.EventOrderCreated)):
		var msg models.OrderEventMessage
		if err := messaging.ParseMessage(body, &msg); err != nil {
			return s.parseFailed(requestID, routingKey, err)
		}
		kind, orderID = models.EventOrderCreated, msg.OrderID
		line = formatOrderCreated(&msg)

	case strings.HasPrefix(routingKey, string(models.EventPaymentRecorded)):
		var msg models.PaymentRecordedMessage
		if err := messaging.ParseMessage(body, &msg); err != nil {
			return s.parseFailed(requestID, routingKey, err)
		}
		kind, paymentID = models.EventPaymentRecorded, msg.PaymentID
		line = formatPaymentRecorded(&msg)

	default:
		// Unknown events are acknowledged so they do not loop through the queue
		s.logger.Debug("event_ignored", "Ignoring unknown event", requestID, map[string]interface{}{
			"routing_key": routingKey,
		})
		return nil
	}

	if s.events != nil {
		if err := s.events.Exec(ctx, database.InsertOrderEventSQL, string(kind), orderID, paymentID, routingKey, body); err != nil {
			return fmt.Errorf("failed to record event: %w", err)
		}
	}

	fmt.Fprintln(s.out, line)

	s.logger.Info("notification_displayed", "Notification displayed to user", requestID, map[string]interface{}{
		"kind":        kind,
		"order_id":    orderID,
		"payment_id":  paymentID,
		"routing_key": routingKey,
	})
	return nil
}

// parseFailed logs a malformed payload; it is dropped since redelivery cannot fix it
func (s *Subscriber) parseFailed(requestID, routingKey string, err error) error {
	s.logger.Error("message_parsing_failed", "Failed to parse event message", requestID, err, map[string]interface{}{
		"routing_key": routingKey,
	})
	return nil
}

func formatOrderCreated(msg *models.OrderEventMessage) string {
	timestamp := msg.Timestamp.Format("2006-01-02 15:04:05")
	return fmt.Sprintf("[%s] New %s %s order %s for vendor %s, total %s.",
		timestamp, msg.Type, msg.Delivery, msg.OrderID, msg.VendorID, msg.Total)
}

func formatStatusChange(msg *models.StatusUpdateMessage) string {
	timestamp := msg.Timestamp.Format("2006-01-02 15:04:05")

	switch msg.NewStatus {
	case models.StatusProcessing:
		return fmt.Sprintf("[%s] Order %s is now being prepared.", timestamp, msg.OrderID)
	case models.StatusDelivering:
		return fmt.Sprintf("[%s] Order %s is on its way.", timestamp, msg.OrderID)
	case models.StatusCompleted:
		return fmt.Sprintf("[%s] Order %s has been completed.", timestamp, msg.OrderID)
	case models.StatusCancelled, models.StatusRejected:
		return fmt.Sprintf("[%s] Order %s was %s by %s.", timestamp, msg.OrderID, strings.ToLower(string(msg.NewStatus)), msg.ChangedBy)
	default:
		return fmt.Sprintf("[%s] Order %s status changed from '%s' to '%s' by %s.",
			timestamp, msg.OrderID, msg.OldStatus, msg.NewStatus, msg.ChangedBy)
	}
}

func formatPaymentRecorded(msg *models.PaymentRecordedMessage) string {
	timestamp := msg.Timestamp.Format("2006-01-02 15:04:05")
	if msg.Status != "" {
		return fmt.Sprintf("[%s] Payment %s recorded with reference %s (%s).", timestamp, msg.PaymentID, msg.Ref, msg.Status)
	}
	return fmt.Sprintf("[%s] Payment %s recorded with reference %s.", timestamp, msg.PaymentID, msg.Ref)
}
