package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prasetia/inventaris/internal/domain"
	pkgkafka "github.com/prasetia/inventaris/pkg/kafka"
	"github.com/prasetia/inventaris/pkg/logger"
)

// Kafka topic constants for domain events.
const (
	TopicUserRegistered          = "inventaris.user.registered"
	TopicUserVerified            = "inventaris.user.verified"
	TopicPasswordResetRequested  = "inventaris.user.password_reset_requested"
	TopicPasswordReset           = "inventaris.user.password_reset"
	TopicStockMovement           = "inventaris.stock.movement"
	TopicStockLow                = "inventaris.stock.low"
)

// Aggregate type constants.
const (
	AggregateTypeUser    = "user"
	AggregateTypeProduct = "product"
)

// Source identifier for events originating from this service.
const Source = "inventaris"

// UserEventData is the payload shared by user lifecycle events.
type UserEventData struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
}

// StockMovementData is the payload for a stock.movement event.
type StockMovementData struct {
	TransactionID string `json:"transaction_id"`
	ProductID     string `json:"product_id"`
	Type          string `json:"type"`
	Quantity      int    `json:"quantity"`
	StockAfter    int    `json:"stock_after"`
}

// StockLowData is the payload for a stock.low event.
type StockLowData struct {
	ProductID string `json:"product_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	MinStock  int    `json:"min_stock"`
}

// Publisher abstracts the Kafka producer for testing.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return p.publishUserEvent(ctx, TopicUserRegistered, user)
}

// PublishUserVerified publishes a user.verified event.
func (p *Producer) PublishUserVerified(ctx context.Context, user *domain.User) error {
	return p.publishUserEvent(ctx, TopicUserVerified, user)
}

// PublishPasswordResetRequested publishes a user.password_reset_requested event.
func (p *Producer) PublishPasswordResetRequested(ctx context.Context, user *domain.User) error {
	return p.publishUserEvent(ctx, TopicPasswordResetRequested, user)
}

// PublishPasswordReset publishes a user.password_reset event.
func (p *Producer) PublishPasswordReset(ctx context.Context, user *domain.User) error {
	return p.publishUserEvent(ctx, TopicPasswordReset, user)
}

func (p *Producer) publishUserEvent(ctx context.Context, topic string, user *domain.User) error {
	data := UserEventData{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}

	event, err := pkgkafka.NewEvent(topic, user.ID, AggregateTypeUser, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published user event",
		slog.String("topic", topic),
		slog.String("user_id", user.ID),
	)

	return nil
}

// PublishStockMovement publishes a stock.movement event.
func (p *Producer) PublishStockMovement(ctx context.Context, txn *domain.StockTransaction, stockAfter int) error {
	data := StockMovementData{
		TransactionID: txn.ID,
		ProductID:     txn.ProductID,
		Type:          txn.Type,
		Quantity:      txn.Quantity,
		StockAfter:    stockAfter,
	}

	event, err := pkgkafka.NewEvent(TopicStockMovement, txn.ProductID, AggregateTypeProduct, Source, data)
	if err != nil {
		return fmt.Errorf("create stock.movement event: %w", err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicStockMovement, event); err != nil {
		return fmt.Errorf("publish stock.movement event: %w", err)
	}

	return nil
}

// PublishStockLow publishes a stock.low event when a product drops to or
// below its minimum stock.
func (p *Producer) PublishStockLow(ctx context.Context, product *domain.Product) error {
	data := StockLowData{
		ProductID: product.ID,
		Code:      product.Code,
		Name:      product.Name,
		Stock:     product.Stock,
		MinStock:  product.MinStock,
	}

	event, err := pkgkafka.NewEvent(TopicStockLow, product.ID, AggregateTypeProduct, Source, data)
	if err != nil {
		return fmt.Errorf("create stock.low event: %w", err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicStockLow, event); err != nil {
		return fmt.Errorf("publish stock.low event: %w", err)
	}

	p.logger.InfoContext(ctx, "low stock alert published",
		slog.String("product_id", product.ID),
		slog.String("code", product.Code),
		slog.Int("stock", product.Stock),
	)

	return nil
}
