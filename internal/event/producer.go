// Package event publishes the server's domain events to Kafka.
package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/beatx/beatx-server/pkg/kafka"
)

// Kafka topic constants for the server's domain events.
const (
	TopicUserRegistered     = "beatx.user.registered"
	TopicVerificationResent = "beatx.user.verification_resent"
	TopicUserLoggedOut      = "beatx.user.logged_out"
	TopicTrackLiked         = "beatx.track.liked"
)

const (
	AggregateTypeUser  = "user"
	AggregateTypeTrack = "track"

	Source = "beatx-server"
)

// Publisher is the event surface the services depend on. Event publication
// is best-effort: callers log failures and carry on.
type Publisher interface {
	PublishUserRegistered(ctx context.Context, userID, email string) error
	PublishVerificationResent(ctx context.Context, email string) error
	PublishUserLoggedOut(ctx context.Context, userID string) error
	PublishTrackLiked(ctx context.Context, userID, trackID string, liked bool) error
}

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// VerificationResentData is the payload for a user.verification_resent event.
type VerificationResentData struct {
	Email string `json:"email"`
}

// UserLoggedOutData is the payload for a user.logged_out event.
type UserLoggedOutData struct {
	UserID string `json:"user_id"`
}

// TrackLikedData is the payload for a track.liked event. Liked is false when
// the toggle removed the like.
type TrackLikedData struct {
	UserID  string `json:"user_id"`
	TrackID string `json:"track_id"`
	Liked   bool   `json:"liked"`
}

// Producer publishes domain events through the shared Kafka producer.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

var _ Publisher = (*Producer)(nil)

// NewProducer creates the event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) PublishUserRegistered(ctx context.Context, userID, email string) error {
	data := UserRegisteredData{UserID: userID, Email: email}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, userID, AggregateTypeUser, Source, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", userID),
	)
	return nil
}

func (p *Producer) PublishVerificationResent(ctx context.Context, email string) error {
	data := VerificationResentData{Email: email}

	event, err := pkgkafka.NewEvent(TopicVerificationResent, email, AggregateTypeUser, Source, data)
	if err != nil {
		return fmt.Errorf("create user.verification_resent event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicVerificationResent, event); err != nil {
		return fmt.Errorf("publish user.verification_resent event: %w", err)
	}
	return nil
}

func (p *Producer) PublishUserLoggedOut(ctx context.Context, userID string) error {
	data := UserLoggedOutData{UserID: userID}

	event, err := pkgkafka.NewEvent(TopicUserLoggedOut, userID, AggregateTypeUser, Source, data)
	if err != nil {
		return fmt.Errorf("create user.logged_out event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicUserLoggedOut, event); err != nil {
		return fmt.Errorf("publish user.logged_out event: %w", err)
	}
	return nil
}

func (p *Producer) PublishTrackLiked(ctx context.Context, userID, trackID string, liked bool) error {
	data := TrackLikedData{UserID: userID, TrackID: trackID, Liked: liked}

	event, err := pkgkafka.NewEvent(TopicTrackLiked, trackID, AggregateTypeTrack, Source, data)
	if err != nil {
		return fmt.Errorf("create track.liked event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicTrackLiked, event); err != nil {
		return fmt.Errorf("publish track.liked event: %w", err)
	}
	return nil
}

// Noop is a Publisher that drops all events, used when Kafka is not
// configured.
type Noop struct{}

var _ Publisher = Noop{}

func (Noop) PublishUserRegistered(context.Context, string, string) error   { return nil }
func (Noop) PublishVerificationResent(context.Context, string) error       { return nil }
func (Noop) PublishUserLoggedOut(context.Context, string) error            { return nil }
func (Noop) PublishTrackLiked(context.Context, string, string, bool) error { return nil }
