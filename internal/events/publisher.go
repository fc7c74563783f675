package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"unsritalk/internal/ids"
	"unsritalk/internal/security"
)

type Publisher struct {
	client *redis.Client
	stream string
	secret string
	now    func() time.Time
}

func NewPublisher(client *redis.Client, stream string, secret string) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		secret: secret,
		now:    time.Now,
	}
}

func (p *Publisher) Publish(ctx context.Context, taskType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", taskType, err)
	}

	date := p.now().UTC().Format(time.RFC3339)
	nonce := ids.New()
	signature := security.ComputeTaskSignature(p.secret, taskType, security.ComputeBodyHash(body), date, nonce)

	_, err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			FieldType:      taskType,
			FieldPayload:   string(body),
			FieldDate:      date,
			FieldNonce:     nonce,
			FieldSignature: signature,
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", taskType, err)
	}
	return nil
}

// Nop drops every task. Used when no redis is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
