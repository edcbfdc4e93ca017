package events

import (
	"context"
	"encoding/json"
	"fmt"

	"sms-storefront/internal/client"
	"sms-storefront/internal/models"
)

// KafkaSink produces events keyed by user id.
type KafkaSink struct {
	producer *client.KafkaProducer
}

func NewKafkaSink(p *client.KafkaProducer) *KafkaSink {
	return &KafkaSink{producer: p}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Write(ctx context.Context, event models.ActivityEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return s.producer.ProduceMessage(ctx, []byte(event.UserID), payload, map[string]string{
		"event_type": string(event.Type),
		"event_id":   event.ID,
	})
}

// ElasticsearchSink indexes events for ad-hoc search.
type ElasticsearchSink struct {
	client *client.ESClient
}

func NewElasticsearchSink(c *client.ESClient) *ElasticsearchSink {
	return &ElasticsearchSink{client: c}
}

func (s *ElasticsearchSink) Name() string { return "elasticsearch" }

func (s *ElasticsearchSink) Write(ctx context.Context, event models.ActivityEvent) error {
	return s.client.IndexDocument(ctx, s.client.Index(), event.ID, event)
}

// ClickHouseSink appends events to an analytics table.
type ClickHouseSink struct {
	client *client.ClickHouseClient
}

func NewClickHouseSink(c *client.ClickHouseClient) *ClickHouseSink {
	return &ClickHouseSink{client: c}
}

func (s *ClickHouseSink) Name() string { return "clickhouse" }

// EnsureTable creates the events table when missing.
func (s *ClickHouseSink) EnsureTable(ctx context.Context) error {
	return s.client.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id String,
		type LowCardinality(String),
		user_id String,
		attributes Map(String, String),
		occurred_at DateTime64(3, 'UTC')
	) ENGINE = MergeTree ORDER BY (type, occurred_at)`, s.client.Table()))
}

func (s *ClickHouseSink) Write(ctx context.Context, event models.ActivityEvent) error {
	attrs := event.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	return s.client.BatchInsert(ctx,
		fmt.Sprintf("INSERT INTO %s (id, type, user_id, attributes, occurred_at)", s.client.Table()),
		[][]interface{}{{event.ID, string(event.Type), event.UserID, attrs, event.OccurredAt}},
	)
}
