package repository

import (
	"context"
	"fmt"

	"TrendLab/internal/domain/models"
	"TrendLab/internal/domain/repository"
	pkgkafka "TrendLab/pkg/kafka"
)

// KafkaReportSink publishes fold reports and gate decisions to Kafka, keyed
// by symbol so per-symbol ordering holds with a hash balancer.
type KafkaReportSink struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaReportSink creates a Kafka report sink.
func NewKafkaReportSink(producer *pkgkafka.Producer, topic string) repository.ReportSink {
	return &KafkaReportSink{producer: producer, topic: topic}
}

func (s *KafkaReportSink) PublishFold(ctx context.Context, symbol string, fold models.FoldReport) error {
	return s.producer.Publish(ctx, s.topic, []byte(symbol), map[string]interface{}{
		"type":   "fold",
		"symbol": symbol,
		"fold":   fold,
	})
}

func (s *KafkaReportSink) PublishDecision(ctx context.Context, report *models.ValidationReport) error {
	if report == nil {
		return fmt.Errorf("publish decision: nil report")
	}
	return s.producer.Publish(ctx, s.topic, []byte(report.Symbol), map[string]interface{}{
		"type":     "decision",
		"symbol":   report.Symbol,
		"decision": report.Decision,
		"report":   report,
	})
}

func (s *KafkaReportSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}

// NopReportSink discards reports. Used when Kafka is disabled.
type NopReportSink struct{}

func (NopReportSink) PublishFold(context.Context, string, models.FoldReport) error { return nil }
func (NopReportSink) PublishDecision(context.Context, *models.ValidationReport) error {
	return nil
}
func (NopReportSink) Close() error { return nil }
