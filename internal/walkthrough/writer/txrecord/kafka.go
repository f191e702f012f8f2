package txrecord

import (
	"context"
	"time"

	"ocean-df/internal/walkthrough/model"
	"ocean-df/internal/walkthrough/writer"

	"github.com/bytedance/sonic"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter *kafka.Writer 的子集
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaTxRecordWriter struct {
	mq MessageWriter
	tl *zap.Logger

	topic string
}

func NewKafkaTxRecordWriter(mq MessageWriter, tl *zap.Logger, topic string) writer.BatchWriter[model.TxRecord] {
	return &KafkaTxRecordWriter{mq: mq, tl: tl, topic: topic}
}

func (w *KafkaTxRecordWriter) BWrite(ctx context.Context, records []model.TxRecord) error {
	if len(records) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(records))
	for _, rec := range records {
		msg, err := w.marshalToMsg(rec)
		if err != nil {
			w.tl.Warn("marshal tx record failed", zap.String("tx", rec.TxHash), zap.Error(err))
			continue
		}
		msgs = append(msgs, msg)
	}

	newCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// 重试机制
	var err error
	for attempt := 0; attempt < RETRY_COUNT; attempt++ {
		err = w.mq.WriteMessages(newCtx, msgs...)
		if err == nil {
			break
		}
	}
	if err != nil {
		w.tl.Warn("❌ MQ write failed, exceeded the maximum number of retries", zap.Error(err))
		return err
	}
	return nil
}

func (w *KafkaTxRecordWriter) Close() error {
	return nil
}

func (w *KafkaTxRecordWriter) marshalToMsg(rec model.TxRecord) (kafka.Message, error) {
	jsonData, err := sonic.Marshal(rec)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Topic: w.topic,
		Key:   []byte(rec.FromAddress),
		Value: jsonData,
	}, nil
}
