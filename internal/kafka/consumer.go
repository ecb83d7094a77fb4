package kafka

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/opengemeente/klantsync/internal/application"
	"github.com/opengemeente/klantsync/internal/domain"
)

// retryBackoff is the pause before re-fetching a failed record, so a broken
// upstream does not turn into a hot poll loop.
const retryBackoff = 5 * time.Second

// Consumer is the registration dispatcher: it consumes queued notifications,
// wraps each in the idempotency guard and invokes the selected strategy.
type Consumer struct {
	client    *kgo.Client
	strategy  application.Strategy
	processed domain.ProcessedStore
}

// NewConsumer creates a Consumer with the given brokers, group ID and topic.
// Commits are mark-based: only records explicitly marked after successful
// processing are ever committed, so a failed record cannot be covered by a
// later commit.
func NewConsumer(brokers []string, groupID, topic string, strategy application.Strategy, processed domain.ProcessedStore) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		kgo.AutoCommitMarks(),
	)
	if err != nil {
		return nil, err
	}
	return &Consumer{client: client, strategy: strategy, processed: processed}, nil
}

// Start begins polling and processing records. Blocks until ctx is cancelled.
//
// Each batch is processed in order up to the first failure. The processed
// prefix is marked and committed; the failed record and everything after it
// is neither. PollFetches advances the in-memory position past everything it
// returns, so the fetch position is explicitly rewound to the unprocessed
// remainder: without the rewind the failed record would never be fetched
// again in this process, and a later commit would cover its offset.
func (c *Consumer) Start(ctx context.Context) {
	log.Info().Msg("registration dispatcher started")

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			break
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			log.Error().Err(err).Str("topic", topic).Int32("partition", partition).Msg("kafka fetch error")
		})

		done, rest, procErr := c.verwerkBatch(ctx, fetches.Records())
		if len(done) > 0 {
			c.client.MarkCommitRecords(done...)
			if err := c.client.CommitMarkedOffsets(ctx); err != nil {
				log.Error().Err(err).Msg("kafka commit error")
			}
		}
		if len(rest) == 0 {
			continue
		}

		failed := rest[0]
		log.Error().Err(procErr).
			Str("key", string(failed.Key)).
			Str("delivery_id", deliveryID(failed)).
			Msg("registration failed, rewinding for retry")
		c.client.SetOffsets(rewindOffsets(rest))

		select {
		case <-time.After(retryBackoff):
		case <-ctx.Done():
		}
	}

	c.client.Close()
	log.Info().Msg("registration dispatcher stopped")
}

// verwerkBatch processes records in order and stops at the first failure. It
// returns the successfully processed prefix, which may be committed, and the
// unprocessed remainder starting at the failed record, which must be
// redelivered. Records after the failure stay untouched so the rewind can
// replay each partition without gaps.
func (c *Consumer) verwerkBatch(ctx context.Context, records []*kgo.Record) (done, rest []*kgo.Record, err error) {
	for i, r := range records {
		if perr := c.process(ctx, r); perr != nil {
			return done, records[i:], perr
		}
		done = append(done, r)
	}
	return done, nil, nil
}

// rewindOffsets maps the unprocessed records to the fetch offsets to resume
// from: per partition, the earliest unprocessed offset.
func rewindOffsets(rest []*kgo.Record) map[string]map[int32]kgo.EpochOffset {
	offsets := map[string]map[int32]kgo.EpochOffset{}
	for _, r := range rest {
		parts, ok := offsets[r.Topic]
		if !ok {
			parts = map[int32]kgo.EpochOffset{}
			offsets[r.Topic] = parts
		}
		if cur, ok := parts[r.Partition]; !ok || r.Offset < cur.Offset {
			parts[r.Partition] = kgo.EpochOffset{Epoch: r.LeaderEpoch, Offset: r.Offset}
		}
	}
	return offsets
}

// deliveryID returns the per-delivery trace id set by the producer.
func deliveryID(r *kgo.Record) string {
	for _, h := range r.Headers {
		if h.Key == "delivery_id" {
			return string(h.Value)
		}
	}
	return ""
}

// process handles a single queued notification to completion.
func (c *Consumer) process(ctx context.Context, r *kgo.Record) error {
	n, err := domain.ParseNotificatie(r.Value)
	if err != nil {
		// Fatal and non-retryable: a body that does not parse never will.
		// Surfaced here instead of propagated, so the message is neither
		// silently dropped nor retried forever.
		log.Error().Err(err).Str("key", string(r.Key)).Msg("unparseable notificatie, dropping")
		return nil
	}

	hash := string(r.Key)
	if hash == "" {
		hash = n.ContentHash()
	}

	handled, err := c.processed.AlreadyHandled(ctx, hash)
	if err != nil {
		return err
	}
	if handled {
		log.Debug().Str("hash", hash).Msg("notificatie already handled, skipping")
		return nil
	}

	if issues := c.strategy.ValidateNotificatie(n); len(issues) > 0 {
		// Not for us; not an error.
		log.Debug().Strs("issues", issues).Msg("notificatie not eligible, skipping")
		return nil
	}

	if err := c.strategy.Register(ctx, n); err != nil {
		return err
	}

	if err := c.processed.MarkHandled(ctx, hash); err != nil {
		// Registration succeeded; the domain-level betrokkene guard covers a
		// redelivery, so a marker failure is not worth a retry loop.
		log.Warn().Err(err).Str("hash", hash).Msg("failed to mark notificatie handled")
	}
	return nil
}
