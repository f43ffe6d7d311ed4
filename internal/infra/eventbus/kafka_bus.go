package eventbus

import (
	"context"
	"fmt"
	"sync"

	evt_model "github.com/RoyceAzure/lab/furnimart/internal/domain/model/event"
	"github.com/RoyceAzure/lab/rj_kafka/kafka/config"
	"github.com/RoyceAzure/lab/rj_kafka/kafka/consumer"
	"github.com/RoyceAzure/lab/rj_kafka/kafka/message"
	"github.com/RoyceAzure/lab/rj_kafka/kafka/producer"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const eventTypeHeader = "event_type"

type KafkaBusConfig struct {
	Brokers       []string
	TopicPrefix   string
	ConsumerGroup string
	NumPartitions int
}

// KafkaBus 一種實體一個topic 事件以aggregate id為key分區
type KafkaBus struct {
	cfg KafkaBusConfig

	mu        sync.Mutex
	producers map[evt_model.EntityKind]producer.Producer

	runCtx    context.Context
	runCancel context.CancelFunc
	group     *errgroup.Group
	closeOnce sync.Once
}

func NewKafkaBus(cfg KafkaBusConfig) *KafkaBus {
	runCtx, cancel := context.WithCancel(context.Background())
	group, runCtx := errgroup.WithContext(runCtx)
	return &KafkaBus{
		cfg:       cfg,
		producers: make(map[evt_model.EntityKind]producer.Producer),
		runCtx:    runCtx,
		runCancel: cancel,
		group:     group,
	}
}

func (b *KafkaBus) topic(kind evt_model.EntityKind) string {
	return fmt.Sprintf("%s.%s", b.cfg.TopicPrefix, kind)
}

func (b *KafkaBus) Publish(ctx context.Context, evt evt_model.Event) error {
	payload, err := EncodeEvent(evt)
	if err != nil {
		return err
	}

	p, err := b.producerFor(evt.Kind())
	if err != nil {
		return err
	}

	msg := message.Message{
		Key:   []byte(keyOf(evt)),
		Value: payload,
		Headers: []message.Header{
			{
				Key:   eventTypeHeader,
				Value: []byte(evt.Type()),
			},
		},
	}
	return p.Produce(ctx, []message.Message{msg})
}

func (b *KafkaBus) Subscribe(ctx context.Context, kind evt_model.EntityKind) (<-chan evt_model.Event, func(), error) {
	cfg := config.DefaultConfig()
	cfg.Brokers = b.cfg.Brokers
	cfg.Topic = b.topic(kind)
	cfg.ConsumerGroup = fmt.Sprintf("%s.%s", b.cfg.ConsumerGroup, kind)

	c, err := consumer.New(cfg)
	if err != nil {
		return nil, nil, err
	}

	subCtx, subCancel := context.WithCancel(ctx)
	msgChan, errChan, err := c.Consume()
	if err != nil {
		subCancel()
		c.Close()
		return nil, nil, err
	}

	out := make(chan evt_model.Event, 64)
	b.group.Go(func() error {
		defer close(out)
		for {
			select {
			case <-b.runCtx.Done():
				return nil
			case <-subCtx.Done():
				return nil
			case msg, ok := <-msgChan:
				if !ok {
					return nil
				}
				evt, err := b.transform(msg)
				if err != nil {
					log.Error().Err(err).Str("topic", cfg.Topic).Msg("failed to transform kafka message")
					continue
				}
				select {
				case out <- evt:
				case <-subCtx.Done():
					return nil
				}
			case err, ok := <-errChan:
				if !ok {
					return nil
				}
				log.Error().Err(err).Str("topic", cfg.Topic).Msg("kafka consume error")
			}
		}
	})

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			subCancel()
			c.Close()
		})
	}
	return out, cancel, nil
}

func (b *KafkaBus) Close() error {
	b.closeOnce.Do(func() {
		b.runCancel()
	})
	err := b.group.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	for kind, p := range b.producers {
		if cerr := p.Close(); cerr != nil {
			log.Error().Err(cerr).Str("kind", string(kind)).Msg("failed to close producer")
		}
	}
	b.producers = make(map[evt_model.EntityKind]producer.Producer)
	return err
}

func (b *KafkaBus) producerFor(kind evt_model.EntityKind) (producer.Producer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.producers[kind]; ok {
		return p, nil
	}

	cfg := config.DefaultConfig()
	cfg.Brokers = b.cfg.Brokers
	cfg.Topic = b.topic(kind)
	cfg.Balancer = NewKeyBalancer(b.cfg.NumPartitions)

	p, err := producer.New(cfg)
	if err != nil {
		return nil, err
	}
	b.producers[kind] = p
	return p, nil
}

func (b *KafkaBus) transform(msg message.Message) (evt_model.Event, error) {
	for _, h := range msg.Headers {
		if h.Key == eventTypeHeader {
			return DecodeEvent(evt_model.EventType(h.Value), msg.Value)
		}
	}
	return nil, ErrUnknownEventFmt
}

// 以aggregate id做msg key 同一aggregate保序
func keyOf(evt evt_model.Event) string {
	if agg, ok := evt.(interface{ GetAggregateID() string }); ok && agg.GetAggregateID() != "" {
		return agg.GetAggregateID()
	}
	return evt.GetID()
}

var _ Bus = (*KafkaBus)(nil)
