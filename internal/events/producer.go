package events

import (
	"encoding/json"
	"strings"
	"sync"

	"courtside-app/internal/state"

	"github.com/IBM/sarama"
	"github.com/charmbracelet/log"
)

const queueSize = 256

// Producer publishes transition events to Kafka from a single background
// worker, so a slow broker never holds up a state commit.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	enabled  bool
	logger   *log.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan Message
	done   chan struct{}
}

// NewProducer connects to brokers. With no brokers, or when they cannot be
// reached, it returns a disabled producer whose listener does nothing.
func NewProducer(brokers []string, topic string, logger *log.Logger) *Producer {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("events")
	if topic == "" {
		topic = DefaultTopic
	}
	brokers = cleanBrokers(brokers)
	if len(brokers) == 0 {
		logger.Debug("no kafka brokers configured, events disabled")
		return &Producer{topic: topic, logger: logger}
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		logger.Warn("kafka producer not available, events disabled", "err", err)
		return &Producer{topic: topic, logger: logger}
	}
	logger.Info("kafka producer connected", "brokers", strings.Join(brokers, ","), "topic", topic)
	return newProducer(producer, topic, logger)
}

func newProducer(producer sarama.SyncProducer, topic string, logger *log.Logger) *Producer {
	p := &Producer{
		producer: producer,
		topic:    topic,
		enabled:  true,
		logger:   logger,
		queue:    make(chan Message, queueSize),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

func cleanBrokers(brokers []string) []string {
	out := make([]string, 0, len(brokers))
	for _, b := range brokers {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (p *Producer) Enabled() bool {
	return p.enabled
}

// Listener enqueues the events for each committed transition. Events are
// dropped with a warning when the queue is full, and silently once the
// producer is closed.
func (p *Producer) Listener() state.Listener {
	return func(ev state.Event) {
		if !p.enabled {
			return
		}
		p.mu.RLock()
		defer p.mu.RUnlock()
		if p.closed {
			return
		}
		for _, msg := range Build(ev) {
			select {
			case p.queue <- msg:
			default:
				p.logger.Warn("event queue full, dropping event", "type", msg.Event.Type)
			}
		}
	}
}

func (p *Producer) run() {
	defer close(p.done)
	for msg := range p.queue {
		p.send(msg)
	}
}

func (p *Producer) send(msg Message) {
	data, err := json.Marshal(msg.Event)
	if err != nil {
		p.logger.Error("marshal event", "type", msg.Event.Type, "err", err)
		return
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(msg.Key),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		p.logger.Warn("send event", "type", msg.Event.Type, "err", err)
	}
}

// Close flushes queued events and closes the broker connection. Unsubscribe
// the listener first; events it still receives afterwards are discarded.
func (p *Producer) Close() error {
	if !p.enabled {
		return nil
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.producer.Close()
}
