// Package producer emits synthetic dashboard-usage events to Kafka at a
// fixed cadence, sampling stored widgets and usernames so the stream only
// flows once real metadata has been extracted.
package producer

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/Shopify/sarama"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"vistats/database"
)

const (
	Topic = "log_topic_2"

	DefaultInterval = time.Second
)

// Event is the published payload. All fields are strings on the wire.
type Event struct {
	ID           string `json:"id"`
	TimestampUTC string `json:"timestamp_utc"`
	User         string `json:"user"`
	WorkspaceID  string `json:"workspace_id"`
	DashboardID  string `json:"dashboard_id"`
	WidgetID     string `json:"widget_id"`
}

// Sampler provides the stored widgets and usernames to draw from.
type Sampler interface {
	WidgetRefs(ctx context.Context) ([]database.WidgetRef, error)
	Usernames(ctx context.Context) ([]string, error)
}

type Producer struct {
	sampler  Sampler
	kafka    sarama.SyncProducer
	topic    string
	interval time.Duration
	rand     *rand.Rand
	now      func() time.Time
}

func New(sampler Sampler, kafka sarama.SyncProducer) *Producer {
	return &Producer{
		sampler:  sampler,
		kafka:    kafka,
		topic:    Topic,
		interval: DefaultInterval,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
}

// NewSyncProducer connects a synchronous Kafka producer to one bootstrap
// address.
func NewSyncProducer(bootstrapServer string) (sarama.SyncProducer, error) {
	conf := sarama.NewConfig()
	conf.Producer.Return.Successes = true
	kafka, err := sarama.NewSyncProducer([]string{bootstrapServer}, conf)
	if err != nil {
		return nil, errors.Wrap(err, "creating kafka producer")
	}
	return kafka, nil
}

// Run loads the sampling pools once, then publishes one event per interval
// until ctx is cancelled.
func (p *Producer) Run(ctx context.Context) error {
	widgets, err := p.sampler.WidgetRefs(ctx)
	if err != nil {
		return errors.Wrap(err, "loading widgets")
	}
	if len(widgets) == 0 {
		return errors.New("no widgets to sample, run an extraction first")
	}

	users, err := p.sampler.Usernames(ctx)
	if err != nil {
		return errors.Wrap(err, "loading usernames")
	}
	if len(users) == 0 {
		return errors.New("no usernames to sample, run an extraction first")
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.emit(widgets, users); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Producer) emit(widgets []database.WidgetRef, users []string) error {
	event, err := json.Marshal(p.nextEvent(widgets, users))
	if err != nil {
		return errors.Wrap(err, "marshalling event")
	}

	_, _, err = p.kafka.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(event),
	})
	return errors.Wrap(err, "publishing event")
}

// nextEvent draws one stored widget and username. The widget draw only gates
// emission on extracted data being present: the published workspace,
// dashboard and widget ids are freshly generated, not the sampled ones.
func (p *Producer) nextEvent(widgets []database.WidgetRef, users []string) Event {
	_ = widgets[p.rand.Intn(len(widgets))]
	user := users[p.rand.Intn(len(users))]

	return Event{
		ID:           uuid.NewString(),
		TimestampUTC: p.now().UTC().Format("2006-01-02 15:04:05.000000"),
		User:         user,
		WorkspaceID:  uuid.NewString(),
		DashboardID:  uuid.NewString(),
		WidgetID:     uuid.NewString(),
	}
}
