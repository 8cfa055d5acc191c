package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/MikeSquared-Agency/Strategist/internal/config"
)

const publishTimeout = 5 * time.Second

// Client publishes evaluation events. A nil Client disables eventing.
type Client interface {
	Publish(subject string, data interface{}) error
	Subscribe(subject string, handler func(subject string, data []byte)) error
	Close()
}

// NATSClient publishes evaluation events into a JetStream stream so that
// consumers can replay a pair's recent evaluations. When the stream cannot be
// created it falls back to core NATS publishing.
type NATSClient struct {
	conn     *nats.Conn
	js       jetstream.JetStream
	stream   string
	retained bool
	subs     []*nats.Subscription
	logger   *slog.Logger
}

func NewNATSClient(ctx context.Context, cfg config.HermesConfig, logger *slog.Logger) (*NATSClient, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("strategist"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	c := &NATSClient{conn: nc, js: js, stream: cfg.Stream, logger: logger}
	if _, err := js.CreateOrUpdateStream(ctx, streamConfig(cfg)); err != nil {
		logger.Warn("evaluation events will not be retained", "stream", cfg.Stream, "error", err)
	} else {
		c.retained = true
	}
	return c, nil
}

// streamConfig retains each pair's completed and failed events separately,
// discarding the oldest once MaxPerPair or MaxAge is exceeded.
func streamConfig(cfg config.HermesConfig) jetstream.StreamConfig {
	sc := jetstream.StreamConfig{
		Name:        cfg.Stream,
		Description: "Integration strategy evaluation outcomes",
		Subjects:    []string{SubjectEvaluations()},
		Retention:   jetstream.LimitsPolicy,
		Discard:     jetstream.DiscardOld,
		Storage:     jetstream.FileStorage,
		MaxAge:      cfg.MaxAge,
	}
	if cfg.MaxPerPair > 0 {
		sc.MaxMsgsPerSubject = cfg.MaxPerPair
	}
	return sc
}

func (c *NATSClient) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if !c.retained {
		return c.conn.Publish(subject, payload)
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if _, err := c.js.Publish(ctx, subject, payload, jetstream.WithExpectStream(c.stream)); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (c *NATSClient) Subscribe(subject string, handler func(string, []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return err
	}
	c.subs = append(c.subs, sub)
	return nil
}

func (c *NATSClient) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
