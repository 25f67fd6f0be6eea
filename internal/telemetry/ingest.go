package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/towops/towops/internal/dispatch"
)

var ErrThrottled = errors.New("unit report throttled")

var messagesCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "towops",
	Name:      "telemetry_messages_total",
	Help:      "Unit position messages received over mqtt",
}, []string{"result"})

// Ingest feeds unit positions from an mqtt broker into the dispatch state.
type Ingest struct {
	cfg    Config
	st     *dispatch.State
	cli    pahoClient
	logger *slog.Logger

	mx       sync.Mutex
	limiters map[string]*rate.Limiter
}

func New(cfg Config, st *dispatch.State) *Ingest {
	return &Ingest{
		cfg:      cfg,
		st:       st,
		logger:   slog.With("logger", "telemetry"),
		limiters: make(map[string]*rate.Limiter),
	}
}

func (i *Ingest) Start(ctx context.Context) error {
	opts, err := NewClientOptions(i.cfg)
	if err != nil {
		return err
	}

	opts.OnConnect = func(c paho.Client) {
		i.logger.Info("mqtt connected to " + i.cfg.Broker)

		if err := i.subscribe(c); err != nil {
			i.logger.Error("subscribe error", slog.Any("error", err))
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		i.logger.Warn("mqtt connection lost", slog.Any("error", err))
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}

	i.cli = c

	go func() {
		<-ctx.Done()
		i.Stop()
	}()

	return nil
}

func (i *Ingest) Stop() {
	if i.cli != nil && i.cli.IsConnected() {
		i.cli.Disconnect(250)
		i.logger.Info("mqtt disconnected")
	}
}

func (i *Ingest) subscribe(c subscriber) error {
	if token := c.Subscribe(i.cfg.Topic, i.cfg.QoS, i.onMessage); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	i.logger.Info("subscribed to " + i.cfg.Topic)

	return nil
}

func (i *Ingest) onMessage(_ paho.Client, msg paho.Message) {
	if err := i.Process(msg.Topic(), msg.Payload()); err != nil {
		i.logger.Debug("message dropped", slog.String("topic", msg.Topic()), slog.Any("error", err))
	}
}

// Process records one position report.
func (i *Ingest) Process(topic string, payload []byte) error {
	u, err := ParsePosition(i.cfg.Topic, topic, payload)
	if err != nil {
		messagesCounter.WithLabelValues("invalid").Inc()
		return err
	}

	if !i.limiter(u.ID).Allow() {
		messagesCounter.WithLabelValues("throttled").Inc()
		return fmt.Errorf("%w: %s", ErrThrottled, u.ID)
	}

	i.st.RecordUnit(u)
	messagesCounter.WithLabelValues("ok").Inc()

	return nil
}

func (i *Ingest) limiter(unitID string) *rate.Limiter {
	i.mx.Lock()
	defer i.mx.Unlock()

	if l, ok := i.limiters[unitID]; ok {
		return l
	}

	limit := rate.Inf
	if i.cfg.Rate > 0 {
		limit = rate.Limit(i.cfg.Rate)
	}

	burst := i.cfg.Burst
	if burst < 1 {
		burst = 1
	}

	l := rate.NewLimiter(limit, burst)
	i.limiters[unitID] = l

	return l
}
