package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"

	"github.com/rocketwave/relaxbridge/pipeline"
)

// MQTTConfig configures the pub/sub feedback channel.
type MQTTConfig struct {
	// Addr is the broker address, host:port.
	Addr string

	// TopicPrefix prefixes every published topic; defaults to "muse" for
	// Mind-Monitor-style consumers.
	TopicPrefix string

	// ConnectTimeout bounds the initial dial and CONNECT handshake.
	ConnectTimeout time.Duration

	// SendTimeout bounds each publish so a slow broker cannot stall
	// sample ingestion.
	SendTimeout time.Duration
}

// DefaultMQTTConfig returns the local-broker defaults.
func DefaultMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Addr:           "127.0.0.1:1883",
		TopicPrefix:    "muse",
		ConnectTimeout: 5 * time.Second,
		SendTimeout:    time.Second,
	}
}

// MQTTSink publishes per-quantity messages over MQTT: one message per named
// band power per cycle, plus optionally the raw sample vector. All
// publishes are QoS 0 fire-and-forget.
type MQTTSink struct {
	cfg    MQTTConfig
	conn   net.Conn
	client *paho.Client
}

// NewMQTTSink dials the broker and performs the CONNECT handshake. A broker
// that cannot be reached within the connect timeout is reported as an error
// so the caller can run without this sink.
func NewMQTTSink(ctx context.Context, cfg MQTTConfig) (*MQTTSink, error) {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "muse"
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = time.Second
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("mqtt sink: dial %s: %w", cfg.Addr, err)
	}

	clientID := "relaxbridge-" + uuid.NewString()
	client := paho.NewClient(paho.ClientConfig{
		ClientID: clientID,
		Conn:     conn,
	})

	_, err = client.Connect(dialCtx, &paho.Connect{
		ClientID:   clientID,
		CleanStart: true,
		KeepAlive:  30,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("mqtt sink: connect %s: %w", cfg.Addr, err)
	}

	return &MQTTSink{
		cfg:    cfg,
		conn:   conn,
		client: client,
	}, nil
}

// Name identifies the sink in fan-out logs.
func (s *MQTTSink) Name() string {
	return "mqtt"
}

// Send publishes one message per band quantity in the packet. Every topic
// is attempted even when one fails, so a refused publish cannot silence
// the rest of the cycle's spectrum; failures are joined.
func (s *MQTTSink) Send(packet pipeline.Packet) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SendTimeout)
	defer cancel()

	return publishBands(packet.Bands, func(topic string, payload []byte) error {
		return s.publish(ctx, topic, payload)
	})
}

func publishBands(bands []pipeline.BandPower, pub func(topic string, payload []byte) error) error {
	var errs []error
	for _, bp := range bands {
		if err := pub("elements/"+bp.Name+"_relative", formatValue(bp.Relative)); err != nil {
			errs = append(errs, err)
		}
		if err := pub("elements/"+bp.Name+"_absolute", formatValue(bp.Absolute)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendSample forwards one raw sample vector on the eeg topic.
func (s *MQTTSink) SendSample(values []float64, ts time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SendTimeout)
	defer cancel()

	payload, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("mqtt sink: marshal sample: %w", err)
	}
	return s.publish(ctx, "eeg", payload)
}

func (s *MQTTSink) publish(ctx context.Context, topic string, payload []byte) error {
	_, err := s.client.Publish(ctx, &paho.Publish{
		QoS:     0,
		Topic:   s.cfg.TopicPrefix + "/" + topic,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("mqtt sink: publish %s: %w", topic, err)
	}
	return nil
}

// Close sends DISCONNECT and releases the connection. Paho closes the
// network connection as part of the disconnect.
func (s *MQTTSink) Close() error {
	err := s.client.Disconnect(&paho.Disconnect{ReasonCode: 0})
	s.conn.Close()
	return err
}

func formatValue(v float64) []byte {
	return strconv.AppendFloat(nil, v, 'g', -1, 64)
}
