// FilePath: internal/push/push.mqtt.go
package push

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/itsatony/roomwatch/internal/config"
	nuts "github.com/vaudience/go-nuts"
)

// MQTT delivers snapshot lists published on {topic_prefix}/{event}
type MQTT struct {
	cfg       config.MQTTConfig
	newClient func(*mqtt.ClientOptions) mqtt.Client
}

func NewMQTT(cfg config.MQTTConfig) *MQTT {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	return &MQTT{cfg: cfg, newClient: mqtt.NewClient}
}

// Topic returns the topic an event is published on
func (m *MQTT) Topic(event string) string {
	prefix := strings.Trim(m.cfg.TopicPrefix, "/")
	if prefix == "" {
		return event
	}
	return prefix + "/" + event
}

func (m *MQTT) options(sub *mqttSubscription) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(m.cfg.Broker)
	opts.SetClientID(nuts.NID("roomwatch", 12))
	if m.cfg.Username != "" {
		opts.SetUsername(m.cfg.Username)
	}
	if m.cfg.Password != "" {
		opts.SetPassword(m.cfg.Password)
	}
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(m.cfg.ConnectTimeout)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		nuts.L.Warnf("[Push] MQTT connection lost: %v", err)
		sub.finish()
	})
	return opts
}

// Subscribe connects to the broker and subscribes to the event topic
func (m *MQTT) Subscribe(ctx context.Context, event string, handler Handler) (Subscription, error) {
	sub := &mqttSubscription{
		topic: m.Topic(event),
		done:  make(chan struct{}),
	}
	client := m.newClient(m.options(sub))

	token := client.Connect()
	if !token.WaitTimeout(m.cfg.ConnectTimeout) {
		client.Disconnect(0)
		return nil, fmt.Errorf("connect to MQTT broker %s: timed out", m.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", m.cfg.Broker, err)
	}
	sub.client = client

	token = client.Subscribe(sub.topic, m.cfg.QoS, messageHandler(sub.topic, handler))
	if !token.WaitTimeout(m.cfg.ConnectTimeout) || token.Error() != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("subscribe to topic %s: %v", sub.topic, token.Error())
	}
	nuts.L.Infof("[Push] MQTT subscribed to %s on %s", sub.topic, m.cfg.Broker)

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()

	return sub, nil
}

func messageHandler(topic string, handler Handler) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		snapshots, err := DecodeSnapshots(msg.Payload())
		if err != nil {
			nuts.L.Warnf("[Push] Dropping message on %s: %v", topic, err)
			return
		}
		handler(snapshots)
	}
}

type mqttSubscription struct {
	client mqtt.Client
	topic  string

	closeOnce sync.Once
	doneOnce  sync.Once
	done      chan struct{}
}

func (s *mqttSubscription) Done() <-chan struct{} {
	return s.done
}

func (s *mqttSubscription) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *mqttSubscription) Close() error {
	s.closeOnce.Do(func() {
		if s.client != nil && s.client.IsConnected() {
			s.client.Unsubscribe(s.topic).WaitTimeout(time.Second)
			s.client.Disconnect(250)
		}
		s.finish()
	})
	return nil
}
