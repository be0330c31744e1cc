// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

//go:build nats

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/quill/internal/config"
)

const (
	streamMaxAge          = 7 * 24 * time.Hour
	streamDuplicateWindow = 2 * time.Minute
	ackWaitTimeout        = 30 * time.Second
)

// newNATSTransport connects a JetStream publisher and durable subscriber,
// starting an embedded server first when configured.
func newNATSTransport(cfg *config.EventsConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	t := &Transport{Name: config.TransportNATS}
	url := cfg.NATSURL

	if cfg.EmbeddedServer {
		srv, err := NewEmbeddedServer(&EmbeddedServerConfig{
			Host:     "127.0.0.1",
			Port:     -1,
			StoreDir: cfg.StoreDir,
		})
		if err != nil {
			return nil, err
		}
		t.closers = append(t.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		})
		url = srv.ClientURL()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := ensureStream(ctx, url, cfg); err != nil {
		_ = t.Close()
		return nil, err
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOptions(logger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false, // created by ensureStream
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	t.Publisher = pub
	t.closers = append(t.closers, pub.Close)

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   ackWaitTimeout,
		CloseTimeout:     ackWaitTimeout,
		NatsOptions:      natsOptions(logger),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			AckAsync:      false,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.BindStream(cfg.StreamName),
				natsgo.DeliverAll(),
				natsgo.AckExplicit(),
				natsgo.AckWait(ackWaitTimeout),
			},
			DurablePrefix: cfg.DurableName,
		},
	}, logger)
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}
	t.Subscriber = sub
	t.closers = append(t.closers, sub.Close)

	return t, nil
}

func natsOptions(logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}
}

// ensureStream creates or updates the read-event stream.
func ensureStream(ctx context.Context, url string, cfg *config.EventsConfig) error {
	nc, err := natsgo.Connect(url)
	if err != nil {
		return fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       cfg.StreamName,
		Subjects:   []string{cfg.Topic},
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     streamMaxAge,
		Duplicates: streamDuplicateWindow,
		Storage:    jetstream.FileStorage,
		Discard:    jetstream.DiscardOld,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", cfg.StreamName, err)
	}
	return nil
}
