package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/segyhp/pledge-callcenter/internal/app"
	"github.com/segyhp/pledge-callcenter/internal/messaging"
	"github.com/segyhp/pledge-callcenter/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
)

func main() {
	a, err := app.New("callcenter-worker")
	if err != nil {
		logrus.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	cfg := a.Config
	if !cfg.QueuingEnabled() {
		a.Log.Fatal("RABBITMQ_URL is required to run the outbound message worker")
	}

	consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQ.URL, a.Log.WithField("component", "consumer"))
	if err != nil {
		a.Log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer consumer.Close()

	queueConsumer := messaging.NewQueueConsumer(a.Dispatcher, a.Repos.MessageLogs, a.Log.WithField("component", "worker"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Log.WithFields(logrus.Fields{
		"exchange": cfg.RabbitMQ.Exchange,
		"queue":    cfg.RabbitMQ.Queue,
	}).Info("Outbound message worker started")

	err = consumer.Consume(ctx, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.Queue, messaging.RoutingKey, queueConsumer.Handle)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Log.Errorf("Worker stopped: %v", err)
		return
	}

	a.Log.Info("Worker stopped")
}
