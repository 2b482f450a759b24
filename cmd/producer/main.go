package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"vistats/config"
	"vistats/database"
	"vistats/producer"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadProducerEnvConfig("settings.env")

	db, err := database.Connect(ctx, cfg.ClickHouse)
	if err != nil {
		log.Fatalf("clickhouse: %v", err)
	}
	defer db.Close()

	kafka, err := producer.NewSyncProducer(cfg.KafkaServer)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	defer kafka.Close()

	p := producer.New(db, kafka)
	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("producer: %v", err)
	}
	log.Println("producer stopped")
}
