package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/oksasatya/tourism-booking-api/config"
	"github.com/oksasatya/tourism-booking-api/pkg/helpers"
	"github.com/oksasatya/tourism-booking-api/pkg/sms"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-sms-worker", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQSMSQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	sender, err := sms.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	if err != nil {
		logger.Fatalf("twilio: %v", err)
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQSMSQueue, 16, logger)
	if err != nil {
		logger.Fatalf("amqp: %v", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infof("sms worker listening on queue=%s", cfg.RabbitMQSMSQueue)
	if err := consumer.Run(ctx, sms.Handler(sender)); err != nil {
		logger.WithError(err).Error("consumer stopped")
	}
	logger.Info("sms worker exited")
}
