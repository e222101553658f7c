package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"tripbot/config"
	"tripbot/models"
	"tripbot/services/ticket"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitDeliveryWorker runs the ticket redelivery worker in background.
func InitDeliveryWorker(deliverer *ticket.Deliverer) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDeliveryDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(ticket.TypeTicketDeliver, handleDeliveryTask(deliverer))

	go monitorRedisConnection()

	go func() {
		log.Println("[DeliveryWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[DeliveryWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[DeliveryWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleDeliveryTask(deliverer *ticket.Deliverer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var t models.Ticket
		if err := json.Unmarshal(task.Payload(), &t); err != nil {
			log.Printf("[DeliveryHandler] invalid payload: %v", err)
			return err
		}

		log.Printf("[DeliveryHandler] redelivering ticket %s to %s", t.Reference, t.UserID)

		if err := deliverer.Redeliver(ctx, &t); err != nil {
			log.Printf("[DeliveryHandler] redelivery failed for %s: %v", t.Reference, err)
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDeliveryDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[DeliveryWorker] redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
