package cron

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/dietic/aliado-bot/config"
	sessionRepo "github.com/dietic/aliado-bot/database/repository/session"
	"github.com/dietic/aliado-bot/models"
	"github.com/dietic/aliado-bot/services/messaging"
	"github.com/dietic/aliado-bot/services/tasks"

	"github.com/hibiken/asynq"
)

const nudgeMessage = "¿Seguimos con tu registro? Te faltan pocos pasos para ser un Aliado."

// InitNudgeWorker runs the async worker in background. It delivers the
// stalled-onboarding nudges enqueued by the dialog.
func InitNudgeWorker(sessions sessionRepo.SessionRepository, gateway messaging.Gateway) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
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
	mux.HandleFunc(tasks.TypeOnboardingNudge, handleNudgeTask(sessions, gateway))

	go func() {
		log.Println("[NudgeWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[NudgeWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[NudgeWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleNudgeTask(sessions sessionRepo.SessionRepository, gateway messaging.Gateway) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[NudgeWorker] invalid payload: %v", err)
			return err
		}

		session, err := sessions.GetByPhone(ctx, p.Phone)
		if errors.Is(err, sessionRepo.ErrNotFound) {
			// Finished or abandoned; nothing to nudge.
			return nil
		}
		if err != nil {
			return err
		}
		if session.Step != p.Step {
			// The dialog moved on after this nudge was enqueued.
			return nil
		}

		return gateway.SendText(ctx, p.Phone, nudgeMessage)
	}
}
