package task

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	SendActivationEmailTaskName  = "sendActivationEmailTask"
	SendActivationEmailQueueName = "sendActivationEmailQueue"
)

type SendActivationEmail struct {
	Email          string    `json:"email"`
	ActivationCode string    `json:"activation_code"`
	ExpirationTime time.Time `json:"expiration_time"`
}

// NewSendActivationEmailTask builds a delivery task that is dropped once the code expires.
func NewSendActivationEmailTask(email string, activationCode string, expirationTime time.Time) (*asynq.Task, error) {
	var data SendActivationEmail
	data.Email = email
	data.ActivationCode = activationCode
	data.ExpirationTime = expirationTime

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		SendActivationEmailTaskName,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(SendActivationEmailQueueName),
		asynq.Deadline(expirationTime),
	), nil
}
