package main

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/devclimb/roadmapworker/internal/database"
	"github.com/devclimb/roadmapworker/internal/pipeline"
	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

type R2Config struct {
	AccountID string
	Bucket    string
	AccessKey string
	SecretKey string
}

type WorkerConfig struct {
	DB          *database.Queries
	R2          *R2Config
	AwsConfig   *aws.Config
	RabbitConn  *amqp.Connection
	RABBITMQUrl string
	Pipeline    *pipeline.Pipeline
}

// RoadmapJob is the queue message that kicks off one roadmap generation.
type RoadmapJob struct {
	ID         uuid.UUID `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UserID     uuid.UUID `json:"user_id"`
	Status     string    `json:"status"`
	TargetRole string    `json:"target_role"`
}

// RoadmapRecord is what gets persisted for a finished job.
type RoadmapRecord struct {
	JobID   uuid.UUID             `json:"job_id"`
	Plan    pipeline.LearningPlan `json:"plan"`
	Profile pipeline.UserProfile  `json:"profile"`
	Gaps    []pipeline.Gap        `json:"gaps"`
	Repairs []pipeline.Repair     `json:"repairs,omitempty"`
	Scores  []pipeline.PlanScore  `json:"scores,omitempty"`
	// Error result entry
	IsErrorResult bool   `json:"is_error_result"`
	Error         string `json:"error,omitempty"`
}
