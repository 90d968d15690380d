package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/devclimb/roadmapworker/internal/database"
	_ "github.com/lib/pq"
	"github.com/streadway/amqp"
)

// retry retries a function up to `attempts` times with a short linear wait.
// The pipeline's generative calls carry their own backoff; this is only for
// network and DB round trips around it.
func retry[T any](attempts int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		wait := time.Duration(500*(i+1)) * time.Millisecond
		time.Sleep(wait)
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// runJob handles one roadmap job end to end: download the resume, extract
// its text, run the generation pipeline, and persist the result.
// Failures are retried selectively: network & DB retries only where needed.
func runJob(job RoadmapJob, workerConfig *WorkerConfig) error {
	ctx := context.Background()
	// get resumes attached to the job
	resumes, err := workerConfig.DB.GetResumesByJob(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("error getting resumes for job: %v, err: %v", job.ID, err)
	}
	if len(resumes) == 0 {
		return fmt.Errorf("no resume uploaded for job: %v", job.ID)
	}
	resume := resumes[0]

	awsClient := s3.NewFromConfig(*workerConfig.AwsConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", workerConfig.R2.AccountID))
	})

	// ✅ Retry downloading file (network failures are transient)
	fileBytes, err := retry(3, func() ([]byte, error) {
		return DownloadFromR2(ctx, awsClient, workerConfig.R2.Bucket, resume.ObjectKey)
	})
	if err != nil {
		return fmt.Errorf("file download error for %s: %w", resume.ObjectKey, err)
	}

	resumeText, err := ExtractResumeText(resume.Mime, fileBytes)
	if err != nil {
		return fmt.Errorf("text extraction error for %s: %w", resume.ObjectKey, err)
	}

	record := RoadmapRecord{JobID: job.ID}

	result, err := workerConfig.Pipeline.Run(ctx, resumeText, job.TargetRole, job.UserID.String())
	if err != nil {
		log.Printf("⚠️ Pipeline failed for job %v: %v", job.ID, err)
		record.IsErrorResult = true
		record.Error = err.Error()
	} else {
		record.Plan = result.Plan
		record.Profile = result.Profile
		record.Gaps = result.Gaps
		record.Repairs = result.Repairs
		record.Scores = result.Scores
	}

	// save final result to db
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal roadmap record: %w", err)
	}

	_, err = retry(3, func() (any, error) {
		return nil, workerConfig.DB.CreateOrUpdateRoadmap(ctx, database.CreateOrUpdateRoadmapParams{
			Roadmap: recordJSON,
			JobID:   job.ID,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to save roadmap after retries: %w", err)
	}

	if record.IsErrorResult {
		return fmt.Errorf("pipeline error: %s", record.Error)
	}
	return nil
}

func worker(id int, workerConfig *WorkerConfig, wg *sync.WaitGroup) {
	defer wg.Done()
	//    to consume message on the queue
	conn, err := amqp.Dial(workerConfig.RABBITMQUrl)
	if err != nil {
		log.Fatal("error dialling rabbitmq: " + err.Error())
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("error connecting to rabbitmq channel: " + err.Error())
	}
	defer ch.Close()
	_, err = ch.QueueDeclare(
		"roadmap_jobs", // queue name
		true,           // durable (survives broker restarts)
		false,          // auto-delete when unused
		false,          // exclusive
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		log.Fatalf("Failed to declare queue: %v", err)
	}

	msgs, err := ch.Consume(
		"roadmap_jobs", // queue name
		"",             // consumer tag
		true,           // auto-ack
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		log.Fatal("error consuming rabbitmq message: " + err.Error())
	}

	for msg := range msgs {
		// Unmarshal the body
		job := RoadmapJob{}
		err = json.Unmarshal(msg.Body, &job)

		if err != nil {
			log.Printf("error unmarshalling message body. err: %v", err)
			// update job status as failed
			workerConfig.DB.UpdateJobStatus(context.Background(), database.UpdateJobStatusParams{
				Status: "failed",
				ID:     job.ID,
			})
			update := map[string]any{
				"job_id":    job.ID,
				"status":    "failed",
				"message":   "roadmap generation failed",
				"timestamp": time.Now(),
			}
			err := publishJobUpdate(workerConfig.RabbitConn, job.ID.String(), update)
			if err != nil {
				log.Println("failed to publish update:", err)
			}

			continue
		}
		log.Printf("Worker %d processing job. job_id: %s", id+1, job.ID)

		update := map[string]any{
			"job_id":    job.ID,
			"status":    "processing",
			"message":   "roadmap generation started",
			"timestamp": time.Now(),
		}
		err := publishJobUpdate(workerConfig.RabbitConn, job.ID.String(), update)
		if err != nil {
			log.Println("failed to publish update:", err)
		}
		workerConfig.DB.UpdateJobStatus(context.Background(), database.UpdateJobStatusParams{
			Status: "processing",
			ID:     job.ID,
		})

		err = runJob(job, workerConfig)

		if err != nil {
			log.Printf("error generating roadmap for job_id: %v. err: %v", job.ID, err)

			// update job status as failed
			workerConfig.DB.UpdateJobStatus(context.Background(), database.UpdateJobStatusParams{
				Status: "failed",
				ID:     job.ID,
			})
			update := map[string]any{
				"job_id":    job.ID,
				"status":    "failed",
				"message":   "roadmap generation failed",
				"timestamp": time.Now(),
			}
			err := publishJobUpdate(workerConfig.RabbitConn, job.ID.String(), update)
			if err != nil {
				log.Println("failed to publish update:", err)
			}
			continue
		}
		// update job status

		workerConfig.DB.UpdateJobStatus(context.Background(), database.UpdateJobStatusParams{
			Status: "completed",
			ID:     job.ID,
		})
		update = map[string]any{
			"job_id":    job.ID,
			"status":    "completed",
			"message":   "roadmap generation completed",
			"timestamp": time.Now(),
		}
		err = publishJobUpdate(workerConfig.RabbitConn, job.ID.String(), update)
		if err != nil {
			log.Println("failed to publish update:", err)
		}
	}

}

func (workerConfig *WorkerConfig) StartConsumerWorkerPool(numWorkers int) {
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for i := range numWorkers {
		log.Println("worker id ", i+1, "started")
		go worker(i, workerConfig, &wg)
	}
	wg.Wait() // block until all workers finish

}
