package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/devclimb/roadmapworker/internal/catalog"
	"github.com/devclimb/roadmapworker/internal/database"
	"github.com/devclimb/roadmapworker/internal/pipeline"
	"github.com/joho/godotenv"
	"github.com/streadway/amqp"
)

func main() {
	_ = godotenv.Load()
	dbUrl := os.Getenv("DB_URL")
	if dbUrl == "" {
		log.Fatal("empty DB_URL in environment")
	}

	rabbitmqUrl := os.Getenv("RABBITMQ_URL")
	if rabbitmqUrl == "" {
		log.Fatal("empty RABBITMQ_URL in env")
	}

	db, err := sql.Open("postgres", dbUrl)
	if err != nil {
		log.Fatal("error opening db. err: ", err)
	}

	dbqueries := database.New(db)

	r2AccountId := os.Getenv("R2_ACCCOUNT_ID")
	if r2AccountId == "" {
		log.Fatal("empty R2_ACCCOUNT_ID in environment")
	}
	r2Bucket := os.Getenv("R2_BUCKET")
	if r2Bucket == "" {
		log.Fatal("empty R2_BUCKET in environment")
	}
	r2SecretKey := os.Getenv("R2_SECRET_KEY")
	if r2SecretKey == "" {
		log.Fatal("empty R2_SECRET_KEY in environment")
	}
	r2AccessKey := os.Getenv("R2_ACCESS_KEY")
	if r2AccessKey == "" {
		log.Fatal("empty R2_ACCESS_KEY in environment")
	}
	r2Config := R2Config{
		AccountID: r2AccountId,
		AccessKey: r2AccessKey,
		SecretKey: r2SecretKey,
		Bucket:    r2Bucket,
	}
	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r2Config.AccessKey, r2Config.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		log.Fatal("error creating aws config", err)
	}

	googleApiKey := os.Getenv("GOOGLE_API_KEY")
	if googleApiKey == "" {
		log.Fatal("empty GOOGLE_API_KEY in env")
	}

	// pipeline config comes from env once, components never read env themselves
	pipelineConfig := pipeline.LoadConfig()

	catalogs, err := catalog.Load(pipelineConfig.DataDir)
	if err != nil {
		log.Fatalf("failed to load catalogs: %v", err)
	}

	generator, err := pipeline.NewGeminiClient(pipelineConfig, googleApiKey)
	if err != nil {
		log.Fatalf("failed to create generative client: %v", err)
	}

	roadmapPipeline := pipeline.New(pipelineConfig, generator, catalogs)

	conn, err := amqp.Dial(rabbitmqUrl)
	if err != nil {
		log.Fatalf("error connecting to RabbitMQ. err:  %v", err)

	}
	workerConfig := WorkerConfig{
		DB:          dbqueries,
		R2:          &r2Config,
		AwsConfig:   &awsConfig,
		RABBITMQUrl: rabbitmqUrl,
		RabbitConn:  conn,
		Pipeline:    roadmapPipeline,
	}

	fmt.Println("Starting 3 workers consumer pool ")
	workerConfig.StartConsumerWorkerPool(3)
}
