// cmd/worker/main.go in collection-service
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"sync"

	_ "github.com/lib/pq"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	// 1. Local Imports (Workflow & Activities)
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/activities"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/assignment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/config"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/events"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/reconciliation"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/store/postgres"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/workflow"

	// 2. Shared Infrastructure Imports
	sharedconfig "github.com/NaonWae12/RR-Net-sub002/shared/config"
	pkgkafka "github.com/NaonWae12/RR-Net-sub002/shared/kafka"
	pkgrabbit "github.com/NaonWae12/RR-Net-sub002/shared/rabbitmq"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// =========================================================================
	// 1. LOAD CONFIG
	// =========================================================================
	sharedconfig.LoadEnv()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	common := cfg.CommonConfig

	// =========================================================================
	// 2. SETUP DEPENDENCIES (DB, KAFKA, RABBITMQ)
	// =========================================================================
	// Settlement must share state with the API, so the worker needs Postgres.
	if !common.HasDB() {
		log.Fatalln("Worker requires DB_HOST and DB_NAME")
	}
	db, err := sql.Open("postgres", common.GetDBURL())
	if err != nil {
		log.Fatalf("Worker failed to open DB: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Worker failed to connect to DB: %v", err)
	}
	store := postgres.NewStore(db)

	var notifiers events.Fanout
	var kafkaConsumer *pkgkafka.Consumer
	if common.KAFKA_BROKER != "" && common.KAFKA_TOPIC != "" {
		producer := pkgkafka.NewKafkaProducer(common.KAFKA_BROKER, common.KAFKA_TOPIC)
		defer producer.Close()
		notifiers = append(notifiers, events.NewKafkaEmitter(producer))
		kafkaConsumer = pkgkafka.NewConsumer([]string{common.KAFKA_BROKER}, common.KAFKA_TOPIC, "collection-notify-group")
		defer kafkaConsumer.Close()
		log.Println("Worker connected to Kafka")
	} else {
		log.Println("Warning: Kafka config missing, worker will not publish events")
	}

	var rabbitClient *pkgrabbit.RabbitmqClient
	var rabbit *events.RabbitNotifier
	if common.HasRabbitMQ() {
		rabbitClient, err = pkgrabbit.NewClient(common.GetRabbitMQURL())
		if err != nil {
			log.Fatalf("Worker failed to connect to RabbitMQ: %v", err)
		}
		defer rabbitClient.Close()
		for _, q := range events.Queues() {
			if err := rabbitClient.CreateQueue(q); err != nil {
				log.Fatalf("Failed to declare queue %s: %v", q, err)
			}
		}
		rabbit = events.NewRabbitNotifier(rabbitClient)
		if kafkaConsumer == nil {
			notifiers = append(notifiers, rabbit)
		}
	}

	// =========================================================================
	// 3. SETUP TEMPORAL CLIENT
	// =========================================================================
	temporalHost := common.GetTemporalHostPort()
	if temporalHost == "" {
		temporalHost = "temporal:7233" // Default for Docker environment
	}
	c, err := client.Dial(client.Options{
		HostPort:  temporalHost,
		Namespace: common.TEMPORAL_NAMESPACE,
	})
	if err != nil {
		log.Fatalln("Unable to create Temporal client", err)
	}
	defer c.Close()
	log.Println("Worker connected to Temporal at:", temporalHost)

	// =========================================================================
	// 4. REGISTER ACTIVITIES & WORKFLOWS
	// =========================================================================
	sm := assignment.NewStateMachine(store, store, cfg.RequireVisitPhoto)
	settlements := reconciliation.NewService(store, store, store, store, sm, store, store)
	if len(notifiers) > 0 {
		settlements.WithNotifier(notifiers)
	}
	activityHost := &activities.DepositActivities{
		Confirmer: settlements,
		Deposits:  store,
	}

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	w.RegisterWorkflow(workflow.ConfirmDepositWorkflow)
	w.RegisterActivityWithOptions(activityHost.ConfirmDeposit, activity.RegisterOptions{
		Name: activities.ConfirmDepositActivity,
	})

	// =========================================================================
	// 5. NOTIFICATION BRIDGE & JOB CONSUMERS
	// =========================================================================
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	if kafkaConsumer != nil && rabbit != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Println("[Bridge] Listener started")
			kafkaConsumer.Start(ctx, rabbit.Bridge)
		}()
	}
	if rabbitClient != nil {
		for _, q := range events.Queues() {
			wg.Add(1)
			go startJobWorker(ctx, rabbitClient, q, &wg)
		}
	}

	// =========================================================================
	// 6. START WORKER
	// =========================================================================
	log.Println("Worker started. Pollers are running...")
	err = w.Run(worker.InterruptCh())

	cancel()
	wg.Wait()
	if err != nil {
		log.Fatalln("Unable to start worker", err)
	}
	log.Println("Worker shutdown complete")
}

// startJobWorker drains one notification queue. Push and SMS delivery live
// outside this service; the job is logged and acked.
func startJobWorker(ctx context.Context, client *pkgrabbit.RabbitmqClient, queue string, wg *sync.WaitGroup) {
	defer wg.Done()

	msgs, err := client.Consume(queue)
	if err != nil {
		log.Printf("[Jobs] %s: failed to start consuming: %v", queue, err)
		return
	}
	for {
		select {
		case <-ctx.Done():
			log.Printf("[Jobs] %s: stop signal received", queue)
			return
		case d, ok := <-msgs:
			if !ok {
				return
			}
			var job events.Job
			if err := json.Unmarshal(d.Body, &job); err != nil {
				log.Printf("[Jobs] %s: dropping malformed job: %v", queue, err)
				if err := d.Nack(false, false); err != nil {
					log.Printf("[Jobs] %s: nack failed: %v", queue, err)
				}
				continue
			}
			log.Printf("[Jobs] %s: %s %s", queue, job.Type, string(job.Payload))
			if err := d.Ack(false); err != nil {
				log.Printf("[Jobs] %s: ack failed: %v", queue, err)
			}
		}
	}
}
