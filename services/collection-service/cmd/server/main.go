// cmd/server/main.go in collection-service
package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.temporal.io/sdk/client"

	// 1. Local Imports
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/api"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/assignment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/audit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/auth"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/collection"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/config"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/events"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/invoice"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/payment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/pricing"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/proofstore"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/reconciliation"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/report"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/store/memory"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/store/postgres"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/worker"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/workflow"

	// 2. Shared Infrastructure Imports
	sharedconfig "github.com/NaonWae12/RR-Net-sub002/shared/config"
	pkgkafka "github.com/NaonWae12/RR-Net-sub002/shared/kafka"
	"github.com/NaonWae12/RR-Net-sub002/shared/rabbitmq"
)

// collectionStore is everything the service reads and writes. Both the
// Postgres store and the in-memory store implement it.
type collectionStore interface {
	pricing.CatalogStore
	invoice.InvoiceStore
	payment.PaymentStore
	assignment.AssignmentStore
	audit.Store
	deposit.DepositStore
	deposit.TxManager
	reconciliation.DepositReader
	reconciliation.InvoiceApplier
	reconciliation.AssignmentLister
	report.DepositLister
}

func main() {
	// =========================================================================
	// 1. LOAD CONFIG
	// =========================================================================
	sharedconfig.LoadEnv()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// 2. SETUP STORAGE
	// =========================================================================
	var store collectionStore
	if cfg.CommonConfig.HasDB() {
		db, err := sql.Open("postgres", cfg.CommonConfig.GetDBURL())
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("failed to reach database: %v", err)
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		store = postgres.NewStore(db)
		log.Println("Connected to Postgres")
	} else {
		store = memory.NewStore()
		log.Println("[WARN] DB config missing, using the in-memory store; data is lost on restart")
	}

	var proofs deposit.ProofStore
	switch cfg.ProofStorage {
	case config.ProofStorageOSS:
		oss, err := proofstore.NewOSSStore(proofstore.OSSConfig{
			Endpoint:   cfg.OSSEndpoint,
			AccessKey:  cfg.OSSAccessKey,
			SecretKey:  cfg.OSSSecretKey,
			Bucket:     cfg.OSSBucket,
			Prefix:     cfg.OSSPrefix,
			PublicBase: cfg.OSSPublicBase,
			MaxBytes:   cfg.MaxProofBytes,
		})
		if err != nil {
			log.Fatalf("failed to create OSS proof store: %v", err)
		}
		proofs = oss
	default:
		proofs = proofstore.NewLocalStore(cfg.ProofLocalDir, cfg.ProofPublicURL, cfg.MaxProofBytes)
	}

	// =========================================================================
	// 3. SETUP EVENTS (KAFKA & RABBITMQ)
	// =========================================================================
	var notifiers events.Fanout
	var reminder worker.StaleNotifier

	if cfg.CommonConfig.KAFKA_BROKER != "" && cfg.CommonConfig.KAFKA_TOPIC != "" {
		producer := pkgkafka.NewKafkaProducer(cfg.CommonConfig.KAFKA_BROKER, cfg.CommonConfig.KAFKA_TOPIC)
		defer producer.Close()
		notifiers = append(notifiers, events.NewKafkaEmitter(producer))
		log.Println("Connected to Kafka")
	} else {
		log.Println("Warning: Kafka config missing, deposit events will not be published")
	}

	if cfg.CommonConfig.HasRabbitMQ() {
		rmq, err := rabbitmq.NewClient(cfg.CommonConfig.GetRabbitMQURL())
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer rmq.Close()
		for _, q := range events.Queues() {
			if err := rmq.CreateQueue(q); err != nil {
				log.Fatalf("failed to declare queue %s: %v", q, err)
			}
		}
		rabbit := events.NewRabbitNotifier(rmq)
		// Kafka already feeds the worker's bridge; publish directly only without it.
		if len(notifiers) == 0 {
			notifiers = append(notifiers, rabbit)
		}
		reminder = rabbit
		log.Println("Connected to RabbitMQ")
	}

	// =========================================================================
	// 4. DOMAIN COMPONENTS
	// =========================================================================
	registry := collection.NewRegistry(store)
	recorder := payment.NewRecorder(store, store).WithDefaultCurrency(cfg.DefaultCurrency)
	sm := assignment.NewStateMachine(store, store, cfg.RequireVisitPhoto)
	desk := collection.NewDesk(store, recorder).WithAssignments(sm)

	aggregator := deposit.NewAggregator(store, store, sm, proofs, store, store).
		WithPolicy(deposit.AttachmentPolicy{MaxBytes: cfg.MaxProofBytes}).
		WithTimeout(cfg.SubmitTimeout)
	settlements := reconciliation.NewService(store, store, store, store, sm, store, store)
	if len(notifiers) > 0 {
		aggregator.WithNotifier(notifiers)
		settlements.WithNotifier(notifiers)
	}

	// Confirmation goes through Temporal when it is configured, so a crash
	// mid-settlement is retried by the worker instead of lost.
	var confirmer api.DepositConfirmer = settlements
	if host := cfg.CommonConfig.GetTemporalHostPort(); host != "" {
		tc, err := client.Dial(client.Options{
			HostPort:  host,
			Namespace: cfg.CommonConfig.TEMPORAL_NAMESPACE,
		})
		if err != nil {
			log.Fatalf("failed to create Temporal client: %v", err)
		}
		defer tc.Close()
		confirmer = workflow.NewStarter(tc, cfg.TemporalTaskQueue)
		log.Println("Deposit confirmation routed through Temporal at:", host)
	}

	exporter := report.NewSettlementExporter(store)

	// =========================================================================
	// 5. BACKGROUND JOBS
	// =========================================================================
	reconciler := worker.NewReconciler(aggregator, store).
		WithLedgers(registry, cfg.Location).
		WithSchedule(cfg.ReconcilerInterval, cfg.StaleDepositAfter)
	if reminder != nil {
		reconciler.WithNotifier(reminder)
	}
	go reconciler.Start(ctx)

	scheduler := cron.New(cron.WithLocation(cfg.Location))
	if len(cfg.ReportTenantIDs) > 0 {
		_, err := scheduler.AddFunc(cfg.ReportCron, func() {
			// the job runs after midnight and exports the day that just ended
			day := time.Now().In(cfg.Location).AddDate(0, 0, -1)
			for _, tenantID := range cfg.ReportTenantIDs {
				path, err := exporter.ExportDay(ctx, cfg.ReportDir, tenantID, day)
				if err != nil {
					log.Printf("[ERROR] [Report] tenant %s: %v", tenantID, err)
					continue
				}
				log.Printf("[Report] wrote %s", path)
			}
		})
		if err != nil {
			log.Fatalf("invalid REPORT_CRON %q: %v", cfg.ReportCron, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// =========================================================================
	// 6. HTTP SERVER
	// =========================================================================
	app := api.NewServer(api.Deps{
		Resolver:      auth.NewJWTResolver(cfg.JWTSecret, cfg.JWTIssuer),
		Ledgers:       registry,
		Desk:          desk,
		Deposits:      aggregator,
		Assignments:   sm,
		Confirmer:     confirmer,
		Reports:       exporter,
		Location:      cfg.Location,
		MaxProofBytes: cfg.MaxProofBytes,
	})
	if cfg.ProofStorage == config.ProofStorageLocal {
		app.Static(cfg.ProofPublicURL, cfg.ProofLocalDir)
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("[ERROR] shutdown: %v", err)
		}
	}()

	log.Println("HTTP server running on :" + cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
