package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ilemgroup/dynatrace-azure-log-forwarder/logger"
	"github.com/ilemgroup/dynatrace-azure-log-forwarder/logs_ingest"
)

var appLogger = logger.NewLogger("azure-log-forwarder")

var (
	listenPort    string
	kafkaBrokers  string
	eventHubTopic string
	consumerGroup string
	batchSize     int
	batchWaitSecs int
)

var rootCmd = &cobra.Command{
	Use:   "azure-log-forwarder",
	Short: "Forward Azure log records to the Dynatrace log ingest endpoint",
	Long: `Normalizes batches of Azure Event Hub log events into a vendor-neutral
schema and posts them to the Dynatrace log ingest API.

Runs either as an Azure Functions custom handler (serve) or as a
standalone consumer of the Event Hubs Kafka-compatible endpoint (consume).`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as an Azure Functions custom handler",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Consume log events from the Event Hubs Kafka endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsume()
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	_ = godotenv.Load()

	serveCmd.Flags().StringVar(&listenPort, "port", "", "listen port (default: FUNCTIONS_CUSTOMHANDLER_PORT or 8080)")

	consumeCmd.Flags().StringVar(&kafkaBrokers, "brokers", "", "Event Hubs Kafka endpoint, e.g. mynamespace.servicebus.windows.net:9093")
	consumeCmd.Flags().StringVar(&eventHubTopic, "topic", "", "event hub name to consume from")
	consumeCmd.Flags().StringVarP(&consumerGroup, "consumer-group", "g", "azure-log-forwarder", "Kafka consumer group ID")
	consumeCmd.Flags().IntVar(&batchSize, "batch-size", 100, "max events per processing invocation")
	consumeCmd.Flags().IntVar(&batchWaitSecs, "batch-wait", 5, "max seconds to wait before flushing a partial batch")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(consumeCmd)
}

func runServe() error {
	orchestrator := logs_ingest.NewOrchestrator(logs_ingest.LoadConfig(), appLogger)

	port := listenPort
	if port == "" {
		port = os.Getenv("FUNCTIONS_CUSTOMHANDLER_PORT")
	}
	if port == "" {
		port = "8080"
	}

	appLogger.Info("Listening on port ", port)
	return http.ListenAndServe(":"+port, newHandler(orchestrator, appLogger))
}

func runConsume() error {
	if kafkaBrokers == "" || eventHubTopic == "" {
		return fmt.Errorf("--brokers and --topic are required")
	}
	connectionString := os.Getenv("EVENTHUB_CONNECTION_STRING")
	if connectionString == "" {
		return fmt.Errorf("EVENTHUB_CONNECTION_STRING is required")
	}

	orchestrator := logs_ingest.NewOrchestrator(logs_ingest.LoadConfig(), appLogger)
	consumer, err := newEventHubConsumer(eventHubConsumerConfig{
		Brokers:          kafkaBrokers,
		ConnectionString: connectionString,
		Topic:            eventHubTopic,
		Group:            consumerGroup,
		BatchSize:        batchSize,
		BatchWait:        time.Duration(batchWaitSecs) * time.Second,
	}, orchestrator, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalChan
		appLogger.Info("Received shutdown signal")
		cancel()
	}()

	return consumer.Run(ctx)
}
