package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourorg/tagpack-service/internal/cache"
	"github.com/yourorg/tagpack-service/internal/events"
	"github.com/yourorg/tagpack-service/internal/repository"
	"github.com/yourorg/tagpack-service/internal/service"
)

var insertTimeout time.Duration

var insertCmd = &cobra.Command{
	Use:   "insert <file>...",
	Short: "Validate and insert pack files into the tag store",
	Long: `Validate each pack and load it into the database. The file path is the
pack uri, so inserting the same file again replaces its previous tags.
Cached digests are flushed and a pack event is published when Kafka
brokers are configured.

Examples:
  tagpack insert packs/exchanges.yaml
  tagpack insert --config prod.yaml actors/*.yaml packs/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg.Logging.Level)
		if err != nil {
			return err
		}
		defer logger.Sync()

		db, err := repository.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		var digestCache service.Cache
		if cfg.Redis.Enabled {
			client := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer client.Close()
			digestCache = cache.NewDigestCache(client, cfg.Redis.Prefix, cfg.Redis.TTL, logger)
		}

		var publisher service.Publisher
		if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
			producer := events.NewProducer(brokers, cfg.Kafka.ClientID, logger)
			defer producer.Close()
			publisher = producer
		}

		ingest := service.NewIngestService(
			newLoader(cfg),
			repository.NewTagRepository(db, cfg.Database.MaxRetries, logger),
			repository.NewActorRepository(db, cfg.Database.MaxRetries, logger),
			digestCache,
			publisher,
			cfg.Kafka.TagpackTopic,
			logger,
		)

		failed := 0
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), insertTimeout)
			result, err := ingest.Ingest(ctx, path, data)
			cancel()
			if err != nil {
				failed++
				logger.Error("Failed to insert pack", zap.String("uri", path), zap.Error(err))
				printProblems(cmd, err)
				continue
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d inserted, %d skipped\n",
				result.Kind, result.URI, result.Inserted, result.Skipped)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d pack(s) not inserted", failed, len(args))
		}
		return nil
	},
}

func init() {
	insertCmd.Flags().DurationVar(&insertTimeout, "timeout", 2*time.Minute, "timeout per pack")
}
