package main

import (
	"context"
	"flag"

	"github.com/evyataryagoni/ipenrich/internal/config"
	"github.com/evyataryagoni/ipenrich/internal/logger"
	"github.com/evyataryagoni/ipenrich/internal/store"
)

// This tool loads an ignore-list CSV (ip,reason) into Redis
// Usage: go run ./cmd/load-ignore [-csv path]
func main() {
	appConfig := config.Load()

	csvPath := flag.String("csv", appConfig.IgnoreListPath, "ignore list CSV (ip,reason)")
	flag.Parse()

	log := logger.New(logger.Config{Level: appConfig.LogLevel, Pretty: true}).WithComponent("LoadIgnore")

	log.Info().Str("addr", appConfig.RedisAddr).Msg("Connecting to Redis")
	redisStore, err := store.NewRedisStore(appConfig.RedisAddr, appConfig.RedisPassword, appConfig.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisStore.Close()

	count, err := redisStore.LoadFromCSV(context.Background(), *csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("csv", *csvPath).Msg("Failed to load ignore list")
	}

	log.Info().Int("count", count).Str("csv", *csvPath).Msg("Ignore list loaded, start the server with IGNORE_STORE_TYPE=redis")
}
