// Package config provides configuration management for the channel manager.
//
// Values come from a .env file (loaded with godotenv) and the environment,
// read through Viper. Defaults live next to each field as `default:"..."`
// struct tags and are registered by reflection, so every key is known to
// AutomaticEnv. Nested keys map to upper-case env names with underscores:
// queue.batch_size is QUEUE_BATCH_SIZE.
//
// # Configuration Structure
//
//   - Server: HTTP port and API key
//   - Log: level and format
//   - Database: driver (mysql, sqlite) and connection details
//   - Storage: raw payload archive (MinIO / S3)
//   - Queue: drain interval, batch size, retry ceiling
//   - Channels: provider call timeout and scheduled inbound syncs
//   - Redis: optional distributed drain lease
//   - Events: optional RabbitMQ publisher
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Queue.Interval)
package config
