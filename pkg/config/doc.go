// Package config loads typed configuration structs from environment
// variables using caarlos0/env struct tags, with an optional .env file
// bootstrap via godotenv.
//
// Each package owns its own Config struct and declares defaults inline:
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// Configs are cached per type for the lifetime of the process, so every
// component that loads the same type observes identical values.
package config
