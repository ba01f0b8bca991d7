// Package config provides a type-safe, generic way to load application
// configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: the
// default .env file is loaded into the process environment once, then any
// annotated struct can be parsed from it.
//
//	type MongoConfig struct {
//		Host string `env:"MONGODB_HOST" envDefault:"localhost"`
//		Port string `env:"MONGODB_PORT" envDefault:"27017"`
//	}
//
//	var cfg MongoConfig
//	config.MustLoad(&cfg)
//
// Load returns wrapped sentinel errors (ErrParsingConfig, ErrNilPointer)
// checkable with errors.Is; MustLoad panics so a misconfigured service
// fails at startup.
package config
