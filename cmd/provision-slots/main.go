package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/hostpool/sls/internal/db"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
)

type Config struct {
	DatabaseURI string
	Owner       string
}

// loadConfig loads configuration settings from the environment. We're using koanf directly here so that the
// configuration files don't have to be present to run the provisioning utility.
func loadConfig() (*Config, error) {
	k := koanf.New(".")

	// Load the configuration settings from the environment.
	err := k.Load(
		env.Provider("SLS_", ".",
			func(s string) string {
				return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "SLS_")), "_", ".", -1)
			},
		),
		nil,
	)
	if err != nil {
		return nil, err
	}

	// Verify that the database URI is specified.
	databaseURI := k.String("database.uri")
	if databaseURI == "" {
		return nil, fmt.Errorf("SLS_DATABASE_URI must be defined")
	}

	// The owner identity is optional; slots default to the platform identity.
	owner := k.String("slot.owner")
	if owner == "" {
		owner = "platform"
	}

	return &Config{DatabaseURI: databaseURI, Owner: owner}, nil
}

func main() {
	poolSize := flag.Int64("pool-size", 0, "The target number of slots in the pool.")
	flag.Parse()

	if *poolSize <= 0 {
		log.Fatal("--pool-size must be specified and greater than zero")
	}

	// Load the configuration.
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("unable to load the configuration: %s", err)
	}

	// Establish the database connection.
	_, gormdb, err := db.Init("postgres", cfg.DatabaseURI)
	if err != nil {
		log.Fatalf("unable to connect to the database: %s", err)
	}

	// Grow the pool to the target size. Existing slots are never destroyed.
	created, err := db.ProvisionSlots(context.Background(), gormdb, *poolSize, cfg.Owner)
	if err != nil {
		log.Fatalf("unable to provision the slot pool: %s", err)
	}

	fmt.Printf("created %d slots\n", created)
}
