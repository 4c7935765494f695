package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"
)

var ServiceName = "SLS"

// Default paths searched when the command line doesn't override them.
const (
	DefaultConfigPath = "/etc/sls/config.yaml"
	DefaultDotEnvPath = ".env"
)

// Specification defines the configuration settings for the SLS service.
type Specification struct {
	DatabaseURI         string
	RunSchemaMigrations bool
	ReinitDB            bool
	ListenPort          int
	UsernameSuffix      string

	// DefaultLeaseDurationSeconds is used to seed the settings table the
	// first time the service starts against an empty database. After that
	// the value in the database is authoritative.
	DefaultLeaseDurationSeconds int64

	NatsCluster   string
	MaxReconnects int
	ReconnectWait int
	CACertPath    string
	TLSKeyPath    string
	TLSCertPath   string
	CredsPath     string
	BaseSubject   string
	BaseQueueName string
}

// envKeyReplacer converts an environment variable name such as
// SLS_DATABASE_URI into the koanf key database.uri.
func envKeyReplacer(envPrefix string) func(string) string {
	return func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", -1)
	}
}

// LoadConfig loads the configuration for the SLS service. Values from the
// environment override values from the configuration file.
func LoadConfig(envPrefix, configPath, dotEnvPath string) (*Specification, error) {
	wrapMsg := "unable to load the configuration"

	// Load the dotenv file into the environment if it exists.
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}
	}

	k := koanf.New(".")

	// The configuration file is optional; the environment is not.
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKeyReplacer(envPrefix)), nil); err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	var s Specification

	s.DatabaseURI = k.String("database.uri")
	if s.DatabaseURI == "" {
		return nil, errors.New("database.uri or SLS_DATABASE_URI must be set")
	}

	s.RunSchemaMigrations = k.Bool("database.migrate")
	s.ReinitDB = k.Bool("reinit.db")

	s.ListenPort = k.Int("listen.port")
	if s.ListenPort == 0 {
		s.ListenPort = 9000
	}

	s.UsernameSuffix = k.String("username.suffix")

	s.DefaultLeaseDurationSeconds = k.Int64("lease.duration")
	if s.DefaultLeaseDurationSeconds == 0 {
		s.DefaultLeaseDurationSeconds = 3600
	}

	s.NatsCluster = k.String("nats.cluster")
	if s.NatsCluster == "" {
		return nil, errors.New("nats.cluster must be set in the configuration file")
	}

	s.MaxReconnects = k.Int("nats.maxreconnects")
	s.ReconnectWait = k.Int("nats.reconnectwait")
	s.CACertPath = k.String("nats.cacertpath")
	s.TLSKeyPath = k.String("nats.tlskeypath")
	s.TLSCertPath = k.String("nats.tlscertpath")
	s.CredsPath = k.String("nats.credspath")

	s.BaseSubject = k.String("nats.basesubject")
	if s.BaseSubject == "" {
		s.BaseSubject = "sls.>"
	}

	s.BaseQueueName = k.String("nats.basequeue")
	if s.BaseQueueName == "" {
		s.BaseQueueName = "sls"
	}

	return &s, nil
}
