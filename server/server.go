package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/hostpool/sls/config"
	"github.com/hostpool/sls/internal/controllers"
	"github.com/hostpool/sls/internal/db"
	"github.com/hostpool/sls/internal/lease"
	"github.com/hostpool/sls/logging"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "server"})

func natsSubject(base string, fields ...string) string {
	trimmed := strings.TrimSuffix(
		strings.TrimSuffix(base, ".*"),
		".>",
	)
	addFields := strings.Join(fields, ".")
	return fmt.Sprintf("%s.%s", trimmed, addFields)
}

func natsQueue(qBase string, fields ...string) string {
	return fmt.Sprintf("%s.%s", qBase, strings.Join(fields, "."))
}

func queueSub(conn *nats.EncodedConn, spec *config.Specification, name string, handler nats.Handler) {
	var err error

	subject := natsSubject(spec.BaseSubject, name)
	queue := natsQueue(spec.BaseQueueName, name)

	if _, err = conn.QueueSubscribe(subject, queue, handler); err != nil {
		log.Fatal(err)
	}

	log.Infof("subscribed to %s on queue %s", subject, queue)
}

func InitNATS(spec *config.Specification) *nats.EncodedConn {
	nc, err := nats.Connect(
		spec.NatsCluster,
		nats.UserCredentials(spec.CredsPath),
		nats.RootCAs(spec.CACertPath),
		nats.ClientCert(spec.TLSCertPath, spec.TLSKeyPath),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(spec.MaxReconnects),
		nats.ReconnectWait(time.Duration(spec.ReconnectWait)*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Errorf("disconnected from nats: %s", err.Error())
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Errorf("connection closed: %s", nc.LastError().Error())
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	log.Infof("configured servers: %s", strings.Join(nc.Servers(), " "))
	log.Infof("connected to NATS host: %s", nc.ConnectedServerName())

	conn, err := nats.NewEncodedConn(nc, nats.JSON_ENCODER)
	if err != nil {
		log.Fatal(err)
	}

	log.Infof("set up encoded connection to NATS")

	return conn
}

func Init(spec *config.Specification) {
	log := log.WithFields(logrus.Fields{"context": "server init"})

	e := InitRouter()

	// Establish the database connection.
	log.Info("establishing the database connection")
	sqldb, gormdb, err := db.Init("postgres", spec.DatabaseURI)
	if err != nil {
		log.Fatalf("service initialization failed: %s", err.Error())
	}

	// Seed the platform-wide lease duration on first start.
	_, err = db.EnsureSettings(context.Background(), gormdb, spec.DefaultLeaseDurationSeconds)
	if err != nil {
		log.Fatalf("service initialization failed: %s", err.Error())
	}

	conn := InitNATS(spec)

	clock := quartz.NewReal()

	s := controllers.Server{
		Router:         e,
		DB:             sqldb,
		GORMDB:         gormdb,
		NATSConn:       conn,
		Allocator:      lease.NewAllocator(clock),
		Reclaimer:      lease.NewReclaimer(clock),
		Service:        "sls",
		Title:          "Shared-runner Leasing Service",
		Version:        "1.0.0",
		UsernameSuffix: spec.UsernameSuffix,
	}

	// Register the handlers.
	RegisterHandlers(s)

	queueSub(conn, spec, "sessions.request", s.RequestSessionNATS)
	queueSub(conn, spec, "usages.get", s.GetUsageNATS)
	queueSub(conn, spec, "usages.check", s.CheckQuotaNATS)

	log.Info("starting the service")
	log.Fatal(e.Start(fmt.Sprintf(":%d", spec.ListenPort)))
}
