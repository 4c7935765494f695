package controllers

import (
	"context"

	"github.com/hostpool/sls/internal/db"
	"github.com/hostpool/sls/internal/lease"
	"github.com/hostpool/sls/internal/model"
	"github.com/hostpool/sls/utils"
	"github.com/sirupsen/logrus"
)

// The NATS handlers mirror the hot HTTP operations for in-cluster callers.
// Requests and responses travel over the JSON-encoded connection; failures
// are reported in the response body rather than by dropping the reply.

// SessionResponse is the NATS reply for a session request.
type SessionResponse struct {
	Session *lease.Session `json:"session,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// UsageResponse is the NATS reply for a usage lookup.
type UsageResponse struct {
	Usage *model.FreemiumUsageData `json:"usage,omitempty"`
	Error string                   `json:"error,omitempty"`
}

// QuotaCheckResponse is the NATS reply for a read-only quota check.
type QuotaCheckResponse struct {
	Decision *lease.Decision `json:"decision,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// UsernameRequest identifies the user a NATS lookup is for.
type UsernameRequest struct {
	Username string `json:"username"`
}

// publishReply sends a NATS response, logging the error if publishing
// fails since there is nobody else to report it to.
func (s Server) publishReply(reply string, resp interface{}) {
	if err := s.NATSConn.Publish(reply, resp); err != nil {
		log.Errorf("unable to publish the response: %s", err.Error())
	}
}

// RequestSessionNATS is the NATS handler for requesting a session.
func (s Server) RequestSessionNATS(subject, reply string, request *lease.SessionRequest) {
	log := log.WithFields(logrus.Fields{"context": "requesting a session over NATS"})

	var resp SessionResponse

	request.Username = utils.RemoveUsernameSuffix(request.Username)

	session, err := s.Allocator.RequestSession(context.Background(), s.GORMDB, request)
	if err != nil {
		log.Debugf("session request failed: %s", err.Error())
		resp.Error = err.Error()
	} else {
		resp.Session = session
	}

	s.publishReply(reply, resp)
}

// GetUsageNATS is the NATS handler for fetching the freemium usage
// projection.
func (s Server) GetUsageNATS(subject, reply string, request *UsernameRequest) {
	log := log.WithFields(logrus.Fields{"context": "getting usage over NATS"})

	var resp UsageResponse

	ctx := context.Background()
	username := utils.RemoveUsernameSuffix(request.Username)

	usageLog, err := db.GetUsageLog(ctx, s.GORMDB, username)
	if err != nil {
		log.Errorf("unable to look up the usage log: %s", err.Error())
		resp.Error = err.Error()
		s.publishReply(reply, resp)
		return
	}

	slot, err := db.GetActiveSlotForUser(ctx, s.GORMDB, username)
	if err != nil {
		log.Errorf("unable to look up the active slot: %s", err.Error())
		resp.Error = err.Error()
		s.publishReply(reply, resp)
		return
	}

	resp.Usage = model.FreemiumUsageDataFromLog(usageLog, slot)
	s.publishReply(reply, resp)
}

// CheckQuotaNATS is the NATS handler for the read-only quota check.
func (s Server) CheckQuotaNATS(subject, reply string, request *UsernameRequest) {
	log := log.WithFields(logrus.Fields{"context": "checking quota over NATS"})

	var resp QuotaCheckResponse

	username := utils.RemoveUsernameSuffix(request.Username)

	decision, err := s.Allocator.CheckQuota(context.Background(), s.GORMDB, username)
	if err != nil {
		log.Errorf("unable to check the quota: %s", err.Error())
		resp.Error = err.Error()
	} else {
		resp.Decision = decision
	}

	s.publishReply(reply, resp)
}
