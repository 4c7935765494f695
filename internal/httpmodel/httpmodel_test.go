package httpmodel_test

import (
	"testing"

	"github.com/hostpool/sls/internal/httpmodel"
	"github.com/hostpool/sls/internal/model"
	"github.com/stretchr/testify/require"
)

func TestNewSessionValidate(t *testing.T) {
	valid := httpmodel.NewSession{Username: "alice", ProjectID: "project-1", StartCycles: 5}
	require.NoError(t, valid.Validate())

	request := valid.ToLeaseRequest()
	require.Equal(t, "alice", request.Username)
	require.Equal(t, "project-1", request.ProjectID)
	require.Equal(t, int64(5), request.StartCycles)

	require.Error(t, httpmodel.NewSession{ProjectID: "project-1"}.Validate())
	require.Error(t, httpmodel.NewSession{Username: "alice"}.Validate())
	require.Error(t, httpmodel.NewSession{Username: "alice", ProjectID: "project-1", StartCycles: -1}.Validate())
}

func TestGlobalDurationValidate(t *testing.T) {
	require.NoError(t, httpmodel.GlobalDuration{DurationSeconds: 3600}.Validate())
	require.Error(t, httpmodel.GlobalDuration{DurationSeconds: 0}.Validate())
	require.Error(t, httpmodel.GlobalDuration{DurationSeconds: -1}.Validate())
}

func TestSlotUpdateValidate(t *testing.T) {
	status := model.SlotOccupied
	duration := int64(7200)
	require.NoError(t, httpmodel.SlotUpdate{Status: &status, DurationSeconds: &duration}.Validate())

	bogus := model.SlotStatus("draining")
	require.Error(t, httpmodel.SlotUpdate{Status: &bogus}.Validate())

	negative := int64(-1)
	require.Error(t, httpmodel.SlotUpdate{DurationSeconds: &negative}.Validate())
	require.Error(t, httpmodel.SlotUpdate{StartCycles: &negative}.Validate())
}

func TestSlotUpdateFields(t *testing.T) {
	require.Empty(t, httpmodel.SlotUpdate{}.Fields())

	status := model.SlotAvailable
	owner := "platform"
	duration := int64(1800)
	fields := httpmodel.SlotUpdate{Status: &status, Owner: &owner, DurationSeconds: &duration}.Fields()

	require.Len(t, fields, 3)
	require.Equal(t, model.SlotAvailable, fields["status"])
	require.Equal(t, "platform", fields["owner"])
	require.Equal(t, int64(1800), fields["duration"])
}
