package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/dto"
	"retailpos/internal/errs"
	"retailpos/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func newRegisterFixture(t *testing.T) (*fakeRegisterRepo, *fakeSessionRepo, RegisterService) {
	t.Helper()
	registers := newFakeRegisterRepo()
	sessions := newFakeSessionRepo()
	sessionSvc := NewSessionService(sessions, registers, &recordingAudit{})
	return registers, sessions, NewRegisterService(registers, sessionSvc)
}

func TestCreateRegister(t *testing.T) {
	_, _, svc := newRegisterFixture(t)

	reg, err := svc.Create(context.Background(), dto.CreateRegisterRequest{Code: "TILL-1", Name: "Front till"})
	require.NoError(t, err)
	assert.True(t, reg.IsActive)
	assert.False(t, reg.IsMain)

	_, err = svc.Create(context.Background(), dto.CreateRegisterRequest{Code: "TILL-1", Name: "Duplicate"})
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
}

func TestCreateMainRegisterDemotesOthers(t *testing.T) {
	registers, _, svc := newRegisterFixture(t)

	first, err := svc.Create(context.Background(), dto.CreateRegisterRequest{Code: "TILL-1", Name: "Front", IsMain: true})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), dto.CreateRegisterRequest{Code: "TILL-2", Name: "Back", IsMain: true})
	require.NoError(t, err)

	assert.True(t, second.IsMain)
	assert.False(t, registers.registers[first.ID].IsMain, "previous main demoted")
}

func TestUpdateRegisterMainGuards(t *testing.T) {
	_, _, svc := newRegisterFixture(t)
	main, err := svc.Create(context.Background(), dto.CreateRegisterRequest{Code: "MAIN", Name: "Main", IsMain: true})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), main.ID, dto.UpdateRegisterRequest{IsActive: boolPtr(false)})
	assert.Equal(t, errs.KindInvalidState, errs.KindOf(err), "main register stays active")

	_, err = svc.Update(context.Background(), main.ID, dto.UpdateRegisterRequest{IsMain: boolPtr(false)})
	assert.Equal(t, errs.KindInvalidState, errs.KindOf(err), "main is demoted only by promoting another")
}

func TestPromoteAnotherRegister(t *testing.T) {
	registers, _, svc := newRegisterFixture(t)
	old, err := svc.Create(context.Background(), dto.CreateRegisterRequest{Code: "TILL-1", Name: "Front", IsMain: true})
	require.NoError(t, err)
	other, err := svc.Create(context.Background(), dto.CreateRegisterRequest{Code: "TILL-2", Name: "Back"})
	require.NoError(t, err)

	promoted, err := svc.Update(context.Background(), other.ID, dto.UpdateRegisterRequest{IsMain: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, promoted.IsMain)
	assert.False(t, registers.registers[old.ID].IsMain)
}

func TestDeleteRegisterGuards(t *testing.T) {
	registers, _, svc := newRegisterFixture(t)
	main, err := svc.Create(context.Background(), dto.CreateRegisterRequest{Code: "MAIN", Name: "Main", IsMain: true})
	require.NoError(t, err)
	used, err := svc.Create(context.Background(), dto.CreateRegisterRequest{Code: "TILL-1", Name: "Front"})
	require.NoError(t, err)
	idle, err := svc.Create(context.Background(), dto.CreateRegisterRequest{Code: "TILL-2", Name: "Back"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), main.ID)
	assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))

	registers.sessionCount[used.ID] = 2
	err = svc.Delete(context.Background(), used.ID)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))

	require.NoError(t, svc.Delete(context.Background(), idle.ID))
	_, err = svc.Get(context.Background(), idle.ID)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestListAttachesActiveSession(t *testing.T) {
	_, sessions, svc := newRegisterFixture(t)
	reg, err := svc.Create(context.Background(), dto.CreateRegisterRequest{Code: "TILL-1", Name: "Front"})
	require.NoError(t, err)

	session := &model.CashSession{
		RegisterID:    reg.ID,
		OpenedByID:    uuid.New(),
		Status:        model.SessionOpen,
		OpeningAmount: d(10000),
	}
	require.NoError(t, sessions.Create(context.Background(), session))

	list, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].ActiveSession)
	assert.Equal(t, session.ID, list[0].ActiveSession.ID)
}
