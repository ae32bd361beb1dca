package command

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cloudmeet/agent-bot-go/internal/model"
)

type mockCodeRepo struct {
	mock.Mock
}

func (m *mockCodeRepo) Add(ctx context.Context, code, note string) (bool, error) {
	args := m.Called(ctx, code, note)
	return args.Bool(0), args.Error(1)
}

func (m *mockCodeRepo) FindByCode(ctx context.Context, code string) (*model.AuthCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthCode), args.Error(1)
}

func (m *mockCodeRepo) FindByHolder(ctx context.Context, holderID int64) ([]model.AuthCode, error) {
	args := m.Called(ctx, holderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuthCode), args.Error(1)
}

func (m *mockCodeRepo) ListAssigned(ctx context.Context) ([]model.AuthCode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuthCode), args.Error(1)
}

func (m *mockCodeRepo) List(ctx context.Context, limit int) ([]model.AuthCode, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuthCode), args.Error(1)
}

func (m *mockCodeRepo) Stats(ctx context.Context) (*model.StockStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StockStats), args.Error(1)
}

func (m *mockCodeRepo) Delete(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockCodeRepo) ClaimNext(ctx context.Context, holderID int64) (*model.AuthCode, error) {
	args := m.Called(ctx, holderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthCode), args.Error(1)
}

func (m *mockCodeRepo) ClaimSpecific(ctx context.Context, holderID int64, code string) (bool, error) {
	args := m.Called(ctx, holderID, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockCodeRepo) Release(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockCodeRepo) ReleaseOwned(ctx context.Context, code string, holderID int64) (bool, error) {
	args := m.Called(ctx, code, holderID)
	return args.Bool(0), args.Error(1)
}

func (m *mockCodeRepo) BulkTake(ctx context.Context, n int) ([]model.AuthCode, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuthCode), args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Track(ctx context.Context, params model.TrackUserParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *mockUserRepo) Find(ctx context.Context, telegramID int64) (*model.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) CountAdmins(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockUserRepo) SetAdmin(ctx context.Context, params model.TrackUserParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *mockUserRepo) ClearAdmin(ctx context.Context, telegramID int64) (bool, error) {
	args := m.Called(ctx, telegramID)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) ListAdmins(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *mockUserRepo) ListUsers(ctx context.Context, limit int) ([]model.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

type mockMeetAPI struct {
	mock.Mock
}

func (m *mockMeetAPI) ListCodes(ctx context.Context) ([]model.RemoteCodeStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RemoteCodeStatus), args.Error(1)
}

func (m *mockMeetAPI) ReleaseCode(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}
