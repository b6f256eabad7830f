package bots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AgbodesiImoagene/coingro-controller/core/coingro"
	"github.com/AgbodesiImoagene/coingro-controller/core/k8s"
	"github.com/AgbodesiImoagene/coingro-controller/core/k8s/mocks"
	"github.com/AgbodesiImoagene/coingro-controller/core/worker"
)

func botConfig() *coingro.Config {
	return &coingro.Config{
		Image:        "registry.local/coingro",
		Version:      "2024.8",
		APIPort:      8080,
		APIPrefix:    "api/v1",
		InitialState: coingro.StateStopped,
	}
}

func setupOrchestrator(t *testing.T) (*Orchestrator, sqlmock.Sqlmock, *mocks.Client) {
	db, dbMock := setupMockDB(t)
	cluster := &mocks.Client{}
	o := NewOrchestrator(NewStore(db), cluster, botConfig(), zap.NewNop())
	return o, dbMock, cluster
}

func TestStateTransitions(t *testing.T) {
	o, _, _ := setupOrchestrator(t)

	assert.Equal(t, worker.StateRunning, o.State())
	o.SetState(worker.StateStopped)
	assert.Equal(t, worker.StateStopped, o.State())
}

func TestCheckBotsCreatesMissingInstance(t *testing.T) {
	o, dbMock, cluster := setupOrchestrator(t)

	rows := botRows().
		AddRow(1, "bot-aaa", 1, "img", "1.0", "http://bot-aaa/api/v1", "", "binance", "running", true, false)
	dbMock.ExpectQuery("SELECT \\* FROM `bots` WHERE is_active = \\?").
		WillReturnRows(rows)

	cluster.On("GetInstance", mock.Anything, "bot-aaa").Return(nil, nil)
	cluster.On("CreateInstance", mock.Anything, "bot-aaa",
		map[string]string{"COINGRO__INITIAL_STATE": "running"}).Return(nil)

	err := o.CheckBots(context.Background())
	require.NoError(t, err)
	cluster.AssertExpectations(t)
}

func TestCheckBotsReplacesUnhealthyInstance(t *testing.T) {
	o, dbMock, cluster := setupOrchestrator(t)

	rows := botRows().
		AddRow(1, "bot-aaa", nil, "img", "1.0", "http://bot-aaa/api/v1", "SampleStrategy", "binance", "running", true, true)
	dbMock.ExpectQuery("SELECT \\* FROM `bots` WHERE is_active = \\?").
		WillReturnRows(rows)

	cluster.On("GetInstance", mock.Anything, "bot-aaa").
		Return(&k8s.Instance{Name: "bot-aaa", Phase: "Failed"}, nil)
	cluster.On("ReplaceInstance", mock.Anything, "bot-aaa", map[string]string{
		"COINGRO__STRATEGY":      "SampleStrategy",
		"COINGRO__INITIAL_STATE": "running",
	}).Return(nil)

	err := o.CheckBots(context.Background())
	require.NoError(t, err)
	cluster.AssertExpectations(t)
}

func TestCheckBotsLeavesHealthyInstance(t *testing.T) {
	o, dbMock, cluster := setupOrchestrator(t)

	rows := botRows().
		AddRow(1, "bot-aaa", 1, "img", "1.0", "http://bot-aaa/api/v1", "", "binance", "running", true, false)
	dbMock.ExpectQuery("SELECT \\* FROM `bots` WHERE is_active = \\?").
		WillReturnRows(rows)

	cluster.On("GetInstance", mock.Anything, "bot-aaa").
		Return(&k8s.Instance{Name: "bot-aaa", Phase: "Running"}, nil)

	err := o.CheckBots(context.Background())
	require.NoError(t, err)
	cluster.AssertNotCalled(t, "CreateInstance", mock.Anything, mock.Anything, mock.Anything)
	cluster.AssertNotCalled(t, "ReplaceInstance", mock.Anything, mock.Anything, mock.Anything)
}

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) Name() string { return "fake" }

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.calls++
	return f.err
}

func TestProcessRunsRefreshers(t *testing.T) {
	o, dbMock, _ := setupOrchestrator(t)

	dbMock.ExpectQuery("SELECT \\* FROM `bots` WHERE is_active = \\?").
		WillReturnRows(botRows())

	refresher := &fakeRefresher{}
	o.AddRefresher(refresher)

	err := o.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, refresher.calls)
}

func TestProcessSurfacesRefresherError(t *testing.T) {
	o, dbMock, _ := setupOrchestrator(t)

	dbMock.ExpectQuery("SELECT \\* FROM `bots` WHERE is_active = \\?").
		WillReturnRows(botRows())

	refresher := &fakeRefresher{err: errors.New("refresh failed")}
	o.AddRefresher(refresher)

	err := o.Process(context.Background())
	assert.Error(t, err)
}

func TestCreateBotGeneratesUniqueID(t *testing.T) {
	o, dbMock, cluster := setupOrchestrator(t)

	// ID uniqueness probe finds no existing row.
	dbMock.ExpectQuery("SELECT \\* FROM `bots` WHERE bot_id = \\?").
		WillReturnRows(botRows())
	dbMock.ExpectBegin()
	dbMock.ExpectExec("INSERT INTO `bots`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	dbMock.ExpectCommit()

	cluster.On("GetInstance", mock.Anything, mock.Anything).Return(nil, nil)
	cluster.On("CreateInstance", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	owner := uint(7)
	bot, err := o.CreateBot(context.Background(), CreateBotRequest{
		UserID:   &owner,
		Strategy: "SampleStrategy",
		Exchange: "binance",
	})
	require.NoError(t, err)
	require.NotNil(t, bot)
	assert.Contains(t, bot.BotID, "bot-")
	assert.Equal(t, "registry.local/coingro", bot.Image)
	assert.Equal(t, coingro.StateStopped, bot.State)
	assert.Equal(t, "http://"+bot.BotID+"/api/v1", bot.APIURL)
	cluster.AssertExpectations(t)
}

func TestCreateBotRejectsDeletedID(t *testing.T) {
	o, dbMock, cluster := setupOrchestrator(t)

	deleted := sqlmock.NewRows([]string{"id", "bot_id", "is_active", "deleted_at"}).
		AddRow(1, "bot-aaa", false, time.Now())
	dbMock.ExpectQuery("SELECT \\* FROM `bots` WHERE bot_id = \\?").
		WithArgs("bot-aaa", 1).
		WillReturnRows(deleted)

	_, err := o.CreateBot(context.Background(), CreateBotRequest{BotID: "bot-aaa"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deleted")
	cluster.AssertNotCalled(t, "GetInstance", mock.Anything, mock.Anything)
	cluster.AssertNotCalled(t, "CreateInstance", mock.Anything, mock.Anything, mock.Anything)
	cluster.AssertNotCalled(t, "ReplaceInstance", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBotReplacesExistingInstance(t *testing.T) {
	o, dbMock, cluster := setupOrchestrator(t)

	existing := botRows().
		AddRow(1, "bot-aaa", 1, "old-img", "0.9", "http://bot-aaa/api/v1", "", "binance", "stopped", false, false)
	dbMock.ExpectQuery("SELECT \\* FROM `bots` WHERE bot_id = \\?").
		WithArgs("bot-aaa", 1).
		WillReturnRows(existing)
	dbMock.ExpectBegin()
	dbMock.ExpectExec("UPDATE `bots` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	cluster.On("GetInstance", mock.Anything, "bot-aaa").
		Return(&k8s.Instance{Name: "bot-aaa", Phase: "Running"}, nil)
	cluster.On("ReplaceInstance", mock.Anything, "bot-aaa", mock.Anything).Return(nil)

	bot, err := o.CreateBot(context.Background(), CreateBotRequest{
		BotID: "bot-aaa",
		State: coingro.StateRunning,
	})
	require.NoError(t, err)
	assert.Equal(t, "registry.local/coingro", bot.Image)
	assert.True(t, bot.IsActive)
	assert.Equal(t, coingro.StateRunning, bot.State)
	cluster.AssertExpectations(t)
}

func TestDeactivateBot(t *testing.T) {
	o, dbMock, cluster := setupOrchestrator(t)

	rows := botRows().
		AddRow(1, "bot-aaa", 1, "img", "1.0", "http://bot-aaa/api/v1", "", "binance", "running", true, false)
	dbMock.ExpectQuery("SELECT \\* FROM `bots` WHERE bot_id = \\?").
		WithArgs("bot-aaa", 1).
		WillReturnRows(rows)
	dbMock.ExpectBegin()
	dbMock.ExpectExec("UPDATE `bots` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	cluster.On("DeleteInstance", mock.Anything, "bot-aaa").Return(nil)

	err := o.DeactivateBot(context.Background(), "bot-aaa", false)
	require.NoError(t, err)
	cluster.AssertExpectations(t)
}

func TestDeactivateBotUnknown(t *testing.T) {
	o, dbMock, cluster := setupOrchestrator(t)

	dbMock.ExpectQuery("SELECT \\* FROM `bots` WHERE bot_id = \\?").
		WithArgs("bot-zzz", 1).
		WillReturnRows(botRows())

	err := o.DeactivateBot(context.Background(), "bot-zzz", false)
	assert.Error(t, err)
	cluster.AssertNotCalled(t, "DeleteInstance", mock.Anything, mock.Anything)
}
