package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"jenny-assistant-be/internal/dto"
	"jenny-assistant-be/internal/entity"
	"jenny-assistant-be/internal/model"
	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/internal/repository/specification"
	"jenny-assistant-be/internal/repository/unitofwork"
	"jenny-assistant-be/internal/service"
	"jenny-assistant-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, database.Options{})
	require.NoError(t, err, "Failed to connect to DB")
	require.NoError(t, db.AutoMigrate(&model.Task{}, &model.ProfilePreference{}, &model.Interaction{}, &model.CalendarConnection{}))
	return db
}

func TestGormTaskLifecycle(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	userId := "it-" + uuid.NewString()
	t.Cleanup(func() {
		db.Unscoped().Where("user_id = ?", userId).Delete(&model.Task{})
	})

	tasks := service.NewTaskService(unitofwork.NewRepositoryFactory(db), nil, logger.NewNopLogger())

	due := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	created, err := tasks.Create(ctx, userId, &dto.CreateTaskRequest{Title: "Call mom", DueAt: &due})
	require.NoError(t, err)

	open, err := tasks.ListOpen(ctx, userId, 10)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Call mom", open[0].Title)

	backlog, err := tasks.Reschedulable(ctx, time.Now())
	require.NoError(t, err)
	found := false
	for _, p := range backlog {
		if p.TaskId == created.Id {
			found = true
		}
	}
	assert.True(t, found, "future task is reschedulable")

	pending, err := tasks.IsPending(ctx, created.Id)
	require.NoError(t, err)
	assert.True(t, pending)

	done, err := tasks.Complete(ctx, userId, created.Id)
	require.NoError(t, err)
	require.NotNil(t, done)

	pending, err = tasks.IsPending(ctx, created.Id)
	require.NoError(t, err)
	assert.False(t, pending)

	deleted, err := tasks.Delete(ctx, userId, created.Id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = tasks.Delete(ctx, userId, created.Id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestGormProfileUpsert(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	userId := "it-" + uuid.NewString()
	t.Cleanup(func() {
		db.Where("user_id = ?", userId).Delete(&model.ProfilePreference{})
	})

	profiles := service.NewProfileService(unitofwork.NewRepositoryFactory(db))
	require.NoError(t, profiles.SavePreference(ctx, userId, "drink", "tea"))
	require.NoError(t, profiles.SavePreference(ctx, userId, "drink", "coffee"))

	pref, err := profiles.Preference(ctx, userId, "drink")
	require.NoError(t, err)
	require.NotNil(t, pref)
	assert.Equal(t, "coffee", pref.Value)

	all, err := profiles.Preferences(ctx, userId, 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	missing, err := profiles.Preference(ctx, userId, "color")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGormInteractionAudit(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	userId := "it-" + uuid.NewString()
	t.Cleanup(func() {
		db.Where("user_id = ?", userId).Delete(&model.Interaction{})
	})

	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	require.NoError(t, uow.InteractionRepository().Create(ctx, &entity.Interaction{
		Id:         uuid.New(),
		Kind:       "Interaction",
		UserId:     userId,
		Agent:      "general_agent",
		Query:      "hello",
		Reply:      "hi",
		Properties: map[string]interface{}{"source": "integration"},
		CreatedAt:  time.Now(),
	}))

	rows, err := uow.InteractionRepository().FindAll(ctx, specification.UserOwnedBy{UserID: userId})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "integration", rows[0].Properties["source"])
}
