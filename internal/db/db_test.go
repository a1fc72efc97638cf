package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"canteen/internal/model"
)

func TestGormLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gormDB, err := gorm.Open(sqlite.Open("file:gorm_logger_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: newGormLogger(zap.New(core)),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(gormDB))

	t.Run("missing row is silent", func(t *testing.T) {
		before := logs.Len()
		var dish model.Dish
		err := gormDB.First(&dish, 999).Error
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
		assert.Equal(t, before, logs.Len())
	})

	t.Run("query errors go through zap", func(t *testing.T) {
		before := logs.Len()
		err := gormDB.Exec("SELECT * FROM no_such_table").Error
		require.Error(t, err)

		entries := logs.All()[before:]
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, "gorm", entries[0].LoggerName)
		assert.Contains(t, entries[0].Message, "no_such_table")
	})
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "dsn")
	assert.ErrorContains(t, err, "unsupported db driver")
}
