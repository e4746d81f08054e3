package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"push-campaign-backend/config"
	"push-campaign-backend/internal/model"
	"push-campaign-backend/internal/store"
)

func TestSweepOnce(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:sweeptest?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	require.NoError(t, db.AutoMigrate(
		&model.Operator{},
		&model.Subscriber{},
		&model.Campaign{},
		&model.Delivery{},
		&model.Click{},
	))

	old := time.Now().UTC().AddDate(0, 0, -60)
	require.NoError(t, db.Create(&model.Delivery{CampaignID: 1, SubscriberID: 1, Status: model.DeliverySuccess, CreatedAt: old}).Error)
	require.NoError(t, db.Create(&model.Delivery{CampaignID: 1, SubscriberID: 2, Status: model.DeliverySuccess}).Error)
	require.NoError(t, db.Create(&model.Click{CampaignID: 1, OperatorID: 1, TargetURL: "https://x", CreatedAt: old}).Error)
	require.NoError(t, db.Create(&model.Subscriber{Endpoint: "https://push.example.com/dead", P256DH: "p", Auth: "a", Active: false, CreatedAt: old, UpdatedAt: old}).Error)
	require.NoError(t, db.Create(&model.Subscriber{Endpoint: "https://push.example.com/live", P256DH: "p", Auth: "a", Active: true, CreatedAt: old, UpdatedAt: old}).Error)

	cfg := &config.RetentionConfig{Enabled: true, MaxAgeDays: 30, Interval: time.Hour}
	sweeper := NewSweeper(cfg, store.NewGormStore(db))
	sweeper.SweepOnce(context.Background())

	var deliveries, clicks, subscribers int64
	db.Model(&model.Delivery{}).Count(&deliveries)
	db.Model(&model.Click{}).Count(&clicks)
	db.Model(&model.Subscriber{}).Count(&subscribers)

	assert.Equal(t, int64(1), deliveries)
	assert.Equal(t, int64(0), clicks)
	// Only the inactive subscriber is removed; active ones are kept
	// regardless of age.
	assert.Equal(t, int64(1), subscribers)
}
