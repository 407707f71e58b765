package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/models"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := database.Open(config.DatabaseConfig{Driver: "oracle", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpenInMemoryIsMigratedAndPrivate(t *testing.T) {
	a, err := database.OpenInMemory()
	require.NoError(t, err)
	b, err := database.OpenInMemory()
	require.NoError(t, err)

	for _, table := range []any{&models.User{}, &models.Product{}, &models.Cart{}, &models.Order{}, &models.Coupon{}, &models.Seller{}, &models.OneTimeCode{}} {
		assert.True(t, a.Migrator().HasTable(table))
	}

	require.NoError(t, a.Create(&models.Coupon{Code: "ONLYA", DiscountPercentage: 5}).Error)
	var count int64
	require.NoError(t, b.Model(&models.Coupon{}).Count(&count).Error)
	assert.Zero(t, count)
}
