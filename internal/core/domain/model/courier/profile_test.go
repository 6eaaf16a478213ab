package courier_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfileData() courier.ProfileData {
	return courier.ProfileData{
		CourierID:           kernel.NewUUID(),
		Role:                courier.RoleCourier,
		IsActive:            true,
		Verification:        courier.VerificationApproved,
		Rating:              4.7,
		CompletionRate:      0.96,
		CompletedDeliveries: 210,
		ActiveDeliveries:    1,
		OnTimeRate:          0.93,
		AvgResponseSeconds:  25,
		LastActiveAt:        time.Now(),
	}
}

func TestNewProfile(t *testing.T) {
	t.Run("should create valid profile", func(t *testing.T) {
		data := validProfileData()

		p, err := courier.NewProfile(data)

		require.NoError(t, err)
		require.NoError(t, p.Validate())
		assert.True(t, p.CourierID().IsEqual(data.CourierID))
		assert.Equal(t, courier.RoleCourier, p.Role())
		assert.True(t, p.IsActive())
		assert.Equal(t, courier.VerificationApproved, p.Verification())
		assert.InDelta(t, 4.7, p.Rating(), 1e-9)
		assert.Equal(t, 210, p.CompletedDeliveries())
	})

	t.Run("should fail with invalid courier ID", func(t *testing.T) {
		data := validProfileData()
		data.CourierID = kernel.UUID{}

		_, err := courier.NewProfile(data)

		require.Error(t, err)
	})

	t.Run("should fail with rating above five", func(t *testing.T) {
		data := validProfileData()
		data.Rating = 5.1

		_, err := courier.NewProfile(data)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "rating")
	})

	t.Run("should fail with completion rate above one", func(t *testing.T) {
		data := validProfileData()
		data.CompletionRate = 1.5

		_, err := courier.NewProfile(data)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "completionRate")
	})

	t.Run("should fail with negative delivery counters", func(t *testing.T) {
		data := validProfileData()
		data.ActiveDeliveries = -1

		_, err := courier.NewProfile(data)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "activeDeliveries")
	})
}

func TestProfile_Validate(t *testing.T) {
	t.Run("zero value should fail validation", func(t *testing.T) {
		var p courier.Profile

		require.Error(t, p.Validate())
	})

	t.Run("nil should fail validation", func(t *testing.T) {
		var p *courier.Profile

		require.Error(t, p.Validate())
	})
}
