package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makino-seiya/kansatsunikki/internal/infrastructure/config"
)

func TestUserServiceAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, &config.Config{})

	created, err := svc.CreateUser("admin", "admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", created.PasswordHash) // 平文では保存しない

	user, err := svc.Authenticate("admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	// 不一致・未知ユーザーはどちらも同じエラー
	_, err = svc.Authenticate("admin", "wrong")
	assert.ErrorIs(t, err, ErrAuthFailed)

	_, err = svc.Authenticate("ghost", "admin123")
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestUserServiceCreateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, &config.Config{})

	var validation *ValidationError

	_, err := svc.CreateUser("", "pass")
	require.ErrorAs(t, err, &validation)

	_, err = svc.CreateUser("admin", "")
	require.ErrorAs(t, err, &validation)

	_, err = svc.CreateUser("admin", "pass1")
	require.NoError(t, err)

	// 同名ユーザーは作れない
	_, err = svc.CreateUser("admin", "pass2")
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "username", validation.Field)
}

func TestPlantServiceLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlantService(db, &config.Config{})

	plant, err := svc.CreatePlant("向日葵（ひまわり）", 1)
	require.NoError(t, err)
	assert.True(t, plant.IsActive)

	updated, err := svc.UpdatePlant(plant.ID, map[string]interface{}{"display_order": 5})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.DisplayOrder)

	require.NoError(t, svc.DeactivatePlant(plant.ID))

	// 無効化後も行は残る（論理削除）
	got, err := svc.GetPlantByID(plant.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	var notFound *NotFoundError
	_, err = svc.GetPlantByID(999)
	require.ErrorAs(t, err, &notFound)

	var validation *ValidationError
	_, err = svc.CreatePlant("", 1)
	require.ErrorAs(t, err, &validation)
}
