package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserDocument_ExcludesLocalSecrets(t *testing.T) {
	u := &User{
		Id:               "u1",
		Email:            "a@b.c",
		Name:             "A",
		Role:             UserRoleAdmin,
		CreatedAt:        time.UnixMilli(1000),
		IsBlocked:        true,
		PinHash:          []byte("hash"),
		BiometricEnabled: true,
	}

	doc := u.Document()

	require.Equal(t, "u1", doc["id"])
	require.Equal(t, "ADMIN", doc["role"])
	require.Equal(t, true, doc["isBlocked"])
	require.Equal(t, int64(1000), doc["createdAt"])

	for k := range doc {
		assert.NotContains(t, []string{"pinHash", "biometricEnabled"}, k)
	}
}

func TestTransactionDocument_OmitsSyncedFlag(t *testing.T) {
	tr := &Transaction{Id: "t1", UserId: "u1", Synced: true}
	doc := tr.Document()
	_, ok := doc["synced"]
	require.False(t, ok)
}
