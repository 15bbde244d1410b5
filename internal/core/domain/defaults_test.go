package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pontovivo/ponto_vivo_app/internal/core/domain"
)

func TestDefaultAdminUsers_SeedCredentialIsUsable(t *testing.T) {
	admins := domain.DefaultAdminUsers()
	require.Len(t, admins, 1)

	err := bcrypt.CompareHashAndPassword([]byte(admins[0].PasswordHash), []byte("admin123"))
	assert.NoError(t, err, "the seed admin must be able to log in on first run")
}
