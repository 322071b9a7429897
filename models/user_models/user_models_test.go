package user_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestFullName(t *testing.T) {
	last := "Lovelace"
	u := User{FirstName: "Ada", LastName: &last}
	assert.Equal(t, "Ada Lovelace", u.FullName())

	u.LastName = nil
	assert.Equal(t, "Ada", u.FullName())

	empty := ""
	u.LastName = &empty
	assert.Equal(t, "Ada", u.FullName())
}

func TestCheckPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := string(hash)

	u := User{PasswordHash: &stored}
	assert.True(t, u.CheckPassword("correct horse"))
	assert.False(t, u.CheckPassword("battery staple"))

	u.PasswordHash = nil
	assert.False(t, u.CheckPassword("correct horse"))
}
