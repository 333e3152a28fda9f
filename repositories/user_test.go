package repositories

import (
	"testing"

	"taskroom/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repo := NewUserRepository(db)

	// When a user registers
	id, err := repo.CreateUser("alice@example.com", "alice", "$argon2id$fake")
	req.NoError(err)
	req.NotEmpty(id)

	// Then it can be found by email
	user, err := repo.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(id, user.ID)
	req.Equal("alice", user.DisplayName)
	req.Equal([]string{"user"}, user.Roles)

	// And its id is known to exist
	ok, err := repo.Exists(id)
	req.NoError(err)
	req.True(ok)
}

func TestUserRepository_DuplicateEmailRejected(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.CreateUser("bob@example.com", "bob", "hash")
	req.NoError(err)

	_, err = repo.CreateUser("bob@example.com", "bob2", "hash2")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestUserRepository_UnknownSubject(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repo := NewUserRepository(db)

	ok, err := repo.Exists(uuid.NewString())
	req.NoError(err)
	req.False(ok)

	_, err = repo.GetUserByEmail("nobody@example.com")
	req.Error(err)
}
