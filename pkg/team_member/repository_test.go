package team_member

import (
	"context"
	"testing"

	"github.com/kalendra/kalendra/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateAndGetRoundtrip(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	tenantId := test_utils.SeedTenant(t, db, 1, "acme")
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, tenantId, TeamMember{Name: "Alice", Birthday: strPtr("1990-05-15")})
	require.NoError(t, err)
	require.NotEmpty(t, created.Id)

	found, err := repo.GetById(ctx, tenantId, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Name)
	require.NotNil(t, found.Birthday)
	assert.Equal(t, "1990-05-15", *found.Birthday)
}

func TestNullBirthdayRoundtrip(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	tenantId := test_utils.SeedTenant(t, db, 1, "acme")
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, tenantId, TeamMember{Name: "Bob"})
	require.NoError(t, err)

	found, err := repo.GetById(ctx, tenantId, created.Id)
	require.NoError(t, err)
	assert.Nil(t, found.Birthday)
}

func TestUpdateClearsBirthday(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	tenantId := test_utils.SeedTenant(t, db, 1, "acme")
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, tenantId, TeamMember{Name: "Alice", Birthday: strPtr("1990-05-15")})
	require.NoError(t, err)

	created.Birthday = nil
	require.NoError(t, repo.Update(ctx, tenantId, created))

	found, err := repo.GetById(ctx, tenantId, created.Id)
	require.NoError(t, err)
	assert.Nil(t, found.Birthday)
}

func TestGetByIdUnknownMember(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	tenantId := test_utils.SeedTenant(t, db, 1, "acme")
	repo := NewRepository(db)

	_, err := repo.GetById(context.Background(), tenantId, "nope")
	assert.ErrorIs(t, err, ErrTeamMemberNotFound)
}

func TestDeleteMember(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	tenantId := test_utils.SeedTenant(t, db, 1, "acme")
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, tenantId, TeamMember{Name: "Alice"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, tenantId, created.Id))

	_, err = repo.GetById(ctx, tenantId, created.Id)
	assert.ErrorIs(t, err, ErrTeamMemberNotFound)
}

func TestParseBirthday(t *testing.T) {
	valid := TeamMember{Birthday: strPtr("1992-02-29")}
	parsed, err := valid.ParseBirthday()
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, 1992, parsed.Year())

	unset := TeamMember{}
	parsed, err = unset.ParseBirthday()
	require.NoError(t, err)
	assert.Nil(t, parsed)

	malformed := TeamMember{Birthday: strPtr("May 15th")}
	_, err = malformed.ParseBirthday()
	assert.Error(t, err)
}
