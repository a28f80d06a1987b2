package house

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAlliance(t *testing.T) {
	r := testRoster("a", "b", "c")

	a, err := r.CreateAlliance("The Outsiders", []string{"a", "b"})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, []string{"a", "b"}, a.Members)

	// Membership is mirrored into each player's alliance view.
	pa, _ := r.Get("a")
	assert.True(t, pa.HasAlliance("The Outsiders"))
	pc, _ := r.Get("c")
	assert.False(t, pc.HasAlliance("The Outsiders"))
}

func TestCreateAlliance_Validation(t *testing.T) {
	r := testRoster("a", "b")

	_, err := r.CreateAlliance("", []string{"a", "b"})
	assert.True(t, IsValidation(err))

	_, err = r.CreateAlliance("Solo", []string{"a"})
	assert.True(t, IsValidation(err))

	_, err = r.CreateAlliance("Ghosts", []string{"a", "nobody"})
	assert.True(t, IsValidation(err))
	assert.Empty(t, r.Alliances)
}

func TestAddMember_Idempotent(t *testing.T) {
	r := testRoster("a", "b", "c")
	a, err := r.CreateAlliance("Trio", []string{"a", "b"})
	require.NoError(t, err)

	require.NoError(t, r.AddMember(a.ID, "c"))
	require.NoError(t, r.AddMember(a.ID, "c"))

	assert.Equal(t, []string{"a", "b", "c"}, a.Members)
	pc, _ := r.Get("c")
	assert.Equal(t, []string{"Trio"}, pc.Alliances)
}

func TestRemoveMember(t *testing.T) {
	r := testRoster("a", "b")
	a, err := r.CreateAlliance("Duo", []string{"a", "b"})
	require.NoError(t, err)

	require.NoError(t, r.RemoveMember(a.ID, "b"))
	require.NoError(t, r.RemoveMember(a.ID, "b"))

	assert.Equal(t, []string{"a"}, a.Members)
	pb, _ := r.Get("b")
	assert.Empty(t, pb.Alliances)

	// The record survives with no members.
	require.NoError(t, r.RemoveMember(a.ID, "a"))
	got, err := r.Alliance(a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Members)
}
