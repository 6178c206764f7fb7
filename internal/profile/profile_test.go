package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iAmNsengi/zyyp/internal/api"
)

type fakeUpdater struct {
	got api.ProfileUpdate
	err error
}

func (f *fakeUpdater) UpdateProfile(_ context.Context, u api.ProfileUpdate) (*api.Profile, error) {
	f.got = u
	if f.err != nil {
		return nil, f.err
	}
	p := api.Profile{Username: "server-name", Interests: []string{"go"}}
	if u.Username != nil {
		p.Username = *u.Username
	}
	return &p, nil
}

func strptr(s string) *string { return &s }

func confirmed() api.Profile {
	return api.Profile{Username: "grace", Bio: strptr("compilers"), Interests: []string{"go"}}
}

func TestDraftIsSeparateFromConfirmed(t *testing.T) {
	e := NewEditor(confirmed())
	require.ErrorIs(t, e.SetUsername("x"), ErrNotEditing)

	e.Edit()
	require.NoError(t, e.SetUsername("hopper"))
	require.NoError(t, e.ToggleInterest("rust"))

	d, ok := e.Draft()
	require.True(t, ok)
	assert.Equal(t, "hopper", d.Username)
	assert.Equal(t, []string{"go", "rust"}, d.Interests)
	assert.Equal(t, "grace", e.Confirmed().Username)
	assert.Equal(t, []string{"go"}, e.Confirmed().Interests)
}

func TestCancelDiscardsDraft(t *testing.T) {
	e := NewEditor(confirmed())
	e.Edit()
	require.NoError(t, e.SetBio("other"))
	e.Cancel()

	assert.False(t, e.Editing())
	assert.Equal(t, "compilers", *e.Confirmed().Bio)
}

func TestSaveSendsOnlyChanges(t *testing.T) {
	e := NewEditor(confirmed())
	e.Edit()
	require.NoError(t, e.SetUsername("  hopper "))
	require.NoError(t, e.SetBio(""))

	up := &fakeUpdater{}
	require.NoError(t, e.Save(context.Background(), up))

	require.NotNil(t, up.got.Username)
	assert.Equal(t, "hopper", *up.got.Username)
	assert.True(t, up.got.ClearBio)
	assert.Nil(t, up.got.Interests)

	assert.False(t, e.Editing())
	assert.Equal(t, "hopper", e.Confirmed().Username)
}

func TestSaveFailureKeepsDraft(t *testing.T) {
	e := NewEditor(confirmed())
	e.Edit()
	require.NoError(t, e.ToggleInterest("go"))

	up := &fakeUpdater{err: errors.New("409 username taken")}
	require.Error(t, e.Save(context.Background(), up))

	assert.True(t, e.Editing())
	d, _ := e.Draft()
	assert.Empty(t, d.Interests)
	assert.Equal(t, []string{}, up.got.Interests)
	assert.Equal(t, []string{"go"}, e.Confirmed().Interests)
}

type fakeLoader struct {
	statsErr error
}

func (f fakeLoader) Profile(context.Context) (*api.Profile, error) {
	p := confirmed()
	return &p, nil
}

func (f fakeLoader) ReadingStats(context.Context) (*api.ReadingStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &api.ReadingStats{TotalArticlesRead: 12, CurrentStreakDays: 3}, nil
}

func TestLoad(t *testing.T) {
	ov, err := Load(context.Background(), fakeLoader{})
	require.NoError(t, err)
	assert.Equal(t, "grace", ov.Profile.Username)
	assert.Equal(t, 12, ov.Stats.TotalArticlesRead)

	_, err = Load(context.Background(), fakeLoader{statsErr: errors.New("down")})
	assert.ErrorContains(t, err, "reading stats")
}
