package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{input: "people", want: CategoryPeople},
		{input: " Planets ", want: CategoryPlanets},
		{input: "FILMS", want: CategoryFilms},
		{input: "droids", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategory_FavoriteTag(t *testing.T) {
	assert.Equal(t, "persona", CategoryPeople.FavoriteTag())
	assert.Equal(t, "planeta", CategoryPlanets.FavoriteTag())
	assert.Equal(t, "vehicle", CategoryVehicles.FavoriteTag())
	assert.Equal(t, "starship", CategoryStarships.FavoriteTag())
	assert.Equal(t, "film", CategoryFilms.FavoriteTag())
}

func TestCategory_DetailPath(t *testing.T) {
	assert.Equal(t, "/people_detailed/0", CategoryPeople.DetailPath(0))
	assert.Equal(t, "/planets_detailed/12", CategoryPlanets.DetailPath(12))
}

func TestEntity_Summary(t *testing.T) {
	e := Entity{
		Name:     "Luke Skywalker",
		Category: CategoryPeople,
		Attributes: map[string]string{
			"gender":    "male",
			"eye_color": "blue",
		},
	}

	got := e.Summary()
	require.Len(t, got, 3)
	assert.Equal(t, Attribute{Key: "gender", Label: "Gender", Value: "male"}, got[0])
	assert.Equal(t, Attribute{Key: "eye_color", Label: "Eye color", Value: "blue"}, got[1])
	assert.Equal(t, "n/a", got[2].Value)
}

func TestEntity_Clone(t *testing.T) {
	e := Entity{Name: "Leia", Attributes: map[string]string{"gender": "female"}}

	c := e.Clone()
	c.Attributes["gender"] = "changed"

	assert.Equal(t, "female", e.Attributes["gender"])
}

func TestSnapshot_IsFavorite(t *testing.T) {
	s := Snapshot{Favorites: []Favorite{{ID: "1", Name: "Luke", Category: "persona"}}}

	assert.True(t, s.IsFavorite("Luke"))
	assert.False(t, s.IsFavorite("Leia"))
}

func TestLoadState_IsSettled(t *testing.T) {
	assert.False(t, LoadStateUninitialized.IsSettled())
	assert.False(t, LoadStatePending.IsSettled())
	assert.True(t, LoadStateReady.IsSettled())
	assert.True(t, LoadStateFailed.IsSettled())
}
