package facet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCoordOpts = CoordinateOptions{
	Gazetteer: Gazetteer{
		{Name: "БКЗ", Lat: 58.0105, Lng: 56.2502},
		{Name: "Органный зал", Lat: 58.0115, Lng: 56.2520},
		{Name: "Клуб", Lat: 58.0110, Lng: 56.2510},
		{Name: "Клуб Маяк", Lat: 58.1, Lng: 56.1},
	},
	CenterLat: 58.0105,
	CenterLng: 56.2502,
}

func TestParseCoordinates(t *testing.T) {
	lat, lng, ok := ParseCoordinates(" 58.0123456789 ,56.25 ")
	require.True(t, ok)
	assert.Equal(t, 58.012346, lat)
	assert.Equal(t, 56.25, lng)

	for _, bad := range []string{"", "58.0", "a,b", "1,2,3", "91,10", "10,181", "NaN,1"} {
		_, _, ok := ParseCoordinates(bad)
		assert.False(t, ok, "input %q", bad)
	}
}

func TestGazetteer_Lookup(t *testing.T) {
	v, ok := testCoordOpts.Gazetteer.Lookup("клуб маяк")
	require.True(t, ok)
	assert.Equal(t, "Клуб Маяк", v.Name, "exact match beats earlier substring entry")

	v, ok = testCoordOpts.Gazetteer.Lookup("Органный зал Пермской филармонии")
	require.True(t, ok)
	assert.Equal(t, "Органный зал", v.Name)

	v, ok = testCoordOpts.Gazetteer.Lookup("Большой зал БКЗ")
	require.True(t, ok)
	assert.Equal(t, "БКЗ", v.Name)

	_, ok = testCoordOpts.Gazetteer.Lookup("Стадион")
	assert.False(t, ok)
	_, ok = testCoordOpts.Gazetteer.Lookup("")
	assert.False(t, ok)
}

func TestNameHash(t *testing.T) {
	assert.Equal(t, uint32(0), NameHash(""))
	assert.Equal(t, uint32(97), NameHash("a"))
	assert.Equal(t, uint32(97*31+98), NameHash("ab"))
}

func TestSynthesizeCoordinates_Deterministic(t *testing.T) {
	lat1, lng1 := SynthesizeCoordinates("Бар Дружба", 58.0105, 56.2502)
	lat2, lng2 := SynthesizeCoordinates("Бар Дружба", 58.0105, 56.2502)
	assert.Equal(t, lat1, lat2)
	assert.Equal(t, lng1, lng2)

	assert.InDelta(t, 58.0105, lat1, synthLatSpread/2+1e-6)
	assert.InDelta(t, 56.2502, lng1, synthLngSpread/2+1e-6)

	lat3, lng3 := SynthesizeCoordinates("Бар Весна", 58.0105, 56.2502)
	assert.False(t, lat1 == lat3 && lng1 == lng3)
}

func TestResolveCoordinates_Chain(t *testing.T) {
	c := ResolveCoordinates("БКЗ", "57.5, 56.1", testCoordOpts)
	require.NotNil(t, c)
	assert.Equal(t, SourceFeed, c.Source)
	assert.Equal(t, 57.5, c.Lat)

	c = ResolveCoordinates("БКЗ", "garbage", testCoordOpts)
	require.NotNil(t, c)
	assert.Equal(t, SourceGazetteer, c.Source)
	assert.Equal(t, 58.0105, c.Lat)

	c = ResolveCoordinates("Бар Дружба", "", testCoordOpts)
	require.NotNil(t, c)
	assert.Equal(t, SourceSynthesized, c.Source)

	again := ResolveCoordinates("Бар Дружба", "", testCoordOpts)
	assert.Equal(t, c, again)

	assert.Nil(t, ResolveCoordinates("", "", testCoordOpts))
}
