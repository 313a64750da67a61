package electrical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

func TestSynthesizeLoads(t *testing.T) {
	t.Parallel()

	rooms := []model.RoomEstimationInput{
		{
			Name:     "Badeværelse",
			RoomType: "bathroom",
			Points:   map[string]int{"outlet": 3, "ceiling_light": 2, "switch": 2},
		},
		{
			Name:     "Køkken",
			RoomType: "kitchen",
			Points:   map[string]int{"stove_connection": 1, "outlet": 6},
		},
	}

	loads, hasRCD := SynthesizeLoads(rooms)
	require.Len(t, loads, 4) // switch carries no load
	assert.False(t, hasRCD)

	// Room order first, then sorted point-kind order within the room.
	assert.Equal(t, model.LoadLighting, loads[0].Category)
	assert.Equal(t, "Badeværelse", loads[0].Room)
	assert.True(t, loads[0].WetRoom)
	assert.Equal(t, model.LoadSocketOutlet, loads[1].Category)
	assert.Equal(t, 3, loads[1].Quantity)
	assert.Equal(t, "Køkken", loads[2].Room)
	assert.False(t, loads[2].WetRoom)
	assert.Equal(t, model.LoadCooking, loads[3].Category)
	assert.Equal(t, 7360, loads[3].RatedPowerWatts)
}

func TestSynthesizeLoadsDetectsRCD(t *testing.T) {
	t.Parallel()

	loads, hasRCD := SynthesizeLoads([]model.RoomEstimationInput{
		{Name: "Teknik", RoomType: "utility", Points: map[string]int{"rcd_breaker": 1, "outlet": 2}},
	})
	assert.True(t, hasRCD)
	require.Len(t, loads, 1) // the RCD itself is not a load
	assert.Equal(t, model.LoadSocketOutlet, loads[0].Category)
}

func TestSynthesizeLoadsSkipsUnknownAndZero(t *testing.T) {
	t.Parallel()

	loads, _ := SynthesizeLoads([]model.RoomEstimationInput{
		{Name: "Stue", RoomType: "living_room", Points: map[string]int{
			"outlet":        0,
			"cat6_outlet":   4,
			"ceiling_light": 1,
		}},
	})
	require.Len(t, loads, 1)
	assert.Equal(t, model.LoadLighting, loads[0].Category)
}

func TestIsWetRoom(t *testing.T) {
	t.Parallel()

	assert.True(t, IsWetRoom("bathroom"))
	assert.True(t, IsWetRoom("Bathroom"))
	assert.True(t, IsWetRoom("OUTDOOR"))
	assert.True(t, IsWetRoom("utility"))
	assert.False(t, IsWetRoom("kitchen"))
	assert.False(t, IsWetRoom(""))
}
