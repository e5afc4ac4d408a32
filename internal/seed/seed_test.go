package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	rooms, err := Default()
	require.NoError(t, err)
	require.Len(t, rooms, 3)

	first := rooms[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "Sunny Studio in Indiranagar", first.Title)
	assert.Equal(t, int64(15000), first.Price)
	assert.Equal(t, []string{"Wifi", "AC", "Kitchen"}, first.Amenities)
	assert.Equal(t, "+919876543210", first.OwnerNumber)
	assert.Len(t, first.Images, 2)
	assert.NotContains(t, first.Description, "\n")

	assert.Equal(t, []string{"Sea View", "Lift", "Maid"}, rooms[2].Amenities)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"missing id":     "rooms:\n  - title: x\n    price: 1\n",
		"duplicate id":   "rooms:\n  - id: \"1\"\n  - id: \"1\"\n",
		"negative price": "rooms:\n  - id: \"1\"\n    price: -5\n",
		"bad yaml":       "rooms: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rooms:\n  - id: \"42\"\n    title: Attic\n    price: 7000\n"), 0o600))

	rooms, err := Load(path)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Attic", rooms[0].Title)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
