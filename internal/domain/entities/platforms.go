package entities

import (
	"sort"
	"strconv"
)

// Platforms maps IGDB platform IDs to display names
var Platforms = map[int]string{
	3:   "Linux",
	4:   "Nintendo 64",
	5:   "Wii",
	6:   "PC (Microsoft Windows)",
	7:   "PlayStation",
	8:   "PlayStation 2",
	9:   "PlayStation 3",
	11:  "Xbox",
	12:  "Xbox 360",
	13:  "PC DOS",
	14:  "Mac",
	130: "Nintendo Switch",
	167: "PlayStation 5",
	169: "Xbox Series",
}

// PlatformName returns the display name for an IGDB platform ID,
// or the ID itself when the platform is unknown
func PlatformName(id int) string {
	if name, ok := Platforms[id]; ok {
		return name
	}
	return strconv.Itoa(id)
}

// PlatformIDs returns the known platform IDs in ascending order
func PlatformIDs() []int {
	ids := make([]int, 0, len(Platforms))
	for id := range Platforms {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
