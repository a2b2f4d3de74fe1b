package outfits

import (
	"encoding/json"
	"fmt"
)

// Band is an inclusive range of acceptable outfit warmth. It encodes as a
// two element JSON array.
type Band struct {
	Min int
	Max int
}

func (b Band) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{b.Min, b.Max})
}

func (b *Band) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("warmth band: %w", err)
	}
	b.Min, b.Max = pair[0], pair[1]
	return nil
}

func (b Band) Contains(warmth int) bool {
	return b.Min <= warmth && warmth <= b.Max
}

// Widen lowers the bottom of the band. Used for the pre-layering range,
// where an outfit too light on its own can still reach the band with a jacket.
func (b Band) Widen(lower int) Band {
	return Band{Min: b.Min - lower, Max: b.Max}
}

func (b Band) String() string {
	return fmt.Sprintf("[%d, %d]", b.Min, b.Max)
}

var warmthTable = []struct {
	atLeast float64
	band    Band
}{
	{28, Band{1, 2}},
	{22, Band{2, 3}},
	{16, Band{3, 4}},
	{10, Band{4, 5}},
	{4, Band{6, 8}},
	{-5, Band{8, 9}},
}

var coldestBand = Band{9, 10}

// WarmthBandFor maps a temperature in Celsius to the warmth band an outfit
// should land in. First matching threshold wins; NaN falls through to the
// coldest band.
func WarmthBandFor(tempC float64) Band {
	for _, row := range warmthTable {
		if tempC >= row.atLeast {
			return row.band
		}
	}
	return coldestBand
}
