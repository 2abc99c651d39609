package forecast

import (
	"math"
	"strconv"

	"github.com/couchcryptid/flood-hotspot-service/internal/domain"
)

// KeyPrecision is the number of decimal places coordinates are rounded to
// before deriving a cache key. Four places is roughly an 11 m grid.
const KeyPrecision = 4

// Key derives the cache key for a coordinate as "lat,lon" on the
// KeyPrecision grid, so centroids that differ only by floating-point noise
// share an entry.
func Key(c domain.Coordinates) string {
	return formatCoord(c.Lat) + "," + formatCoord(c.Lon)
}

func formatCoord(v float64) string {
	scale := math.Pow10(KeyPrecision)
	r := math.Round(v*scale) / scale
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', KeyPrecision, 64)
}
