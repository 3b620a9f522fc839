// Package formatter renders weather observations as human-readable text.
package formatter

import (
	"fmt"

	"github.com/UnknownOlympus/meteo/internal/models"
)

// timeLayout is a zero-padded 24-hour clock.
const timeLayout = "15:04"

// Format renders the observation as city, temperature and condition followed by
// sunrise and sunset times, each on its own line.
func Format(w models.Weather) string {
	return fmt.Sprintf("%s, температура %dC, %s\nВосход: %s\nЗакат: %s\n",
		w.City, w.Temperature, w.Kind,
		w.Sunrise.Format(timeLayout),
		w.Sunset.Format(timeLayout),
	)
}
