package models

import "time"

// WeatherKind is a normalized weather condition category.
type WeatherKind int

const (
	Thunderstorm WeatherKind = iota + 1
	Drizzle
	Rain
	Snow
	Clear
	Fog
	Clouds
)

var weatherKindLabels = map[WeatherKind]string{
	Thunderstorm: "Гроза",
	Drizzle:      "Изморозь",
	Rain:         "Дождь",
	Snow:         "Снег",
	Clear:        "Ясно",
	Fog:          "Туман",
	Clouds:       "Облачно",
}

// String returns the display label of the condition.
func (k WeatherKind) String() string {
	if label, ok := weatherKindLabels[k]; ok {
		return label
	}
	return "unknown"
}

// Weather is a single parsed observation for a location.
type Weather struct {
	Temperature int         // Temperature in whole degrees Celsius.
	Kind        WeatherKind // Kind is the classified weather condition.
	Sunrise     time.Time   // Sunrise time in the display time zone.
	Sunset      time.Time   // Sunset time in the display time zone.
	City        string      // City the observation belongs to.
}

// HistoryRecord is a stored observation: the moment it was saved and its formatted text.
type HistoryRecord struct {
	Date    string `json:"date"`
	Weather string `json:"weather"`
}
