package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the weather CLI.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - RoundCoords: Whether coordinates are rounded to one decimal place.
// - Location: How the current position is obtained.
// - Weather: How the weather API is reached and its response interpreted.
// - History: Where observations are recorded.
// - MetricsFile: Path of the Prometheus textfile; empty disables export.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env         string         `yaml:"env"`          // Env is the current environment: local, development, production.
	RoundCoords bool           `yaml:"round_coords"` // RoundCoords reduces coordinate precision to one decimal place.
	Location    LocationConfig `yaml:"location"`     // Location holds the location source configuration.
	Weather     WeatherConfig  `yaml:"weather"`      // Weather holds the weather API configuration.
	History     HistoryConfig  `yaml:"history"`      // History holds the history storage configuration.
	MetricsFile string         `yaml:"metrics_file"` // MetricsFile is the Prometheus textfile path.
	Database    PostgresConfig `yaml:"postgres"`     // Database holds the postgres database configuration.
}

// LocationConfig describes the location source.
type LocationConfig struct {
	Source    string   `yaml:"source"`       // Source is one of command, static, google, nominatim.
	Command   []string `yaml:"command"`      // Command is the positioning tool command line.
	Longitude float64  `yaml:"longitude"`    // Longitude for the static source.
	Latitude  float64  `yaml:"latitude"`     // Latitude for the static source.
	Address   string   `yaml:"address"`      // Address for geocoding sources.
	APIKey    string   `yaml:"geocoder_key"` // APIKey for the Google geocoder.
}

// WeatherConfig describes the weather API.
type WeatherConfig struct {
	URL      string         `yaml:"url"`      // URL template with {lat}, {lon} and {key} placeholders.
	APIKey   string         `yaml:"api_key"`  // APIKey is the OpenWeather API key.
	Timeout  time.Duration  `yaml:"timeout"`  // Timeout bounds every outbound HTTP request.
	City     string         `yaml:"city"`     // City is used when the response does not name one.
	Timezone *time.Location `yaml:"timezone"` // Timezone sunrise and sunset are displayed in.
}

// HistoryConfig describes the history storage.
type HistoryConfig struct {
	Type string `yaml:"type"` // Type is one of json, plain, postgres.
	Path string `yaml:"path"` // Path is the history file for json and plain storages.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`                        // Host is the database server address.
	Port     string `yaml:"port"     env-default:"5432"` // Port is the database server port.
	User     string `yaml:"user"`                        // User is the database user.
	Password string `yaml:"password"`                    // Password is the database user's password.
	Name     string `yaml:"db_name"`                     // Name is the name of the database.
}

// MustLoad reads the configuration from the environment and an optional .env file.
// It panics on values that cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	roundCoords, err := strconv.ParseBool(v.GetString("METEO_ROUND_COORDS"))
	if err != nil {
		panic("failed to parse coordinates rounding flag from configuration, must be a boolean")
	}

	timeout, err := time.ParseDuration(v.GetString("METEO_HTTP_TIMEOUT"))
	if err != nil {
		panic("failed to parse HTTP timeout from configuration")
	}

	timezone, err := time.LoadLocation(v.GetString("METEO_TIMEZONE"))
	if err != nil {
		panic("failed to load timezone from configuration")
	}

	source := v.GetString("METEO_LOCATION_SOURCE")
	longitude, latitude := mustParseStatic(v, source == staticSource)

	return &Config{
		Env:         v.GetString("METEO_ENV"),
		RoundCoords: roundCoords,
		Location: LocationConfig{
			Source:    source,
			Command:   strings.Fields(v.GetString("METEO_LOCATION_COMMAND")),
			Longitude: longitude,
			Latitude:  latitude,
			Address:   v.GetString("METEO_ADDRESS"),
			APIKey:    v.GetString("METEO_GEOCODER_KEY"),
		},
		Weather: WeatherConfig{
			URL:      v.GetString("METEO_WEATHER_URL"),
			APIKey:   v.GetString("METEO_WEATHER_KEY"),
			Timeout:  timeout,
			City:     v.GetString("METEO_CITY"),
			Timezone: timezone,
		},
		History: HistoryConfig{
			Type: v.GetString("METEO_HISTORY_TYPE"),
			Path: v.GetString("METEO_HISTORY_PATH"),
		},
		MetricsFile: v.GetString("METEO_METRICS_FILE"),
		Database: PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USERNAME"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("METEO_ENV", "production")
	v.SetDefault("METEO_ROUND_COORDS", "true")
	v.SetDefault("METEO_LOCATION_SOURCE", "command")
	v.SetDefault("METEO_LOCATION_COMMAND", "powershell.exe ./get_loc.ps1")
	v.SetDefault("METEO_HTTP_TIMEOUT", "10s")
	v.SetDefault("METEO_CITY", "Moscow")
	v.SetDefault("METEO_TIMEZONE", "Local")
	v.SetDefault("METEO_HISTORY_TYPE", "json")
	v.SetDefault("METEO_HISTORY_PATH", "history.json")
	v.SetDefault("DB_PORT", "5432")
}

// staticSource is the location source that reads its position from configuration.
const staticSource = "static"

// mustParseStatic reads the fixed position. Both values are required when required is set;
// otherwise unset values stay zero.
func mustParseStatic(v *viper.Viper, required bool) (float64, float64) {
	parse := func(key string) float64 {
		raw := v.GetString(key)
		if raw == "" {
			if required {
				panic("failed to parse static coordinates from configuration")
			}
			return 0
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			panic("failed to parse static coordinates from configuration")
		}
		return value
	}

	return parse("METEO_LONGITUDE"), parse("METEO_LATITUDE")
}
