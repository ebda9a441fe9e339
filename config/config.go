package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from
// environment variables or a .env file.
//
// It is composed of smaller structs, one per upstream source plus the
// shared HTTP settings. The source catalogs (currency symbols, station
// map) live here so adapters receive them as injected configuration
// instead of reaching for hard-coded globals.
type Config struct {
	HTTP     HTTPConfig
	Currency CurrencyConfig
	Weather  WeatherConfig
	Balance  BalanceConfig
}

// HTTPConfig holds settings shared by every upstream request.
type HTTPConfig struct {
	Timeout time.Duration
}

// CurrencyConfig defines the quote service endpoint and the symbol set
// fetched on every currency run.
type CurrencyConfig struct {
	BaseURL string
	Symbols []string
}

// WeatherConfig defines the observation service endpoint and the
// curated station catalog (raw station id → airport code).
type WeatherConfig struct {
	BaseURL  string
	Stations map[string]string
}

// BalanceConfig defines the report archive endpoint and the bound on
// concurrent workbook downloads.
type BalanceConfig struct {
	ArchiveURL string
	Parallel   int
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and read throughout the
// application instead of reloading environment variables directly.
var AppConfig Config

// LoadConfig initializes the global AppConfig.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Behavior:
//   - Sets defaults for all fields, including the default symbol list
//     and station catalog.
//   - Reads environment variables automatically with viper.AutomaticEnv().
//   - Calls validateConfig() to ensure required fields are present.
func LoadConfig() {
	// Default values
	viper.SetDefault("HTTP_TIMEOUT_SECONDS", 30)

	viper.SetDefault("QUOTE_API_URL", "https://query1.finance.yahoo.com")
	viper.SetDefault("CURRENCY_SYMBOLS", "TRY,MAD,INR,IDR,RUB,SAR,VES")

	viper.SetDefault("GSOD_API_URL", "https://www.ncei.noaa.gov/access/services/data/v1")
	viper.SetDefault("STATION_AIRPORTS",
		"07149099999=LFPO,17128099999=LTAC,60135099999=GMME,43003099999=VABB,98429099999=RPLL")

	viper.SetDefault("BOP_ARCHIVE_URL", "http://www.cbr.ru/vfs/statistics/credit_statistics/bop/")
	viper.SetDefault("BOP_FETCH_PARALLEL", 4)

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()

	AppConfig = Config{
		HTTP: HTTPConfig{
			Timeout: time.Duration(viper.GetInt("HTTP_TIMEOUT_SECONDS")) * time.Second,
		},
		Currency: CurrencyConfig{
			BaseURL: viper.GetString("QUOTE_API_URL"),
			Symbols: parseList(viper.GetString("CURRENCY_SYMBOLS")),
		},
		Weather: WeatherConfig{
			BaseURL:  viper.GetString("GSOD_API_URL"),
			Stations: parsePairs(viper.GetString("STATION_AIRPORTS")),
		},
		Balance: BalanceConfig{
			ArchiveURL: viper.GetString("BOP_ARCHIVE_URL"),
			Parallel:   viper.GetInt("BOP_FETCH_PARALLEL"),
		},
	}

	validateConfig()
}

// parseList splits a comma-separated value, dropping empty entries.
func parseList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parsePairs decodes "key=value,key=value" into a map, dropping
// malformed entries.
func parsePairs(s string) map[string]string {
	out := make(map[string]string)
	for _, item := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok || k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
//
// This avoids unexpected runtime failures due to incomplete
// configuration.
func validateConfig() {
	var missing []string

	if AppConfig.HTTP.Timeout <= 0 {
		missing = append(missing, "HTTP_TIMEOUT_SECONDS")
	}
	if AppConfig.Currency.BaseURL == "" {
		missing = append(missing, "QUOTE_API_URL")
	}
	if len(AppConfig.Currency.Symbols) == 0 {
		missing = append(missing, "CURRENCY_SYMBOLS")
	}
	if AppConfig.Weather.BaseURL == "" {
		missing = append(missing, "GSOD_API_URL")
	}
	if len(AppConfig.Weather.Stations) == 0 {
		missing = append(missing, "STATION_AIRPORTS")
	}
	if AppConfig.Balance.ArchiveURL == "" {
		missing = append(missing, "BOP_ARCHIVE_URL")
	}
	if AppConfig.Balance.Parallel <= 0 {
		missing = append(missing, "BOP_FETCH_PARALLEL")
	}

	if len(missing) > 0 {
		log.Fatalf("missing required environment variables: %v\n", missing)
	}
}
