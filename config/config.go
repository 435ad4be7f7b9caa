package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV equivalent:
//
//	STORE_PATH=./voicetrade.db
//	STORAGE_KEY=voiceTrades
//	CONFIRM_DELAY=2s
//	ID_SEED=1000
//	RELOAD_POLICY=confirm
type Config struct {
	Store   StoreConfig   // Local persistence settings
	Capture CaptureConfig // Trade lifecycle settings
}

// StoreConfig defines where the trade set is persisted.
//
// Fields:
//   - Path: SQLite database file holding the key/value table.
//   - Key: name of the record the trade set is stored under.
type StoreConfig struct {
	Path string
	Key  string
}

// CaptureConfig tunes identifier assignment and confirmation.
//
// Fields:
//   - ConfirmDelay: how long a trade stays pending before it is confirmed.
//   - IDSeed: first counter value used for "VT<n>" ids.
//   - ReloadPolicy: "confirm" or "resume"; what to do with trades still pending on startup.
type CaptureConfig struct {
	ConfirmDelay time.Duration
	IDSeed       int64
	ReloadPolicy string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or invalid, validateConfig() terminates
//     the app with a descriptive log message.
func LoadConfig() {
	viper.SetDefault("STORE_PATH", "./voicetrade.db")
	viper.SetDefault("STORAGE_KEY", "voiceTrades")
	viper.SetDefault("CONFIRM_DELAY", "2s")
	viper.SetDefault("ID_SEED", 1000)
	viper.SetDefault("RELOAD_POLICY", "confirm")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Store: StoreConfig{
			Path: viper.GetString("STORE_PATH"),
			Key:  viper.GetString("STORAGE_KEY"),
		},
		Capture: CaptureConfig{
			ConfirmDelay: viper.GetDuration("CONFIRM_DELAY"),
			IDSeed:       viper.GetInt64("ID_SEED"),
			ReloadPolicy: viper.GetString("RELOAD_POLICY"),
		},
	}

	validateConfig()
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
func validateConfig() {
	var missing []string

	if AppConfig.Store.Path == "" {
		missing = append(missing, "STORE_PATH")
	}
	if AppConfig.Store.Key == "" {
		missing = append(missing, "STORAGE_KEY")
	}
	if AppConfig.Capture.ConfirmDelay <= 0 {
		missing = append(missing, "CONFIRM_DELAY")
	}
	if AppConfig.Capture.IDSeed <= 0 {
		missing = append(missing, "ID_SEED")
	}
	switch AppConfig.Capture.ReloadPolicy {
	case "confirm", "resume":
	default:
		missing = append(missing, "RELOAD_POLICY")
	}

	if len(missing) > 0 {
		log.Fatalf("missing or invalid environment variables: %v\n", missing)
	}
}
