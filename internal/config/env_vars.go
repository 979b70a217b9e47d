package config

import (
	"os"
)

const (
	baseURLVar = "LM_API_BASE_URL"
	appNameVar = "LM_APP_NAME"
	folderVar  = "LM_DATA_FOLDER"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// GetBaseURL returns the base URL of the Lighting-Map REST API
// (e.g., "https://api.lighting-map.example.com")
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:3000")
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Lighting Map")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderVar, "./data")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
