package env

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Environment string

const (
	Local Environment = "local"
)

// Load reads a .env file into the process environment if one exists. Missing
// files are not an error; deployed environments configure variables directly.
func Load(filenames ...string) {
	_ = godotenv.Load(filenames...)
}

func IsLocal() bool {
	return Get() == Local
}

func Get() Environment {
	return Environment(os.Getenv("ENVIRONMENT"))
}

func GetOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func GetBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
