package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads a .env file into the environment if one exists. Missing files
// are fine: container deployments inject the environment directly.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}
}

// GetString returns the value of key, or fallback when unset.
func GetString(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return val
}

// GetInt returns the value of key as an int, or fallback when unset or
// unparseable.
func GetInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

// GetBool returns the value of key as a bool, or fallback when unset or
// unparseable.
func GetBool(key string, fallback bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}
