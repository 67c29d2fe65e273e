package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// New loads the configuration from the environment. A .env file next to the
// binary is loaded first so a packaged device build can be configured by
// file, variables already present in the environment win.
func New() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %v", err)
	}

	port, err := requireEnvAsInt("SERVER_PORT")
	if err != nil {
		return Config{}, err
	}

	databasePath, err := requireEnv("DATABASE_PATH")
	if err != nil {
		return Config{}, err
	}

	baseURL, err := requireEnv("MARKETO_BASE_URL")
	if err != nil {
		return Config{}, err
	}

	timeoutSeconds, err := requireEnvAsInt("MARKETO_HTTP_TIMEOUT_SECONDS")
	if err != nil {
		return Config{}, err
	}

	return Config{
		ServerPort: port,
		Database: Database{
			Path: databasePath,
		},
		Marketo: Marketo{
			BaseURL: baseURL,
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		PrettyLogging: os.Getenv("LOG_PRETTY") == "true",
	}, nil
}

type Config struct {
	ServerPort    int
	Database      Database
	Marketo       Marketo
	PrettyLogging bool
}

type Database struct {
	// Path is the SQLite file. ":memory:" opens a throwaway in-memory store.
	Path string
}

type Marketo struct {
	BaseURL string
	Timeout time.Duration
}

func requireEnv(key string) (string, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return "", fmt.Errorf("can't find environment variable: %s", key)
	}
	return value, nil
}

func requireEnvAsInt(key string) (int, error) {
	valueStr, err := requireEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("can't parse %s as integer: %v", key, err)
	}
	return value, nil
}
