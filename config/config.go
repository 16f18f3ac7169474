package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	// All variables
	GO_ENV       string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// Storage backend: "postgres" (default) or "memory" for local dev/tests
	STORE_DRIVER string
	// JWT Configuration (verification only; tokens are minted elsewhere)
	JWT_SECRET string
	JWT_ISSUER string
	// Redis Configuration
	REDIS_URL string
	// Retrieval+LLM agent configuration
	AGENT_DEPLOYMENT_URL string
	AGENT_ACCESS_KEY     string
	// Conversation tuning
	CONTEXT_WINDOW_SIZE int
	DELETE_BATCH_SIZE   int
	DEFAULT_LANGUAGE    string
	CRON_ENABLED        bool
}

func Get() (*EnviornmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	// Database defaults
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	storeDriver := os.Getenv("STORE_DRIVER")
	if storeDriver == "" {
		storeDriver = "postgres"
	}

	contextWindow, err := strconv.Atoi(os.Getenv("CONTEXT_WINDOW_SIZE"))
	if err != nil || contextWindow <= 0 {
		contextWindow = 8
	}

	deleteBatch, err := strconv.Atoi(os.Getenv("DELETE_BATCH_SIZE"))
	if err != nil || deleteBatch <= 0 {
		deleteBatch = 100
	}

	defaultLanguage := os.Getenv("DEFAULT_LANGUAGE")
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}

	envVariables := &EnviornmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      dbHost,
		DB_PORT:      dbPort,
		DB_SSL_MODE:  os.Getenv("DB_SSL_MODE"),
		PORT:         port,
		STORE_DRIVER: storeDriver,
		// JWT
		JWT_SECRET: os.Getenv("JWT_SECRET"),
		JWT_ISSUER: os.Getenv("JWT_ISSUER"),
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// Agent
		AGENT_DEPLOYMENT_URL: os.Getenv("AGENT_DEPLOYMENT_URL"),
		AGENT_ACCESS_KEY:     os.Getenv("AGENT_ACCESS_KEY"),
		// Conversation
		CONTEXT_WINDOW_SIZE: contextWindow,
		DELETE_BATCH_SIZE:   deleteBatch,
		DEFAULT_LANGUAGE:    defaultLanguage,
		CRON_ENABLED:        os.Getenv("CRON_ENABLED") != "false",
	}

	return envVariables, nil
}
