package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port                string
	JWTSecret           string
	MaxClients          int
	OfferTimeoutSeconds int
	RoundSeconds        int
	Persistence         bool
	DBHost              string
	DBPort              string
	DBUser              string
	DBPassword          string
	DBName              string
	MongoURI            string
}

func LoadConfig() *Config {
	return &Config{
		Port:                getEnv("PORT", "8000"),
		JWTSecret:           getEnv("JWT_SECRET", "secret"),
		MaxClients:          getEnvInt("MAX_CLIENTS", 64),
		OfferTimeoutSeconds: getEnvInt("OFFER_TIMEOUT_SECONDS", 10),
		RoundSeconds:        getEnvInt("ROUND_SECONDS", 0),
		Persistence:         getEnvBool("PERSISTENCE", false),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBUser:              getEnv("DB_USER", "user"),
		DBPassword:          getEnv("DB_PASSWORD", "password"),
		DBName:              getEnv("DB_NAME", "evoblast"),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
	}
}

// getEnv reads an environment variable and returns its value or a default value
func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = defaultValue
		log.Printf("Environment variable %s not set, using default value: %s", key, defaultValue)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Environment variable %s is not a number, using default value: %d", key, defaultValue)
		return defaultValue
	}
	return i
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Environment variable %s is not a boolean, using default value: %v", key, defaultValue)
		return defaultValue
	}
	return b
}
