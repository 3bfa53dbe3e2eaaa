package environment

import (
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
)

// Production defines the prod environment
const Production = "prod"

// Staging defines the staging environment
const Staging = "staging"

// Dev defines the dev environment
const Dev = "dev"

// Environment holds all configuration read from the process environment
type Environment struct {
	Environment     string `mapstructure:"APP_ENV"`
	Cors            string `mapstructure:"CORS"`
	Secret          string `mapstructure:"SECRET"`
	Port            string `mapstructure:"PORT"`
	DatabaseUrl     string `mapstructure:"DATABASE_URL"`
	Redis           string `mapstructure:"REDIS"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	GeminiAPIKey    string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel     string `mapstructure:"GEMINI_MODEL"`
	GeminiAPIUrl    string `mapstructure:"GEMINI_API_URL"`
	FrontendBaseUrl string `mapstructure:"FRONTEND_BASE_URL"`
}

var Global Environment

// Initialize reads the .env file into the Global environment
func Initialize() {
	data, err := godotenv.Read(".env")
	if err != nil {
		panic(err)
	}

	err = mapstructure.Decode(data, &Global)
	if err != nil {
		panic(err)
	}

	if Global.GeminiModel == "" {
		Global.GeminiModel = "gemini-pro"
	}
}
