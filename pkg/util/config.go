package util

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func ReadConfig() error {
	// .env is optional, local dev convenience only
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}
