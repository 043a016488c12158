package config

import (
	"encoding/json"
	"log"
	"os"
)

type Configuration struct {
	ApiPort    string `json:"api_port"`
	LogPath    string `json:"log_path"`
	UploadsDir string `json:"uploads_dir"`

	Database string `json:"database"` // "sqlite3" ou "postgres"
	DbHost   string `json:"db_host"`
	DbPort   string `json:"db_port"`
	DbUser   string `json:"db_user"`
	DbName   string `json:"db_name"`
	DbPass   string `json:"db_pass"`

	Firebase struct {
		ProjectID       string `json:"project_id"`
		CredentialsPath string `json:"credentials_path"`
	} `json:"firebase"`

	Security struct {
		JwtSecret       string `json:"jwt_secret"`
		TokenValidHours int    `json:"token_valid_hours"`
	} `json:"security"`

	Workers struct {
		AlertIntervalSeconds int `json:"alert_interval_seconds"`
		ReturnOverdueDays    int `json:"return_overdue_days"`
	} `json:"workers"`
}

func Get(path string) Configuration {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	var c Configuration
	if err := json.Unmarshal(b, &c); err != nil {
		log.Fatal(err)
	}

	// defaults (pra evitar nil/zero chato)
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/server.log"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "uploads"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.Security.TokenValidHours <= 0 {
		c.Security.TokenValidHours = 24
	}
	if c.Security.JwtSecret == "" {
		c.Security.JwtSecret = "CHANGE_ME"
	}
	if c.Workers.AlertIntervalSeconds <= 0 {
		c.Workers.AlertIntervalSeconds = 60
	}
	if c.Workers.ReturnOverdueDays <= 0 {
		c.Workers.ReturnOverdueDays = 7
	}

	// env tem precedência sobre o arquivo (útil em deploy)
	if v := os.Getenv("PORT"); v != "" {
		c.ApiPort = v
	}
	if v := os.Getenv("FIREBASE_PROJECT_ID"); v != "" {
		c.Firebase.ProjectID = v
	}
	if v := os.Getenv("FIREBASE_CREDENTIALS_PATH"); v != "" {
		c.Firebase.CredentialsPath = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Security.JwtSecret = v
	}

	return c
}
