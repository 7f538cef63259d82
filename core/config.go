package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Addr                      string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		// Path is the SQLite database file. The parent directory is created
		// on startup if it does not exist.
		Path string
	}

	TutorConfig struct {
		Model  string
		APIKey string
	}

	SessionConfig struct {
		// TTL is how long an idle conversation is kept in memory before the
		// sweeper discards it.
		TTL        time.Duration
		SweepEvery time.Duration
	}

	Config struct {
		AppName  string
		Env      string // DEV (default), TEST, QA, PROD
		Build    string
		Debug    bool
		TestMode bool

		SecretKey string

		// AdminUsername is the single privileged account allowed to manage
		// the topic catalog.
		AdminUsername string
		AdminEmail    string

		DefaultFromEmail string
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
		Tutor    TutorConfig
		Session  SessionConfig
	}
)

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Neolearn")
	v.SetDefault("secretKey", "w2q&0n^#b9-e+4fz@c7(y5m!j8*pxr1)ghd$6u3s%vk_t=lo")
	v.SetDefault("adminUsername", "admin")
	v.SetDefault("adminEmail", "admin@localhost")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("shutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("databasePath", "lernen.db")
	v.SetDefault("tutorModel", "gemini-2.0-flash-001")
	v.SetDefault("sessionTTL", 12*time.Hour)
	v.SetDefault("sessionSweepEvery", 30*time.Minute)

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	// the tutor key keeps its historical un-prefixed name
	_ = v.BindEnv("tutorApiKey", env+"_TUTORAPIKEY", "GOOGLE_API_KEY")

	return &Config{
		AppName:          v.GetString("appName"),
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		SecretKey:        v.GetString("secretKey"),
		AdminUsername:    v.GetString("adminUsername"),
		AdminEmail:       v.GetString("adminEmail"),
		DefaultFromEmail: v.GetString("defaultFromEmail"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Addr:                      v.GetString("serverAddr"),
			ShutdownTimeout:           v.GetDuration("shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Path: v.GetString("databasePath"),
		},
		Tutor: TutorConfig{
			Model:  v.GetString("tutorModel"),
			APIKey: v.GetString("tutorApiKey"),
		},
		Session: SessionConfig{
			TTL:        v.GetDuration("sessionTTL"),
			SweepEvery: v.GetDuration("sessionSweepEvery"),
		},
	}
}

func (c *Config) DefaultFrom() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
}

func (c *Config) AdminAddress() mail.Address {
	return mail.Address{Address: c.AdminEmail}
}
