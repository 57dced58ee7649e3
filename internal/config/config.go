package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Admin passwords must carry at least one letter and one digit, 8+ chars.
// Go's regexp has no lookahead, hence regexp2.
const adminPasswordPattern = `^(?=.*[A-Za-z])(?=.*\d).{8,}$`

var ErrWeakAdminPassword = errors.New("admin password must be at least 8 characters and contain a letter and a digit")

type AppConfig struct {
	API        *APIConfig        `mapstructure:"api"`
	Gin        *GinConfig        `mapstructure:"gin"`
	Postgres   *PostgresConfig   `mapstructure:"postgres"`
	SMTP       *SMTPConfig       `mapstructure:"smtp"`
	Admin      *AdminConfig      `mapstructure:"admin"`
	Cloudinary *CloudinaryConfig `mapstructure:"cloudinary"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	PublicBaseURL      string   `mapstructure:"public_base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	Domain   string `mapstructure:"domain"`
}

type AdminConfig struct {
	Password string `mapstructure:"password"`
}

type CloudinaryConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Folder    string `mapstructure:"folder"`
}

func Load(configPath string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal -> %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	// Re-read on change so ops tweaks (CORS domains, SMTP creds) don't
	// need a restart.
	v.OnConfigChange(func(_ fsnotify.Event) {
		_ = v.Unmarshal(conf)
	})
	v.WatchConfig()

	return conf, nil
}

func (c *AppConfig) validate() error {
	if c.API == nil || c.Admin == nil {
		return errors.New("config is missing api or admin section")
	}

	re := regexp2.MustCompile(adminPasswordPattern, regexp2.None)
	ok, err := re.MatchString(c.Admin.Password)
	if err != nil {
		return fmt.Errorf("re.MatchString -> %w", err)
	}
	if !ok {
		return ErrWeakAdminPassword
	}

	return nil
}
