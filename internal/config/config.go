package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"video-warehouse/internal/database"
)

type Config struct {
	Driver      string         `yaml:"driver"`
	CSVPath     string         `yaml:"csv_path"`
	MetricsAddr string         `yaml:"metrics_addr"`
	Chart       ChartSettings  `yaml:"chart"`
	Trends      TrendsSettings `yaml:"trends"`
}

type ChartSettings struct {
	URL             string        `yaml:"url"`
	UserAgent       string        `yaml:"user_agent"`
	MatchThreshold  float64       `yaml:"match_threshold"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	UpdateBatchSize int           `yaml:"update_batch_size"`
}

type TrendsSettings struct {
	Locale         string        `yaml:"locale"`
	TimezoneOffset int           `yaml:"timezone_offset"`
	Window         string        `yaml:"window"`
	BatchSize      int           `yaml:"batch_size"`
	TopKeywords    int           `yaml:"top_keywords"`
	BatchDelay     time.Duration `yaml:"batch_delay"`
	ErrorBackoff   time.Duration `yaml:"error_backoff"`
}

func Default() Config {
	return Config{
		Driver:  "mysql",
		CSVPath: "videos.csv",
		Chart: ChartSettings{
			URL:             "https://kworb.net/spotify/country/global_daily.html",
			UserAgent:       "Mozilla/5.0",
			MatchThreshold:  0.72,
			FetchTimeout:    20 * time.Second,
			UpdateBatchSize: 100,
		},
		Trends: TrendsSettings{
			Locale:         "pt-BR",
			TimezoneOffset: 180,
			Window:         "today 12-m",
			BatchSize:      5,
			TopKeywords:    20,
			BatchDelay:     5 * time.Second,
			ErrorBackoff:   10 * time.Second,
		},
	}
}

// Load reads job settings from a yaml file layered over the defaults. A
// missing file is not an error; every setting has a usable default.
func Load(path string) (Config, error) {
	config := Default()

	file, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(file, &config); err != nil {
		return config, err
	}
	return config, nil
}

// stringOrNumber tolerates both `"port": 3306` and `"port": "3306"` in the
// credentials blob.
type stringOrNumber string

func (s *stringOrNumber) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	*s = stringOrNumber(raw)
	return nil
}

type credentialsBlob struct {
	User     string         `json:"user"`
	Password string         `json:"password"`
	Host     string         `json:"host"`
	Port     stringOrNumber `json:"port"`
	Database string         `json:"database"`
}

type credentialsEnv struct {
	User     string `envconfig:"DB_USER"`
	Password string `envconfig:"DB_PASSWORD"`
	Host     string `envconfig:"DB_HOST"`
	Port     string `envconfig:"DB_PORT" default:"3306"`
	Name     string `envconfig:"DB_NAME"`
}

// Credentials resolves warehouse credentials from the environment: the
// DB_CREDENTIALS JSON blob when present, individual DB_* variables
// otherwise. Missing credentials are a configuration error, fatal before
// any database mutation.
func Credentials() (database.Credentials, error) {
	if raw := os.Getenv("DB_CREDENTIALS"); raw != "" {
		var blob credentialsBlob
		if err := json.Unmarshal([]byte(raw), &blob); err != nil {
			return database.Credentials{}, fmt.Errorf("parsing DB_CREDENTIALS: %w", err)
		}
		return validate(database.Credentials{
			User:     blob.User,
			Password: blob.Password,
			Host:     blob.Host,
			Port:     string(blob.Port),
			Database: blob.Database,
		})
	}

	var env credentialsEnv
	if err := envconfig.Process("", &env); err != nil {
		return database.Credentials{}, err
	}
	return validate(database.Credentials{
		User:     env.User,
		Password: env.Password,
		Host:     env.Host,
		Port:     env.Port,
		Database: env.Name,
	})
}

func validate(c database.Credentials) (database.Credentials, error) {
	var missing []string
	for _, kv := range []struct{ key, val string }{
		{"user", c.User}, {"password", c.Password}, {"host", c.Host},
		{"port", c.Port}, {"database", c.Database},
	} {
		if kv.val == "" {
			missing = append(missing, kv.key)
		}
	}
	if len(missing) > 0 {
		return c, fmt.Errorf("missing database credentials: %s", strings.Join(missing, ", "))
	}
	return c, nil
}
