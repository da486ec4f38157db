package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jljohnson/mindmup/app"
	"github.com/jljohnson/mindmup/app/logger"
)

const CName = "config"

const (
	defaultRetryTimes    = 5
	defaultBackoffStepMs = 1000
	defaultBackoff       = "linear"
	defaultRemoteRPS     = 5
	defaultRecentLimit   = 10
)

func NewFromFile(path string) (c *Config, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes yaml config and fills the defaults
func Parse(data []byte) (c *Config, err error) {
	c = &Config{}
	if err = yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	return c, nil
}

// Default returns the config used when no file is given
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

type Config struct {
	Log        logger.Config `yaml:"log"`
	Repository Repository    `yaml:"repository"`
	Storage    Storage       `yaml:"storage"`
	Metric     Metric        `yaml:"metric"`
	Recent     Recent        `yaml:"recent"`
}

// Repository drives the retry policy of load and save flows
type Repository struct {
	RetryTimes int `yaml:"retryTimes"`
	// Backoff is linear, exponential or constant
	Backoff       string `yaml:"backoff"`
	BackoffStepMs int    `yaml:"backoffStepMs"`
	// BackoffMaxMs caps every delay, zero means no cap
	BackoffMaxMs int `yaml:"backoffMaxMs"`
}

type Storage struct {
	// Adapters lists adapter names in priority order, the first one is the default
	Adapters    []string `yaml:"adapters"`
	Dir         string   `yaml:"dir"`
	LocalDBPath string   `yaml:"localDbPath"`
	RemoteURL   string   `yaml:"remoteUrl"`
	RemoteToken string   `yaml:"remoteToken"`
	RemoteRPS   float64  `yaml:"remoteRps"`
}

type Metric struct {
	Addr string `yaml:"addr"`
}

type Recent struct {
	// Limit is the length of the remembered map history
	Limit int `yaml:"limit"`
}

func (c *Config) applyDefaults() {
	if c.Repository.RetryTimes == 0 {
		c.Repository.RetryTimes = defaultRetryTimes
	}
	if c.Repository.Backoff == "" {
		c.Repository.Backoff = defaultBackoff
	}
	if c.Repository.BackoffStepMs == 0 {
		c.Repository.BackoffStepMs = defaultBackoffStepMs
	}
	if len(c.Storage.Adapters) == 0 {
		c.Storage.Adapters = []string{"file", "anystore"}
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "maps"
	}
	if c.Storage.LocalDBPath == "" {
		c.Storage.LocalDBPath = "data/local.db"
	}
	if c.Storage.RemoteRPS == 0 {
		c.Storage.RemoteRPS = defaultRemoteRPS
	}
	if c.Recent.Limit == 0 {
		c.Recent.Limit = defaultRecentLimit
	}
}

func (c *Config) Init(a *app.App) (err error) {
	logged := *c
	if logged.Storage.RemoteToken != "" {
		logged.Storage.RemoteToken = "***"
	}
	logger.NewNamed("config").Debug(fmt.Sprintf("%+v", logged))
	return
}

func (c Config) Name() (name string) {
	return CName
}

func (c Config) GetRepository() Repository {
	return c.Repository
}

func (c Config) GetStorage() Storage {
	return c.Storage
}

func (c Config) GetLocalDBPath() string {
	return c.Storage.LocalDBPath
}

func (c Config) GetMetric() Metric {
	return c.Metric
}

func (c Config) GetRecent() Recent {
	return c.Recent
}
