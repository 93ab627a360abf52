package cfg

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ViperLoader struct {
	v                     *viper.Viper
	configPath            string
	configName            string
	watch                 bool
	once                  sync.Once
	mu                    sync.RWMutex
	cfg                   *Config
	configChangeCallbacks []func(*Config)
}

// NewViperLoader reads cfg/yaml/mode.yaml unless paths override the directory.
func NewViperLoader(paths ...string) (*ViperLoader, error) {
	configPath := "cfg/yaml"
	if len(paths) > 0 && paths[0] != "" {
		configPath = paths[0]
	}
	return &ViperLoader{
		v:                     viper.New(),
		configPath:            configPath,
		configName:            "mode",
		watch:                 true,
		configChangeCallbacks: make([]func(*Config), 0),
	}, nil
}

func (yl *ViperLoader) Load() (*Config, error) {
	var err error
	yl.once.Do(func() {
		err = yl.loadConfig()
		if err == nil && yl.IsWatchChange() {
			yl.v.WatchConfig()
			yl.v.OnConfigChange(func(e fsnotify.Event) {
				fmt.Printf("[INFO][CONFIG] Config file changed: %s\n", e.Name)
				if errReload := yl.reloadConfig(); errReload != nil {
					fmt.Printf("[ERROR][CONFIG] Failed to reload config: %v\n", errReload)
				}
			})
		}
	})

	if err != nil {
		return nil, err
	}

	yl.mu.RLock()
	defer yl.mu.RUnlock()
	return yl.cfg, nil
}

func (yl *ViperLoader) IsWatchChange() bool {
	return yl.watch
}

// SetWatchChange toggles hot reload. Must be called before Load.
func (yl *ViperLoader) SetWatchChange(watch bool) {
	yl.watch = watch
}

func (yl *ViperLoader) RegisterConfigChangeCallback(callback func(*Config)) {
	yl.mu.Lock()
	yl.configChangeCallbacks = append(yl.configChangeCallbacks, callback)
	yl.mu.Unlock()
}

func (yl *ViperLoader) setDefaults() {
	v := yl.v
	v.SetDefault("app.name", "git2neo")
	v.SetDefault("app.version", "0.1.0")

	v.SetDefault("githubapi.accesstoken", "")
	v.SetDefault("githubapi.graphqlurl", "https://api.github.com/graphql")
	v.SetDefault("githubapi.requestspersecond", 5)
	v.SetDefault("githubapi.timeoutsec", 30)

	v.SetDefault("neo4j.endpoint", "bolt://localhost:7687")
	v.SetDefault("neo4j.database", "neo4j")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.password", "")
	v.SetDefault("neo4j.maxconnectionpoolsize", 50)

	v.SetDefault("mysql.host", "127.0.0.1")
	v.SetDefault("mysql.port", "3306")
	v.SetDefault("mysql.username", "root")
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.database", "git2neo")
	v.SetDefault("mysql.maxidleconnection", 10)
	v.SetDefault("mysql.maxopenconnection", 100)
	v.SetDefault("mysql.maxlifetimeconnection", 3600)

	v.SetDefault("store.driver", "neo4j")
	v.SetDefault("store.cachesize", 10000)

	v.SetDefault("crawl.seedfile", "owner_repo.csv")
	v.SetDefault("crawl.numseedrepos", 5)
	v.SetDefault("crawl.limitstargazersperrepo", 50)
	v.SetDefault("crawl.limitusers", 5)
	v.SetDefault("crawl.limitreposperuser", 5)
	v.SetDefault("crawl.errordir", "error")
	v.SetDefault("crawl.freshrun", true)
	v.SetDefault("crawl.workers", 1)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.producer.topicevents", "git2neo-unit-events")

	v.SetDefault("log.file", "logs/log.txt")
	v.SetDefault("log.debug", false)
}

func (yl *ViperLoader) bindEnv() error {
	// Secrets live in .env or the environment, never in mode.yaml
	_ = godotenv.Load()

	v := yl.v
	v.SetEnvPrefix("GIT2NEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string][]string{
		"githubapi.accesstoken": {"GIT2NEO_GITHUBAPI_ACCESSTOKEN", "GITHUB_TOKEN"},
		"neo4j.password":        {"GIT2NEO_NEO4J_PASSWORD", "NEO4J_PASSWORD"},
		"mysql.password":        {"GIT2NEO_MYSQL_PASSWORD", "MYSQL_PASSWORD"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("[ERROR][CONFIG] failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

func (yl *ViperLoader) loadConfig() error {
	yl.setDefaults()
	if err := yl.bindEnv(); err != nil {
		return err
	}

	yl.v.AddConfigPath(yl.configPath)
	yl.v.SetConfigName(yl.configName)
	yl.v.SetConfigType("yaml")
	if err := yl.v.ReadInConfig(); err != nil {
		return fmt.Errorf("[ERROR][CONFIG] failed to read config file: %w", err)
	}

	// Unmarshal into the config
	cfg := &Config{}
	if err := yl.v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("[ERROR][CONFIG] failed to unmarshal config: %w", err)
	}

	yl.mu.Lock()
	yl.cfg = cfg
	yl.mu.Unlock()

	return nil
}

func (yl *ViperLoader) reloadConfig() error {
	cfg := &Config{}
	if err := yl.v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("[ERROR][CONFIG] failed to unmarshal config during reload: %w", err)
	}

	yl.mu.Lock()
	yl.cfg = cfg

	// Notify all registered callbacks
	callbacks := make([]func(*Config), len(yl.configChangeCallbacks))
	copy(callbacks, yl.configChangeCallbacks)
	yl.mu.Unlock()
	for _, callback := range callbacks {
		go callback(cfg)
	}

	fmt.Println("[INFO][CONFIG] Configuration reloaded successfully")
	return nil
}
