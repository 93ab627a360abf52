package cfg

type MockLoader struct{}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (yl *MockLoader) Load() (*Config, error) {
	return &Config{
		// App
		App: App{
			Name:    "git2neo",
			Version: "0.1.0",
		},

		// GithubApi
		GithubApi: GithubApi{
			AccessToken:       "",
			GraphqlUrl:        "https://api.github.com/graphql",
			RequestsPerSecond: 5,
			TimeoutSec:        30,
		},

		// Neo4j
		Neo4j: Neo4j{
			Endpoint:              "bolt://localhost:7687",
			Database:              "neo4j",
			Username:              "neo4j",
			Password:              "",
			MaxConnectionPoolSize: 50,
		},

		// Mysql
		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Password:              "root",
			Username:              "root",
			Port:                  "3306",
			Database:              "git2neo",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		Store: Store{
			Driver:    "memory",
			CacheSize: 10000,
		},

		// Crawl
		Crawl: Crawl{
			SeedFile:               "owner_repo.csv",
			NumSeedRepos:           5,
			LimitStargazersPerRepo: 50,
			LimitUsers:             5,
			LimitReposPerUser:      5,
			ErrorDir:               "error",
			FreshRun:               true,
			Workers:                1,
		},

		Kafka: Kafka{
			Producer: KafkaProducer{TopicEvents: "git2neo-unit-events"},
		},

		Log: Log{
			File: "logs/log.txt",
		},
	}, nil
}
