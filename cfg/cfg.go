package cfg

type (
	App struct {
		Name    string
		Version string
	}

	GithubApi struct {
		AccessToken       string
		GraphqlUrl        string
		RequestsPerSecond int
		TimeoutSec        int
	}

	Neo4j struct {
		Endpoint              string
		Database              string
		Username              string
		Password              string
		MaxConnectionPoolSize int
	}

	Mysql struct {
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		MaxIdleConnection     int
		MaxOpenConnection     int
		MaxLifeTimeConnection int
	}

	Store struct {
		// neo4j, mysql or memory
		Driver    string
		CacheSize int
	}

	Crawl struct {
		SeedFile               string
		NumSeedRepos           int
		LimitStargazersPerRepo int
		LimitUsers             int
		LimitReposPerUser      int
		ErrorDir               string
		FreshRun               bool
		Workers                int
	}

	KafkaProducer struct {
		TopicEvents string
	}

	Kafka struct {
		Brokers  []string
		Producer KafkaProducer
	}

	Log struct {
		File  string
		Debug bool
	}
)

type Config struct {
	App       App
	GithubApi GithubApi
	Neo4j     Neo4j
	Mysql     Mysql
	Store     Store
	Crawl     Crawl
	Kafka     Kafka
	Log       Log
}
