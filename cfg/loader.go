package cfg

// Loader produces the process config. ViperLoader reads yaml and env,
// MockLoader returns fixed values for tests and dry runs.
type Loader interface {
	Load() (*Config, error)
}
