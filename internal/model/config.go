package model

// Config is the complete schemeqa configuration
type Config struct {
	Catalog      CatalogConfig     `yaml:"catalog" mapstructure:"catalog"`
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Web          WebConfig         `yaml:"web" mapstructure:"web"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Log          LogConfig         `yaml:"log" mapstructure:"log"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
}

// CatalogConfig locates the scheme table and the category mapping
type CatalogConfig struct {
	CSVPath        string `yaml:"csv_path" mapstructure:"csv_path"`
	CategoriesPath string `yaml:"categories_path" mapstructure:"categories_path"`
	KeyColumn      string `yaml:"key_column" mapstructure:"key_column"`
}

// LLMConfig selects and tunes the completion provider
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, gemini
	Model       string  `yaml:"model" mapstructure:"model"`       // empty picks the provider default
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
}

// HTTPConfig controls page fetching on the web path
type HTTPConfig struct {
	Timeout       int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	UserAgent     string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool   `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls caching of fetched pages
type CacheConfig struct {
	Enabled       bool   `yaml:"enabled" mapstructure:"enabled"`
	Backend       string `yaml:"backend" mapstructure:"backend"` // memory, disk, layered, redis
	Dir           string `yaml:"dir" mapstructure:"dir"`
	TTLMinutes    int    `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
	RedisAddr     string `yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
	RedisPassword string `yaml:"redis_password,omitempty" mapstructure:"redis_password"`
	RedisDB       int    `yaml:"redis_db" mapstructure:"redis_db"`
}

// WebConfig tunes answering from web pages
type WebConfig struct {
	URLs            []string `yaml:"urls" mapstructure:"urls"`
	ChunkSize       int      `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkOverlap    int      `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`
	MaxContextChars int      `yaml:"max_context_chars" mapstructure:"max_context_chars"`
	SummaryLines    int      `yaml:"summary_lines" mapstructure:"summary_lines"`
}

// RateLimitConfig throttles outbound requests
type RateLimitConfig struct {
	RequestsPerSecond    float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize            int     `yaml:"burst_size" mapstructure:"burst_size"`
	CompletionsPerSecond float64 `yaml:"completions_per_second" mapstructure:"completions_per_second"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// OutputConfig controls CLI rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	Raw     bool `yaml:"raw" mapstructure:"raw"`
}

// DefaultFinancialAidURL is the institution page answered from when no URL is given
const DefaultFinancialAidURL = "https://www.np.edu.sg/admissions-enrolment/guide-for-prospective-students/aid"

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			CSVPath:        "./2023FinancialAssistanceSchemes.csv",
			CategoriesPath: "./configs/categories.yaml",
			KeyColumn:      DefaultKeyColumn,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Timeout:   30,
			MaxTokens: 1024,
		},
		HTTP: HTTPConfig{
			Timeout:       30,
			UserAgent:     "schemeqa/0.1 (+https://github.com/ppiankov/schemeqa)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Backend:    "layered",
			Dir:        "./.schemeqa-cache",
			TTLMinutes: 60,
		},
		Web: WebConfig{
			URLs:            []string{DefaultFinancialAidURL},
			ChunkSize:       500,
			ChunkOverlap:    20,
			MaxContextChars: 12000,
			SummaryLines:    3,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond:    2,
			BurstSize:            2,
			CompletionsPerSecond: 3,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}
