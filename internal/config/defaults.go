package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeoutSecs == 0 {
		cfg.Server.RequestTimeoutSecs = 120
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "./embeddings/all_embeddings.json"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "https://aipipe.org/openai/v1"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "AIPROXY_TOKEN"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 30
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 32
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 512
	}
	if cfg.Embedding.CachePath == "" {
		cfg.Embedding.CachePath = "./embeddings/cache.db"
	}
	if cfg.Embedding.ChunkSize == 0 {
		cfg.Embedding.ChunkSize = 800
	}
	if cfg.Completion.BaseURL == "" {
		cfg.Completion.BaseURL = "http://aiproxy.sanand.workers.dev/openai/v1"
	}
	if cfg.Completion.APIKeyEnv == "" {
		cfg.Completion.APIKeyEnv = "AIPROXY_TOKEN"
	}
	if cfg.Completion.Model == "" {
		cfg.Completion.Model = "gpt-4o-mini"
	}
	if cfg.Completion.MaxTokens == 0 {
		cfg.Completion.MaxTokens = 512
	}
	if cfg.Completion.Temperature == 0 {
		cfg.Completion.Temperature = 0.2
	}
	if cfg.Completion.TimeoutSecs == 0 {
		cfg.Completion.TimeoutSecs = 120
	}
	if cfg.Ask.Retrieval == "" {
		cfg.Ask.Retrieval = RetrievalSemantic
	}
	if cfg.Ask.TopK == 0 {
		cfg.Ask.TopK = 5
	}
	if cfg.Ask.ContextLimit == 0 {
		cfg.Ask.ContextLimit = 30
	}
	if cfg.Ask.FetchMaxBytes == 0 {
		cfg.Ask.FetchMaxBytes = 256 * 1024
	}
	// FetchLinks defaults to true when unset (nil).
	if cfg.Links.ForumBaseURL == "" {
		cfg.Links.ForumBaseURL = "https://discourse.onlinedegree.iitm.ac.in"
	}
	if cfg.Links.CourseBaseURL == "" {
		cfg.Links.CourseBaseURL = "https://tds.s-anand.net"
	}
	if cfg.Links.DefaultURL == "" {
		cfg.Links.DefaultURL = "https://discourse.onlinedegree.iitm.ac.in/"
	}
	if cfg.Links.Defaults == nil {
		cfg.Links.Defaults = []DefaultLink{
			{URL: "https://discourse.onlinedegree.iitm.ac.in/", Text: "IITM Discourse"},
			{URL: "https://github.com/s-anand/tds-course", Text: "Course GitHub Repo"},
		}
	}
	if cfg.Scrape.BaseURL == "" {
		cfg.Scrape.BaseURL = "https://discourse.onlinedegree.iitm.ac.in"
	}
	if cfg.Scrape.Category == 0 {
		cfg.Scrape.Category = 34
	}
	if cfg.Scrape.From == "" {
		cfg.Scrape.From = "2025-01-01"
	}
	if cfg.Scrape.To == "" {
		cfg.Scrape.To = "2025-04-14"
	}
	if cfg.Scrape.CookieEnv == "" {
		cfg.Scrape.CookieEnv = "DISCOURSE_COOKIES"
	}
	if cfg.Scrape.DelaySecs == 0 {
		cfg.Scrape.DelaySecs = 1
	}
	if cfg.Scrape.PostsDir == "" {
		cfg.Scrape.PostsDir = "./scraped/posts"
	}
	if cfg.Scrape.CourseRepo == "" {
		cfg.Scrape.CourseRepo = "./course"
	}
	if cfg.Scrape.CourseDir == "" {
		cfg.Scrape.CourseDir = "./scraped/course"
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = 400
	}
}
