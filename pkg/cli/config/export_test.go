package config

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(provider, geminiProjectID, openaiAPIKey, claudeAPIKey string) *LLM {
	return &LLM{
		provider:        provider,
		geminiProjectID: geminiProjectID,
		geminiLocation:  "us-central1",
		openaiAPIKey:    openaiAPIKey,
		claudeAPIKey:    claudeAPIKey,
	}
}

// NewEmbeddingForTest creates an Embedding config for testing purposes
func NewEmbeddingForTest(apiKey, projectID string) *Embedding {
	return &Embedding{
		apiKey:    apiKey,
		projectID: projectID,
		location:  "us-central1",
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID, postgresDSN string) *Repository {
	return &Repository{
		backend:     backend,
		projectID:   projectID,
		postgresDSN: postgresDSN,
		tableName:   "tech_insights",
	}
}

// NewGuardianForTest creates a Guardian config for testing purposes
func NewGuardianForTest(apiKey, baseURL string) *Guardian {
	return &Guardian{
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, channelID string) *Slack {
	return &Slack{
		botToken:  botToken,
		channelID: channelID,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewReportForTest creates a Report config for testing purposes
func NewReportForTest(bucket string) *Report {
	return &Report{bucket: bucket}
}

// NewSentryForTest creates a Sentry config for testing purposes
func NewSentryForTest(dsn string) *Sentry {
	return &Sentry{dsn: dsn}
}
