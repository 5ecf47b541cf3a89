package cmd

import "github.com/spf13/viper"

func settingDefaultConfig() {
	// Enable automatic environment variable binding
	viper.AutomaticEnv()

	// Map environment variables to Viper keys for PostgreSQL
	viper.BindEnv("postgres.host", "POSTGRES_HOST")
	viper.BindEnv("postgres.port", "POSTGRES_PORT")
	viper.BindEnv("postgres.user", "POSTGRES_USER")
	viper.BindEnv("postgres.password", "POSTGRES_PASSWORD")
	viper.BindEnv("postgres.db", "POSTGRES_DB")

	// Map environment variables to Viper keys for MinIO
	viper.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")

	// Map environment variables to Viper keys for the retrieval indexes
	viper.BindEnv("weaviate.url", "WEAVIATE_URL")
	viper.BindEnv("weaviate.class", "WEAVIATE_CLASS")
	viper.BindEnv("elastic.url", "ELASTIC_URL")
	viper.BindEnv("elastic.index", "ELASTIC_INDEX")

	// Map environment variables to Viper keys for generation backends
	viper.BindEnv("ollama.url", "OLLAMA_URL")
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")

	// Map environment variables to Viper keys for chat and server settings
	viper.BindEnv("chat.backend", "CHAT_BACKEND")
	viper.BindEnv("chat.model", "CHAT_MODEL")
	viper.BindEnv("chat.embedding_model", "CHAT_EMBEDDING_MODEL")
	viper.BindEnv("chat.system_instructions", "CHAT_SYSTEM_INSTRUCTIONS")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")
	viper.BindEnv("server.development", "SERVER_DEVELOPMENT")

	// Set default values for PostgreSQL
	viper.SetDefault("postgres.host", "localhost")
	viper.SetDefault("postgres.port", "5432")
	viper.SetDefault("postgres.user", "postgres")
	viper.SetDefault("postgres.password", "postgres")
	viper.SetDefault("postgres.db", "ragchat")

	// Set default values for MinIO
	viper.SetDefault("minio.endpoint", "localhost:9000")
	viper.SetDefault("minio.access_key", "minioadmin")
	viper.SetDefault("minio.secret_key", "minioadmin")

	// Set default values for the retrieval indexes
	viper.SetDefault("weaviate.url", "weaviate:8080")
	viper.SetDefault("weaviate.class", "CorpusChunk")
	viper.SetDefault("weaviate.hybrid", false)
	viper.SetDefault("elastic.url", "http://elasticsearch:9200")
	viper.SetDefault("elastic.index", "corpus-chunks")

	// Set default values for generation backends
	viper.SetDefault("ollama.url", "http://ollama:11434/api")
	viper.SetDefault("openai.api_key", "")

	// Set default values for the chat loop
	viper.SetDefault("chat.backend", "ollama")
	viper.SetDefault("chat.model", "llama3")
	viper.SetDefault("chat.embedding_model", "nomic-embed-text")
	viper.SetDefault("chat.temperature", 0.0)
	viper.SetDefault("chat.k", 4)
	viper.SetDefault("chat.history_window", 0)
	viper.SetDefault("chat.degrade_on_retrieval_error", false)
	viper.SetDefault("chat.system_instructions", "")

	// Set default values for the server
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.shutdown_timeout", "5s")
	viper.SetDefault("server.development", false)
}
