package cmd

import (
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ragchat/src/core/chat"
	"ragchat/src/core/retrieval"
	"ragchat/src/infrastructure/integrations/ollama"
	"ragchat/src/infrastructure/integrations/openai"
	"ragchat/src/infrastructure/log"
	"ragchat/src/storage/elastic"
	"ragchat/src/storage/minioctrl"
	"ragchat/src/storage/postgres/chunkctrl"
	"ragchat/src/storage/weaviate"
)

// components holds everything the commands wire together: the combined
// retriever, the generation backend and the clients behind them.
type components struct {
	db           *gorm.DB
	ollamaClient *ollama.Client
	weaviateSDK  *weaviate.SDK
	keyword      *elastic.Retriever
	retriever    retrieval.Retriever
	generator    chat.Generator
}

func buildComponents() (*components, error) {
	c := &components{}

	// Ollama serves embeddings for the vector retriever and, by default,
	// generation. No client timeout: streamed generations are bounded by
	// request contexts instead.
	c.ollamaClient = ollama.NewClient(viper.GetString("ollama.url"), &http.Client{})

	// Chunk resolution through PostgreSQL and MinIO is optional: without it
	// the vector retriever only uses hits that carry inline content.
	var resolver weaviate.ChunkResolver
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		viper.GetString("postgres.host"),
		viper.GetString("postgres.user"),
		viper.GetString("postgres.password"),
		viper.GetString("postgres.db"),
		viper.GetString("postgres.port"))
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Info("postgres unavailable, chunk resolution disabled", "error", err.Error())
	} else {
		c.db = db
		chunkSvc, err := chunkctrl.NewChunkService(db)
		if err != nil {
			return nil, err
		}
		minioSvc, err := minioctrl.NewMinioService(
			viper.GetString("minio.endpoint"),
			viper.GetString("minio.access_key"),
			viper.GetString("minio.secret_key"),
			false,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create minio service: %w", err)
		}
		resolver = chunkctrl.NewResolver(chunkSvc, minioSvc)
	}

	// Vector retriever over the pre-built Weaviate class.
	wc := weaviateClient.New(weaviateClient.Config{
		Host:   viper.GetString("weaviate.url"),
		Scheme: "http",
	})
	c.weaviateSDK = weaviate.NewSDK(wc)
	vector := weaviate.NewRetriever(
		c.weaviateSDK,
		c.ollamaClient,
		viper.GetString("chat.embedding_model"),
		viper.GetString("weaviate.class"),
		resolver,
		viper.GetBool("weaviate.hybrid"),
	)

	// Keyword retriever takes over when the vector index is unreachable.
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{viper.GetString("elastic.url")},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	c.keyword = elastic.NewRetriever(es, viper.GetString("elastic.index"))

	c.retriever = &retrieval.Fallback{
		Primary:   vector,
		Secondary: c.keyword,
	}

	switch backend := viper.GetString("chat.backend"); backend {
	case "openai":
		c.generator, err = openai.NewGenerator(
			viper.GetString("chat.model"),
			viper.GetString("openai.api_key"),
			viper.GetFloat64("chat.temperature"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai generator: %w", err)
		}
	case "ollama":
		c.generator = ollama.NewGenerator(
			c.ollamaClient,
			viper.GetString("chat.model"),
			viper.GetFloat64("chat.temperature"),
		)
	default:
		return nil, fmt.Errorf("unknown chat backend: %s", backend)
	}

	return c, nil
}

func (c *components) Close() {
	if c.db == nil {
		return
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		log.Error(err, "failed to get underlying *sql.DB")
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error(err, "error closing database connection")
	}
}

func sessionOptions() chat.Options {
	return chat.Options{
		System:                  viper.GetString("chat.system_instructions"),
		K:                       viper.GetInt("chat.k"),
		HistoryWindow:           viper.GetInt("chat.history_window"),
		DegradeOnRetrievalError: viper.GetBool("chat.degrade_on_retrieval_error"),
	}
}
