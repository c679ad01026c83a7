package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/MinseoYoo/page-mind/internal/agent/graph"
	"github.com/MinseoYoo/page-mind/internal/agent/model"
	"github.com/MinseoYoo/page-mind/internal/agent/repo"
	"github.com/MinseoYoo/page-mind/internal/core"
	"github.com/MinseoYoo/page-mind/internal/recommend"
	"github.com/MinseoYoo/page-mind/internal/recommend/search"
	logx "github.com/MinseoYoo/page-mind/pkg/logger"
	pkgredis "github.com/MinseoYoo/page-mind/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig defines all configurable parameters for the counseling pipeline,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Pipeline configs
	Counselor model.CounselorModelConfig
	Analysis  model.AnalysisModelConfig
	Session   model.SessionConfig
	Ranking   model.RankingConfig
	Search    search.Config
}

func main() {
	fmt.Println("PageMind counseling pipeline demo")
	ctx := context.Background()
	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	rdb, err := envCfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	fmt.Println("Connected to Redis successfully")

	ttl, err := time.ParseDuration(envCfg.Session.TTL)
	if err != nil {
		log.Fatalf("Invalid SESSION_TTL '%s': %v", envCfg.Session.TTL, err)
	}
	conversationRepo := repo.NewRedisConversationRepository(rdb, ttl)

	recommender, err := recommend.NewService(search.NewClient(envCfg.Search), envCfg.Ranking)
	if err != nil {
		log.Fatalf("Failed to build recommendation service: %v", err)
	}

	cfg := graph.Config{
		APIKey:           envCfg.APIKey,
		BaseURL:          envCfg.BaseURL,
		CounselorModel:   envCfg.Counselor,
		AnalysisModel:    envCfg.Analysis,
		Session:          envCfg.Session,
		ConversationRepo: conversationRepo,
		SessionRepo:      conversationRepo,
		Recommender:      recommender,
	}

	runner, err := graph.BuildCounselingGraph(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}

	// A scripted session: five counseling turns trigger the analysis stage,
	// then the genre pick triggers the recommendation.
	turns := []struct {
		description string
		input       model.QueryInput
	}{
		{
			description: "Opening up about work stress",
			input:       model.QueryInput{Query: "요즘 회사 일 때문에 너무 지쳐요. 아침에 일어나는 것도 힘들어요."},
		},
		{
			description: "Describing the workload",
			input:       model.QueryInput{Query: "프로젝트 마감이 계속 겹치는데, 제가 다 떠안게 되는 것 같아요."},
		},
		{
			description: "Sleep trouble surfaces",
			input:       model.QueryInput{Query: "밤에 누워도 업무 생각이 멈추지 않아서 잠을 설쳐요."},
		},
		{
			description: "Self-blame appears",
			input:       model.QueryInput{Query: "동료들은 잘 버티는데 저만 이렇게 힘든 걸 보면 제가 부족한 사람인 것 같아요."},
		},
		{
			description: "Closing turn - analysis should follow",
			input:       model.QueryInput{Query: "이런 얘기를 어디에도 못 했는데, 말하고 나니 조금은 후련하네요."},
		},
		{
			description: "Genre pick - recommendation should follow",
			input:       model.QueryInput{Query: "자기계발 책이 좋을 것 같아요.", PreferredGenre: "자기계발"},
		},
	}

	conversationID := fmt.Sprintf("demo-%d", time.Now().Unix())

	for i, turn := range turns {
		fmt.Printf("\n🚀 Turn %d: %s\n", i+1, turn.description)
		fmt.Printf("Query: \"%s\"\n", turn.input.Query)
		fmt.Println("Processing...")

		turn.input.ConversationID = conversationID
		response, err := runner.Invoke(ctx, turn.input)
		if err != nil {
			log.Fatalf("Failed to invoke graph for turn %d: %v", i+1, err)
		}

		fmt.Printf("✅ Response %d:\n%s\n", i+1, response)
		fmt.Println("─────────────────────────────────────────────")

		// add slight delay between turns for readability
		time.Sleep(500 * time.Millisecond)
	}

	fmt.Println("🎉 Counseling session completed!")
}
