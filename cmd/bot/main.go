package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"pizza-agent/handler"
	"pizza-agent/internal/integrations/openai"
	"pizza-agent/internal/integrations/paramstore"
	"pizza-agent/internal/store"
	"pizza-agent/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	paramPrefix := mustEnv("PARAM_PREFIX")
	model := envStr("OPENAI_MODEL", "gpt-4o")
	variant := envStr("BOT_VARIANT", "tools") // "tools" or "guided"
	streaming := envBool("OPENAI_STREAMING", true)
	stateBackend := envStr("STATE_BACKEND", "dynamodb")
	stateTable := os.Getenv("STATE_TABLE")
	turnTimeout := time.Duration(envInt("TURN_TIMEOUT_SECONDS", 90)) * time.Second

	// ---- AWS SDK config ----
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}

	var state store.Store
	switch stateBackend {
	case "memory":
		state = store.NewMemory()
	case "dynamodb":
		if stateTable == "" {
			slog.Error("STATE_TABLE is required for the dynamodb backend")
			os.Exit(1)
		}
		state, err = store.NewDynamo(awsdynamodb.NewFromConfig(cfg), stateTable)
		if err != nil {
			slog.Error("failed to create state store", "err", err)
			os.Exit(1)
		}
	default:
		slog.Error("unknown state backend", "backend", stateBackend)
		os.Exit(1)
	}

	llm, err := openai.NewClient(ssmClient, paramPrefix)
	if err != nil {
		slog.Error("failed to create OpenAI client", "err", err)
		os.Exit(1)
	}

	// ---- Services ----
	opts := []usecase.AssistantOption{usecase.WithTurnTimeout(turnTimeout)}
	if !streaming {
		opts = append(opts, usecase.WithBlockingModel(llm))
	}
	if variant == "guided" {
		flow, err := usecase.NewGuidedFlow(state)
		if err != nil {
			slog.Error("failed to create guided flow", "err", err)
			os.Exit(1)
		}
		opts = append(opts,
			usecase.WithWorkflow(flow),
			usecase.WithInstructions("You are a friendly pizza shop assistant. Keep responses short."),
		)
	}
	assistant, err := usecase.NewAssistant(llm, state, model, opts...)
	if err != nil {
		slog.Error("failed to create assistant", "err", err)
		os.Exit(1)
	}
	actions, err := usecase.NewCardActions(state)
	if err != nil {
		slog.Error("failed to create card actions", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(assistant, actions)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
