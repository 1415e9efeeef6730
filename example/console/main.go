package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/thaqi-stratiq/AI-AGENT-POST/agent"
	"github.com/thaqi-stratiq/AI-AGENT-POST/create"
)

const greeting = `Hi! I can answer questions about our service, or set up a new instance for your company. Say "create an instance" whenever you are ready.`

func main() {
	conf := flag.String("config", "config.json", "path to config file")
	flag.Parse()
	config, err := loadConfig(*conf)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := startApp(context.Background(), config); err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func startApp(ctx context.Context, config *Config) error {
	slog.SetLogLoggerLevel(slog.LevelInfo)
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  config.APIKey,
		Model:   config.Model,
		BaseURL: config.BaseURL,
	})
	if err != nil {
		return err
	}
	flow, err := agent.NewToolBasedIntakeFlow(cm, create.NewClient(config.CreateEndpoint))
	if err != nil {
		return err
	}
	states := agent.NewMemoryStateStore()
	historyStore := agent.NewMemoryHistoryStore(agent.KeepLastNTrimmer{N: 50})
	intakeAgent := agent.NewIntakeAgent(
		"CompanyIntake",
		"Collects company intake details in conversation and creates an instance once confirmed",
		flow,
		states,
	)
	runner := adk.NewRunner(ctx, adk.RunnerConfig{
		Agent: intakeAgent,
	})

	sessionCtx := agent.WithStateKey(ctx, uuid.NewString())
	if _, err := historyStore.Append(sessionCtx, schema.AssistantMessage(greeting, nil)); err != nil {
		return err
	}
	fmt.Printf("assistant: %s\n", greeting)

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("you: ")
		input, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Println("input closed, exiting.")
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "/exit" {
			return nil
		}
		if input == "/reset" {
			if rErr := states.Clear(sessionCtx); rErr != nil {
				return rErr
			}
			if rErr := historyStore.Clear(sessionCtx); rErr != nil {
				return rErr
			}
			sessionCtx = agent.WithStateKey(ctx, uuid.NewString())
			if _, rErr := historyStore.Append(sessionCtx, schema.AssistantMessage(greeting, nil)); rErr != nil {
				return rErr
			}
			fmt.Printf("assistant: %s\n", greeting)
			continue
		}
		history, rErr := historyStore.Append(sessionCtx, schema.UserMessage(input))
		if rErr != nil {
			return rErr
		}
		iter := runner.Run(sessionCtx, history)
		for {
			event, ok := iter.Next()
			if !ok {
				break
			}
			if event.Err != nil {
				return event.Err
			}
			msg, mErr := event.Output.MessageOutput.GetMessage()
			if mErr != nil {
				return mErr
			}
			if _, apErr := historyStore.Append(sessionCtx, msg); apErr != nil {
				return apErr
			}
			state, sErr := states.Load(sessionCtx)
			if sErr != nil {
				return sErr
			}
			fmt.Printf("\nassistant: %v\n[stage: %s]\n======\n", msg.Content, state.Stage)
		}
	}
	return nil
}
