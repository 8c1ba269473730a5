package main

import (
	"context"
	"log"
	"net/http"

	httpadapter "github.com/BillyGuo1996/The-Connector/internal/adapters/http"
	"github.com/BillyGuo1996/The-Connector/internal/adapters/llm"
	firestorestore "github.com/BillyGuo1996/The-Connector/internal/adapters/storage/firestore"
	memstore "github.com/BillyGuo1996/The-Connector/internal/adapters/storage/memory"
	"github.com/BillyGuo1996/The-Connector/internal/app/chat"
	"github.com/BillyGuo1996/The-Connector/internal/app/session"
	"github.com/BillyGuo1996/The-Connector/internal/app/summary"
	"github.com/BillyGuo1996/The-Connector/internal/config"
	"github.com/BillyGuo1996/The-Connector/internal/domain"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	var llmClient domain.GenerationClient
	if cfg.UseMockLLM {
		log.Println("[LLM] Using mock generation client")
		llmClient = llm.NewMockClient()
	} else {
		log.Printf("[LLM] Using OpenAI generation client (model=%s)", cfg.ModelName)
		llmClient = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ModelName)
	}

	var conversationStore domain.ConversationStore
	var messageStore domain.MessageStore

	switch cfg.StorageBackend {
	case "firestore":
		log.Printf("[STORE] Using Firestore storage (project=%s)", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("error initializing Firestore store: %v", err)
		}

		// 1 store, implements 2 interfaces
		conversationStore = fsStore
		messageStore = fsStore

	default:
		log.Println("[STORE] Using in-memory storage")
		conversationStore = memstore.NewConversationStore()
		messageStore = memstore.NewMessageStore()
	}

	resolver := session.NewResolver(conversationStore)
	summarizer := summary.NewPipeline(llmClient, conversationStore)
	svc := chat.NewService(llmClient, messageStore, resolver, summarizer)

	handler := httpadapter.NewServer(svc)

	addr := ":" + cfg.Port
	log.Println("The Connector API listening on", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
