package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/seoforge/seoforge/internal/api"
	"github.com/seoforge/seoforge/internal/assets"
	"github.com/seoforge/seoforge/internal/backend"
	"github.com/seoforge/seoforge/internal/common"
	"github.com/seoforge/seoforge/internal/config"
	"github.com/seoforge/seoforge/internal/conversation"
	"github.com/seoforge/seoforge/internal/knowledge"
	"github.com/seoforge/seoforge/internal/llm"
	"github.com/seoforge/seoforge/internal/profile"
	"github.com/seoforge/seoforge/internal/workflow"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("seoforge: .env file not loaded", "error", err)
	} else {
		logger.Info("seoforge: environment loaded from .env")
	}

	addr := flag.String("addr", "", "listen address (overrides config)")
	configPath := flag.String("config", defaultConfigPath(), "path to the YAML config file")
	dataDir := flag.String("data", "", "state directory (overrides config)")
	noAssets := flag.Bool("no-assets", false, "disable image/video asset sessions")
	noRestore := flag.Bool("no-restore", false, "skip restoring persisted sessions on startup")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("seoforge: config load failed", "error", err)
		fmt.Println("config error:", err)
		os.Exit(1)
	}
	cfg = cfg.Merge(config.Config{Addr: *addr, DataDir: *dataDir, DisableAssets: *noAssets})

	logger.Info("seoforge: startup initiated", "addr", cfg.Addr, "data", cfg.DataDir)

	provider := llm.NewProvider()
	logger.Info("seoforge: llm provider ready", "provider", provider.Name())
	client := backend.New(provider)

	profileCfg, err := profile.LoadConfig()
	if err != nil {
		logger.Error("seoforge: profile config load failed", "error", err)
		fmt.Println("profile config error:", err)
		os.Exit(1)
	}
	if strings.TrimSpace(cfg.ProfileDB) != "" {
		profileCfg.Path = cfg.ProfileDB
	}
	profiles, err := profile.OpenWithConfig(profileCfg)
	if err != nil {
		logger.Error("seoforge: profile store unavailable", "error", err)
		fmt.Println("profile store error:", err)
		os.Exit(1)
	}
	defer profiles.Close()

	convStore, err := conversation.NewStore(cfg.ConversationDir())
	if err != nil {
		logger.Error("seoforge: conversation store unavailable", "error", err)
		fmt.Println("conversation store error:", err)
		os.Exit(1)
	}
	snapStore, err := workflow.NewSnapshotStore(cfg.SnapshotDir())
	if err != nil {
		logger.Error("seoforge: snapshot store unavailable", "error", err)
		fmt.Println("snapshot store error:", err)
		os.Exit(1)
	}

	orch := workflow.NewOrchestrator(client, profiles, knowledge.NewDefaultBase(), convStore)
	orch.AttachSnapshots(snapStore)
	if !*noRestore {
		if restored, err := orch.RestoreSessions(ctx); err != nil {
			logger.Warn("seoforge: session restore failed", "error", err)
		} else if restored > 0 {
			logger.Info("seoforge: sessions restored", "count", restored)
		}
	}

	var assetMgr *assets.Manager
	if !cfg.DisableAssets {
		cacheSize := cfg.AssetCacheSize
		assetMgr = assets.NewManager(client, func() assets.Cache {
			return assets.NewLRUCache(cacheSize)
		})
	}

	server, err := api.NewServer(orch, assetMgr, profiles, provider)
	if err != nil {
		logger.Error("seoforge: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("seoforge: server listening", "addr", cfg.Addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", cfg.Addr)
	reachable := cfg.Addr
	if strings.HasPrefix(reachable, ":") {
		reachable = "localhost" + reachable
	}
	logger.Info("seoforge: verify reachability", "suggestion", fmt.Sprintf("curl http://%s/healthz", reachable))
	if err := http.ListenAndServe(cfg.Addr, server); err != nil {
		logger.Error("seoforge: server stopped", "error", err)
		fmt.Println("server stopped:", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if env := strings.TrimSpace(os.Getenv("SEOFORGE_CONFIG")); env != "" {
		return env
	}
	return "seoforge.yaml"
}
