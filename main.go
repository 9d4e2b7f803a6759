package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spellarena/config"
	"spellarena/server"
)

// spellarena 入口：加载配置，启动 HTTP + WebSocket 服务，并初始化房间管理器
func main() {
	var (
		cfgPath string
		envFile string
		addr    string
	)
	flag.StringVar(&cfgPath, "config", "spellarena.yaml", "YAML config file (optional)")
	flag.StringVar(&envFile, "env", ".env", "dotenv file with SPELLARENA_* overrides (optional)")
	flag.StringVar(&addr, "addr", "", "server listen address, e.g. :8080 (overrides config)")
	flag.Parse()

	cfg, err := config.Load(cfgPath, envFile)
	if err != nil {
		panic(err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	// zap 日志写入文件（带滚动）
	if err := server.InitLogger(cfg.Log); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	rm := server.NewRoomManager(cfg)
	// 先预创建默认房间，便于快速试跑
	_ = rm.GetOrCreateRoom(cfg.Server.DefaultArena)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", rm.HandleWS)
	// 管理与监控接口
	mux.HandleFunc("/admin/config", rm.HandleAdminConfig)
	mux.HandleFunc("/metrics", rm.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	go func() {
		server.Log.Infof("spellarena listening on %s (tick %s, broadcast %d Hz, codec %s)",
			cfg.Server.Addr, cfg.Sim.TickInterval, cfg.Server.BroadcastHz, cfg.Server.Codec)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		server.Log.Warnf("http shutdown: %v", err)
	}
	rm.Stop()
}
