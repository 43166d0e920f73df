package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/sngm3741/contact-form/api/internal/config"
	"github.com/sngm3741/contact-form/api/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: .env を読み込めませんでした: %v (環境変数のみで続行します)", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	backend, err := server.OpenBackend(context.Background(), cfg)
	if err != nil {
		cfg.ServerLog.Fatalf("永続化層の初期化に失敗しました: %v", err)
	}

	app := server.New(cfg, backend)
	if err := app.Run(); err != nil {
		log.Fatalf("サーバー起動に失敗: %v", err)
	}
}
