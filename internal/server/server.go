package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	contactapp "github.com/sngm3741/contact-form/api/internal/contact/application"
	"github.com/sngm3741/contact-form/api/internal/config"
	"github.com/sngm3741/contact-form/api/internal/infrastructure/mailer"
	"github.com/sngm3741/contact-form/api/internal/interfaces/http/common"
	publichttp "github.com/sngm3741/contact-form/api/internal/interfaces/http/public"
)

// Server は HTTP サーバーのライフサイクルを管理し、問い合わせハンドラへ依存注入するコンポジションルート。
type Server struct {
	logger            *log.Logger
	backend           *Backend
	submissionService contactapp.SubmissionService
	location          *time.Location
	addr              string
	allowedOrigins    []string
}

// Run はHTTPサーバーを起動し、シグナル受信まで待機する。
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP サーバー起動: http://%s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	waitForShutdown(httpServer, errChan, s)
	return nil
}

// routes はミドルウェアとルーティングを組み立てる。ドメインロジックはここに書かない。
func (s *Server) routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())
	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:      s.logger,
		Submissions: s.submissionService,
	})
	publicHandler.Register(router)

	return router
}

// withCORS はプリフライト (OPTIONS) にのみ応答するミドルウェアを返す。
// 許可リストはプリフライトの Access-Control-Allow-Origin だけを決め、実リクエストはそのまま次へ渡す。
// "*" が許可されている場合はオリジンを反射せずワイルドカードを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin != "" && (allowAll || originAllowed(origin, allowed)) {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				}
				w.Header().Set("Access-Control-Allow-Methods", "POST,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Accept")
				w.Header().Set("Access-Control-Max-Age", "300")
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	_, ok := allowed[origin]
	return ok
}

// healthHandler は永続化層への疎通確認を行い、監視系からのヘルスチェック要求に応える。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.backend.Ping(ctx); err != nil {
			common.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		common.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().In(s.location).Format(time.RFC3339),
		})
	}
}

// shutdown は永続化層をタイムアウト付きで閉じ、プロセス終了時のリソースリークを防ぐ。
func (s *Server) shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.backend.Close(shutdownCtx); err != nil {
		s.logger.Printf("永続化層の切断時にエラー: %v", err)
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.shutdown(context.Background())
			srv.logger.Fatalf("サーバーが異常終了: %v", err)
		}
	case sig := <-sigChan:
		srv.logger.Printf("シグナル %s を受信。サーバー停止処理を開始します。", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Printf("サーバー停止時にエラー: %v", err)
		}
	}

	srv.shutdown(context.Background())
}

// New は Config と永続化層を受け取り、Notifier・アプリケーションサービス・ハンドラを組み立てた Server を返す。
func New(cfg config.Config, backend *Backend) *Server {
	logger := cfg.ServerLog
	if logger == nil {
		logger = log.New(os.Stdout, "[contact-form-api] ", log.LstdFlags|log.Lshortfile)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	var notifier contactapp.Notifier
	switch cfg.MailDriver {
	case config.MailDriverLog:
		notifier = mailer.NewLogNotifier(logger)
	default:
		notifier = mailer.NewGatewayNotifier(&http.Client{Timeout: cfg.MailGatewayTimeout}, cfg.MailGatewayURL)
	}

	srv := &Server{
		logger:         logger,
		backend:        backend,
		location:       loc,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
	}
	srv.submissionService = contactapp.NewSubmissionService(backend.Submissions, notifier, contactapp.Settings{
		SenderEmail: cfg.SenderEmail,
		OwnerEmail:  cfg.OwnerEmail,
		Location:    loc,
		Journal:     backend.Journal,
		Logger:      logger,
	})

	return srv
}
