package main

import (
	"net/http"
	"os"
	"time"

	"transitionos/internal/auth"
	"transitionos/internal/config"
	"transitionos/internal/handlers"
	"transitionos/internal/logger"
	"transitionos/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(!cfg.Production())
	if err != nil {
		panic(err)
	}
	defer zl.Sync()
	log := zl.Sugar()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalw("failed to create upload directory", "dir", cfg.UploadDir, "error", err)
	}

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		log.Fatalw("failed to open database", "path", cfg.DBPath, "error", err)
	}
	defer db.Close()

	if err := bootstrapAdmin(db, cfg, log); err != nil {
		log.Fatalw("failed to bootstrap admin user", "error", err)
	}

	h := handlers.NewHandlers(db, cfg.TemplateDir, cfg.UploadDir, cfg.Production(), log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           setupRouter(h, cfg.StaticDir),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Infow("starting server", "addr", cfg.Addr, "env", cfg.Env)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}

// setupRouter registers the route groups: auth, dashboard, expenses, goals.
func setupRouter(h *handlers.Handlers, staticDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", h.Root)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", h.LoginForm)
		r.Post("/login", h.Login)
		r.With(h.AuthMiddleware).Get("/logout", h.Logout)
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(h.AuthMiddleware)
		r.Get("/", h.Dashboard)
		r.Get("/dashboard", h.Dashboard)
	})

	r.Route("/expenses", func(r chi.Router) {
		r.Use(h.AuthMiddleware)
		r.Get("/", h.ListExpenses)
		r.Post("/", h.CreateExpense)
		r.Get("/new", h.CreateExpenseForm)
		r.Get("/{id}/edit", h.EditExpenseForm)
		r.Post("/{id}", h.UpdateExpense)
		r.Post("/{id}/delete", h.DeleteExpense)
	})

	r.Route("/goals", func(r chi.Router) {
		r.Use(h.AuthMiddleware)
		r.Get("/", h.ListGoals)
	})

	fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir)))
	r.Get("/static/*", fileServer.ServeHTTP)

	return r
}

// bootstrapAdmin creates a first user from ADMIN_USER/ADMIN_PASSWORD when the
// users table is empty, so a fresh install is immediately usable.
func bootstrapAdmin(db *storage.DB, cfg config.Config, log *zap.SugaredLogger) error {
	if cfg.AdminUser == "" || cfg.AdminPassword == "" {
		return nil
	}

	count, err := db.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	user, err := db.CreateUser(cfg.AdminUser, cfg.AdminEmail, hash)
	if err != nil {
		return err
	}

	log.Infow("created bootstrap admin user", "username", user.Username, "id", user.ID)
	return nil
}
