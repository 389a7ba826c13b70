package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mtlprog/taskboard/internal/assist"
	"github.com/mtlprog/taskboard/internal/config"
	"github.com/mtlprog/taskboard/internal/database"
	"github.com/mtlprog/taskboard/internal/domain"
	"github.com/mtlprog/taskboard/internal/handler"
	"github.com/mtlprog/taskboard/internal/logger"
	"github.com/mtlprog/taskboard/internal/session"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "taskboard",
		Usage: "Team task scheduling board with escalations and a chat assistant",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "openai-api-key",
				Usage:   "API key for the chat assistant; chat is disabled when empty",
				EnvVars: []string{"OPENAI_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "openai-model",
				Value:   config.DefaultChatModel,
				Usage:   "Completion model for the chat assistant",
				EnvVars: []string{"OPENAI_MODEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the web server backed by PostgreSQL",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
					&cli.StringFlag{
						Name:     "database-url",
						Aliases:  []string{"d"},
						Value:    config.DefaultDatabaseURL,
						Usage:    "PostgreSQL database URL",
						EnvVars:  []string{"DATABASE_URL"},
						Required: true,
					},
				},
				Action: runServe,
			},
			{
				Name:  "demo",
				Usage: "Start the web server with a seeded in-memory backend, no database needed",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
				},
				Action: runDemo,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	db, err := database.Connect(ctx, c.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	h := handler.NewPostgres(db.Pool(), buildAssistant(c))

	return serveHTTP(ctx, c.String("port"), h)
}

func runDemo(c *cli.Context) error {
	gw := session.NewMemory()
	seedDemo(gw)

	slog.Info("demo mode: in-memory backend seeded",
		"manager_token", demoManagerToken,
		"employee_token", demoEmployeeToken,
	)

	h := handler.NewMemory(gw, buildAssistant(c))

	return serveHTTP(c.Context, c.String("port"), h)
}

// buildAssistant returns the chat assistant, or nil when no API key is
// configured.
func buildAssistant(c *cli.Context) *assist.Assistant {
	apiKey := c.String("openai-api-key")
	if apiKey == "" {
		slog.Warn("no OpenAI API key configured, chat assistant disabled")
		return nil
	}
	return assist.New(assist.NewOpenAIClient(apiKey, c.String("openai-model")))
}

func serveHTTP(ctx context.Context, port string, h *handler.Handler) error {
	if port == "" {
		port = config.DefaultPort
	}

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// Well-known demo tokens so the API is usable with curl right away.
const (
	demoManagerToken  = "demo-manager-token"
	demoEmployeeToken = "demo-employee-token"
)

// seedDemo loads a small schedule: one manager, two employees, a handful of
// tasks for today and one open escalation.
func seedDemo(gw *session.Memory) {
	now := time.Now()

	manager := domain.User{
		ID:        uuid.NewString(),
		Email:     "maria@example.com",
		FullName:  "Maria Petrova",
		Role:      domain.RoleManager,
		APIToken:  demoManagerToken,
		CreatedAt: now,
		UpdatedAt: now,
	}
	employee := domain.User{
		ID:        uuid.NewString(),
		Email:     "ivan@example.com",
		FullName:  "Ivan Sidorov",
		Role:      domain.RoleEmployee,
		APIToken:  demoEmployeeToken,
		CreatedAt: now,
		UpdatedAt: now,
	}
	second := domain.User{
		ID:        uuid.NewString(),
		Email:     "olga@example.com",
		FullName:  "Olga Ivanova",
		Role:      domain.RoleEmployee,
		APIToken:  "demo-employee-token-2",
		CreatedAt: now,
		UpdatedAt: now,
	}
	gw.Users.ReplaceAll([]domain.User{manager, employee, second})

	ctx := context.Background()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	drafts := []domain.TaskDraft{
		{
			Title:      "Prepare weekly report",
			Priority:   domain.TaskPriorityHigh,
			AssignedTo: &employee.ID,
			StartTime:  day.Add(9 * time.Hour),
			EndTime:    day.Add(10*time.Hour + 30*time.Minute),
		},
		{
			Title:      "Review supplier contracts",
			Priority:   domain.TaskPriorityMedium,
			AssignedTo: &second.ID,
			StartTime:  day.Add(11 * time.Hour),
			EndTime:    day.Add(13 * time.Hour),
		},
		{
			Title:     "Plan next sprint",
			Priority:  domain.TaskPriorityLow,
			StartTime: day.AddDate(0, 0, 1).Add(14 * time.Hour),
			EndTime:   day.AddDate(0, 0, 1).Add(15 * time.Hour),
		},
	}
	var tasks []*domain.Task
	for _, draft := range drafts {
		task, err := gw.InsertTask(ctx, &manager, draft)
		if err != nil {
			slog.Error("demo seed: create task failed", "error", err)
			continue
		}
		tasks = append(tasks, task)
	}

	if len(tasks) > 0 {
		_, err := gw.InsertEscalation(ctx, &employee, tasks[0].ID, manager.ID,
			"Need the Q3 numbers before I can finish this")
		if err != nil {
			slog.Error("demo seed: create escalation failed", "error", err)
		}
	}
}
