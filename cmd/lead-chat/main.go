package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lead-chat/internal/pkg/apidoc"
	"lead-chat/internal/pkg/config"
	"lead-chat/internal/pkg/cookies"
	"lead-chat/internal/pkg/gemini"
	"lead-chat/internal/pkg/httpHandlers"
	"lead-chat/internal/pkg/outbox"
	"lead-chat/internal/pkg/outboxMcp"
	"lead-chat/internal/pkg/profile"
	"lead-chat/internal/pkg/sessions"
	"lead-chat/internal/pkg/summarizer"
	"lead-chat/internal/pkg/web"
	"lead-chat/internal/pkg/websocketServer"
	webAssets "lead-chat/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Linux configuration examples
// LEAD_CHAT_PORT=321 LEAD_CHAT_APIKEY=... ./lead-chat
// ./lead-chat --Port 123 --McpEnabled

const applicationName = "lead-chat"
const serverShutdownTimeout = 5 * time.Second
const templatesDir = "templates"
const uiUrlPrefix = "/chat"
const visitorEvictionInterval = 5 * time.Minute

type services struct {
	handlers           *httpHandlers.ChatHandlers
	notificationServer websocketServer.WebsocketServer
	document           *apidoc.Document
	outboxServer       *outboxMcp.Server
}

func main() {
	setupZerolog()

	log.Info().Msg("Parsing configuration")
	appConfig := &applicationConfig{}
	config.Parse(appConfig, applicationName)
	if appConfig.APIKey == "" {
		appConfig.APIKey = os.Getenv("API_KEY")
	}

	log.Info().Msg("Starting up")
	ctx := context.Background()

	templates, err := web.TemplateParseFSRecursive(webAssets.TemplateFS, templatesDir, ".gohtml", httpHandlers.TemplateFuncs())
	if err != nil {
		log.Panic().Err(err).Msg("template parsing failed")
	}

	document, err := apidoc.Load(ctx)
	if err != nil {
		log.Panic().Err(err).Msg("API document loading failed")
	}

	company, err := profile.LoadCompanyConfig(appConfig.CompanyConfigFile)
	if err != nil {
		log.Panic().Err(err).Msg("company configuration loading failed")
	}

	backend, err := gemini.New(ctx, gemini.Config{
		APIKey:      appConfig.APIKey,
		Model:       appConfig.ModelName,
		Temperature: float32(appConfig.Temperature),
	})
	if err != nil {
		log.Panic().Err(err).Msg("gemini backend creation failed")
	}

	reportSummarizer, err := summarizer.New(ctx, summarizer.Config{
		Model:           appConfig.ReportModel,
		GeminiAPIKey:    appConfig.APIKey,
		OpenAIAPIKey:    appConfig.OpenAIAPIKey,
		OpenAIBaseURL:   appConfig.OpenAIBaseURL,
		AnthropicAPIKey: appConfig.AnthropicAPIKey,
	})
	if err != nil {
		log.Panic().Err(err).Msg("summarizer creation failed")
	}

	jar, err := cookies.NewJar(cookieSecret(appConfig.CookieSecret), appConfig.SecureCookie)
	if err != nil {
		log.Panic().Err(err).Msg("cookie jar creation failed")
	}

	box := outbox.New(appConfig.NotificationRecipient)
	sessionManager := sessions.New(backend, box, appConfig.AdminPassword)
	sessionManager.StartEviction(visitorEvictionInterval, cookies.MaxAge*time.Second)
	notificationServer := websocketServer.New(jar.VisitorID)
	handlers := httpHandlers.New(httpHandlers.Options{
		Templates:          templates,
		SessionManager:     sessionManager,
		NotificationServer: notificationServer,
		Jar:                jar,
		Companies:          profile.NewStore(company),
		Outbox:             box,
		Summarizer:         reportSummarizer,
		MaxImageBytes:      appConfig.MaxImageBytes,
	})

	app := services{
		handlers:           handlers,
		notificationServer: notificationServer,
		document:           document,
	}
	if appConfig.McpEnabled {
		app.outboxServer = outboxMcp.New(box)
	}

	listener := createNetListener(appConfig)
	server := startHttpServer(listener, app, appConfig.SimulatedDelay)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info().Msg("Application stopping")

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server.Shutdown failed")
	}

	sessionManager.Shutdown()

	log.Info().Msg("Application stopped")
}

func startHttpServer(listener net.Listener, app services, simulatedDelay int) *http.Server {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	httpLogger := httplog.NewLogger(applicationName, httplog.Options{
		LogLevel: slog.LevelDebug,
		JSON:     true,
		Concise:  true,
	})

	router := chi.NewRouter()
	router.Use(httplog.RequestLogger(httpLogger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"https://*",
			"http://*",
		},
	}))

	handlers := app.handlers
	page := func(request func(*http.Request, int) *web.Response) http.Handler {
		return web.Handler{Request: request, SimulatedDelay: simulatedDelay}
	}

	router.Handle("GET /static/*", http.FileServerFS(webAssets.StaticFS))

	router.Handle("GET "+uiUrlPrefix, page(handlers.Main))
	router.Handle("POST "+uiUrlPrefix+"/start", page(handlers.Start))
	router.Handle("POST "+uiUrlPrefix+"/intro-done", page(handlers.IntroDone))
	router.Handle("POST "+uiUrlPrefix+"/register", page(handlers.Register))
	router.Handle("POST "+uiUrlPrefix+"/back", page(handlers.Back))
	router.Handle("POST "+uiUrlPrefix+"/admin", page(handlers.Admin))
	router.Handle("POST "+uiUrlPrefix+"/settings", page(handlers.Settings))
	router.Handle("POST "+uiUrlPrefix+"/config", page(handlers.SaveConfig))
	router.Handle("POST "+uiUrlPrefix+"/config/knowledge", page(handlers.UploadKnowledge))

	router.HandleFunc("/api/notifications", app.notificationServer.Handler)

	router.Group(func(api chi.Router) {
		api.Use(app.document.Middleware)

		api.Handle("POST /api/ask", page(handlers.Ask))
		api.Handle("POST /api/feedback", page(handlers.Feedback))
		api.Handle("GET /api/transcript", page(handlers.Transcript))
		api.Handle("POST /api/report", page(handlers.Report))
		api.Handle("GET /api/outbox", page(handlers.Outbox))
		api.Handle("GET /api/openapi.json", page(app.document.Handler))
	})

	if app.outboxServer != nil {
		router.Handle("/mcp", app.outboxServer.Handler())
		log.Info().Msg("MCP outbox tools enabled at /mcp")
	}

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, uiUrlPrefix, http.StatusPermanentRedirect)
	})

	server := &http.Server{
		Handler: router,
	}

	go func() {
		log.Info().Str("address", listener.Addr().String()).Msg("Server is about to start")

		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server.Serve failed")
		}

		log.Info().Msg("Server stopped")
	}()
	return server
}

func createNetListener(appConfig *applicationConfig) net.Listener {
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", appConfig.Host, appConfig.Port))
	if err != nil {
		log.Fatal().Err(err).Msg("net.Listen failed")
	}

	return listener
}

// cookieSecret returns secret, or a random one when empty. Visitor cookies
// then don't survive a restart.
func cookieSecret(secret string) string {
	if secret != "" {
		return secret
	}

	buffer := make([]byte, 32)
	if _, err := rand.Read(buffer); err != nil {
		log.Panic().Err(err).Msg("rand.Read failed")
	}
	return hex.EncodeToString(buffer)
}

func setupZerolog() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = zerolog.New(os.Stderr).
		With().
		Timestamp().
		Logger()
}
