package startup

import (
	"booking_service/authorization"
	"booking_service/casbinAuthorization"
	"booking_service/domain"
	"booking_service/handlers"
	application "booking_service/service"
	"booking_service/startup/config"
	"booking_service/storage"
	"booking_service/store"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "booking_service"

type Server struct {
	config *config.Config
	logger *logrus.Logger
}

type CustomFormatter struct{}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var fields strings.Builder
	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&fields, " %s=%v", key, entry.Data[key])
	}

	msg := fmt.Sprintf("[%s] [%s] [%s] %s%s\n",
		entry.Time.Format("2006-01-02T15:04:05Z07:00"),
		entry.Level,
		uuid.NewString(),
		entry.Message,
		fields.String(),
	)

	return []byte(msg), nil
}

func NewServer(config *config.Config) *Server {
	return &Server{
		config: config,
		logger: logrus.New(),
	}
}

func (server *Server) initLogger() {
	server.logger.SetFormatter(&CustomFormatter{})
	if server.config.LogFilePath == "" {
		server.logger.SetOutput(os.Stdout)
		return
	}

	writer, err := rotatelogs.New(
		server.config.LogFilePath+"_%Y%m%d%H%M",
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
	if err != nil {
		server.logger.Fatalf("Failed to create rotatelogs writer: %v", err)
	}
	server.logger.SetOutput(writer)
}

func (server *Server) initTracer() (trace.Tracer, func(context.Context) error) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	if server.config.JaegerAddress == "" {
		server.logger.Warn("JAEGER_ADDRESS not set, tracing disabled")
		return trace.NewNoopTracerProvider().Tracer(serviceName), func(context.Context) error { return nil }
	}

	exp, err := newExporter(server.config.JaegerAddress)
	if err != nil {
		server.logger.Fatalf("Failed to Initialize Exporter: %v", err)
	}

	tp := newTraceProvider(exp)
	otel.SetTracerProvider(tp)
	return tp.Tracer(serviceName), tp.Shutdown
}

func (server *Server) initMongoClient(httpClient *http.Client) *mongo.Client {
	client, err := store.GetClientWithHTTPConfig(server.config.BookingDBHost, server.config.BookingDBPort, httpClient)
	if err != nil {
		server.logger.Fatal(err)
	}
	return client
}

func (server *Server) initWeatherCache(tracer trace.Tracer) domain.WeatherCache {
	if server.config.WeatherCacheHost == "" {
		return nil
	}
	client, err := store.GetRedisClient(server.config.WeatherCacheHost, server.config.WeatherCachePort)
	if err != nil {
		server.logger.Warnf("Weather cache unavailable, continuing without it: %v", err)
		return nil
	}
	return store.NewWeatherRedisCache(client, tracer, server.logger)
}

func (server *Server) initImageStorage(tracer trace.Tracer) (*storage.FileStorage, domain.ImageStorage) {
	if server.config.HDFSUri == "" {
		return nil, nil
	}
	fileStorage, err := storage.New(server.config.HDFSUri, server.logger, tracer)
	if err != nil {
		server.logger.Warnf("Image storage unavailable, continuing without it: %v", err)
		return nil, nil
	}
	return fileStorage, fileStorage
}

func (server *Server) initTokenManager() *authorization.TokenManager {
	tokens, err := authorization.NewTokenManager(server.config.SecretKey)
	if err != nil {
		server.logger.Fatal(err)
	}
	return tokens
}

func (server *Server) Start() {
	server.initLogger()

	tracer, shutdownTracer := server.initTracer()
	defer func() { _ = shutdownTracer(context.Background()) }()

	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     10,
		},
	}

	mongoClient := server.initMongoClient(httpClient)
	defer func(mongoClient *mongo.Client, ctx context.Context) {
		if err := mongoClient.Disconnect(ctx); err != nil {
			server.logger.Errorf("Mongo disconnect: %v", err)
		}
	}(mongoClient, context.Background())

	fileStorage, imageStorage := server.initImageStorage(tracer)
	if fileStorage != nil {
		defer fileStorage.Close()
	}

	database := server.config.BookingDBName
	bookingStore := store.NewBookingMongoDBStore(mongoClient, database, tracer, server.logger)
	packageStore := store.NewPackageMongoDBStore(mongoClient, database, tracer, server.logger)
	userStore := store.NewUserMongoDBStore(mongoClient, database, tracer, server.logger)
	weatherCache := server.initWeatherCache(tracer)
	tokens := server.initTokenManager()

	notifier := application.NewMailNotifier(application.SMTPConfig{
		Host:     server.config.SMTPHost,
		Port:     server.config.SMTPPort,
		Username: server.config.SMTPUser,
		Password: server.config.SMTPPassword,
		From:     server.config.SMTPFrom,
	}, tracer, server.logger)

	bookingService := application.NewBookingService(bookingStore, packageStore, notifier, tracer, server.logger)
	packageService := application.NewPackageService(packageStore, imageStorage, tracer, server.logger)
	authService := application.NewAuthService(userStore, tokens, tracer, server.logger)
	weatherService := application.NewWeatherService(application.PythonRunner{
		Python: server.config.WeatherPython,
		Script: server.config.WeatherScript,
	}, weatherCache, tracer, server.logger)

	server.start(tokens,
		handlers.NewBookingHandler(bookingService, tokens, tracer, server.logger),
		handlers.NewPackageHandler(packageService, tracer, server.logger),
		handlers.NewAuthHandler(authService, tracer, server.logger),
		handlers.NewWeatherHandler(weatherService, tracer, server.logger),
	)
}

type routeInitializer interface {
	Init(router *mux.Router)
}

func (server *Server) start(tokens *authorization.TokenManager, routes ...routeInitializer) {
	router := mux.NewRouter()
	router.Use(handlers.MiddlewareContentTypeSet)
	for _, route := range routes {
		route.Init(router)
	}

	enforcer, err := casbinAuthorization.NewEnforcer("./rbac_model.conf", "./policy.csv")
	if err != nil {
		server.logger.Fatal(err)
	}
	var authorized http.Handler = casbinAuthorization.CasbinMiddleware(enforcer, tokens, server.logger)(router)
	authorized = handlers.AccessLogMiddleware(server.logger)(authorized)
	authorized = handlers.ExtractTraceInfoMiddleware(authorized)

	cors := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{server.config.CorsOrigin}),
		gorillaHandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", server.config.Port),
		Handler:      cors(authorized),
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	wait := time.Second * 15
	go func() {
		server.logger.Infof("Server listening on port %s", server.config.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.logger.Error(err)
		}
	}()

	c := make(chan os.Signal, 1)

	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)

	<-c

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		server.logger.Fatalf("Error Shutting Down Server %s", err)
	}
	server.logger.Info("Server Gracefully Stopped")
}

func newExporter(address string) (*jaeger.Exporter, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(address)))
	if err != nil {
		return nil, err
	}
	return exp, nil
}

func newTraceProvider(exp sdktrace.SpanExporter) *sdktrace.TracerProvider {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		),
	)

	if err != nil {
		panic(err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(r),
	)
}
