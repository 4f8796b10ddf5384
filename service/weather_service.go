package application

import (
	"booking_service/domain"
	"booking_service/errors"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ScriptRunner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// PythonRunner runs the weather export script and returns its stdout. A
// non-zero exit status is an error carrying the script's stderr.
type PythonRunner struct {
	Python string
	Script string
}

func (runner PythonRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, runner.Python, append([]string{runner.Script}, args...)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %s", runner.Python, runner.Script, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

type WeatherService struct {
	runner ScriptRunner
	cache  domain.WeatherCache
	cb     *gobreaker.CircuitBreaker
	tracer trace.Tracer
	logger *logrus.Logger
}

// NewWeatherService accepts a nil cache, in which case every prediction runs
// the script.
func NewWeatherService(runner ScriptRunner, cache domain.WeatherCache, tracer trace.Tracer, logger *logrus.Logger) *WeatherService {
	return &WeatherService{
		runner: runner,
		cache:  cache,
		cb:     CircuitBreaker("weatherService", logger),
		tracer: tracer,
		logger: logger,
	}
}

func (service *WeatherService) Predict(ctx context.Context, request *domain.WeatherRequest) (json.RawMessage, error) {
	ctx, span := service.tracer.Start(ctx, "WeatherService.Predict")
	defer span.End()

	service.logger.Infoln("WeatherService.Predict : Predict service reached")

	request.City = strings.TrimSpace(request.City)
	request.Date = strings.TrimSpace(request.Date)
	if err := request.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, toValidationError(errors.InvalidRequest, err)
	}

	key := cacheKey(request)
	if service.cache != nil {
		if cached, err := service.cache.GetCachedValue(ctx, key); err == nil && json.Valid(cached) {
			return json.RawMessage(cached), nil
		}
	}

	result, err := service.cb.Execute(func() (interface{}, error) {
		return service.runner.Run(ctx, request.City, request.Date)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		service.logger.Errorf("WeatherService.Predict : %v", err)
		return nil, fmt.Errorf("%w: %v", errors.ErrWeatherUnavailable, err)
	}

	out := bytes.TrimSpace(result.([]byte))
	if !json.Valid(out) {
		span.SetStatus(codes.Error, errors.WeatherParseFailure)
		service.logger.Errorf("WeatherService.Predict : script returned non JSON output: %q", out)
		return nil, errors.ErrWeatherParse
	}

	if service.cache != nil {
		if err := service.cache.PostCacheData(ctx, key, out); err != nil {
			service.logger.Warnf("WeatherService.Predict : result not cached: %v", err)
		}
	}
	return json.RawMessage(out), nil
}

func cacheKey(request *domain.WeatherRequest) string {
	return fmt.Sprintf("weather:%s:%s", strings.ToLower(request.City), request.Date)
}
