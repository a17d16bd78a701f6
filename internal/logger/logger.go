package logger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

type contextKey string

const ContextKey contextKey = "LOGGER"

// New builds a sugared zap logger. SCREENER_ENV=dev switches to the
// human-readable development encoder; everything else logs JSON.
func New() *zap.SugaredLogger {
	var (
		logger *zap.Logger
		err    error
	)
	env := os.Getenv("SCREENER_ENV")
	opts := []zap.Option{
		zap.AddStacktrace(zap.ErrorLevel),
	}

	switch strings.ToLower(env) {
	case "dev":
		logger, err = zap.NewDevelopment(opts...)
	case "test":
		logger = zap.NewNop()
	default:
		opts = append(opts, zap.Fields(zap.String("SCREENER_ENV", env)))
		logger, err = zap.NewProduction(opts...)
	}

	if err != nil {
		panic(fmt.Errorf("failed to initialize logger: %w", err))
	}

	return logger.Sugar()
}

func WithContext(ctx context.Context, log *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, ContextKey, log)
}

func FromContext(ctx context.Context) *zap.SugaredLogger {
	log, ok := ctx.Value(ContextKey).(*zap.SugaredLogger)
	if !ok || log == nil {
		log = zap.S()
	}
	return log
}

func init() {
	zap.ReplaceGlobals(New().Desugar())
}
