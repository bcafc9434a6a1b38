package mylog

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

func init() {
	if os.Getenv("VIO_LOG_FORMAT") != "plain" {
		New = newZapLogger
	}
}

type zapLogger struct {
	logger *zap.SugaredLogger
}

func newZapLogger(componentName string) Logger {
	var z *zap.Logger
	if os.Getenv("VIO_ENVIRONMENT") == "prod" {
		z = zap.Must(zap.NewProduction())
	} else {
		z = zap.Must(zap.NewDevelopment())
	}

	return zapLogger{
		logger: z.Sugar().Named(componentName),
	}
}

func (l zapLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	logger := l.logger.With("trace", traceLabel)

	switch severity {
	case SeverityDebug:
		logger.Debug(msg)
	case SeverityWarn:
		logger.Warn(msg)
	case SeverityError:
		logger.Error(msg)
	default:
		logger.Info(msg)
	}
}
