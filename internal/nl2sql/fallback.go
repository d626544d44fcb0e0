package nl2sql

import (
	"context"
	"log/slog"

	"github.com/talkdata/talkdata/internal/observability"
)

// Source names which converter produced a result.
const (
	SourceService  = "service"
	SourceTemplate = "template"
)

// Converted is a conversion result tagged with where it came from.
type Converted struct {
	Result
	Source string
}

// FallbackConverter tries the primary converter and degrades to the local
// templates on any failure. Convert never returns an error: a question always
// gets SQL, possibly template SQL with lower confidence. A nil primary means
// mock mode and goes straight to the templates.
type FallbackConverter struct {
	primary  Converter
	fallback *MockConverter
	logger   *slog.Logger
}

func NewFallbackConverter(primary Converter, logger *slog.Logger) *FallbackConverter {
	return &FallbackConverter{
		primary:  primary,
		fallback: NewMockConverter(),
		logger:   logger,
	}
}

func (c *FallbackConverter) Convert(ctx context.Context, req Request) (Converted, error) {
	if c.primary != nil {
		result, err := c.primary.Convert(ctx, req)
		if err == nil {
			return Converted{Result: result, Source: SourceService}, nil
		}
		c.logger.WarnContext(ctx, "conversion service failed, using template fallback",
			slog.String("error", err.Error()))
		observability.IncrementConversionFallback()
	}

	result, _ := c.fallback.Convert(ctx, req)
	return Converted{Result: result, Source: SourceTemplate}, nil
}

// CorrectSQL degrades differently: mock mode applies the local rewrite, but
// when a live service fails the original SQL comes back unchanged with zero
// confidence so the caller knows the repair went nowhere.
func (c *FallbackConverter) CorrectSQL(ctx context.Context, req CorrectionRequest) (Correction, error) {
	if c.primary == nil {
		return c.fallback.CorrectSQL(ctx, req)
	}
	correction, err := c.primary.CorrectSQL(ctx, req)
	if err == nil {
		return correction, nil
	}
	c.logger.WarnContext(ctx, "SQL correction failed",
		slog.String("error", err.Error()))
	return Correction{SQL: req.SQL, Confidence: 0}, nil
}
