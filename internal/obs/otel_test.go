package obs

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestInitTracer_DisabledWithoutEndpoint(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	shutdown, err := InitTracer(context.Background(), TracerConfig{ServiceName: "lesson-booking"}, logger)
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
