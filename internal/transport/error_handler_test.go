package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"verify-proxy/internal/domain"
)

func TestErrorHandlerStatusMapping(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation error maps to 400",
			err:        fmt.Errorf("%w: emails is required", domain.ErrValidation),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "shutting down maps to 503",
			err:        domain.ErrShuttingDown,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "fiber error keeps its code",
			err:        fiber.NewError(fiber.StatusBadRequest, "email query parameter is required"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown error maps to 500",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			app := fiber.New(fiber.Config{
				ErrorHandler: ErrorHandler(zap.NewNop()),
			})
			app.Get("/", func(c *fiber.Ctx) error {
				return tc.err
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}

			var body struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Error != tc.err.Error() {
				t.Fatalf("error = %q, want %q", body.Error, tc.err.Error())
			}
		})
	}
}

func TestErrorHandlerLogsRequestDetails(t *testing.T) {
	t.Parallel()

	core, recorded := observer.New(zapcore.ErrorLevel)
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(zap.New(core)),
	})
	app.Get("/broken", func(c *fiber.Ctx) error {
		c.Locals("requestid", "req-7")
		return domain.ErrShuttingDown
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/broken", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	resp.Body.Close()

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["path"] != "/broken" {
		t.Fatalf("path = %v, want /broken", fields["path"])
	}
	if fields["requestId"] != "req-7" {
		t.Fatalf("requestId = %v, want req-7", fields["requestId"])
	}
	if fields["status"] != int64(http.StatusServiceUnavailable) {
		t.Fatalf("status = %v, want 503", fields["status"])
	}
}
