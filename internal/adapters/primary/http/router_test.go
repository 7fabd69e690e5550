package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	mw "github.com/lorrc/ticket-board/internal/adapters/primary/http/middleware"
	"github.com/lorrc/ticket-board/internal/adapters/secondary/memory"
	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/mocks"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/lorrc/ticket-board/internal/core/services"
	"github.com/lorrc/ticket-board/internal/infrastructure/clock"
)

var testNow = time.Date(2024, time.June, 10, 9, 15, 0, 0, time.UTC)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func okPing(context.Context) error { return nil }

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouterWithSnapshots(t *testing.T, snapshots ports.TicketSnapshotStore) (stdhttp.Handler, *services.TicketStore) {
	t.Helper()
	logger := newTestLogger()
	clk := clock.Fake(testNow)

	store := services.NewTicketStore(snapshots, clk, logger)
	require.NoError(t, store.Load(context.Background()))

	router := NewRouter(RouterDeps{
		Tickets:        store,
		Board:          services.NewBoardService(store, clk),
		Storage:        pingFunc(okPing),
		AllowedOrigins: []string{"http://localhost:5173"},
		Version:        "test",
		Logger:         logger,
	})
	return router, store
}

func newTestRouter(t *testing.T) (stdhttp.Handler, *services.TicketStore) {
	t.Helper()
	return newRouterWithSnapshots(t, memory.NewTicketSnapshotStore(newTestLogger()))
}

func doRequest(t *testing.T, router stdhttp.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			payload, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(payload)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&v))
	return v
}

func createViaAPI(t *testing.T, router stdhttp.Handler, title, priority string) TicketDTO {
	t.Helper()
	recorder := doRequest(t, router, stdhttp.MethodPost, "/api/v1/tickets", map[string]string{
		"title":       title,
		"description": "Something needs attention",
		"priority":    priority,
	})
	require.Equal(t, stdhttp.StatusCreated, recorder.Code, recorder.Body.String())
	return decode[CreateTicketResponse](t, recorder).TicketDTO
}

func TestCreateTicket(t *testing.T) {
	t.Run("printer jam", func(t *testing.T) {
		router, _ := newTestRouter(t)

		recorder := doRequest(t, router, stdhttp.MethodPost, "/api/v1/tickets", map[string]string{
			"title":       "Printer jam",
			"description": "Tray 2 stuck",
			"priority":    "High",
		})

		require.Equal(t, stdhttp.StatusCreated, recorder.Code)
		assert.Empty(t, recorder.Header().Get(StorageWarningHeader))

		response := decode[CreateTicketResponse](t, recorder)
		assert.NotEmpty(t, response.ID)
		assert.Equal(t, "Printer jam", response.Title)
		assert.Equal(t, "Tray 2 stuck", response.Description)
		assert.Equal(t, "High", response.Priority)
		assert.Equal(t, "Open", response.Status)
		assert.Equal(t, "2024-06-10T09:15:00Z", response.CreatedAt)
		assert.Empty(t, response.Comments)
		assert.Empty(t, response.Warning)
	})

	t.Run("priority defaults to low", func(t *testing.T) {
		router, _ := newTestRouter(t)

		ticket := createViaAPI(t, router, "No priority given", "")

		assert.Equal(t, "Low", ticket.Priority)
	})

	t.Run("blank priority defaults to low", func(t *testing.T) {
		router, _ := newTestRouter(t)

		ticket := createViaAPI(t, router, "Whitespace priority", "   ")

		assert.Equal(t, "Low", ticket.Priority)
	})

	t.Run("priority is case insensitive", func(t *testing.T) {
		router, _ := newTestRouter(t)

		ticket := createViaAPI(t, router, "Shouting priority", "MEDIUM")

		assert.Equal(t, "Medium", ticket.Priority)
	})

	t.Run("invalid fields", func(t *testing.T) {
		router, store := newTestRouter(t)

		recorder := doRequest(t, router, stdhttp.MethodPost, "/api/v1/tickets", map[string]string{
			"title":       "ab",
			"description": "",
			"priority":    "Urgent",
		})

		require.Equal(t, stdhttp.StatusUnprocessableEntity, recorder.Code)
		response := decode[ValidationErrorResponse](t, recorder)
		assert.Equal(t, "VALIDATION_ERROR", response.Code)
		assert.Contains(t, response.Fields, "title")
		assert.Contains(t, response.Fields, "description")
		assert.Contains(t, response.Fields, "priority")
		assert.Empty(t, store.ListTickets(context.Background()))
	})

	t.Run("malformed body", func(t *testing.T) {
		router, _ := newTestRouter(t)

		recorder := doRequest(t, router, stdhttp.MethodPost, "/api/v1/tickets", "{not json")

		require.Equal(t, stdhttp.StatusBadRequest, recorder.Code)
		assert.Equal(t, "BAD_REQUEST", decode[ErrorResponse](t, recorder).Code)
	})

	t.Run("missing body", func(t *testing.T) {
		router, _ := newTestRouter(t)

		recorder := doRequest(t, router, stdhttp.MethodPost, "/api/v1/tickets", nil)

		require.Equal(t, stdhttp.StatusBadRequest, recorder.Code)
		assert.Equal(t, "Request body is required", decode[ErrorResponse](t, recorder).Error)
	})
}

func TestGetTicket(t *testing.T) {
	router, _ := newTestRouter(t)
	created := createViaAPI(t, router, "Printer jam", "High")

	t.Run("found", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodGet, "/api/v1/tickets/"+created.ID, nil)

		require.Equal(t, stdhttp.StatusOK, recorder.Code)
		assert.Equal(t, created, decode[TicketDTO](t, recorder))
	})

	t.Run("not found", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodGet, "/api/v1/tickets/does-not-exist", nil)

		require.Equal(t, stdhttp.StatusNotFound, recorder.Code)
		assert.Equal(t, "TICKET_NOT_FOUND", decode[ErrorResponse](t, recorder).Code)
	})
}

func TestListTickets(t *testing.T) {
	router, _ := newTestRouter(t)
	jam := createViaAPI(t, router, "Printer jam", "High")
	vpn := createViaAPI(t, router, "VPN drops", "Low")
	createViaAPI(t, router, "Monitor flicker", "High")

	type listResponse = PaginatedResponse[TicketDTO]

	t.Run("all", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodGet, "/api/v1/tickets?status=All&priority=All", nil)

		require.Equal(t, stdhttp.StatusOK, recorder.Code)
		response := decode[listResponse](t, recorder)
		assert.Len(t, response.Data, 3)
		assert.Equal(t, 3, response.Pagination.TotalCount)
		assert.False(t, response.Pagination.HasMore)
	})

	t.Run("filters combine", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodGet, "/api/v1/tickets?priority=high&search=PRINTER", nil)

		require.Equal(t, stdhttp.StatusOK, recorder.Code)
		response := decode[listResponse](t, recorder)
		require.Len(t, response.Data, 1)
		assert.Equal(t, jam.ID, response.Data[0].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodGet, "/api/v1/tickets?limit=1&offset=1", nil)

		require.Equal(t, stdhttp.StatusOK, recorder.Code)
		response := decode[listResponse](t, recorder)
		require.Len(t, response.Data, 1)
		assert.Equal(t, vpn.ID, response.Data[0].ID)
		assert.True(t, response.Pagination.HasMore)
	})

	t.Run("offset past the end", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodGet, "/api/v1/tickets?offset=10", nil)

		require.Equal(t, stdhttp.StatusOK, recorder.Code)
		response := decode[listResponse](t, recorder)
		assert.Empty(t, response.Data)
		assert.False(t, response.Pagination.HasMore)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodGet, "/api/v1/tickets?status=Closed", nil)

		require.Equal(t, stdhttp.StatusUnprocessableEntity, recorder.Code)
		assert.Contains(t, decode[ValidationErrorResponse](t, recorder).Fields, "status")
	})
}

func TestUpdateTicketStatus(t *testing.T) {
	router, store := newTestRouter(t)
	created := createViaAPI(t, router, "Printer jam", "High")
	path := "/api/v1/tickets/" + created.ID + "/status"

	t.Run("accepts loose spelling", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodPatch, path, map[string]string{"status": "in_progress"})

		require.Equal(t, stdhttp.StatusNoContent, recorder.Code)
		ticket, err := store.GetTicket(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, ticket.Status)
	})

	t.Run("invalid status", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodPatch, path, map[string]string{"status": "Closed"})

		require.Equal(t, stdhttp.StatusUnprocessableEntity, recorder.Code)
		ticket, err := store.GetTicket(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, ticket.Status)
	})

	t.Run("unknown ticket is a no-op", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodPatch, "/api/v1/tickets/missing/status",
			map[string]string{"status": "Resolved"})

		assert.Equal(t, stdhttp.StatusNoContent, recorder.Code)
	})
}

func TestDeleteTicket(t *testing.T) {
	router, store := newTestRouter(t)
	created := createViaAPI(t, router, "Printer jam", "High")

	recorder := doRequest(t, router, stdhttp.MethodDelete, "/api/v1/tickets/"+created.ID, nil)
	require.Equal(t, stdhttp.StatusNoContent, recorder.Code)
	assert.Empty(t, store.ListTickets(context.Background()))

	recorder = doRequest(t, router, stdhttp.MethodGet, "/api/v1/tickets/"+created.ID, nil)
	assert.Equal(t, stdhttp.StatusNotFound, recorder.Code)

	recorder = doRequest(t, router, stdhttp.MethodDelete, "/api/v1/tickets/"+created.ID, nil)
	assert.Equal(t, stdhttp.StatusNoContent, recorder.Code)
}

func TestComments(t *testing.T) {
	router, _ := newTestRouter(t)
	created := createViaAPI(t, router, "Printer jam", "High")
	path := "/api/v1/tickets/" + created.ID + "/comments"

	listComments := func(t *testing.T) []CommentDTO {
		t.Helper()
		recorder := doRequest(t, router, stdhttp.MethodGet, path, nil)
		require.Equal(t, stdhttp.StatusOK, recorder.Code)
		return decode[ListResponse[CommentDTO]](t, recorder).Data
	}

	t.Run("empty comment rejected", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodPost, path, map[string]string{"body": "   "})

		require.Equal(t, stdhttp.StatusUnprocessableEntity, recorder.Code)
		assert.Empty(t, listComments(t))
	})

	t.Run("add and delete", func(t *testing.T) {
		for _, body := range []string{"Cleared the tray", "Still jams"} {
			recorder := doRequest(t, router, stdhttp.MethodPost, path, map[string]string{"body": body})
			require.Equal(t, stdhttp.StatusNoContent, recorder.Code)
		}

		assert.Equal(t, []CommentDTO{
			{Index: 0, Body: "Cleared the tray"},
			{Index: 1, Body: "Still jams"},
		}, listComments(t))

		recorder := doRequest(t, router, stdhttp.MethodDelete, path+"/0", nil)
		require.Equal(t, stdhttp.StatusNoContent, recorder.Code)

		assert.Equal(t, []CommentDTO{{Index: 0, Body: "Still jams"}}, listComments(t))
	})

	t.Run("out of range index is a no-op", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodDelete, path+"/9", nil)

		assert.Equal(t, stdhttp.StatusNoContent, recorder.Code)
		assert.Len(t, listComments(t), 1)
	})

	t.Run("non-numeric index", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodDelete, path+"/first", nil)

		require.Equal(t, stdhttp.StatusUnprocessableEntity, recorder.Code)
		assert.Contains(t, decode[ValidationErrorResponse](t, recorder).Fields, "index")
	})

	t.Run("unknown ticket", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodGet, "/api/v1/tickets/missing/comments", nil)

		assert.Equal(t, stdhttp.StatusNotFound, recorder.Code)
	})
}

func TestBoard(t *testing.T) {
	router, store := newTestRouter(t)
	jam := createViaAPI(t, router, "Printer jam", "High")
	createViaAPI(t, router, "VPN drops", "Low")
	require.NoError(t, store.UpdateStatus(context.Background(), ports.UpdateStatusParams{
		TicketID: jam.ID,
		Status:   domain.StatusResolved,
	}))

	recorder := doRequest(t, router, stdhttp.MethodGet, "/api/v1/board", nil)

	require.Equal(t, stdhttp.StatusOK, recorder.Code)
	response := decode[BoardResponse](t, recorder)
	require.Len(t, response.Columns, 3)
	assert.Equal(t, "Open", response.Columns[0].Status)
	assert.Equal(t, 1, response.Columns[0].Count)
	assert.Equal(t, "In Progress", response.Columns[1].Status)
	assert.Empty(t, response.Columns[1].Tickets)
	assert.Equal(t, "Resolved", response.Columns[2].Status)
	assert.Equal(t, jam.ID, response.Columns[2].Tickets[0].ID)

	t.Run("priority filter", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodGet, "/api/v1/board?priority=Low", nil)

		require.Equal(t, stdhttp.StatusOK, recorder.Code)
		response := decode[BoardResponse](t, recorder)
		assert.Equal(t, 1, response.Columns[0].Count)
		assert.Equal(t, 0, response.Columns[2].Count)
	})
}

func TestMoveTicket(t *testing.T) {
	router, store := newTestRouter(t)
	created := createViaAPI(t, router, "Printer jam", "High")

	t.Run("drop on a column", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodPost, "/api/v1/board/moves",
			map[string]string{"ticketId": created.ID, "to": "Resolved"})

		require.Equal(t, stdhttp.StatusOK, recorder.Code)
		response := decode[MoveTicketResponse](t, recorder)
		assert.True(t, response.Applied)
		require.NotNil(t, response.Ticket)
		assert.Equal(t, "Resolved", response.Ticket.Status)

		// Only the status changes.
		before := created
		before.Status = "Resolved"
		assert.Equal(t, before, *response.Ticket)
	})

	t.Run("drop outside the board", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodPost, "/api/v1/board/moves",
			map[string]string{"ticketId": created.ID, "to": "trash"})

		require.Equal(t, stdhttp.StatusOK, recorder.Code)
		response := decode[MoveTicketResponse](t, recorder)
		assert.False(t, response.Applied)
		assert.Equal(t, services.DropReasonInvalidTarget, response.Reason)

		ticket, err := store.GetTicket(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusResolved, ticket.Status)
	})

	t.Run("unknown ticket", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodPost, "/api/v1/board/moves",
			map[string]string{"ticketId": "missing", "to": "Open"})

		assert.Equal(t, stdhttp.StatusNotFound, recorder.Code)
	})

	t.Run("ticket id required", func(t *testing.T) {
		recorder := doRequest(t, router, stdhttp.MethodPost, "/api/v1/board/moves",
			map[string]string{"to": "Open"})

		assert.Equal(t, stdhttp.StatusUnprocessableEntity, recorder.Code)
	})
}

func TestMetrics(t *testing.T) {
	router, store := newTestRouter(t)
	jam := createViaAPI(t, router, "Printer jam", "High")
	createViaAPI(t, router, "VPN drops", "Low")
	createViaAPI(t, router, "Monitor flicker", "Medium")
	require.NoError(t, store.UpdateStatus(context.Background(), ports.UpdateStatusParams{
		TicketID: jam.ID,
		Status:   domain.StatusResolved,
	}))

	recorder := doRequest(t, router, stdhttp.MethodGet, "/api/v1/metrics", nil)

	require.Equal(t, stdhttp.StatusOK, recorder.Code)
	assert.Equal(t, MetricsDTO{
		Total:           3,
		ResolvedPercent: 33,
		OpenCount:       2,
		NewTodayCount:   3,
	}, decode[MetricsDTO](t, recorder))
}

func TestStorageWarning(t *testing.T) {
	snapshots := mocks.NewMockTicketSnapshotStore()
	snapshots.On("Load", mock.Anything).Return([]*domain.Ticket{}, nil)
	snapshots.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	router, store := newRouterWithSnapshots(t, snapshots)

	first := doRequest(t, router, stdhttp.MethodPost, "/api/v1/tickets", map[string]string{
		"title":       "Printer jam",
		"description": "Tray 2 stuck",
	})
	require.Equal(t, stdhttp.StatusCreated, first.Code)
	assert.Equal(t, services.PersistenceWarningMessage, first.Header().Get(StorageWarningHeader))
	assert.Equal(t, services.PersistenceWarningMessage, decode[CreateTicketResponse](t, first).Warning)

	second := doRequest(t, router, stdhttp.MethodPost, "/api/v1/tickets", map[string]string{
		"title":       "VPN drops",
		"description": "Every ten minutes",
	})
	require.Equal(t, stdhttp.StatusCreated, second.Code)
	assert.Empty(t, second.Header().Get(StorageWarningHeader), "warning is shown once per episode")

	assert.Len(t, store.ListTickets(context.Background()), 2, "changes stay in memory")

	ready := doRequest(t, router, stdhttp.MethodGet, "/health/ready", nil)
	require.Equal(t, stdhttp.StatusServiceUnavailable, ready.Code)
	response := decode[HealthResponse](t, ready)
	assert.Equal(t, "unhealthy", response.Checks["persistence"].Status)
	assert.Equal(t, "disk full", response.Checks["persistence"].Message)
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		t.Run(path, func(t *testing.T) {
			recorder := doRequest(t, router, stdhttp.MethodGet, path, nil)

			require.Equal(t, stdhttp.StatusOK, recorder.Code)
			assert.Equal(t, "healthy", decode[HealthResponse](t, recorder).Status)
		})
	}

	t.Run("storage unreachable", func(t *testing.T) {
		logger := newTestLogger()
		store := services.NewTicketStore(memory.NewTicketSnapshotStore(logger), clock.Fake(testNow), logger)
		router := NewRouter(RouterDeps{
			Tickets: store,
			Board:   services.NewBoardService(store, nil),
			Storage: pingFunc(func(context.Context) error { return errors.New("connection refused") }),
			Logger:  logger,
		})

		recorder := doRequest(t, router, stdhttp.MethodGet, "/health/ready", nil)

		require.Equal(t, stdhttp.StatusServiceUnavailable, recorder.Code)
		assert.Equal(t, "connection refused", decode[HealthResponse](t, recorder).Checks["storage"].Message)
	})
}

func TestRateLimited(t *testing.T) {
	logger := newTestLogger()
	store := services.NewTicketStore(memory.NewTicketSnapshotStore(logger), clock.Fake(testNow), logger)
	require.NoError(t, store.Load(context.Background()))

	limiter := mw.NewRateLimiter(mw.RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	defer limiter.Close()

	router := NewRouter(RouterDeps{
		Tickets:     store,
		Board:       services.NewBoardService(store, nil),
		Storage:     pingFunc(okPing),
		RateLimiter: limiter,
		Logger:      logger,
	})

	first := doRequest(t, router, stdhttp.MethodGet, "/api/v1/tickets", nil)
	require.Equal(t, stdhttp.StatusOK, first.Code)

	second := doRequest(t, router, stdhttp.MethodGet, "/api/v1/tickets", nil)
	require.Equal(t, stdhttp.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decode[ErrorResponse](t, second).Code)
}

func TestCORSAndRequestID(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(stdhttp.MethodOptions, "/api/v1/tickets", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", stdhttp.MethodPost)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, "http://localhost:5173", recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
}
