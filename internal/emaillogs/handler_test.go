package emaillogs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/aura-meet/backend/internal/bookings"
	"github.com/aura-meet/backend/internal/middleware"
	"github.com/aura-meet/backend/internal/models"
)

type fakeLister map[uuid.UUID][]*models.EmailLog

func (f fakeLister) ListByBooking(ctx context.Context, id uuid.UUID) ([]*models.EmailLog, error) {
	return f[id], nil
}

type fakeBookings struct {
	owners  map[uuid.UUID]uuid.UUID
	resent  []uuid.UUID
	sendErr error
}

func (f *fakeBookings) HostOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	h, ok := f.owners[id]
	if !ok {
		return uuid.Nil, bookings.ErrNotFound
	}
	return h, nil
}

func (f *fakeBookings) ResendConfirmation(ctx context.Context, id uuid.UUID) error {
	f.resent = append(f.resent, id)
	return f.sendErr
}

func setup(caller uuid.UUID, fb *fakeBookings, logs fakeLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(logs, fb, nil)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextHostID, caller); c.Next() })
	r.GET("/bookings/:id/emails", h.ListByBooking)
	r.POST("/bookings/:id/emails/resend", h.Resend)
	return r
}

func call(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestListByBooking(t *testing.T) {
	host, booking := uuid.New(), uuid.New()
	fb := &fakeBookings{owners: map[uuid.UUID]uuid.UUID{booking: host}}
	logs := fakeLister{booking: {{BookingID: booking, RecipientEmail: "ada@example.com", Status: models.EmailLogStatusSent, Attempt: 1}}}

	w := call(setup(host, fb, logs), http.MethodGet, "/bookings/"+booking.String()+"/emails")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"recipientEmail":"ada@example.com"`)

	w = call(setup(uuid.New(), fb, logs), http.MethodGet, "/bookings/"+booking.String()+"/emails")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(setup(host, fb, logs), http.MethodGet, "/bookings/"+uuid.NewString()+"/emails")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(setup(host, fb, logs), http.MethodGet, "/bookings/nope/emails")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResend(t *testing.T) {
	host, booking := uuid.New(), uuid.New()
	fb := &fakeBookings{owners: map[uuid.UUID]uuid.UUID{booking: host}}

	w := call(setup(host, fb, fakeLister{}), http.MethodPost, "/bookings/"+booking.String()+"/emails/resend")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{booking}, fb.resent)

	fb.sendErr = errors.New("redis down")
	w = call(setup(host, fb, fakeLister{}), http.MethodPost, "/bookings/"+booking.String()+"/emails/resend")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
