package notify

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/slotwatch/internal/appointment"
)

func TestFileTransportAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.log")
	tr := FileTransport{Path: path}

	batch := []appointment.Appointment{
		candidate("x1", appointment.StatusAvailable),
	}
	require.NoError(t, tr.Send(context.Background(), batch))
	require.NoError(t, tr.Send(context.Background(), batch))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry struct {
			Appointment appointment.Appointment `json:"appointment"`
		}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		assert.Equal(t, "x1", entry.Appointment.ID)
		lines++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, 2, lines)
}

func TestWebhookTransportPostsBatch(t *testing.T) {
	var received struct {
		Appointments []appointment.Appointment `json:"appointments"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := NewWebhookTransport(srv.URL)
	batch := []appointment.Appointment{candidate("x1", appointment.StatusAvailable)}
	require.NoError(t, tr.Send(context.Background(), batch))

	require.Len(t, received.Appointments, 1)
	assert.Equal(t, "x1", received.Appointments[0].ID)
}

func TestWebhookTransportNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tr := NewWebhookTransport(srv.URL)
	err := tr.Send(context.Background(), []appointment.Appointment{candidate("x1", appointment.StatusAvailable)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

type stubTransport struct {
	name  string
	err   error
	calls int
}

func (s *stubTransport) Name() string { return s.name }

func (s *stubTransport) Send(_ context.Context, _ []appointment.Appointment) error {
	s.calls++
	return s.err
}

func TestDispatchAllTransportsFail(t *testing.T) {
	a := &stubTransport{name: "a", err: errors.New("down")}
	b := &stubTransport{name: "b", err: errors.New("also down")}
	d := NewDispatcher(a, b)

	delivered, err := d.Dispatch(context.Background(), []appointment.Appointment{candidate("x1", appointment.StatusAvailable)})
	require.Error(t, err)
	assert.Empty(t, delivered)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestDispatchPartialFailureStillDelivers(t *testing.T) {
	a := &stubTransport{name: "a", err: errors.New("down")}
	b := &stubTransport{name: "b"}
	d := NewDispatcher(a, b)

	batch := []appointment.Appointment{candidate("x1", appointment.StatusAvailable)}
	delivered, err := d.Dispatch(context.Background(), batch)
	require.Error(t, err) // the failure is still reported
	assert.Equal(t, batch, delivered)
}

func TestDispatchEmptyBatchIsNoop(t *testing.T) {
	a := &stubTransport{name: "a"}
	d := NewDispatcher(a)

	delivered, err := d.Dispatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, delivered)
	assert.Equal(t, 0, a.calls)
}

func TestDispatchNoTransports(t *testing.T) {
	d := NewDispatcher()
	delivered, err := d.Dispatch(context.Background(), []appointment.Appointment{candidate("x1", appointment.StatusAvailable)})
	require.NoError(t, err)
	assert.Empty(t, delivered)
}
