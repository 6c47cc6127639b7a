package notices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hilthontt/embermud/internal/infrastructure/events"
	"github.com/hilthontt/embermud/internal/infrastructure/logging"
)

type recordingBroker struct {
	keys []string
}

func (r *recordingBroker) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	r.keys = append(r.keys, routingKey)
	return nil
}

func newTestHandler() (*Handler, *recordingBroker) {
	broker := &recordingBroker{}
	publisher := events.NewGameEventPublisher(broker, logging.NewNopLogger())
	return NewHandler(publisher), broker
}

func TestCreateNotice(t *testing.T) {
	handler, broker := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/notices", strings.NewReader(`{"message":"reboot in five minutes"}`))
	rec := httptest.NewRecorder()
	handler.CreateNoticeHandler(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, broker.keys, 1)
	assert.Equal(t, "system.systemnotice.global", broker.keys[0])
	assert.Contains(t, rec.Body.String(), "eventId")
}

func TestCreateNoticeEmptyMessage(t *testing.T) {
	handler, broker := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/notices", strings.NewReader(`{"message":"  "}`))
	rec := httptest.NewRecorder()
	handler.CreateNoticeHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, broker.keys)
}

func TestCreateNoticeBadBody(t *testing.T) {
	handler, broker := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/notices", strings.NewReader(`{"unknown":"field"}`))
	rec := httptest.NewRecorder()
	handler.CreateNoticeHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, broker.keys)
}
