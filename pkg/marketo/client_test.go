package marketo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/checkin-tools/checkin-manager/internal/errdef"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(logger, server.URL, 5*time.Second)
}

func TestFetchEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("unwraps the first result", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/asset/v1/program/42.json", r.URL.Path)
			assert.Equal(t, "access-token", r.URL.Query().Get("access_token"))

			_, _ = w.Write([]byte(`{"success":true,"result":[{"id":42,"name":"Kickoff","workspace":"Default","startDate":"2024-01-01"}]}`))
		})

		program, err := client.FetchEvent(ctx, "access-token", 42)
		require.NoError(t, err)
		assert.Equal(t, uint(42), program.ID)
		assert.Equal(t, "Kickoff", program.Name)
		assert.Equal(t, "Default", program.Workspace)
		assert.Equal(t, "2024-01-01", program.StartDate)
	})

	t.Run("empty result is not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":true,"result":[]}`))
		})

		_, err := client.FetchEvent(ctx, "access-token", 42)
		assert.True(t, errdef.IsNotFound(err))
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(`{"success":true,"result":[{"id":42}]}`))
		})

		program, err := client.FetchEvent(ctx, "access-token", 42)
		require.NoError(t, err)
		assert.Equal(t, uint(42), program.ID)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := client.FetchEvent(ctx, "access-token", 42)
		assert.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("expired token is unauthorized", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"errors":[{"code":"602","message":"Access token expired"}]}`))
		})

		_, err := client.FetchEvent(ctx, "access-token", 42)
		assert.True(t, errdef.IsUnauthorized(err))
	})
}

func TestFetchRoster(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes the membership payload", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/v1/leads/programs/42.json", r.URL.Path)
			_, _ = w.Write([]byte(`{"success":true,"result":[
				{"id":7,"firstName":"Ann","membership":{"progressionStatus":"Registered","membershipDate":"2024-01-01"}},
				{"id":8,"firstName":"Ben"}
			]}`))
		})

		leads, err := client.FetchRoster(ctx, "access-token", 42)
		require.NoError(t, err)
		require.Len(t, leads, 2)
		assert.Equal(t, "Registered", leads[0].Membership.ProgressionStatus)
		assert.Nil(t, leads[1].Membership)
	})

	t.Run("empty roster", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":true,"result":[]}`))
		})

		leads, err := client.FetchRoster(ctx, "access-token", 42)
		require.NoError(t, err)
		assert.Empty(t, leads)
	})
}

func TestPushLead(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the remote lead id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/v1/leads.json", r.URL.Path)

			var request pushLeadRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
			assert.Equal(t, "createOrUpdate", request.Action)
			assert.Equal(t, "Default", request.PartitionName)
			assert.Equal(t, "email", request.LookupField)
			require.Len(t, request.Input, 1)
			assert.Equal(t, "ann@example.com", request.Input[0].Email)

			_, _ = w.Write([]byte(`{"success":true,"result":[{"id":7,"status":"created"}]}`))
		})

		id, err := client.PushLead(ctx, "access-token", "Default", Lead{FirstName: "Ann", Email: "ann@example.com"})
		require.NoError(t, err)
		assert.Equal(t, uint(7), id)
	})

	t.Run("missing id is an error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":true,"result":[]}`))
		})

		_, err := client.PushLead(ctx, "access-token", "Default", Lead{Email: "ann@example.com"})
		assert.Error(t, err)
	})
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("success indicator", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/v1/programs/42/members/status.json", r.URL.Path)

			var request changeStatusRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
			assert.Equal(t, "Attended", request.StatusName)
			require.Len(t, request.Input, 1)
			assert.Equal(t, uint(7), request.Input[0].LeadID)

			_, _ = w.Write([]byte(`{"success":true,"result":[{"leadId":7,"status":"Attended"}]}`))
		})

		ok, err := client.ChangeStatus(ctx, "access-token", 42, 7, "Attended")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("remote failure", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"errors":[{"code":"1003","message":"Invalid status"}]}`))
		})

		ok, err := client.ChangeStatus(ctx, "access-token", 42, 7, "Attended")
		assert.Error(t, err)
		assert.False(t, ok)
	})
}
