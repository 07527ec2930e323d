package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chemviz-client/internal/apperr"
	"chemviz-client/internal/dto"
	"chemviz-client/internal/model"
	"chemviz-client/internal/pkg/logger"
	"chemviz-client/internal/server"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockBaseURL = "http://chemviz.test/api"

func newMockClient(t *testing.T) (*Client, *server.Server) {
	t.Helper()
	s := server.New("0", logger.NewNopLogger())
	c := NewClient(mockBaseURL, logger.NewNopLogger(), WithTransport(s.Transport()))
	return c, s
}

func TestClient_FullFlowAgainstMockAPI(t *testing.T) {
	ctx := context.Background()
	c, s := newMockClient(t)
	s.AddFixture("plant.csv", []model.EquipmentRecord{
		{Name: "Valve-7", Type: "Valve", Flowrate: 50, Pressure: 4, Temperature: 100},
		{Name: "Pump-7", Type: "Pump", Flowrate: 70, Pressure: 6, Temperature: 120},
	})

	auth, err := c.Register(ctx, dto.CredentialsRequest{Username: "ana", Password: "pw"})
	require.NoError(t, err)
	require.NotEmpty(t, auth.Token)
	c.SetTokenSource(TokenSourceFunc(func() string { return auth.Token }))

	result, err := c.Upload(ctx, UploadFile{Name: "plant.csv", Data: []byte("csv")})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Summary.TotalCount)
	assert.Equal(t, 60.0, result.Summary.AvgFlowrate)
	assert.Equal(t, model.TypeDistribution{{Type: "Valve", Count: 1}, {Type: "Pump", Count: 1}}, result.Summary.TypeDistribution)

	records, err := c.ListEquipment(ctx, &result.UploadId)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Valve-7", records[0].Name)
	assert.Equal(t, "Valve", records[0].Type)

	latest, err := c.ListEquipment(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, records, latest)

	history, err := c.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, result.UploadId, history[0].Id)
	assert.Equal(t, 2, history[0].EquipmentCount)

	summary, err := c.FetchSummary(ctx, result.UploadId)
	require.NoError(t, err)
	assert.Equal(t, result.Summary, *summary)

	pdf, err := c.RequestExport(ctx, ExportPDF, result.UploadId)
	require.NoError(t, err)
	assert.Contains(t, string(pdf), "%PDF-1.4")

	xlsx, err := c.RequestExport(ctx, ExportExcel, result.UploadId)
	require.NoError(t, err)
	assert.NotEmpty(t, xlsx)
}

func TestClient_ServerErrorsCarryMessage(t *testing.T) {
	ctx := context.Background()
	c, s := newMockClient(t)
	_, err := s.SeedUser(ctx, "ana", "pw")
	require.NoError(t, err)

	_, err = c.Login(ctx, dto.CredentialsRequest{Username: "ana", Password: "wrong"})
	var serverErr *apperr.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusUnauthorized, serverErr.Status)
	assert.Equal(t, "Invalid credentials", serverErr.Message)

	_, err = c.Upload(ctx, UploadFile{Name: "notes.txt", Data: []byte("x")})
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "File must be CSV format", serverErr.Message)

	_, err = c.FetchSummary(ctx, 404)
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusNotFound, serverErr.Status)

	c.SetTokenSource(TokenSourceFunc(func() string { return "stale" }))
	_, err = c.ListHistory(ctx)
	assert.True(t, apperr.IsUnauthorized(err))
	assert.Equal(t, "Invalid token.", apperr.Message(err))
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/", logger.NewNopLogger())
	_, err := c.ListHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Get("Authorization"), "no token, no header")
	_, err = uuid.Parse(got.Get(RequestIdHeader))
	assert.NoError(t, err)

	c.SetTokenSource(TokenSourceFunc(func() string { return "abc" }))
	_, err = c.ListHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Token abc", got.Get("Authorization"))
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
		op     func(c *Client) error
	}{
		{
			name:   "server error without body",
			status: http.StatusInternalServerError,
			body:   "<html>oops</html>",
			check: func(t *testing.T, err error) {
				var se *apperr.ServerError
				require.ErrorAs(t, err, &se)
				assert.Empty(t, se.Message)
				assert.Equal(t, "history: server error 500: Internal Server Error", se.Error())
			},
			op: func(c *Client) error { _, err := c.ListHistory(context.Background()); return err },
		},
		{
			name:   "malformed json",
			status: http.StatusOK,
			body:   `{"summary":`,
			check: func(t *testing.T, err error) {
				var de *apperr.DecodeError
				assert.ErrorAs(t, err, &de)
			},
			op: func(c *Client) error { _, err := c.FetchSummary(context.Background(), 1); return err },
		},
		{
			name:   "upload without id",
			status: http.StatusCreated,
			body:   `{"summary":{"total_count":1,"type_distribution":{}}}`,
			check: func(t *testing.T, err error) {
				var de *apperr.DecodeError
				assert.ErrorAs(t, err, &de)
			},
			op: func(c *Client) error {
				_, err := c.Upload(context.Background(), UploadFile{Name: "a.csv"})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			tt.check(t, tt.op(NewClient(srv.URL, logger.NewNopLogger())))
		})
	}
}

func TestClient_NetworkErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, logger.NewNopLogger(), WithTimeout(20*time.Millisecond))
	_, err := c.ListHistory(context.Background())
	var ne *apperr.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.True(t, apperr.IsTransient(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewClient(srv.URL, logger.NewNopLogger()).ListHistory(ctx)
	require.ErrorAs(t, err, &ne)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseExportKind(t *testing.T) {
	kind, ok := ParseExportKind("PDF")
	assert.True(t, ok)
	assert.Equal(t, ExportPDF, kind)

	kind, ok = ParseExportKind("xlsx")
	assert.True(t, ok)
	assert.Equal(t, ExportExcel, kind)

	_, ok = ParseExportKind("csv")
	assert.False(t, ok)

	_, err := NewClient("http://x", logger.NewNopLogger()).RequestExport(context.Background(), ExportKind("csv"), 1)
	assert.Error(t, err)
}
