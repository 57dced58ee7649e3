package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csihub/codefest-api/internal/service"
)

type stubCheckinService struct {
	issueFn  func(ctx context.Context, id string) (string, error)
	verifyFn func(ctx context.Context, code string) (service.VerifyResult, error)
	scanFn   func(ctx context.Context, image []byte) (service.VerifyResult, error)
}

func (s *stubCheckinService) IssueToken(ctx context.Context, id string) (string, error) {
	return s.issueFn(ctx, id)
}

func (s *stubCheckinService) CheckinURL(token string) string {
	return "https://codefest.example.com/checkin/" + token
}

func (s *stubCheckinService) QRCode(token string) ([]byte, error) {
	return qrcode.Encode(s.CheckinURL(token), qrcode.Medium, 128)
}

func (s *stubCheckinService) Verify(ctx context.Context, code string) (service.VerifyResult, error) {
	return s.verifyFn(ctx, code)
}

func (s *stubCheckinService) ScanImage(ctx context.Context, image []byte) (service.VerifyResult, error) {
	return s.scanFn(ctx, image)
}

func newCheckinRouter(svc CheckinService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewCheckinHandler(svc, nil)
	router.POST("/api/admin/registrations/:id/qr", handler.HandleIssueQR)
	router.POST("/api/checkin/verify", handler.HandleVerify)
	router.POST("/api/checkin/scan", handler.HandleScan)
	router.GET("/checkin/:token", handler.HandleVerifyLink)

	return router
}

func TestHandleIssueQR(t *testing.T) {
	t.Run("issued", func(t *testing.T) {
		svc := &stubCheckinService{
			issueFn: func(_ context.Context, id string) (string, error) {
				assert.Equal(t, "reg-1", id)
				return "tok-1", nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/api/admin/registrations/reg-1/qr", nil)
		rec := httptest.NewRecorder()
		newCheckinRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Token      string `json:"token"`
			CheckinURL string `json:"checkinUrl"`
			QRBase64   string `json:"qrCodeBase64"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "tok-1", resp.Token)
		assert.Equal(t, "https://codefest.example.com/checkin/tok-1", resp.CheckinURL)
		assert.NotEmpty(t, resp.QRBase64)
	})

	t.Run("unknown registration", func(t *testing.T) {
		svc := &stubCheckinService{
			issueFn: func(_ context.Context, _ string) (string, error) {
				return "", service.ErrRegistrationNotFound
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/api/admin/registrations/reg-x/qr", nil)
		rec := httptest.NewRecorder()
		newCheckinRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleVerify(t *testing.T) {
	outcomes := []struct {
		outcome service.VerifyOutcome
		status  string
	}{
		{service.VerifyOK, "ok"},
		{service.VerifyInvalid, "invalid"},
		{service.VerifyNotApproved, "not_approved"},
		{service.VerifyDuplicate, "duplicate"},
	}

	for _, tt := range outcomes {
		t.Run(tt.status, func(t *testing.T) {
			svc := &stubCheckinService{
				verifyFn: func(_ context.Context, code string) (service.VerifyResult, error) {
					assert.Equal(t, "tok-1", code)
					return service.VerifyResult{Outcome: tt.outcome, Name: "Asha"}, nil
				},
			}

			rec := postJSON(t, newCheckinRouter(svc), "/api/checkin/verify", map[string]any{"code": "tok-1"})

			require.Equal(t, http.StatusOK, rec.Code)

			var resp struct {
				Status  string `json:"status"`
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Status)
			assert.NotEmpty(t, resp.Message)
		})
	}

	t.Run("missing code", func(t *testing.T) {
		rec := postJSON(t, newCheckinRouter(&stubCheckinService{}), "/api/checkin/verify", map[string]any{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleVerifyLink(t *testing.T) {
	svc := &stubCheckinService{
		verifyFn: func(_ context.Context, code string) (service.VerifyResult, error) {
			assert.Equal(t, "tok-1", code)
			return service.VerifyResult{Outcome: service.VerifyOK, Name: "Asha"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/checkin/tok-1", nil)
	rec := httptest.NewRecorder()
	newCheckinRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleScan(t *testing.T) {
	buildScanRequest := func(t *testing.T) *http.Request {
		t.Helper()

		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("image", "scan.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("not really a png"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/checkin/scan", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		return req
	}

	t.Run("decoded and verified", func(t *testing.T) {
		svc := &stubCheckinService{
			scanFn: func(_ context.Context, _ []byte) (service.VerifyResult, error) {
				return service.VerifyResult{Outcome: service.VerifyOK, Name: "Asha"}, nil
			},
		}

		rec := httptest.NewRecorder()
		newCheckinRouter(svc).ServeHTTP(rec, buildScanRequest(t))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
	})

	t.Run("no QR code in the image", func(t *testing.T) {
		svc := &stubCheckinService{
			scanFn: func(_ context.Context, _ []byte) (service.VerifyResult, error) {
				return service.VerifyResult{}, service.ErrNoQRCode
			},
		}

		rec := httptest.NewRecorder()
		newCheckinRouter(svc).ServeHTTP(rec, buildScanRequest(t))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/checkin/scan", nil)
		rec := httptest.NewRecorder()
		newCheckinRouter(&stubCheckinService{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
