package v1

import (
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmailSender struct {
	to      string
	subject string
	html    string
	inline  []byte
	fail    error
}

func (s *stubEmailSender) Send(to, subject, html string, inlinePNG []byte) error {
	if s.fail != nil {
		return s.fail
	}

	s.to = to
	s.subject = subject
	s.html = html
	s.inline = inlinePNG

	return nil
}

func newEmailRouter(sender EmailSender) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/registeremail", NewEmailHandler(sender).HandleSendEmail)

	return router
}

func TestHandleSendEmail(t *testing.T) {
	t.Run("plain email", func(t *testing.T) {
		sender := &stubEmailSender{}

		rec := postJSON(t, newEmailRouter(sender), "/api/registeremail", map[string]any{
			"to":      "asha@example.com",
			"subject": "hello",
			"html":    "<p>hi</p>",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "asha@example.com", sender.to)
		assert.Nil(t, sender.inline)
	})

	t.Run("data URI QR code is decoded and embedded", func(t *testing.T) {
		sender := &stubEmailSender{}
		png := []byte{0x89, 'P', 'N', 'G'}

		rec := postJSON(t, newEmailRouter(sender), "/api/registeremail", map[string]any{
			"to":           "asha@example.com",
			"subject":      "your pass",
			"html":         "<p>pass attached</p>",
			"qrCodeBase64": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, png, sender.inline)
	})

	t.Run("bare base64 works too", func(t *testing.T) {
		sender := &stubEmailSender{}
		png := []byte{1, 2, 3}

		rec := postJSON(t, newEmailRouter(sender), "/api/registeremail", map[string]any{
			"to":           "asha@example.com",
			"subject":      "your pass",
			"html":         "<p>pass attached</p>",
			"qrCodeBase64": base64.StdEncoding.EncodeToString(png),
		})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, png, sender.inline)
	})

	t.Run("invalid base64", func(t *testing.T) {
		rec := postJSON(t, newEmailRouter(&stubEmailSender{}), "/api/registeremail", map[string]any{
			"to":           "asha@example.com",
			"subject":      "your pass",
			"html":         "<p>pass attached</p>",
			"qrCodeBase64": "%%% not base64 %%%",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing recipient", func(t *testing.T) {
		rec := postJSON(t, newEmailRouter(&stubEmailSender{}), "/api/registeremail", map[string]any{
			"subject": "hello",
			"html":    "<p>hi</p>",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("send failure", func(t *testing.T) {
		sender := &stubEmailSender{fail: assert.AnError}

		rec := postJSON(t, newEmailRouter(sender), "/api/registeremail", map[string]any{
			"to":      "asha@example.com",
			"subject": "hello",
			"html":    "<p>hi</p>",
		})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
