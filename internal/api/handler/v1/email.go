package v1

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/csihub/codefest-api/internal/api/handler/v1/request"
	"github.com/csihub/codefest-api/internal/api/handler/v1/response"
)

type EmailSender interface {
	Send(to, subject, html string, inlinePNG []byte) error
}

type EmailHandler struct {
	mailer EmailSender
}

func NewEmailHandler(mailer EmailSender) *EmailHandler {
	return &EmailHandler{mailer: mailer}
}

// HandleSendEmail godoc
// @Summary      Send a raw email
// @Description  Sends an HTML email, optionally embedding a base64 PNG QR code inline
// @Tags         email
// @Accept       json
// @Produce      json
// @Param        request  body      request.SendEmailRequest  true  "request body"
// @Success      200      {object}  map[string]string
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /api/registeremail [post]
func (h *EmailHandler) HandleSendEmail(ctx *gin.Context) {
	var req request.SendEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var inlinePNG []byte
	if req.QRCodeBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(stripDataURIPrefix(req.QRCodeBase64))
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid qrCodeBase64: %w", err)))
			return
		}
		inlinePNG = decoded
	}

	if err := h.mailer.Send(req.To, req.Subject, req.HTML, inlinePNG); err != nil {
		err = fmt.Errorf("v1.HandleSendEmail -> h.mailer.Send -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "email sent"})
}

// stripDataURIPrefix drops a "data:image/png;base64," style prefix when
// the client sends a full data URI.
func stripDataURIPrefix(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}

	return s
}
