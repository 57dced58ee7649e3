package v1

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/csihub/codefest-api/internal/api/handler/v1/request"
	"github.com/csihub/codefest-api/internal/api/handler/v1/response"
	"github.com/csihub/codefest-api/internal/service"
)

// maxScanUploadBytes caps an uploaded scan photo.
const maxScanUploadBytes = 10 << 20

type CheckinService interface {
	IssueToken(ctx context.Context, id string) (string, error)
	CheckinURL(token string) string
	QRCode(token string) ([]byte, error)
	Verify(ctx context.Context, code string) (service.VerifyResult, error)
	ScanImage(ctx context.Context, image []byte) (service.VerifyResult, error)
}

type CheckinHandler struct {
	svc CheckinService
	hub *WatchHub
}

func NewCheckinHandler(svc CheckinService, hub *WatchHub) *CheckinHandler {
	return &CheckinHandler{
		svc: svc,
		hub: hub,
	}
}

// HandleIssueQR godoc
// @Summary      Issue a check-in QR pass
// @Description  Assigns (or re-reads) the registration's check-in token and returns the QR code as base64 PNG. Issuing is idempotent.
// @Tags         checkin
// @Produce      json
// @Param        id   path      string  true  "Registration ID"
// @Success      200  {object}  response.QRIssueResponse
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /api/admin/registrations/{id}/qr [post]
// @Security     BearerAuth
func (h *CheckinHandler) HandleIssueQR(ctx *gin.Context) {
	id := ctx.Param("id")

	token, err := h.svc.IssueToken(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("registration", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleIssueQR -> h.svc.IssueToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	png, err := h.svc.QRCode(token)
	if err != nil {
		err = fmt.Errorf("v1.HandleIssueQR -> h.svc.QRCode -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.QRIssueResponse{
		Token:      token,
		CheckinURL: h.svc.CheckinURL(token),
		QRBase64:   base64.StdEncoding.EncodeToString(png),
	})
}

// HandleVerify godoc
// @Summary      Verify a scanned check-in code
// @Description  Accepts the decoded QR contents (bare token or full link) and performs the check-in transition
// @Tags         checkin
// @Accept       json
// @Produce      json
// @Param        request  body      request.VerifyCheckinRequest  true  "request body"
// @Success      200      {object}  response.VerifyResponse
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /api/checkin/verify [post]
func (h *CheckinHandler) HandleVerify(ctx *gin.Context) {
	var req request.VerifyCheckinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	h.verifyAndRender(ctx, req.Code)
}

// HandleVerifyLink handles a scanner following the QR link directly.
//
// HandleVerifyLink godoc
// @Summary      Verify a check-in link
// @Tags         checkin
// @Produce      json
// @Param        token  path      string  true  "check-in token"
// @Success      200    {object}  response.VerifyResponse
// @Failure      500    {object}  response.Err
// @Router       /checkin/{token} [get]
func (h *CheckinHandler) HandleVerifyLink(ctx *gin.Context) {
	h.verifyAndRender(ctx, ctx.Param("token"))
}

// HandleScan godoc
// @Summary      Scan a QR code from an uploaded image
// @Description  Decodes the QR code out of a still image, then verifies it like any other scan
// @Tags         checkin
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "photo containing the QR code"
// @Success      200    {object}  response.VerifyResponse
// @Failure      400    {object}  response.Err
// @Failure      422    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /api/checkin/scan [post]
func (h *CheckinHandler) HandleScan(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("missing image: %w", err)))
		return
	}
	if fileHeader.Size > maxScanUploadBytes {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("image too large")))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		err = fmt.Errorf("v1.HandleScan -> io.ReadAll -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	result, err := h.svc.ScanImage(ctx.Request.Context(), data)
	if err != nil {
		if errors.Is(err, service.ErrNoQRCode) {
			response.RenderErr(ctx, response.ErrUnprocessable(service.ErrNoQRCode))
			return
		}

		err = fmt.Errorf("v1.HandleScan -> h.svc.ScanImage -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	h.renderVerifyResult(ctx, result)
}

func (h *CheckinHandler) verifyAndRender(ctx *gin.Context, code string) {
	result, err := h.svc.Verify(ctx.Request.Context(), code)
	if err != nil {
		err = fmt.Errorf("v1.HandleVerify -> h.svc.Verify -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	h.renderVerifyResult(ctx, result)
}

// renderVerifyResult maps every outcome to 200; the scanner UI reads the
// status field, not the HTTP code.
func (h *CheckinHandler) renderVerifyResult(ctx *gin.Context, result service.VerifyResult) {
	if result.Outcome == service.VerifyOK {
		h.hub.Notify(ctx.Request.Context())
	}

	ctx.JSON(http.StatusOK, response.VerifyResponse{
		Status:    string(result.Outcome),
		Message:   verifyMessage(result.Outcome),
		Name:      result.Name,
		ArrivedAt: result.ArrivedAt,
	})
}

func verifyMessage(outcome service.VerifyOutcome) string {
	switch outcome {
	case service.VerifyOK:
		return "checked in"
	case service.VerifyNotApproved:
		return "registration is not approved"
	case service.VerifyDuplicate:
		return "already checked in"
	default:
		return "invalid code"
	}
}
