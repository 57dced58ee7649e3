package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/csihub/codefest-api/internal/api/handler/v1/request"
	"github.com/csihub/codefest-api/internal/api/handler/v1/response"
	"github.com/csihub/codefest-api/internal/domain"
	"github.com/csihub/codefest-api/internal/pkg/imaging"
	"github.com/csihub/codefest-api/internal/service"
)

// maxProofUploadBytes caps a single proof screenshot upload.
const maxProofUploadBytes = 10 << 20

type RegistrationService interface {
	Create(ctx context.Context, reg domain.Registration) (domain.Registration, error)
	List(ctx context.Context) ([]domain.Registration, error)
}

// ProofUploader stores a proof image and returns its hosted URL.
type ProofUploader interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

type RegistrationHandler struct {
	svc      RegistrationService
	uploader ProofUploader
	hub      *WatchHub
}

func NewRegistrationHandler(svc RegistrationService, uploader ProofUploader, hub *WatchHub) *RegistrationHandler {
	return &RegistrationHandler{
		svc:      svc,
		uploader: uploader,
		hub:      hub,
	}
}

// HandleCreateRegistration godoc
// @Summary      Submit a registration
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateRegistrationRequest  true  "request body"
// @Success      201      {object}  response.CreateRegistrationResponse
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /api/registration [post]
func (h *RegistrationHandler) HandleCreateRegistration(ctx *gin.Context) {
	var req request.CreateRegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.Create(ctx.Request.Context(), req.ToDomain())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationEmailExists):
			response.RenderErr(ctx, response.ErrFieldConflict("email", service.ErrRegistrationEmailExists))
		case errors.Is(err, service.ErrMissingCSIProof),
			errors.Is(err, service.ErrNoParticipantTypes),
			errors.Is(err, service.ErrNoRoundsSelected):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleCreateRegistration -> h.svc.Create -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	h.hub.Notify(ctx.Request.Context())

	ctx.JSON(http.StatusCreated, response.CreateRegistrationResponse{
		Message:        "registration received",
		RegistrationID: created.ID,
		Data:           created,
	})
}

// HandleListRegistrations godoc
// @Summary      List registrations, newest first
// @Tags         registrations
// @Produce      json
// @Success      200  {array}   domain.Registration
// @Failure      500  {object}  response.Err
// @Router       /api/registration [get]
func (h *RegistrationHandler) HandleListRegistrations(ctx *gin.Context) {
	regs, err := h.svc.List(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListRegistrations -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, regs)
}

// HandleValidateStep godoc
// @Summary      Validate one wizard step
// @Description  Runs the forward guard for a form step so the browser wizard and the server share one implementation
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        request  body      request.ValidateStepRequest  true  "request body"
// @Success      200      {object}  response.StepValidationResponse
// @Failure      400      {object}  response.Err
// @Router       /api/registration/validate [post]
func (h *RegistrationHandler) HandleValidateStep(ctx *gin.Context) {
	var req request.ValidateStepRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	err := domain.GuardStep(domain.WizardStep(req.Step), &req.Data)
	if err != nil {
		var guardErr *domain.GuardError
		if errors.As(err, &guardErr) {
			ctx.JSON(http.StatusOK, response.StepValidationResponse{
				OK:     false,
				Field:  guardErr.Field,
				Reason: guardErr.Reason,
			})
			return
		}

		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ctx.JSON(http.StatusOK, response.StepValidationResponse{OK: true})
}

// HandleUploadProof godoc
// @Summary      Upload a proof screenshot
// @Description  Compresses the image and stores it, returning the hosted URL to reference in the registration
// @Tags         registrations
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "proof image"
// @Success      200   {object}  response.UploadResponse
// @Failure      400   {object}  response.Err
// @Failure      503   {object}  response.Err
// @Router       /api/registration/upload [post]
func (h *RegistrationHandler) HandleUploadProof(ctx *gin.Context) {
	if h.uploader == nil {
		response.RenderErr(ctx, response.ErrServiceUnavailable("image uploads are not configured"))
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("missing file: %w", err)))
		return
	}
	if fileHeader.Size > maxProofUploadBytes {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("file too large")))
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
		err = fmt.Errorf("v1.HandleUploadProof -> io.ReadAll -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	compressed, err := imaging.Compress(data, imaging.MaxDimension)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("unreadable image: %w", err)))
		return
	}

	url, err := h.uploader.Upload(ctx.Request.Context(), compressed)
	if err != nil {
		err = fmt.Errorf("v1.HandleUploadProof -> h.uploader.Upload -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.UploadResponse{URL: url})
}
