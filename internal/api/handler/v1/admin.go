package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/csihub/codefest-api/internal/api/handler/v1/request"
	"github.com/csihub/codefest-api/internal/api/handler/v1/response"
	"github.com/csihub/codefest-api/internal/config"
	"github.com/csihub/codefest-api/internal/domain"
	"github.com/csihub/codefest-api/internal/pkg/jwthelper"
	"github.com/csihub/codefest-api/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminService interface {
	Authenticate(password string) error
	List(ctx context.Context, query string) ([]domain.Registration, error)
	Get(ctx context.Context, id string) (domain.Registration, error)
	Edit(ctx context.Context, id string, edit service.RegistrationEdit) (domain.Registration, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status domain.Status) (service.StatusChangeResult, error)
	SetArrived(ctx context.Context, id, arrived string) (domain.Registration, error)
	ExportCSV(ctx context.Context, query string) ([]byte, error)
	ExportXLSX(ctx context.Context, query string) ([]byte, error)
}

type AdminHandler struct {
	conf *config.APIConfig
	svc  AdminService
	hub  *WatchHub
}

func NewAdminHandler(conf *config.APIConfig, svc AdminService, hub *WatchHub) *AdminHandler {
	return &AdminHandler{
		conf: conf,
		svc:  svc,
		hub:  hub,
	}
}

// HandleLogin godoc
// @Summary      Admin login
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.AdminLoginRequest  true  "request body"
// @Success      200      {object}  response.LoginResponse
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /api/admin/login [post]
func (h *AdminHandler) HandleLogin(ctx *gin.Context) {
	var req request.AdminLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.Authenticate(req.Password); err != nil {
		response.RenderErr(ctx, response.ErrWrongCredentials(service.ErrWrongPassword))
		return
	}

	token, err := jwthelper.GenerateToken([]byte(h.conf.JWTSigningKey), "admin", ctx.Request.UserAgent())
	if err != nil {
		err = fmt.Errorf("v1.HandleLogin -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{Token: token})
}

// HandleListRegistrations godoc
// @Summary      List registrations for review
// @Tags         admin
// @Produce      json
// @Param        q  query     string  false  "substring filter over name, email, phone and PRN"
// @Success      200  {array}   domain.Registration
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /api/admin/registrations [get]
// @Security     BearerAuth
func (h *AdminHandler) HandleListRegistrations(ctx *gin.Context) {
	regs, err := h.svc.List(ctx.Request.Context(), ctx.Query("q"))
	if err != nil {
		err = fmt.Errorf("v1.HandleListRegistrations -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, regs)
}

// HandleGetRegistration godoc
// @Summary      Get one registration
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Registration ID"
// @Success      200  {object}  domain.Registration
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /api/admin/registrations/{id} [get]
// @Security     BearerAuth
func (h *AdminHandler) HandleGetRegistration(ctx *gin.Context) {
	id := ctx.Param("id")

	reg, err := h.svc.Get(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("registration", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleGetRegistration -> h.svc.Get -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, reg)
}

// HandleUpdateRegistration godoc
// @Summary      Edit a registration
// @Description  Merges only the provided fields into the stored record
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id       path      string                             true  "Registration ID"
// @Param        request  body      request.UpdateRegistrationRequest  true  "fields to change"
// @Success      200      {object}  domain.Registration
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /api/admin/registrations/{id} [patch]
// @Security     BearerAuth
func (h *AdminHandler) HandleUpdateRegistration(ctx *gin.Context) {
	id := ctx.Param("id")

	var req request.UpdateRegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	reg, err := h.svc.Edit(ctx.Request.Context(), id, service.RegistrationEdit{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		College:        req.College,
		Year:           req.Year,
		Branch:         req.Branch,
		PRN:            req.PRN,
		EducationType:  req.EducationType,
		TransactionRef: req.TransactionRef,
	})
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("registration", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleUpdateRegistration -> h.svc.Edit -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	h.hub.Notify(ctx.Request.Context())

	ctx.JSON(http.StatusOK, reg)
}

// HandleDeleteRegistration godoc
// @Summary      Delete a registration
// @Tags         admin
// @Produce      json
// @Param        id   path  string  true  "Registration ID"
// @Success      200
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /api/admin/registrations/{id} [delete]
// @Security     BearerAuth
func (h *AdminHandler) HandleDeleteRegistration(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := h.svc.Delete(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("registration", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleDeleteRegistration -> h.svc.Delete -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	h.hub.Notify(ctx.Request.Context())

	ctx.JSON(http.StatusOK, gin.H{"message": "registration deleted"})
}

// HandleSetStatus godoc
// @Summary      Change a registration's review status
// @Description  Approved and rejected transitions email the participant; the email outcome is reported separately and never reverts the status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "Registration ID"
// @Param        request  body      request.SetStatusRequest true  "request body"
// @Success      200      {object}  response.StatusChangeResponse
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /api/admin/registrations/{id}/status [put]
// @Security     BearerAuth
func (h *AdminHandler) HandleSetStatus(ctx *gin.Context) {
	id := ctx.Param("id")

	var req request.SetStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.SetStatus(ctx.Request.Context(), id, domain.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationNotFound):
			response.RenderErr(ctx, response.ErrNotFound("registration", "ID", id))
		case errors.Is(err, service.ErrInvalidStatus):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleSetStatus -> h.svc.SetStatus -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	h.hub.Notify(ctx.Request.Context())

	ctx.JSON(http.StatusOK, response.StatusChangeResponse{
		Message:    "status updated",
		EmailSent:  result.EmailSent,
		EmailError: result.EmailError,
		Data:       result.Registration,
	})
}

// HandleSetArrived godoc
// @Summary      Manually flip the arrived flag
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Registration ID"
// @Param        request  body      request.SetArrivedRequest true  "request body"
// @Success      200      {object}  domain.Registration
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /api/admin/registrations/{id}/arrived [put]
// @Security     BearerAuth
func (h *AdminHandler) HandleSetArrived(ctx *gin.Context) {
	id := ctx.Param("id")

	var req request.SetArrivedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	reg, err := h.svc.SetArrived(ctx.Request.Context(), id, req.Arrived)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("registration", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleSetArrived -> h.svc.SetArrived -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	h.hub.Notify(ctx.Request.Context())

	ctx.JSON(http.StatusOK, reg)
}

// HandleExport godoc
// @Summary      Export registrations
// @Description  Exports the filtered view as CSV (default) or XLSX
// @Tags         admin
// @Produce      application/octet-stream
// @Param        format  query  string  false  "csv or xlsx"  default(csv)
// @Param        q       query  string  false  "substring filter over name, email, phone and PRN"
// @Success      200  {file}    file
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /api/admin/registrations/export [get]
// @Security     BearerAuth
func (h *AdminHandler) HandleExport(ctx *gin.Context) {
	query := ctx.Query("q")
	stamp := time.Now().Format("2006-01-02")

	switch format := ctx.DefaultQuery("format", "csv"); format {
	case "csv":
		data, err := h.svc.ExportCSV(ctx.Request.Context(), query)
		if err != nil {
			err = fmt.Errorf("v1.HandleExport -> h.svc.ExportCSV -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
			return
		}

		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=registrations-%s.csv", stamp))
		ctx.Data(http.StatusOK, "text/csv", data)
	case "xlsx":
		data, err := h.svc.ExportXLSX(ctx.Request.Context(), query)
		if err != nil {
			err = fmt.Errorf("v1.HandleExport -> h.svc.ExportXLSX -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
			return
		}

		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=registrations-%s.xlsx", stamp))
		ctx.Data(http.StatusOK, xlsxContentType, data)
	default:
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("unknown export format %q", format)))
	}
}
