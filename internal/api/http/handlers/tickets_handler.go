package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/api/dto"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/auth"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/service"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/storage"
	apperrors "github.com/dagim-hg/Astu-Steam-dev-project-sub000/pkg/util/errorutil"
)

// TicketsHandler exposes the complaint lifecycle endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	files   storage.FileStore
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, files storage.FileStore) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, files: files}
}

// Create handles POST /tickets. Accepts JSON, or multipart with up to
// three "attachments" files.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	attachments, err := h.storeUploads(c, "attachments", domain.MaxSubmissionAttachments)
	if err != nil {
		return err
	}

	ticket, err := h.tickets.Create(c.Context(), actor, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Priority:    req.Priority,
		Department:  req.Department,
		Attachments: attachments,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// List handles GET /tickets, scoped to the caller's role.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	filter := service.TicketListFilter{
		Limit:  parseIntQuery(c, "limit", 20),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if val := c.Query("status"); val != "" {
		for _, raw := range strings.Split(val, ",") {
			status := domain.TicketStatus(strings.ToUpper(strings.TrimSpace(raw)))
			if !status.Valid() {
				return apperrors.NewValidationError("unknown status", map[string]any{"status": raw})
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	tickets, err := h.tickets.ListForActor(c.Context(), actor, filter)
	if err != nil {
		return err
	}

	resp := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		resp = append(resp, dto.NewTicketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get handles GET /tickets/:id where :id is the internal key or the
// CMP tracking number.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	ticket, err := h.tickets.FindByTrackingOrKey(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// UpdateStatus handles PATCH /tickets/:id. Accepts JSON, or multipart
// with an optional "resolution" file.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketUpdateInput{Remark: req.Remark}
	if req.Status != nil {
		status := domain.TicketStatus(strings.ToUpper(string(*req.Status)))
		input.NewStatus = &status
	}

	resolutions, err := h.storeUploads(c, "resolution", 1)
	if err != nil {
		return err
	}
	if len(resolutions) > 0 {
		input.Resolution = &resolutions[0]
	}

	ticket, err := h.tickets.UpdateStatus(c.Context(), actor, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// storeUploads persists multipart files under the given field name and
// returns their references. Non-multipart requests yield no files.
func (h *TicketsHandler) storeUploads(c *fiber.Ctx, field string, max int) ([]domain.FileRef, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > max {
		return nil, apperrors.NewValidationError("too many files", map[string]any{
			"field": field,
			"max":   max,
		})
	}

	refs := make([]domain.FileRef, 0, len(files))
	for _, header := range files {
		ref, err := h.saveOne(header)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (h *TicketsHandler) saveOne(header *multipart.FileHeader) (domain.FileRef, error) {
	file, err := header.Open()
	if err != nil {
		return domain.FileRef{}, apperrors.NewValidationError("unreadable upload", nil)
	}
	defer file.Close() //nolint:errcheck

	ref, err := h.files.Save(file, header.Filename)
	if err != nil {
		return domain.FileRef{}, apperrors.NewDependencyUnavailable("file storage", err)
	}
	return ref, nil
}

func parseIntQuery(c *fiber.Ctx, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
