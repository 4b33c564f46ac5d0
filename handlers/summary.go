package handlers

import (
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"tubebrief/errors"
	"tubebrief/models"
	"tubebrief/services/summary"
)

type SummaryHandler struct {
	service summary.Service
}

func NewSummaryHandler(service summary.Service) *SummaryHandler {
	return &SummaryHandler{service: service}
}

// Create accepts a summarization request and returns the job to poll. The
// response carries the current state; clients poll Get until it is terminal.
func (h *SummaryHandler) Create(c *fiber.Ctx) error {
	const op = "SummaryHandler.Create"

	var req models.SummaryRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.InvalidInput(op, err, "Invalid request body")
	}

	job, err := h.service.Create(c.Context(), req)
	if err != nil {
		return err
	}

	status := fiber.StatusAccepted
	if job.IsCompleted() {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    models.NewSummaryResponse(job),
	})
}

func (h *SummaryHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")

	job, err := h.service.Get(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    models.NewSummaryResponse(job),
	})
}

func (h *SummaryHandler) DownloadAudio(c *fiber.Ctx) error {
	return h.download(c, summary.ArtifactAudio)
}

func (h *SummaryHandler) DownloadPDF(c *fiber.Ctx) error {
	return h.download(c, summary.ArtifactPDF)
}

func (h *SummaryHandler) DownloadDocx(c *fiber.Ctx) error {
	return h.download(c, summary.ArtifactDocx)
}

func (h *SummaryHandler) download(c *fiber.Ctx, kind summary.ArtifactKind) error {
	id := c.Params("id")

	path, err := h.service.ArtifactPath(c.Context(), id, kind)
	if err != nil {
		return err
	}

	return c.Download(path, filepath.Base(path))
}
