package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pdfvault/internal/http/middleware"
	"pdfvault/internal/model"
	"pdfvault/internal/service"
)

// DocumentResponse wraps a single document record.
type DocumentResponse struct {
	Success   bool            `json:"success" example:"true"`
	Message   string          `json:"message" example:"document uploaded"`
	RequestID string          `json:"request_id,omitempty"`
	Document  *model.Document `json:"document"`
}

// DocumentListResponse wraps every document record, newest first.
type DocumentListResponse struct {
	Success   bool             `json:"success" example:"true"`
	Message   string           `json:"message" example:"documents retrieved"`
	RequestID string           `json:"request_id,omitempty"`
	Documents []model.Document `json:"documents"`
}

// MessageResponse is a success envelope without payload.
type MessageResponse struct {
	Success   bool   `json:"success" example:"true"`
	Message   string `json:"message" example:"document deleted"`
	RequestID string `json:"request_id,omitempty"`
}

// UploadDocument godoc
// @Summary      Upload a PDF document
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "PDF file (Content-Type application/pdf)"
// @Success      201  {object}  DocumentResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      413  {object}  ErrorResponse
// @Failure      429  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /documents [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "cannot read uploaded file")
		}
		defer f.Close()

		doc, err := svc.Upload(c.UserContext(), model.UploadInput{
			Content:          f,
			OriginalFilename: fh.Filename,
			DeclaredMimeType: fh.Header.Get(fiber.HeaderContentType),
			DeclaredSize:     fh.Size,
		})
		if err != nil {
			return writeServiceError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(DocumentResponse{
			Success:   true,
			Message:   "document uploaded",
			RequestID: middleware.GetRequestID(c),
			Document:  doc,
		})
	}
}

// ListDocuments godoc
// @Summary      List documents, newest first
// @Tags         documents
// @Produce      json
// @Success      200  {object}  DocumentListResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		if items == nil {
			items = []model.Document{}
		}
		return c.JSON(DocumentListResponse{
			Success:   true,
			Message:   "documents retrieved",
			RequestID: middleware.GetRequestID(c),
			Documents: items,
		})
	}
}

// DownloadDocument godoc
// @Summary      Download a document's content
// @Tags         documents
// @Produce      application/pdf
// @Param        id   path  int  true  "Document ID"
// @Success      200  {file}    file
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /documents/{id} [get]
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		doc, rc, err := svc.Download(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Attachment(doc.Filename)
		c.Set(fiber.HeaderContentType, model.PDFMimeType)
		// The response writer closes rc once the body is flushed or the write fails.
		return c.SendStream(rc, int(doc.Size))
	}
}

// GetDocument godoc
// @Summary      Get a document's metadata
// @Tags         documents
// @Produce      json
// @Param        id   path  int  true  "Document ID"
// @Success      200  {object}  DocumentResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /documents/{id}/metadata [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(DocumentResponse{
			Success:   true,
			Message:   "document retrieved",
			RequestID: middleware.GetRequestID(c),
			Document:  doc,
		})
	}
}

// DeleteDocument godoc
// @Summary      Delete a document and its content
// @Tags         documents
// @Produce      json
// @Param        id   path  int  true  "Document ID"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(MessageResponse{
			Success:   true,
			Message:   "document deleted",
			RequestID: middleware.GetRequestID(c),
		})
	}
}

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
