package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docflow/internal/http/middleware"
	"docflow/internal/service"
)

// InitiateUpload godoc
// @Summary      Start an upload
// @Description  Registers document metadata and returns a presigned upload URL. company_id and uploaded_by fall back to the identity headers.
// @Tags         upload
// @Accept       json
// @Produce      json
// @Param        request  body      service.InitiateUploadRequest  true  "Upload request"
// @Success      201      {object}  service.InitiateUploadResult
// @Failure      400      {object}  errorPayload
// @Failure      422      {object}  errorPayload
// @Router       /api/upload/initiate [post]
func InitiateUpload(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.InitiateUploadRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}
		if strings.TrimSpace(req.CompanyID) == "" {
			req.CompanyID = middleware.CompanyID(c)
		}
		if strings.TrimSpace(req.UploadedBy) == "" {
			req.UploadedBy = middleware.UserID(c)
		}

		res, err := svc.InitiateUpload(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// CompleteUpload godoc
// @Summary      Confirm an upload
// @Description  Verifies the object reached storage and returns a presigned download URL.
// @Tags         upload
// @Produce      json
// @Param        documentId  path      string  true  "Document id"
// @Success      200         {object}  service.CompleteUploadResult
// @Failure      404         {object}  errorPayload
// @Router       /api/upload/{documentId}/complete [post]
func CompleteUpload(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "documentId")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		res, err := svc.CompleteUpload(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// Approve godoc
// @Summary      Approve the current validation step
// @Description  approver_id falls back to the user header.
// @Tags         validation
// @Accept       json
// @Produce      json
// @Param        request  body      service.ApproveRequest  true  "Approval"
// @Success      200      {object}  service.OperationResult
// @Failure      400      {object}  errorPayload
// @Failure      404      {object}  errorPayload
// @Failure      409      {object}  errorPayload
// @Router       /api/validation/approve [post]
func Approve(svc service.ValidationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.ApproveRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}
		if !validBodyID(req.DocumentID) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid document_id format")
		}
		if strings.TrimSpace(req.ApproverID) == "" {
			req.ApproverID = middleware.UserID(c)
		}

		res, err := svc.Approve(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// Reject godoc
// @Summary      Reject a document
// @Description  Terminal. reason is required; rejecter_id falls back to the user header.
// @Tags         validation
// @Accept       json
// @Produce      json
// @Param        request  body      service.RejectRequest  true  "Rejection"
// @Success      200      {object}  service.OperationResult
// @Failure      400      {object}  errorPayload
// @Failure      404      {object}  errorPayload
// @Failure      409      {object}  errorPayload
// @Router       /api/validation/reject [post]
func Reject(svc service.ValidationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.RejectRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}
		if !validBodyID(req.DocumentID) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid document_id format")
		}
		if strings.TrimSpace(req.RejecterID) == "" {
			req.RejecterID = middleware.UserID(c)
		}

		res, err := svc.Reject(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetValidationStatus godoc
// @Summary   Validation progress of a document
// @Tags      validation
// @Produce   json
// @Param     documentId  path      string  true  "Document id"
// @Success   200         {object}  service.ValidationStatusResult
// @Failure   404         {object}  errorPayload
// @Router    /api/validation/{documentId}/status [get]
func GetValidationStatus(svc service.ValidationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "documentId")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		res, err := svc.GetValidationStatus(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetDownloadURL godoc
// @Summary   Presigned download URL
// @Tags      download
// @Produce   json
// @Param     documentId  path      string  true  "Document id"
// @Success   200         {object}  service.DownloadResult
// @Failure   404         {object}  errorPayload
// @Router    /api/download/{documentId} [get]
func GetDownloadURL(svc service.DownloadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "documentId")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		res, err := svc.GetDownloadURL(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// validBodyID accepts an empty id (reported by the service as missing) or a UUID.
func validBodyID(id string) bool {
	if id == "" {
		return true
	}
	_, err := uuid.Parse(id)
	return err == nil
}
