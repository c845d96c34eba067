package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docproc/internal/service"
)

// addTagsRequest is the explicit body schema for attaching tags.
type addTagsRequest struct {
	TagNames []string `json:"tag_names"`
}

// ListTags returns every tag, for building filter UIs.
func ListTags(svc service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tags, err := svc.ListTags(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": tags})
	}
}

// AddDocumentTags attaches a list of tag names to a document and returns the
// updated document.
func AddDocumentTags(svc service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
		}

		var req addTagsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "body must be JSON with a tag_names array")
		}

		doc, err := svc.AttachTags(c.UserContext(), id, req.TagNames)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// RemoveDocumentTag detaches one tag from a document. The tag itself survives.
func RemoveDocumentTag(svc service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
		}
		tagID := c.Params("tagId")
		if _, err := uuid.Parse(tagID); err != nil {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
		}

		if err := svc.DetachTag(c.UserContext(), id, tagID); err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "tag removed"})
	}
}
