package handlers

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/teamhub/team-service/internal/auth"
	"github.com/teamhub/team-service/internal/domain"
	"github.com/teamhub/team-service/internal/service"
	apperrors "github.com/teamhub/team-service/pkg/util/errorutil"
)

const uploadField = "image"

// respond writes the success envelope. Empty message and nil data are omitted.
func respond(c *fiber.Ctx, status int, message string, data any) error {
	body := fiber.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

func currentActor(c *fiber.Ctx) (domain.Actor, error) {
	actor, ok := auth.ActorFromContext(c)
	if !ok || actor.UserID == "" {
		return domain.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return actor, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

// readUpload loads the multipart image. A missing file yields an empty Upload
// so the service reports it.
func readUpload(c *fiber.Ctx, maxBytes int) (service.Upload, error) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		return service.Upload{}, nil
	}
	if maxBytes > 0 && header.Size > int64(maxBytes) {
		return service.Upload{}, apperrors.NewBadRequest(fmt.Sprintf("File exceeds the %d byte limit", maxBytes))
	}
	file, err := header.Open()
	if err != nil {
		return service.Upload{}, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if maxBytes > 0 {
		reader = io.LimitReader(file, int64(maxBytes)+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return service.Upload{}, fmt.Errorf("read upload: %w", err)
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return service.Upload{}, apperrors.NewBadRequest(fmt.Sprintf("File exceeds the %d byte limit", maxBytes))
	}
	return service.Upload{Filename: header.Filename, Data: data}, nil
}
