package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/ntwari02/proviQuiz/internal/service"

	"github.com/gofiber/fiber/v3"
)

var errorStatus = map[error]int{
	service.ErrGoogleAccount:      fiber.StatusBadRequest,
	service.ErrInvalidResetToken:  fiber.StatusBadRequest,
	service.ErrGoogleOnlyUser:     fiber.StatusBadRequest,
	service.ErrMissingCode:        fiber.StatusBadRequest,
	service.ErrInvalidState:       fiber.StatusBadRequest,
	service.ErrGoogleProfile:      fiber.StatusBadRequest,
	service.ErrInvalidID:          fiber.StatusBadRequest,
	service.ErrExpectedArray:      fiber.StatusBadRequest,
	service.ErrUnsupportedImage:   fiber.StatusBadRequest,
	service.ErrMissingImage:       fiber.StatusBadRequest,
	service.ErrInvalidImageFilter: fiber.StatusBadRequest,
	service.ErrInvalidIncrement:   fiber.StatusBadRequest,
	service.ErrInvalidName:        fiber.StatusBadRequest,

	service.ErrInvalidCredentials: fiber.StatusUnauthorized,
	service.ErrInvalidToken:       fiber.StatusUnauthorized,

	service.ErrBanned:         fiber.StatusForbidden,
	service.ErrInactive:       fiber.StatusForbidden,
	service.ErrSuperadminOnly: fiber.StatusForbidden,

	service.ErrUserNotFound:       fiber.StatusNotFound,
	service.ErrQuestionNotFound:   fiber.StatusNotFound,
	service.ErrExamConfigNotFound: fiber.StatusNotFound,

	service.ErrEmailTaken:        fiber.StatusConflict,
	service.ErrDuplicateQuestion: fiber.StatusConflict,
	service.ErrSubmitActive:      fiber.StatusConflict,

	service.ErrImageTooLarge: fiber.StatusRequestEntityTooLarge,

	service.ErrGoogleNotConfigured: fiber.StatusInternalServerError,
	service.ErrGoogleExchange:      fiber.StatusInternalServerError,

	service.ErrStorageDisabled: fiber.StatusServiceUnavailable,
}

func statusFor(err error) (int, error, bool) {
	for target, status := range errorStatus {
		if errors.Is(err, target) {
			return status, target, true
		}
	}
	return 0, nil, false
}

func message(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

// writeError renders a service error. Unknown errors are logged and hidden.
func writeError(c fiber.Ctx, err error) error {
	if verr, ok := service.IsValidation(err); ok {
		body := fiber.Map{"message": verr.Message}
		if len(verr.Issues) > 0 {
			body["errors"] = verr.Issues
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	if status, target, ok := statusFor(err); ok {
		return message(c, status, target.Error())
	}
	log.Printf("Failed to handle %s %s: %v", c.Method(), c.Path(), err)
	return message(c, fiber.StatusInternalServerError, "Server error")
}

// bindBody decodes a JSON body. An empty body leaves out untouched so that
// required-field checks in the service report the problem.
func bindBody(c fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.Bind().Body(out); err != nil {
		log.Printf("Failed to decode body on %s: %v", c.Path(), err)
		return &service.ValidationError{Message: "Invalid data"}
	}
	return nil
}

func queryInt(c fiber.Ctx, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

func queryIntPtr(c fiber.Ctx, key string) *int {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

func paramQuestionID(c fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return 0, service.ErrInvalidID
	}
	return id, nil
}
