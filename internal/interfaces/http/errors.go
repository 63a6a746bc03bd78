package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/getraenkekasse/internal/application/dto"
	"github.com/jhoicas/getraenkekasse/internal/domain"
)

// writeError traduce errores de dominio a respuestas HTTP.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNoSnapshot):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code: "NO_SNAPSHOT", Message: "el ledger todavía no se cargó, reintentar en unos segundos",
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrSourceUnavailable),
		errors.Is(err, domain.ErrSchema),
		errors.Is(err, domain.ErrOrphanPurchase):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "REFRESH_FAILED", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
