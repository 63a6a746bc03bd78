package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/getraenkekasse/internal/application/dashboard"
	"github.com/jhoicas/getraenkekasse/internal/domain/analytics"
)

// ViewsHandler expone las vistas calculadas del snapshot vigente (solo lectura).
type ViewsHandler struct {
	pub *dashboard.Publisher
}

// NewViewsHandler construye el handler.
func NewViewsHandler(pub *dashboard.Publisher) *ViewsHandler {
	return &ViewsHandler{pub: pub}
}

// Debts godoc
// @Summary      Lista de deudas pendientes (mayor a menor)
// @Tags         views
// @Produce      json
// @Success      200  {object}  dto.DebtsDTO
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/views/debts [get]
func (h *ViewsHandler) Debts(c *fiber.Ctx) error {
	out, err := h.pub.Debts()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Revenue godoc
// @Summary      Ingresos desde la primera compra
// @Tags         views
// @Produce      json
// @Success      200  {object}  dto.RevenueDTO
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/views/revenue [get]
func (h *ViewsHandler) Revenue(c *fiber.Ctx) error {
	out, err := h.pub.Revenue()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RoyalBuyer godoc
// @Summary      Persona con más compras de todos los tiempos
// @Description  Devuelve {"royal_buyer": null} si todavía no hay compras.
// @Tags         views
// @Produce      json
// @Success      200  {object}  map[string]dto.RoyalBuyerDTO
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/views/royal-buyer [get]
func (h *ViewsHandler) RoyalBuyer(c *fiber.Ctx) error {
	out, err := h.pub.RoyalBuyer()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"royal_buyer": out})
}

// Bestseller godoc
// @Summary      Producto más comprado del mes en curso ("N/A" si no hubo compras)
// @Tags         views
// @Produce      json
// @Success      200  {object}  dto.BestsellerDTO
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/views/bestseller [get]
func (h *ViewsHandler) Bestseller(c *fiber.Ctx) error {
	out, err := h.pub.Bestseller()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Timeline godoc
// @Summary      Compras agrupadas por fecha, hora, día de la semana o mes
// @Tags         views
// @Produce      json
// @Param        mode  query  string  false  "date (default) | hour | weekday | month"
// @Success      200  {object}  dto.TimelineDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/views/timeline [get]
func (h *ViewsHandler) Timeline(c *fiber.Ctx) error {
	mode, err := analytics.ParseMode(c.Query("mode"))
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.pub.Timeline(mode)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Inventory godoc
// @Summary      Stock restante por producto, incluidos los nunca comprados
// @Tags         views
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/views/inventory [get]
func (h *ViewsHandler) Inventory(c *fiber.Ctx) error {
	out, err := h.pub.Inventory()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// PersonStats godoc
// @Summary      Bebidas por persona (absoluto) y proporción por producto (relativo)
// @Tags         views
// @Produce      json
// @Success      200  {object}  dto.PersonProductStatsDTO
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/views/person-stats [get]
func (h *ViewsHandler) PersonStats(c *fiber.Ctx) error {
	out, err := h.pub.PersonProductStats()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Todas las tarjetas del dashboard en una sola respuesta
// @Tags         views
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/views/summary [get]
func (h *ViewsHandler) Summary(c *fiber.Ctx) error {
	out, err := h.pub.Summary()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DebtReportPDF godoc
// @Summary      Lista de deudas imprimible
// @Tags         reports
// @Produce      application/pdf
// @Success      200
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/reports/debts.pdf [get]
func (h *ViewsHandler) DebtReportPDF(c *fiber.Ctx) error {
	pdf, filename, err := h.pub.DebtReportPDF(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}
