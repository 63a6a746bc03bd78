package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/getraenkekasse/internal/application/dashboard"
	"github.com/jhoicas/getraenkekasse/internal/domain/ledger"
)

// Refresher dispara un tick de refresco fuera del intervalo (refresh.Scheduler).
type Refresher interface {
	RefreshNow(ctx context.Context) (*ledger.Snapshot, error)
}

// SnapshotHandler metadatos del snapshot y refresco manual.
type SnapshotHandler struct {
	pub       *dashboard.Publisher
	refresher Refresher
}

// NewSnapshotHandler construye el handler.
func NewSnapshotHandler(pub *dashboard.Publisher, refresher Refresher) *SnapshotHandler {
	return &SnapshotHandler{pub: pub, refresher: refresher}
}

// Status godoc
// @Summary      Snapshot vigente y estado del scheduler
// @Tags         snapshot
// @Produce      json
// @Success      200  {object}  dto.SnapshotStatusDTO
// @Router       /api/snapshot [get]
func (h *SnapshotHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.pub.SnapshotStatus())
}

// Refresh godoc
// @Summary      Recargar el ledger ahora
// @Description  Corre un tick completo (carga + join + swap). Si falla, el snapshot anterior sigue publicado.
// @Tags         snapshot
// @Produce      json
// @Success      200  {object}  dto.SnapshotDTO
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/refresh [post]
func (h *SnapshotHandler) Refresh(c *fiber.Ctx) error {
	if _, err := h.refresher.RefreshNow(c.Context()); err != nil {
		return writeError(c, err)
	}
	out, err := h.pub.Snapshot()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
