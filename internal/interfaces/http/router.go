package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/getraenkekasse/internal/application/dashboard"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Publisher *dashboard.Publisher
	Refresher Refresher
}

// Router registra las rutas de la API. Todas son públicas y de solo lectura,
// salvo POST /api/refresh que solo recarga las fuentes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	snapshotHandler := NewSnapshotHandler(deps.Publisher, deps.Refresher)
	api.Get("/snapshot", snapshotHandler.Status)
	api.Post("/refresh", snapshotHandler.Refresh)

	views := api.Group("/views")
	viewsHandler := NewViewsHandler(deps.Publisher)
	views.Get("/debts", viewsHandler.Debts)
	views.Get("/revenue", viewsHandler.Revenue)
	views.Get("/royal-buyer", viewsHandler.RoyalBuyer)
	views.Get("/bestseller", viewsHandler.Bestseller)
	views.Get("/timeline", viewsHandler.Timeline)
	views.Get("/inventory", viewsHandler.Inventory)
	views.Get("/person-stats", viewsHandler.PersonStats)
	views.Get("/summary", viewsHandler.Summary)

	reports := api.Group("/reports")
	reports.Get("/debts.pdf", viewsHandler.DebtReportPDF)
}
