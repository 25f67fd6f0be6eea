package main

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/towops/towops/internal/dispatch"
	"github.com/towops/towops/internal/wshandler"
	"github.com/towops/towops/pkg/log"
	"github.com/towops/towops/pkg/model"
)

const maxJournalLimit = 1000

type PublicAPI struct {
	f    *fiber.App
	addr string
}

func NewPublicAPI(app *App, addr string) *PublicAPI {
	api := &PublicAPI{addr: addr}

	api.f = fiber.New(fiber.Config{EnablePrintRoutes: false, DisableStartupMessage: true, ErrorHandler: errorHandler})

	api.f.Use(log.NewFiberLogger(&log.LoggerConfig{Name: "public_api", DoMetrics: true, Quiet: true, Skip: []string{"/healthz"}}))

	api.f.Post("/cad/event", getCadEventHandler(app))
	api.f.Post("/gps", getGpsHandler(app))

	api.f.Get("/dispatch/recommendation", getRecommendationHandler(app))
	api.f.Post("/dispatch/assign", getAssignHandler(app))

	api.f.Post("/live-tracking/update", getTrackingUpdateHandler(app))
	api.f.Get("/live-tracking/:call_id", getTrackingViewHandler(app))
	api.f.Get("/live-tracking", getTrackingListHandler(app))

	api.f.Get("/journal", getJournalHandler(app))
	api.f.Get("/reports/daily", getReportHandler(app))
	api.f.Get("/debug/state", getDebugStateHandler(app))
	api.f.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"ok": true})
	})

	api.f.Use("/ws", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}

		return fiber.ErrUpgradeRequired
	})
	api.f.Get("/ws", getWsHandler(app))

	return api
}

func (api *PublicAPI) Address() string {
	return api.addr
}

func (api *PublicAPI) Listen() error {
	return api.f.Listen(api.addr)
}

func (api *PublicAPI) Shutdown() error {
	return api.f.Shutdown()
}

// errorHandler renders every failure as {"detail": "..."}.
func errorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return ctx.Status(code).JSON(fiber.Map{"detail": err.Error()})
}

// apiError maps dispatch errors to http errors.
func apiError(err error) error {
	switch {
	case errors.Is(err, dispatch.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, dispatch.ErrInvalidArgument), errors.Is(err, dispatch.ErrFailedPrecondition):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}

func missing(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, field+" is required")
}

type cadEventRequest struct {
	CallID    string   `json:"call_id"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Reason    *string  `json:"reason"`
	Priority  *int     `json:"priority"`
	Zone      string   `json:"zone"`
	Timestamp *float64 `json:"timestamp"`
}

func (r *cadEventRequest) toCall() (model.Call, error) {
	switch {
	case r.CallID == "":
		return model.Call{}, missing("call_id")
	case r.Lat == nil:
		return model.Call{}, missing("lat")
	case r.Lon == nil:
		return model.Call{}, missing("lon")
	case r.Reason == nil:
		return model.Call{}, missing("reason")
	}

	c := model.Call{
		ID:       r.CallID,
		Location: model.NewLocation(*r.Lat, *r.Lon),
		Reason:   *r.Reason,
		Zone:     r.Zone,
	}

	if r.Priority != nil {
		c.Priority = *r.Priority
	}

	if r.Timestamp != nil {
		c.CreatedAt = model.FromEpoch(*r.Timestamp)
	}

	return c, nil
}

type gpsRequest struct {
	UnitID    string   `json:"unit_id"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Speed     float64  `json:"speed"`
	Zone      string   `json:"zone"`
	Timestamp *float64 `json:"timestamp"`
}

func (r *gpsRequest) toUnit() (model.Unit, error) {
	switch {
	case r.UnitID == "":
		return model.Unit{}, missing("unit_id")
	case r.Lat == nil:
		return model.Unit{}, missing("lat")
	case r.Lon == nil:
		return model.Unit{}, missing("lon")
	}

	u := model.Unit{
		ID:       r.UnitID,
		Location: model.NewLocation(*r.Lat, *r.Lon),
		Speed:    r.Speed,
		Zone:     r.Zone,
	}

	if r.Timestamp != nil {
		u.ReportedAt = model.FromEpoch(*r.Timestamp)
	}

	return u, nil
}

type assignRequest struct {
	CallID string `json:"call_id"`
	UnitID string `json:"unit_id"`
}

type trackingRequest struct {
	CallID   string  `json:"call_id"`
	UnitID   string  `json:"unit_id"`
	Status   *string `json:"status"`
	Progress *int    `json:"progress"`
}

func getCadEventHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		req := new(cadEventRequest)

		if err := ctx.BodyParser(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		c, err := req.toCall()
		if err != nil {
			return err
		}

		c = app.state.RecordCall(c)

		return ctx.JSON(fiber.Map{"ok": true, "call": c.DTO()})
	}
}

func getGpsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		req := new(gpsRequest)

		if err := ctx.BodyParser(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		u, err := req.toUnit()
		if err != nil {
			return err
		}

		u = app.state.RecordUnit(u)

		return ctx.JSON(fiber.Map{"ok": true, "unit": u.DTO()})
	}
}

func getRecommendationHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		callID := ctx.Query("call_id")
		if callID == "" {
			return missing("call_id")
		}

		rec, err := app.engine.Recommend(callID, ctx.Query("mode", string(dispatch.ModeClosest)))
		if err != nil {
			return apiError(err)
		}

		return ctx.JSON(rec.DTO())
	}
}

func getAssignHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		req := new(assignRequest)

		if err := ctx.BodyParser(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if req.CallID == "" {
			return missing("call_id")
		}

		if req.UnitID == "" {
			return missing("unit_id")
		}

		c, err := app.tracker.Assign(req.CallID, req.UnitID)
		if err != nil {
			return apiError(err)
		}

		return ctx.JSON(fiber.Map{"ok": true, "call": c.DTO()})
	}
}

func getTrackingUpdateHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		req := new(trackingRequest)

		if err := ctx.BodyParser(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if req.CallID == "" {
			return missing("call_id")
		}

		status := model.StatusEnroute.String()
		if req.Status != nil {
			status = *req.Status
		}

		a, err := app.tracker.Update(dispatch.UpdateRequest{
			CallID:   req.CallID,
			UnitID:   req.UnitID,
			Status:   status,
			Progress: req.Progress,
		})
		if err != nil {
			return apiError(err)
		}

		return ctx.JSON(fiber.Map{"ok": true, "assignment": a.DTO()})
	}
}

func getTrackingViewHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		v, err := app.tracker.View(ctx.Params("call_id"))
		if err != nil {
			return apiError(err)
		}

		return ctx.JSON(v.DTO())
	}
}

func getTrackingListHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		views := app.tracker.ListActive()

		return ctx.JSON(fiber.Map{"active_assignments": model.DTOList(views), "count": len(views)})
	}
}

func getJournalHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		q := app.journal.Query().Call(ctx.Query("call_id")).Unit(ctx.Query("unit_id")).Kind(ctx.Query("kind"))

		if s := ctx.Query("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				return fiber.NewError(fiber.StatusBadRequest, "bad limit "+s)
			}

			q.Limit(min(n, maxJournalLimit))
		}

		entries := q.Get()

		return ctx.JSON(fiber.Map{"entries": entries, "count": len(entries)})
	}
}

func getReportHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		counts, total := app.state.CountsByReason()

		return ctx.JSON(fiber.Map{"counts_by_reason": counts, "total_calls": total})
	}
}

func getDebugStateHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"calls": model.DTOList(app.state.Calls()),
			"units": model.DTOList(app.state.Units()),
		})
	}
}

func getWsHandler(app *App) fiber.Handler {
	return websocket.New(func(ws *websocket.Conn) {
		name := uuid.NewString()

		h := wshandler.NewHandler(app.logger, name, ws)

		app.logger.Debug("ws listener connected", slog.String("client", name))
		h.Listen(app.state)
		app.logger.Debug("ws listener disconnected", slog.String("client", name))
	})
}
