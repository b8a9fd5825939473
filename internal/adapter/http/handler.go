package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"nearbyradar/internal/app/dispatch"
	"nearbyradar/internal/app/panel"
	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/app/scan"
	"nearbyradar/internal/app/social"
	"nearbyradar/internal/domain/estate"
	"nearbyradar/internal/domain/radar"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

var ErrInvalidBody = errors.New("invalid request body")

type Handler struct {
	Panel      *panel.Panel
	Sightings  ports.SightingRepository
	Dispatches ports.DispatchLogRepository
	KPI        kpiSnapshotProvider
	// JWTSecret enables bearer-token auth on /api when set.
	JWTSecret    string
	AllowOrigins []string
}

func (h Handler) RegisterRoutes(r route.IRouter) {
	r.Use(corsMiddleware(h.AllowOrigins))

	api := r.Group("/api/radar")
	if h.JWTSecret != "" {
		api.Use(jwtMiddleware([]byte(h.JWTSecret)))
	}
	api.GET("", h.view)
	api.POST("/refresh", h.refresh)
	api.GET("/search", h.search)
	api.GET("/permissions", h.permissions)
	api.GET("/sightings", h.sightings)
	api.GET("/dispatches", h.dispatches)
	api.POST("/select", h.selectEntity)
	api.POST("/focus", h.focus)
	api.POST("/typing", h.typing)
	api.POST("/actions", h.beginAction)
	api.GET("/prompts", h.prompts)
	api.POST("/prompts/:token", h.resolvePrompt)
	api.POST("/mute", h.mute)
	api.POST("/unmute", h.unmute)
	api.POST("/track", h.track)
	api.POST("/social/:op", h.social)

	r.GET("/ops/kpi", h.kpi)
}

type selectRequest struct {
	ID string `json:"id"`
}

type focusRequest struct {
	Focus bool `json:"focus"`
}

type typingRequest struct {
	ID     string `json:"id"`
	Typing bool   `json:"typing"`
}

type actionRequest struct {
	Action string `json:"action"`
}

type resolveRequest struct {
	Outcome string `json:"outcome"`
}

type changedResponse struct {
	Changed bool `json:"changed"`
}

type searchResponse struct {
	Matches []scan.Match `json:"matches"`
}

type promptsResponse struct {
	Prompts []dispatch.Pending `json:"prompts"`
}

type sightingsResponse struct {
	Sightings []ports.SightingRecord `json:"sightings"`
}

type dispatchesResponse struct {
	Dispatches []ports.DispatchRecord `json:"dispatches"`
}

func (h Handler) view(c context.Context, ctx *app.RequestContext) {
	v, err := h.Panel.View(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, v)
}

// refresh runs a poll immediately. A failed poll still returns the previous
// view along with the error code.
func (h Handler) refresh(c context.Context, ctx *app.RequestContext) {
	if _, err := h.Panel.Tick(c); err != nil {
		writeErrorBody(ctx, consts.StatusBadGateway, "poll_failed", err.Error())
		return
	}
	h.view(c, ctx)
}

func (h Handler) search(_ context.Context, ctx *app.RequestContext) {
	limit, err := queryLimit(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	matches, err := h.Panel.Search(string(ctx.Query("q")), limit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, searchResponse{Matches: matches})
}

func (h Handler) permissions(c context.Context, ctx *app.RequestContext) {
	perms, err := h.Panel.Permissions(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, perms)
}

func (h Handler) sightings(c context.Context, ctx *app.RequestContext) {
	if h.Sightings == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "sighting history not configured")
		return
	}
	limit, err := queryLimit(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	recs, err := h.Sightings.ListRecent(c, limit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, sightingsResponse{Sightings: recs})
}

func (h Handler) dispatches(c context.Context, ctx *app.RequestContext) {
	if h.Dispatches == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "dispatch log not configured")
		return
	}
	target, err := parseID(string(ctx.Query("target")))
	if err != nil || target == radar.NilEntity {
		writeError(ctx, ErrInvalidBody)
		return
	}
	limit, err := queryLimit(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	recs, err := h.Dispatches.ListByTarget(c, target, limit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, dispatchesResponse{Dispatches: recs})
}

func (h Handler) selectEntity(c context.Context, ctx *app.RequestContext) {
	var body selectRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeError(ctx, err)
		return
	}
	id, err := parseID(body.ID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	perms, err := h.Panel.Select(c, id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, perms)
}

func (h Handler) focus(c context.Context, ctx *app.RequestContext) {
	var body focusRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeError(ctx, err)
		return
	}
	perms, err := h.Panel.SetFocus(c, body.Focus)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, perms)
}

func (h Handler) typing(_ context.Context, ctx *app.RequestContext) {
	var body typingRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeError(ctx, err)
		return
	}
	id, err := parseID(body.ID)
	if err != nil || id == radar.NilEntity {
		writeError(ctx, ErrInvalidBody)
		return
	}
	if body.Typing {
		h.Panel.AddTyping(id)
	} else {
		h.Panel.RemoveTyping(id)
	}
	ctx.Status(consts.StatusNoContent)
}

func (h Handler) beginAction(c context.Context, ctx *app.RequestContext) {
	var body actionRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeError(ctx, err)
		return
	}
	kind, err := estate.ParseAction(body.Action)
	if err != nil {
		writeError(ctx, err)
		return
	}
	pending, err := h.Panel.BeginAction(c, kind)
	if errors.Is(err, dispatch.ErrPromptPending) {
		ctx.JSON(consts.StatusConflict, map[string]any{
			"error": map[string]string{
				"code":    "prompt_pending",
				"message": err.Error(),
			},
			"prompt": pending,
		})
		return
	}
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, pending)
}

func (h Handler) prompts(_ context.Context, ctx *app.RequestContext) {
	open := h.Panel.OpenPrompts()
	if open == nil {
		open = []dispatch.Pending{}
	}
	ctx.JSON(consts.StatusOK, promptsResponse{Prompts: open})
}

func (h Handler) resolvePrompt(c context.Context, ctx *app.RequestContext) {
	token, err := uuid.Parse(ctx.Param("token"))
	if err != nil {
		writeError(ctx, ErrInvalidBody)
		return
	}
	var body resolveRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeError(ctx, err)
		return
	}
	outcome, ok := estate.ParseOutcome(body.Outcome)
	if !ok {
		writeError(ctx, ErrInvalidBody)
		return
	}
	res, err := h.Panel.ResolvePrompt(c, token, outcome)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, res)
}

func (h Handler) mute(c context.Context, ctx *app.RequestContext) {
	h.toggle(c, ctx, h.Panel.Mute)
}

func (h Handler) unmute(c context.Context, ctx *app.RequestContext) {
	h.toggle(c, ctx, h.Panel.Unmute)
}

func (h Handler) track(c context.Context, ctx *app.RequestContext) {
	h.toggle(c, ctx, h.Panel.ToggleTrack)
}

func (h Handler) toggle(c context.Context, ctx *app.RequestContext, fn func(context.Context) (bool, error)) {
	changed, err := fn(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, changedResponse{Changed: changed})
}

func (h Handler) social(c context.Context, ctx *app.RequestContext) {
	op := panel.SocialOp(ctx.Param("op"))
	if err := h.Panel.Forward(c, op); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(consts.StatusNoContent)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return ErrInvalidBody
	}
	return nil
}

// parseID accepts an empty string as the nil entity.
func parseID(raw string) (radar.EntityID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return radar.NilEntity, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return radar.NilEntity, ErrInvalidBody
	}
	return id, nil
}

func queryLimit(ctx *app.RequestContext) (int, error) {
	raw := string(ctx.Query("limit"))
	if raw == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, ErrInvalidBody
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, nil
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, panel.ErrNoSelection), errors.Is(err, social.ErrNoSelection):
		writeErrorBody(ctx, consts.StatusConflict, "no_selection", err.Error())
	case errors.Is(err, panel.ErrNotPermitted):
		writeErrorBody(ctx, consts.StatusForbidden, "not_permitted", err.Error())
	case errors.Is(err, dispatch.ErrUnknownPrompt):
		writeErrorBody(ctx, consts.StatusNotFound, "unknown_prompt", err.Error())
	case errors.Is(err, dispatch.ErrPromptPending):
		writeErrorBody(ctx, consts.StatusConflict, "prompt_pending", err.Error())
	case errors.Is(err, ErrInvalidBody),
		errors.Is(err, panel.ErrUnknownAction),
		errors.Is(err, estate.ErrUnknownAction),
		errors.Is(err, dispatch.ErrInvalidRequest),
		errors.Is(err, scan.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
