package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	router "github.com/goliatone/go-router"

	dataview "github.com/goliatone/go-dataview/components/dataview"
	"github.com/goliatone/go-dataview/components/dataview/commands"
	"github.com/goliatone/go-dataview/components/dataview/httpapi"
	"github.com/goliatone/go-dataview/components/dataview/queries"
)

// ViewerResolver converts a router.Context into a dataview.ViewerContext.
type ViewerResolver func(router.Context) dataview.ViewerContext

// RequestContext derives the context handed to controllers and commands, for
// example to attach the caller's backend credentials.
type RequestContext func(router.Context) context.Context

// Config wires go-router with dataview controllers, APIs, and notifications.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dataview.Controller
	API            httpapi.Executor
	Notifications  *dataview.BroadcastNotifier
	ViewerResolver ViewerResolver
	RequestContext RequestContext
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for dataview endpoints.
type RouteConfig struct {
	HTML      string
	Table     string
	Snapshot  string
	Record    string
	Action    string
	Load      string
	Search    string
	Filter    string
	Sort      string
	Reset     string
	Presets   string
	WebSocket string
}

// Register mounts dataview routes (HTML, JSON, REST, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	viewerResolver := cfg.ViewerResolver
	if viewerResolver == nil {
		viewerResolver = defaultViewerResolver
	}
	requestContext := cfg.RequestContext
	if requestContext == nil {
		requestContext = func(ctx router.Context) context.Context { return ctx.Context() }
	}

	group := cfg.Router.Group(base)

	// the websocket route is static and must win over :resource
	if cfg.Notifications != nil {
		registerWebSocket(group, cfg.Notifications, viewerResolver, routes.WebSocket)
	}

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		viewer := viewerResolver(ctx)
		var buf bytes.Buffer
		if _, err := cfg.Controller.RenderTable(requestContext(ctx), viewer, ctx.Param("resource"), &buf); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Table, router.WrapHandler(func(ctx router.Context) error {
		viewer := viewerResolver(ctx)
		payload, err := cfg.Controller.Table(requestContext(ctx), viewer, ctx.Param("resource"))
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, viewerResolver, requestContext, routes)
	}
	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ViewerResolver, requestContext RequestContext, routes RouteConfig) {
	viewInput := func(ctx router.Context) commands.ViewInput {
		return commands.ViewInput{Viewer: resolver(ctx), Resource: ctx.Param("resource")}
	}

	r.Get(routes.Snapshot, router.WrapHandler(func(ctx router.Context) error {
		in := viewInput(ctx)
		if raw := ctx.Query("page"); raw != "" {
			page, err := strconv.Atoi(raw)
			if err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			if err := api.Page(requestContext(ctx), commands.PageInput{ViewInput: in, Page: page}); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
		}
		snap, err := api.Snapshot(requestContext(ctx), queries.SnapshotInput{Viewer: in.Viewer, Resource: in.Resource})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, snap)
	}))

	r.Get(routes.Record, router.WrapHandler(func(ctx router.Context) error {
		record, err := api.Record(requestContext(ctx), queries.RecordInput{
			Viewer:   resolver(ctx),
			Resource: ctx.Param("resource"),
			ID:       ctx.Param("id"),
		})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, record)
	}))

	r.Delete(routes.Record, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("record id is required"))
		}
		if err := api.Delete(requestContext(ctx), commands.DeleteRecordInput{ViewInput: viewInput(ctx), RecordID: id}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "deleted"})
	}))

	r.Post(routes.Action, router.WrapHandler(func(ctx router.Context) error {
		var values map[string]any
		if body := ctx.Body(); len(body) > 0 {
			if err := json.Unmarshal(body, &values); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
		}
		input := commands.RowActionInput{
			ViewInput: viewInput(ctx),
			RecordID:  ctx.Param("id"),
			Action:    ctx.Param("action"),
			Values:    values,
		}
		if err := api.RowAction(requestContext(ctx), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "applied"})
	}))

	r.Post(routes.Load, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Load(requestContext(ctx), viewInput(ctx)); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "loaded"})
	}))

	r.Post(routes.Search, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SearchInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.ViewInput = viewInput(ctx)
		if err := api.Search(requestContext(ctx), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}))

	r.Post(routes.Filter, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.FilterInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.ViewInput = viewInput(ctx)
		if err := api.Filter(requestContext(ctx), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}))

	r.Post(routes.Sort, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SortInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.ViewInput = viewInput(ctx)
		if err := api.Sort(requestContext(ctx), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}))

	r.Post(routes.Reset, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Reset(requestContext(ctx), viewInput(ctx)); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "reset"})
	}))

	r.Post(routes.Presets, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SavePresetInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.ViewInput = viewInput(ctx)
		if err := api.SavePreset(requestContext(ctx), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusCreated, map[string]string{"status": "saved"})
	}))
}

// registerWebSocket streams the connecting viewer's notifications. Connections
// without a resolvable viewer are closed.
func registerWebSocket[T any](r router.Router[T], hub *dataview.BroadcastNotifier, resolver ViewerResolver, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		viewer := websocketViewer(ws, resolver)
		if viewer == "" {
			return ws.Close()
		}
		notes, cancel := hub.Subscribe(viewer)
		defer cancel()
		err := dataview.Stream(ws.Context(), notes, func(note dataview.Notification) error {
			return ws.WriteJSON(note)
		})
		if errors.Is(err, context.Canceled) {
			return ws.Close()
		}
		return err
	})
}

func websocketViewer(ws any, resolver ViewerResolver) string {
	rc, ok := ws.(router.Context)
	if !ok {
		return ""
	}
	return resolver(rc).UserID
}

func defaultViewerResolver(ctx router.Context) dataview.ViewerContext {
	var viewer dataview.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	if header := ctx.Header("Accept-Language"); header != "" {
		return parseAcceptLanguage(header)
	}
	return ""
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/data/:resource"
	}
	if routes.Table == "" {
		routes.Table = "/data/:resource/_table"
	}
	if routes.Snapshot == "" {
		routes.Snapshot = "/api/data/:resource"
	}
	if routes.Record == "" {
		routes.Record = "/api/data/:resource/records/:id"
	}
	if routes.Action == "" {
		routes.Action = "/api/data/:resource/records/:id/actions/:action"
	}
	if routes.Load == "" {
		routes.Load = "/api/data/:resource/load"
	}
	if routes.Search == "" {
		routes.Search = "/api/data/:resource/search"
	}
	if routes.Filter == "" {
		routes.Filter = "/api/data/:resource/filter"
	}
	if routes.Sort == "" {
		routes.Sort = "/api/data/:resource/sort"
	}
	if routes.Reset == "" {
		routes.Reset = "/api/data/:resource/reset"
	}
	if routes.Presets == "" {
		routes.Presets = "/api/data/:resource/presets"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/data/ws"
	}
	return routes
}
