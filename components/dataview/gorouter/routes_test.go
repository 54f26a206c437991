package gorouter

import (
	"testing"

	router "github.com/goliatone/go-router"

	dataview "github.com/goliatone/go-dataview/components/dataview"
)

func TestRegisterValidatesConfig(t *testing.T) {
	if err := Register(Config[struct{}]{}); err == nil {
		t.Fatalf("expected error when router/controller missing")
	}
	cfg := Config[struct{}]{Controller: dataview.NewController(dataview.ControllerOptions{})}
	if err := Register(cfg); err == nil {
		t.Fatalf("expected error when router missing")
	}
}

func TestDefaultRouteConfigKeepsOverrides(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{HTML: "/tables/:resource"})
	if routes.HTML != "/tables/:resource" {
		t.Fatalf("override lost: %s", routes.HTML)
	}
	if routes.Action != "/api/data/:resource/records/:id/actions/:action" {
		t.Fatalf("unexpected default action route %s", routes.Action)
	}
	if routes.WebSocket != "/data/ws" {
		t.Fatalf("unexpected websocket route %s", routes.WebSocket)
	}
}

func TestParseAcceptLanguage(t *testing.T) {
	cases := map[string]string{
		"es-MX,es;q=0.9,en;q=0.8": "es-mx",
		" fr ;q=1":                "fr",
		"":                        "",
	}
	for header, want := range cases {
		if got := parseAcceptLanguage(header); got != want {
			t.Fatalf("parseAcceptLanguage(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestWebsocketViewerNeedsRouterContext(t *testing.T) {
	called := false
	resolver := func(router.Context) dataview.ViewerContext {
		called = true
		return dataview.ViewerContext{UserID: "u1"}
	}
	if got := websocketViewer(struct{}{}, resolver); got != "" || called {
		t.Fatalf("expected no viewer for a non-router context, got %q", got)
	}
}
