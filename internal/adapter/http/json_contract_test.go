package httpadapter

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/route/param"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	s, err := jsonschema.Compile(filepath.Join("..", "..", "..", "api", "schemas", name))
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

func validateResponse(t *testing.T, s *jsonschema.Schema, ctx *app.RequestContext) {
	t.Helper()
	var v any
	if err := json.Unmarshal(ctx.Response.Body(), &v); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if err := s.Validate(v); err != nil {
		t.Fatalf("response %s does not match schema: %v", ctx.Response.Body(), err)
	}
}

func TestResponsesMatchSchemas(t *testing.T) {
	env := newTestEnv(t)
	c := context.Background()

	refresh := newCtx("")
	env.h.refresh(c, refresh)
	validateResponse(t, compileSchema(t, "view.schema.json"), refresh)

	env.h.focus(c, newCtx(`{"focus":true}`))
	sel := newCtx(`{"id":"` + ownedLand.String() + `"}`)
	env.h.selectEntity(c, sel)
	validateResponse(t, compileSchema(t, "permissions.schema.json"), sel)

	begin := newCtx(`{"action":"estate_eject"}`)
	env.h.beginAction(c, begin)
	validateResponse(t, compileSchema(t, "prompt.schema.json"), begin)

	var token struct {
		Token string `json:"token"`
	}
	decodeBody(t, begin, &token)
	resolve := newCtx(`{"outcome":"alternate"}`)
	resolve.Params = param.Params{{Key: "token", Value: token.Token}}
	env.h.resolvePrompt(c, resolve)
	validateResponse(t, compileSchema(t, "result.schema.json"), resolve)

	kpi := newCtx("")
	env.h.kpi(c, kpi)
	validateResponse(t, compileSchema(t, "kpi.schema.json"), kpi)
}

func TestEmptyViewMatchesSchema(t *testing.T) {
	env := newTestEnv(t)
	env.store.RemoveEntity(ownedLand)
	env.store.RemoveEntity(otherLand)

	ctx := newCtx("")
	env.h.refresh(context.Background(), ctx)
	validateResponse(t, compileSchema(t, "view.schema.json"), ctx)

	var v map[string]map[string]any
	decodeBody(t, ctx, &v)
	if v["snapshot"]["empty"] != true {
		t.Fatalf("expected empty snapshot, got %s", ctx.Response.Body())
	}
}

func TestResponseJSONUsesSnakeCase(t *testing.T) {
	env := newTestEnv(t)
	ctx := newCtx("")
	env.h.refresh(context.Background(), ctx)

	var got map[string]any
	decodeBody(t, ctx, &got)
	for _, key := range []string{"snapshot", "has_row", "polled_at", "permissions"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("expected key %q in %s", key, ctx.Response.Body())
		}
	}
	for _, key := range []string{"Snapshot", "HasRow", "PolledAt"} {
		if _, ok := got[key]; ok {
			t.Fatalf("unexpected key %q in %s", key, ctx.Response.Body())
		}
	}
	snap, _ := got["snapshot"].(map[string]any)
	if _, ok := snap["Entered"]; ok {
		t.Fatalf("enter events must not leak into the view: %s", ctx.Response.Body())
	}
}
