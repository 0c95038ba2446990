package mirror_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"labposts/internal/mirror"
	"labposts/internal/service"
	"labposts/internal/testutil"
)

// stubGateway returns scripted results and counts calls.
type stubGateway struct {
	mu sync.Mutex

	list    service.Result[[]service.Item]
	create  service.Result[service.Item]
	replace service.Result[service.Item]
	remove  service.Result[struct{}]

	// block, when set, holds every call until it is closed.
	block   chan struct{}
	entered chan struct{}

	calls int
}

func (g *stubGateway) enter() {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.entered != nil {
		g.entered <- struct{}{}
	}
	if g.block != nil {
		<-g.block
	}
}

func (g *stubGateway) List(ctx context.Context) service.Result[[]service.Item] {
	g.enter()
	return g.list
}

func (g *stubGateway) Create(ctx context.Context, title, description string) service.Result[service.Item] {
	g.enter()
	return g.create
}

func (g *stubGateway) Replace(ctx context.Context, id int, title, description string) service.Result[service.Item] {
	g.enter()
	return g.replace
}

func (g *stubGateway) Remove(ctx context.Context, id int) service.Result[struct{}] {
	g.enter()
	return g.remove
}

func (g *stubGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// loaded returns a controller whose mirror holds items.
func loaded(t *testing.T, gw *stubGateway, items ...service.Item) *mirror.Controller {
	t.Helper()
	gw.list = service.Ok(items)
	c := mirror.New(gw)
	if res := c.Refresh(context.Background()); !res.OK {
		t.Fatalf("refresh: %s", res.Message)
	}
	return c
}

func TestController_InitialState(t *testing.T) {
	s := mirror.New(&stubGateway{}).Snapshot()
	if len(s.Items) != 0 || s.Pending || s.LastError != "" || s.EditSession != nil {
		t.Errorf("expected empty state, got %+v", s)
	}
}

func TestController_RefreshReplacesItems(t *testing.T) {
	gw := &stubGateway{}
	c := loaded(t, gw, service.Item{ID: 1, Title: "a"}, service.Item{ID: 2, Title: "b"})
	c.ToggleCompleted(1)

	gw.list = service.Ok([]service.Item{{ID: 2, Title: "b2"}, {ID: 1, Title: "a"}})
	res := c.Refresh(context.Background())
	if !res.OK {
		t.Fatalf("expected success, got %q", res.Message)
	}

	s := c.Snapshot()
	if len(s.Items) != 2 || s.Items[0].ID != 2 || s.Items[0].Title != "b2" {
		t.Errorf("expected upstream order, got %+v", s.Items)
	}
	if s.Items[1].Completed {
		t.Error("expected Completed to be dropped on refresh")
	}
	if s.Pending || s.LastError != "" {
		t.Errorf("expected settled state, got %+v", s)
	}
}

func TestController_RefreshPreservesCompleted(t *testing.T) {
	gw := &stubGateway{list: service.Ok([]service.Item{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}})}
	c := mirror.New(gw, mirror.WithPreserveCompleted(true))
	c.Refresh(context.Background())
	c.ToggleCompleted(2)

	gw.list = service.Ok([]service.Item{{ID: 2, Title: "b"}, {ID: 3, Title: "c"}})
	c.Refresh(context.Background())

	s := c.Snapshot()
	if !s.Items[0].Completed {
		t.Error("expected item 2 to stay completed")
	}
	if s.Items[1].Completed {
		t.Error("expected new item 3 to be in progress")
	}
}

func TestController_RefreshFailureKeepsItems(t *testing.T) {
	gw := &stubGateway{}
	c := loaded(t, gw, service.Item{ID: 1, Title: "a"})

	gw.list = service.Fail[[]service.Item](service.KindTransport, "network error: boom")
	res := c.Refresh(context.Background())
	if res.OK {
		t.Fatal("expected failure")
	}

	s := c.Snapshot()
	if len(s.Items) != 1 || s.Items[0].ID != 1 {
		t.Errorf("expected items untouched, got %+v", s.Items)
	}
	if s.LastError != "network error: boom" || s.Pending {
		t.Errorf("unexpected state: %+v", s)
	}
}

func TestController_RefreshClosesSessionForVanishedItem(t *testing.T) {
	gw := &stubGateway{}
	c := loaded(t, gw, service.Item{ID: 1, Title: "a"}, service.Item{ID: 2, Title: "b"})
	if err := c.BeginEdit(2); err != nil {
		t.Fatalf("begin edit: %v", err)
	}

	gw.list = service.Ok([]service.Item{{ID: 1, Title: "a"}})
	c.Refresh(context.Background())

	if s := c.Snapshot(); s.EditSession != nil {
		t.Errorf("expected session closed, got %+v", s.EditSession)
	}
}

func TestController_AddItemPrepends(t *testing.T) {
	items := make([]service.Item, 10)
	for i := range items {
		items[i] = service.Item{ID: i + 1, Title: "p"}
	}
	gw := &stubGateway{}
	c := loaded(t, gw, items...)

	gw.create = service.Ok(service.Item{ID: 11, Title: "A", Description: "B"})
	res := c.AddItem(context.Background(), "A", "B")
	if !res.OK {
		t.Fatalf("expected success, got %q", res.Message)
	}

	s := c.Snapshot()
	if len(s.Items) != 11 {
		t.Fatalf("expected 11 items, got %d", len(s.Items))
	}
	want := service.Item{ID: 11, Title: "A", Description: "B"}
	if s.Items[0] != want {
		t.Errorf("expected first item %+v, got %+v", want, s.Items[0])
	}
	if s.Draft != (mirror.Draft{}) {
		t.Errorf("expected draft cleared, got %+v", s.Draft)
	}
}

func TestController_AddItemEmptyTitle(t *testing.T) {
	gw := &stubGateway{}
	c := mirror.New(gw)

	for _, title := range []string{"", "   ", "\t\n"} {
		res := c.AddItem(context.Background(), title, "desc")
		if res.OK || res.Kind != service.KindValidation {
			t.Errorf("title %q: expected validation failure, got %+v", title, res)
		}
	}
	if gw.Calls() != 0 {
		t.Errorf("expected no gateway calls, got %d", gw.Calls())
	}
	s := c.Snapshot()
	if s.LastError != mirror.MsgTitleRequired {
		t.Errorf("expected %q, got %q", mirror.MsgTitleRequired, s.LastError)
	}
	if s.Draft.Description != "desc" {
		t.Errorf("expected draft retained, got %+v", s.Draft)
	}
}

func TestController_AddItemFailureKeepsDraft(t *testing.T) {
	gw := &stubGateway{create: service.Fail[service.Item](service.KindRemote, "remote error: 500 Internal Server Error")}
	c := mirror.New(gw)

	c.AddItem(context.Background(), "A", "B")

	s := c.Snapshot()
	if len(s.Items) != 0 {
		t.Errorf("expected no items, got %+v", s.Items)
	}
	if s.Draft != (mirror.Draft{Title: "A", Description: "B"}) {
		t.Errorf("expected draft retained, got %+v", s.Draft)
	}
	if s.LastError == "" {
		t.Error("expected lastError set")
	}
}

func TestController_BeginEdit(t *testing.T) {
	gw := &stubGateway{}
	c := loaded(t, gw, service.Item{ID: 3, Title: "t", Description: "d"}, service.Item{ID: 4, Title: "u"})

	if err := c.BeginEdit(99); !errors.Is(err, mirror.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}

	c.BeginEdit(3)
	c.BeginEdit(4)
	s := c.Snapshot()
	if !s.Editing(4) || s.Editing(3) {
		t.Errorf("expected a single session on 4, got %+v", s.EditSession)
	}
	if s.EditSession.DraftTitle != "u" {
		t.Errorf("expected draft seeded from item, got %+v", s.EditSession)
	}
}

func TestController_CommitEditKeepsCompleted(t *testing.T) {
	gw := &stubGateway{}
	c := loaded(t, gw, service.Item{ID: 3, Title: "t", Description: "d"})
	c.ToggleCompleted(3)
	c.BeginEdit(3)
	c.SetEditDraft("new", "body")

	gw.replace = service.Ok(service.Item{ID: 3, Title: "new", Description: "body"})
	res := c.CommitEdit(context.Background())
	if !res.OK {
		t.Fatalf("expected success, got %q", res.Message)
	}

	s := c.Snapshot()
	want := service.Item{ID: 3, Title: "new", Description: "body", Completed: true}
	if s.Items[0] != want {
		t.Errorf("expected %+v, got %+v", want, s.Items[0])
	}
	if s.EditSession != nil {
		t.Error("expected session closed")
	}
}

func TestController_CommitEditFailureKeepsSession(t *testing.T) {
	gw := &stubGateway{}
	orig := service.Item{ID: 3, Title: "t", Description: "d"}
	c := loaded(t, gw, orig)
	c.BeginEdit(3)
	c.SetEditDraft("X", "Y")

	gw.replace = service.Fail[service.Item](service.KindTransport, "timeout")
	c.CommitEdit(context.Background())

	s := c.Snapshot()
	if s.Items[0] != orig {
		t.Errorf("expected item unchanged, got %+v", s.Items[0])
	}
	if s.EditSession == nil || s.EditSession.DraftTitle != "X" || s.EditSession.DraftDescription != "Y" {
		t.Errorf("expected session kept with drafts, got %+v", s.EditSession)
	}
	if s.LastError != "timeout" {
		t.Errorf("expected lastError %q, got %q", "timeout", s.LastError)
	}
}

func TestController_CommitEditEmptyTitle(t *testing.T) {
	gw := &stubGateway{}
	c := loaded(t, gw, service.Item{ID: 3, Title: "t"})
	calls := gw.Calls()
	c.BeginEdit(3)
	c.SetEditDraft("  ", "d")

	res := c.CommitEdit(context.Background())
	if res.OK || res.Kind != service.KindValidation {
		t.Errorf("expected validation failure, got %+v", res)
	}
	if gw.Calls() != calls {
		t.Error("expected no gateway call")
	}
	if s := c.Snapshot(); s.EditSession == nil {
		t.Error("expected session kept")
	}
}

func TestController_CommitEditWithoutSession(t *testing.T) {
	c := mirror.New(&stubGateway{})
	if res := c.CommitEdit(context.Background()); res.OK || res.Message != mirror.MsgNoEdit {
		t.Errorf("expected %q, got %+v", mirror.MsgNoEdit, res)
	}
}

func TestController_CancelEdit(t *testing.T) {
	gw := &stubGateway{}
	c := loaded(t, gw, service.Item{ID: 1, Title: "a"})
	c.CancelEdit()
	c.BeginEdit(1)
	c.SetEditDraft("changed", "")
	c.CancelEdit()

	s := c.Snapshot()
	if s.EditSession != nil {
		t.Error("expected session closed")
	}
	if s.Items[0].Title != "a" {
		t.Errorf("expected item unchanged, got %+v", s.Items[0])
	}
}

func TestController_RemoveItem(t *testing.T) {
	gw := &stubGateway{}
	c := loaded(t, gw, service.Item{ID: 1, Title: "a"}, service.Item{ID: 2, Title: "b"}, service.Item{ID: 3, Title: "c"})
	c.BeginEdit(2)

	gw.remove = service.Ok(struct{}{})
	if res := c.RemoveItem(context.Background(), 2); !res.OK {
		t.Fatalf("expected success, got %q", res.Message)
	}

	s := c.Snapshot()
	if len(s.Items) != 2 || s.Items[0].ID != 1 || s.Items[1].ID != 3 {
		t.Errorf("expected [1 3], got %+v", s.Items)
	}
	if s.EditSession != nil {
		t.Error("expected session on removed item closed")
	}
}

func TestController_RemoveItemFailure(t *testing.T) {
	gw := &stubGateway{}
	c := loaded(t, gw, service.Item{ID: 1, Title: "a"})

	gw.remove = service.Fail[struct{}](service.KindRemote, "not found")
	c.RemoveItem(context.Background(), 1)

	s := c.Snapshot()
	if len(s.Items) != 1 || s.LastError != "not found" {
		t.Errorf("unexpected state: %+v", s)
	}
}

func TestController_RemoveAbsentItemNoop(t *testing.T) {
	gw := &stubGateway{}
	c := loaded(t, gw, service.Item{ID: 1, Title: "a"}, service.Item{ID: 2, Title: "b"})
	c.ToggleCompleted(2)
	before := c.Snapshot()

	gw.remove = service.Ok(struct{}{})
	if res := c.RemoveItem(context.Background(), 99); !res.OK {
		t.Fatalf("expected success, got %q", res.Message)
	}

	s := c.Snapshot()
	if len(s.Items) != len(before.Items) {
		t.Fatalf("expected %d items, got %d", len(before.Items), len(s.Items))
	}
	for i := range s.Items {
		if s.Items[i] != before.Items[i] {
			t.Errorf("item %d changed: %+v -> %+v", i, before.Items[i], s.Items[i])
		}
	}
	if s.LastError != "" || s.Pending {
		t.Errorf("unexpected state: %+v", s)
	}
}

func TestController_RemoveAbsentItemRemoteError(t *testing.T) {
	backend := testutil.NewFakeBackend(
		service.Item{ID: 1, Title: "a"},
		service.Item{ID: 2, Title: "b"},
	)
	c := mirror.New(service.NewGateway(backend, service.DefaultListLimit))
	ctx := context.Background()
	c.Refresh(ctx)
	c.ToggleCompleted(2)

	if res := c.RemoveItem(ctx, 99); res.OK {
		t.Fatal("expected failure for unknown id")
	}

	s := c.Snapshot()
	if s.LastError != "not found" {
		t.Errorf("expected LastError %q, got %q", "not found", s.LastError)
	}
	if s.Pending {
		t.Error("expected pending cleared")
	}
	want := []service.Item{{ID: 1, Title: "a"}, {ID: 2, Title: "b", Completed: true}}
	if len(s.Items) != len(want) {
		t.Fatalf("expected %d items, got %+v", len(want), s.Items)
	}
	for i := range want {
		if s.Items[i] != want[i] {
			t.Errorf("item %d: expected %+v, got %+v", i, want[i], s.Items[i])
		}
	}
}

func TestController_ToggleCompleted(t *testing.T) {
	gw := &stubGateway{}
	c := loaded(t, gw, service.Item{ID: 1, Title: "a"})
	calls := gw.Calls()

	if !c.ToggleCompleted(1) || !c.Snapshot().Items[0].Completed {
		t.Error("expected item completed after one toggle")
	}
	c.ToggleCompleted(1)
	if c.Snapshot().Items[0].Completed {
		t.Error("expected toggle twice to restore")
	}
	if c.ToggleCompleted(42) {
		t.Error("expected false for unknown id")
	}
	if gw.Calls() != calls {
		t.Error("expected toggle to stay local")
	}
}

func TestController_SuccessClearsPreviousError(t *testing.T) {
	gw := &stubGateway{list: service.Fail[[]service.Item](service.KindTransport, "request timed out")}
	c := mirror.New(gw)
	c.Refresh(context.Background())
	if c.Snapshot().LastError == "" {
		t.Fatal("expected lastError after failure")
	}

	gw.list = service.Ok([]service.Item{})
	c.Refresh(context.Background())
	if s := c.Snapshot(); s.LastError != "" {
		t.Errorf("expected lastError cleared, got %q", s.LastError)
	}
}

func TestController_DismissError(t *testing.T) {
	c := mirror.New(&stubGateway{})
	c.AddItem(context.Background(), "", "")
	c.DismissError()
	if s := c.Snapshot(); s.LastError != "" {
		t.Errorf("expected lastError cleared, got %q", s.LastError)
	}
}

func TestController_PendingAndBusy(t *testing.T) {
	gw := &stubGateway{
		list:    service.Ok([]service.Item{{ID: 1, Title: "a"}}),
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	c := mirror.New(gw)

	done := make(chan service.Result[[]service.Item])
	go func() { done <- c.Refresh(context.Background()) }()
	<-gw.entered

	if s := c.Snapshot(); !s.Pending || s.LastError != "" {
		t.Errorf("expected pending during call, got %+v", s)
	}
	res := c.AddItem(context.Background(), "A", "")
	if res.OK || res.Kind != service.KindBusy {
		t.Errorf("expected busy refusal, got %+v", res)
	}
	if s := c.Snapshot(); s.LastError != "" || len(s.Items) != 0 {
		t.Errorf("expected busy refusal to leave state untouched, got %+v", s)
	}

	close(gw.block)
	if res := <-done; !res.OK {
		t.Fatalf("refresh: %s", res.Message)
	}
	if s := c.Snapshot(); s.Pending || len(s.Items) != 1 {
		t.Errorf("expected settled state with 1 item, got %+v", s)
	}
	if gw.Calls() != 1 {
		t.Errorf("expected 1 gateway call, got %d", gw.Calls())
	}
}

func TestController_SnapshotIsACopy(t *testing.T) {
	gw := &stubGateway{}
	c := loaded(t, gw, service.Item{ID: 1, Title: "a"})
	c.BeginEdit(1)

	s := c.Snapshot()
	s.Items[0].Title = "mutated"
	s.EditSession.DraftTitle = "mutated"

	s = c.Snapshot()
	if s.Items[0].Title != "a" || s.EditSession.DraftTitle != "a" {
		t.Errorf("expected snapshot mutations not to leak, got %+v", s)
	}
}

func TestController_WithGatewayOverFakeBackend(t *testing.T) {
	backend := testutil.NewFakeBackend(
		service.Item{ID: 1, Title: "a"},
		service.Item{ID: 2, Title: "b"},
	)
	c := mirror.New(service.NewGateway(backend, service.DefaultListLimit))
	ctx := context.Background()

	c.Refresh(ctx)
	c.AddItem(ctx, "c", "")
	c.BeginEdit(1)
	c.SetEditDraft("a2", "")
	c.CommitEdit(ctx)
	c.RemoveItem(ctx, 2)

	s := c.Snapshot()
	if s.LastError != "" {
		t.Fatalf("unexpected error: %s", s.LastError)
	}
	if len(s.Items) != 2 || s.Items[0].Title != "c" || s.Items[1].Title != "a2" {
		t.Errorf("unexpected items: %+v", s.Items)
	}
	if backend.TotalCalls() != 4 {
		t.Errorf("expected 4 backend calls, got %d", backend.TotalCalls())
	}
}
