package permission

import (
	"context"
	"errors"
	"testing"

	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/domain/radar"

	"github.com/google/uuid"
)

type stubSession struct {
	agent ports.AgentInfo
	err   error
}

func (s stubSession) Agent(context.Context) (ports.AgentInfo, error) { return s.agent, s.err }

type stubObjects map[radar.EntityID]radar.TrackedObject

func (o stubObjects) TrackedObject(_ context.Context, id radar.EntityID) (radar.TrackedObject, bool) {
	obj, ok := o[id]
	return obj, ok
}

type parcelOwner int

const (
	ownedByOther parcelOwner = iota
	ownedBySelf
	ownedByGroup
)

type stubParcels struct {
	valid     bool
	owner     parcelOwner
	landAdmin bool
	calls     []string
}

func (p *stubParcels) ValidGlobal(context.Context, radar.Point3D) bool { return p.valid }

func (p *stubParcels) IsOwnedSelf(context.Context, radar.RegionRef, radar.Point3D) bool {
	p.calls = append(p.calls, "self")
	return p.owner == ownedBySelf
}

func (p *stubParcels) IsOwnedGroup(context.Context, radar.RegionRef, radar.Point3D) bool {
	p.calls = append(p.calls, "group")
	return p.owner == ownedByGroup
}

func (p *stubParcels) HasLandAdmin(context.Context, radar.RegionRef, radar.Point3D) bool {
	p.calls = append(p.calls, "admin")
	return p.landAdmin
}

type stubMutes struct {
	muted map[radar.EntityID]bool
	err   error
}

func (m stubMutes) IsMuted(_ context.Context, id radar.EntityID) (bool, error) { return m.muted[id], m.err }
func (m stubMutes) Add(context.Context, radar.EntityID, string) error { return nil }
func (m stubMutes) Remove(context.Context, radar.EntityID, string) error { return nil }

type stubFriends struct {
	friends map[radar.EntityID]ports.Relationship
}

func (f stubFriends) IsFriend(_ context.Context, id radar.EntityID) bool {
	_, ok := f.friends[id]
	return ok
}

func (f stubFriends) Relationship(_ context.Context, id radar.EntityID) (ports.Relationship, bool) {
	rel, ok := f.friends[id]
	return rel, ok
}

type stubPrivacy struct {
	hide, tp, loc bool
	exceptions    map[radar.EntityID]bool
}

func (p stubPrivacy) Enabled() bool { return true }
func (p stubPrivacy) HideNames() bool { return p.hide }
func (p stubPrivacy) RestrictTeleport() bool { return p.tp }
func (p stubPrivacy) RestrictLocation() bool { return p.loc }
func (p stubPrivacy) IsTeleportException(id radar.EntityID) bool { return p.exceptions[id] }
func (p stubPrivacy) Anonymize(string) string { return "someone" }

func setup(owner parcelOwner, landAdmin bool) (UseCase, radar.EntityID, *stubParcels) {
	id := uuid.New()
	region := radar.RegionRef{ID: uuid.New(), Host: "sim1.example:13000"}
	parcels := &stubParcels{valid: true, owner: owner, landAdmin: landAdmin}
	uc := UseCase{
		Session: stubSession{agent: ports.AgentInfo{ID: uuid.New(), Region: region}},
		Objects: stubObjects{id: {ID: id, IsAvatar: true, Region: region}},
		Parcels: parcels,
		Mutes:   stubMutes{},
		Friends: stubFriends{},
	}
	return uc, id, parcels
}

func TestIsKickable_OwnershipOrder(t *testing.T) {
	uc, id, parcels := setup(ownedBySelf, false)
	if !uc.IsKickable(context.Background(), id) {
		t.Fatalf("expected self-owned parcel kickable")
	}
	if len(parcels.calls) != 2 || parcels.calls[0] != "self" {
		t.Fatalf("expected self check first, got %v", parcels.calls)
	}

	uc, id, _ = setup(ownedByOther, false)
	if uc.IsKickable(context.Background(), id) {
		t.Fatalf("expected unrelated owner not kickable")
	}

	uc, id, parcels = setup(ownedByGroup, true)
	if !uc.IsKickable(context.Background(), id) {
		t.Fatalf("expected land-admin over group parcel kickable")
	}
	if parcels.calls[len(parcels.calls)-1] != "admin" {
		t.Fatalf("expected group admin fallback, got %v", parcels.calls)
	}

	uc, id, _ = setup(ownedByGroup, false)
	if uc.IsKickable(context.Background(), id) {
		t.Fatalf("expected group parcel without land admin not kickable")
	}
}

func TestIsKickable_FailsClosed(t *testing.T) {
	uc, id, parcels := setup(ownedBySelf, true)
	if uc.IsKickable(context.Background(), uuid.New()) {
		t.Fatalf("expected entity without tracked object not kickable")
	}
	if uc.IsKickable(context.Background(), radar.NilEntity) {
		t.Fatalf("expected nil entity not kickable")
	}

	parcels.valid = false
	if uc.IsKickable(context.Background(), id) {
		t.Fatalf("expected invalid global position not kickable")
	}

	parcels.valid = true
	uc.Objects = stubObjects{id: {ID: id, IsAvatar: true}}
	if uc.IsKickable(context.Background(), id) {
		t.Fatalf("expected entity without region not kickable")
	}
}

func TestEvaluate_NoFocusDisablesEverything(t *testing.T) {
	uc, id, _ := setup(ownedBySelf, true)
	p, err := uc.Evaluate(context.Background(), Request{Selected: id, HasFocus: false, HasRow: true})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if p != radar.Closed() {
		t.Fatalf("expected closed state, got %+v", p)
	}
}

func TestEvaluate_SelectedRow(t *testing.T) {
	uc, id, _ := setup(ownedBySelf, false)
	p, err := uc.Evaluate(context.Background(), Request{Selected: id, HasFocus: true, HasRow: true})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if !p.CanMessage || !p.CanEstateAct || !p.CanFriend || !p.ShowMute || p.ShowUnmute {
		t.Fatalf("unexpected state %+v", p)
	}
	if p.CanTrack {
		t.Fatalf("expected track disabled without map rights or god mode")
	}
}

func TestEvaluate_MutedAndFriend(t *testing.T) {
	uc, id, _ := setup(ownedByOther, false)
	uc.Mutes = stubMutes{muted: map[radar.EntityID]bool{id: true}}
	uc.Friends = stubFriends{friends: map[radar.EntityID]ports.Relationship{id: {Online: true}}}
	p, err := uc.Evaluate(context.Background(), Request{Selected: id, HasFocus: true, HasRow: true})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if !p.CanUnmute || p.ShowMute || !p.ShowUnmute || p.CanMute {
		t.Fatalf("expected unmute toggle, got %+v", p)
	}
	if p.CanFriend {
		t.Fatalf("expected friend action disabled for a friend")
	}
}

func TestEvaluate_NilSelection(t *testing.T) {
	uc, _, _ := setup(ownedBySelf, true)
	p, err := uc.Evaluate(context.Background(), Request{HasFocus: true})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if p.CanMessage || p.CanEstateAct || p.CanUnmute || p.CanFriend {
		t.Fatalf("expected all false for nil selection, got %+v", p)
	}
}

func TestEvaluate_PrivacyGatesTeleport(t *testing.T) {
	uc, id, _ := setup(ownedBySelf, false)
	uc.Privacy = stubPrivacy{tp: true}
	p, _ := uc.Evaluate(context.Background(), Request{Selected: id, HasFocus: true, HasRow: true})
	if p.CanOfferTeleport {
		t.Fatalf("expected teleport blocked")
	}

	uc.Privacy = stubPrivacy{tp: true, loc: true, exceptions: map[radar.EntityID]bool{id: true}}
	p, _ = uc.Evaluate(context.Background(), Request{Selected: id, HasFocus: true, HasRow: true})
	if p.CanOfferTeleport {
		t.Fatalf("expected location restriction to require a map grant")
	}

	uc.Friends = stubFriends{friends: map[radar.EntityID]ports.Relationship{id: {Online: true, GrantsMapLoc: true}}}
	p, _ = uc.Evaluate(context.Background(), Request{Selected: id, HasFocus: true, HasRow: true})
	if !p.CanOfferTeleport {
		t.Fatalf("expected online friend with map grant to allow teleport")
	}
	if !p.CanEstateAct {
		t.Fatalf("expected privacy layer to leave estate actions alone")
	}
}

func TestEvaluate_PropagatesMuteError(t *testing.T) {
	uc, id, _ := setup(ownedBySelf, false)
	want := errors.New("mute store down")
	uc.Mutes = stubMutes{err: want}
	if _, err := uc.Evaluate(context.Background(), Request{Selected: id, HasFocus: true, HasRow: true}); !errors.Is(err, want) {
		t.Fatalf("expected mute error, got %v", err)
	}
}
