package estate

import (
	"strconv"

	"github.com/google/uuid"
)

const (
	FreezeFlagUnfreeze uint32 = 0x1
	EjectFlagBan       uint32 = 0x1

	// EstateAccessBannedAgentAdd is the estate access delta flag for adding a ban.
	EstateAccessBannedAgentAdd = 64

	MethodTeleportHomeUser  = "teleporthomeuser"
	MethodEstateAccessDelta = "estateaccessdelta"
)

type RequestType string

const (
	TypeFreezeUser         RequestType = "FreezeUser"
	TypeEjectUser          RequestType = "EjectUser"
	TypeEstateOwnerMessage RequestType = "EstateOwnerMessage"
)

// Credentials identify the acting agent on every request.
type Credentials struct {
	AgentID   uuid.UUID
	SessionID uuid.UUID
}

// Request is one reliable outbound message. Invoice is the per-request
// correlation token; TransactionID is always nil for estate messages.
type Request struct {
	Type          RequestType `msgpack:"type" json:"type"`
	AgentID       uuid.UUID   `msgpack:"agent_id" json:"agent_id"`
	SessionID     uuid.UUID   `msgpack:"session_id" json:"session_id"`
	TargetID      uuid.UUID   `msgpack:"target_id" json:"target_id"`
	Flags         uint32      `msgpack:"flags" json:"flags"`
	TransactionID uuid.UUID   `msgpack:"transaction_id,omitempty" json:"transaction_id,omitempty"`
	Method        string      `msgpack:"method,omitempty" json:"method,omitempty"`
	Invoice       uuid.UUID   `msgpack:"invoice" json:"invoice"`
	Params        []string    `msgpack:"params,omitempty" json:"params,omitempty"`
}

// Operation names the request for logs and metrics.
func (r Request) Operation() string {
	switch r.Type {
	case TypeFreezeUser:
		if r.Flags&FreezeFlagUnfreeze != 0 {
			return "unfreeze"
		}
		return "freeze"
	case TypeEjectUser:
		if r.Flags&EjectFlagBan != 0 {
			return "eject_ban"
		}
		return "eject"
	case TypeEstateOwnerMessage:
		switch r.Method {
		case MethodTeleportHomeUser:
			return "estate_kick"
		case MethodEstateAccessDelta:
			return "estate_ban"
		}
	}
	return string(r.Type)
}

func Freeze(c Credentials, target uuid.UUID, freeze bool) Request {
	var flags uint32
	if !freeze {
		flags |= FreezeFlagUnfreeze
	}
	return Request{Type: TypeFreezeUser, AgentID: c.AgentID, SessionID: c.SessionID, TargetID: target, Flags: flags, Invoice: uuid.New()}
}

func Eject(c Credentials, target uuid.UUID, ban bool) Request {
	var flags uint32
	if ban {
		flags |= EjectFlagBan
	}
	return Request{Type: TypeEjectUser, AgentID: c.AgentID, SessionID: c.SessionID, TargetID: target, Flags: flags, Invoice: uuid.New()}
}

func EstateKick(c Credentials, target uuid.UUID) Request {
	return estateMessage(c, target, MethodTeleportHomeUser, []string{c.AgentID.String(), target.String()})
}

func EstateBan(c Credentials, target uuid.UUID) Request {
	return estateMessage(c, target, MethodEstateAccessDelta,
		[]string{c.AgentID.String(), strconv.Itoa(EstateAccessBannedAgentAdd), target.String()})
}

func estateMessage(c Credentials, target uuid.UUID, method string, params []string) Request {
	return Request{
		Type:          TypeEstateOwnerMessage,
		AgentID:       c.AgentID,
		SessionID:     c.SessionID,
		TargetID:      target,
		TransactionID: uuid.Nil,
		Method:        method,
		Invoice:       uuid.New(),
		Params:        params,
	}
}

// Destination says which region host a request is addressed to.
type Destination int

const (
	DestinationTargetRegion Destination = iota
	DestinationAgentRegion
)

func (a ActionKind) Destination() Destination {
	if a == ActionEstateEject {
		return DestinationAgentRegion
	}
	return DestinationTargetRegion
}

// Plan maps a resolved prompt to the ordered requests to send. Dismiss yields none.
func Plan(action ActionKind, outcome Outcome, c Credentials, target uuid.UUID) []Request {
	if outcome == OutcomeDismiss {
		return nil
	}
	alt := outcome == OutcomeAlternate
	switch action {
	case ActionFreeze:
		return []Request{Freeze(c, target, !alt)}
	case ActionEject:
		return []Request{Eject(c, target, alt)}
	case ActionEstateEject:
		if alt {
			return []Request{EstateKick(c, target), EstateBan(c, target)}
		}
		return []Request{EstateKick(c, target)}
	}
	return nil
}
