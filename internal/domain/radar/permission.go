package radar

// PermissionState is recomputed on every evaluation and never cached.
type PermissionState struct {
	Selected         EntityID `json:"selected"`
	CanMessage       bool     `json:"can_message"`
	CanProfile       bool     `json:"can_profile"`
	CanOfferTeleport bool     `json:"can_offer_teleport"`
	CanTrack         bool     `json:"can_track"`
	CanInvite        bool     `json:"can_invite"`
	CanFriend        bool     `json:"can_friend"`
	CanMute          bool     `json:"can_mute"`
	CanUnmute        bool     `json:"can_unmute"`
	CanReport        bool     `json:"can_report"`
	CanEstateAct     bool     `json:"can_estate_act"`
	ShowMute         bool     `json:"show_mute"`
	ShowUnmute       bool     `json:"show_unmute"`
}

// Closed is the state for a panel without focus: nothing enabled, mute shown.
func Closed() PermissionState {
	return PermissionState{ShowMute: true}
}

// BaseInputs are the live facts the base evaluation depends on.
type BaseInputs struct {
	Selected EntityID
	HasRow   bool
	Muted    bool
	Godlike  bool
	Mappable bool
	Kickable bool
	IsFriend bool
}

func EvaluateBase(in BaseInputs) PermissionState {
	enable := in.Selected != NilEntity && in.HasRow
	unmute := in.Selected != NilEntity && in.Muted
	return PermissionState{
		Selected:         in.Selected,
		CanMessage:       enable,
		CanProfile:       enable,
		CanOfferTeleport: enable,
		CanTrack:         in.Godlike || in.Mappable,
		CanInvite:        enable,
		CanFriend:        enable && !in.IsFriend,
		CanMute:          enable && !unmute,
		CanUnmute:        unmute,
		CanReport:        enable,
		CanEstateAct:     in.Kickable,
		ShowMute:         !unmute,
		ShowUnmute:       unmute,
	}
}

// PrivacyRestrictions describe an external restriction policy in force for
// the current selection.
type PrivacyRestrictions struct {
	Active            bool
	HideNames         bool
	RestrictTeleport  bool
	TeleportException bool
	RestrictLocation  bool
	SharesMapLocation bool
}

// TeleportAllowed applies the lure rules: the teleport restriction is lifted
// by the exception list, and a location restriction additionally requires an
// online friend who granted map rights.
func (r PrivacyRestrictions) TeleportAllowed() bool {
	allowed := !r.RestrictTeleport || r.TeleportException
	if allowed && r.RestrictLocation && !r.SharesMapLocation {
		allowed = false
	}
	return allowed
}

// WithPrivacy layers the restriction policy over a base evaluation. It only
// ever disables actions.
func (p PermissionState) WithPrivacy(r PrivacyRestrictions) PermissionState {
	if !r.Active || p.Selected == NilEntity {
		return p
	}
	if r.HideNames {
		p.CanMessage = false
		p.CanProfile = false
		p.CanInvite = false
		p.CanFriend = false
		p.CanMute = false
		p.CanUnmute = false
	}
	if !r.TeleportAllowed() {
		p.CanOfferTeleport = false
	}
	return p
}
