package memory

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/domain/radar"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScenario = errors.New("invalid scenario")

type Scenario struct {
	DrawDistance  float64          `yaml:"draw_distance"`
	AltitudeLimit float64          `yaml:"altitude_limit"`
	Agent         ScenarioAgent    `yaml:"agent"`
	Regions       []ScenarioRegion `yaml:"regions"`
	Parcels       []ScenarioParcel `yaml:"parcels"`
	Entities      []ScenarioEntity `yaml:"entities"`
	Privacy       ScenarioPrivacy  `yaml:"privacy"`
}

type ScenarioAgent struct {
	ID       string     `yaml:"id"`
	Name     string     `yaml:"name"`
	Position [3]float64 `yaml:"position"`
	Godlike  bool       `yaml:"godlike"`
}

type ScenarioRegion struct {
	ID     string     `yaml:"id"`
	Name   string     `yaml:"name"`
	Host   string     `yaml:"host"`
	Origin [2]float64 `yaml:"origin"`
}

type ScenarioParcel struct {
	Region    string     `yaml:"region"`
	Min       [2]float64 `yaml:"min"`
	Max       [2]float64 `yaml:"max"`
	Owner     string     `yaml:"owner"`
	LandAdmin bool       `yaml:"land_admin"`
}

type ScenarioEntity struct {
	ID       string          `yaml:"id"`
	Name     string          `yaml:"name"`
	Position [3]float64      `yaml:"position"`
	Mappable bool            `yaml:"mappable"`
	Muted    bool            `yaml:"muted"`
	Friend   *ScenarioFriend `yaml:"friend"`
}

type ScenarioFriend struct {
	Online bool `yaml:"online"`
	MapLoc bool `yaml:"map_rights"`
}

type ScenarioPrivacy struct {
	Enabled          bool     `yaml:"enabled"`
	HideNames        bool     `yaml:"hide_names"`
	RestrictTeleport bool     `yaml:"restrict_teleport"`
	RestrictLocation bool     `yaml:"restrict_location"`
	Exceptions       []string `yaml:"teleport_exceptions"`
}

func LoadScenarioFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return LoadScenario(raw)
}

func LoadScenario(raw []byte) (*Store, error) {
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	return sc.Build()
}

func (sc Scenario) Build() (*Store, error) {
	s := NewStore()
	if sc.DrawDistance > 0 {
		s.SetDrawDistance(sc.DrawDistance)
	}
	if sc.AltitudeLimit > 0 {
		s.SetAltitudeLimit(sc.AltitudeLimit)
	}

	regionIDs := map[string]uuid.UUID{}
	for _, r := range sc.Regions {
		id, err := parseOrNew(r.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: region %q: %v", ErrInvalidScenario, r.Name, err)
		}
		if r.Name == "" || r.Host == "" {
			return nil, fmt.Errorf("%w: region needs name and host", ErrInvalidScenario)
		}
		regionIDs[r.Name] = id
		s.AddRegion(Region{
			Ref:    radar.RegionRef{ID: id, Name: r.Name, Host: r.Host},
			Origin: radar.Point3D{r.Origin[0], r.Origin[1], 0},
		})
	}

	for _, p := range sc.Parcels {
		regionID, ok := regionIDs[p.Region]
		if !ok {
			return nil, fmt.Errorf("%w: parcel in unknown region %q", ErrInvalidScenario, p.Region)
		}
		owner := ParcelOwner(strings.ToLower(p.Owner))
		switch owner {
		case OwnerSelf, OwnerGroup, OwnerOther:
		case "":
			owner = OwnerOther
		default:
			return nil, fmt.Errorf("%w: parcel owner %q", ErrInvalidScenario, p.Owner)
		}
		s.AddParcel(Parcel{
			RegionID:  regionID,
			MinX:      p.Min[0],
			MinY:      p.Min[1],
			MaxX:      p.Max[0],
			MaxY:      p.Max[1],
			Owner:     owner,
			LandAdmin: p.LandAdmin,
		})
	}

	agentID, err := parseOrNew(sc.Agent.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: agent: %v", ErrInvalidScenario, err)
	}
	s.SetAgent(ports.AgentInfo{
		ID:        agentID,
		SessionID: uuid.New(),
		Position:  radar.Point3D(sc.Agent.Position),
		Godlike:   sc.Agent.Godlike,
	}, sc.Agent.Name)

	for _, e := range sc.Entities {
		id, err := parseOrNew(e.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: entity %q: %v", ErrInvalidScenario, e.Name, err)
		}
		s.PutEntity(Entity{ID: id, Name: e.Name, Position: radar.Point3D(e.Position), Mappable: e.Mappable})
		if e.Muted {
			s.mutes[id] = e.Name
		}
		if e.Friend != nil {
			s.SetFriend(id, ports.Relationship{Online: e.Friend.Online, GrantsMapLoc: e.Friend.MapLoc})
		}
	}

	priv := Privacy{
		Enabled:          sc.Privacy.Enabled,
		HideNames:        sc.Privacy.HideNames,
		RestrictTeleport: sc.Privacy.RestrictTeleport,
		RestrictLocation: sc.Privacy.RestrictLocation,
		Exceptions:       map[radar.EntityID]bool{},
	}
	for _, raw := range sc.Privacy.Exceptions {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: teleport exception %q", ErrInvalidScenario, raw)
		}
		priv.Exceptions[id] = true
	}
	s.SetPrivacy(priv)
	return s, nil
}

func parseOrNew(raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.New(), nil
	}
	return uuid.Parse(raw)
}
