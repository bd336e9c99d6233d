package domain

import (
	"regexp"
	"strings"
	"time"
)

const (
	DefaultPetColor = "#FF6B6B"
	DefaultStat     = 50

	MinStat = 0
	MaxStat = 100
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// PetType is the closed set of species a pet can be.
type PetType string

const (
	PetTypeMole   PetType = "MOLE"
	PetTypeMagpie PetType = "MAGPIE"
	PetTypeToad   PetType = "TOAD"
)

// PetTypeInfo is the display metadata attached to a species.
type PetTypeInfo struct {
	Type        PetType `json:"type"`
	DisplayName string  `json:"displayName"`
	Icon        string  `json:"icon"`
}

var petTypes = []PetTypeInfo{
	{Type: PetTypeMole, DisplayName: "Mole", Icon: "mole.svg"},
	{Type: PetTypeMagpie, DisplayName: "Magpie", Icon: "magpie.svg"},
	{Type: PetTypeToad, DisplayName: "Toad", Icon: "toad.svg"},
}

// PetTypes returns the species catalogue in display order.
func PetTypes() []PetTypeInfo {
	out := make([]PetTypeInfo, len(petTypes))
	copy(out, petTypes)
	return out
}

// ParsePetType resolves a species name case-insensitively.
func ParsePetType(s string) (PetType, bool) {
	t := PetType(strings.ToUpper(strings.TrimSpace(s)))
	if t == "" || t.Info().Type != t {
		return "", false
	}
	return t, true
}

// Info returns the display metadata for t. Unknown types yield a zero value.
func (t PetType) Info() PetTypeInfo {
	for _, info := range petTypes {
		if info.Type == t {
			return info
		}
	}
	return PetTypeInfo{}
}

// ValidColor reports whether s is a #RRGGBB hex color.
func ValidColor(s string) bool {
	return colorPattern.MatchString(s)
}

// Pet is owned by exactly one user. Happiness, Energy and Hunger stay within [MinStat, MaxStat].
type Pet struct {
	ID            int64
	Name          string
	Type          PetType
	Color         string
	Happiness     int
	Energy        int
	Hunger        int
	OwnerID       int64
	OwnerUsername string
	CreatedAt     time.Time
}

// NewPet returns a pet with default color and stats for the given owner.
func NewPet(name string, t PetType, color string, owner *Subject, now time.Time) *Pet {
	if color == "" {
		color = DefaultPetColor
	}
	return &Pet{
		Name:          name,
		Type:          t,
		Color:         color,
		Happiness:     DefaultStat,
		Energy:        DefaultStat,
		Hunger:        DefaultStat,
		OwnerID:       owner.UserID,
		OwnerUsername: owner.Username,
		CreatedAt:     now,
	}
}

// Feed lowers hunger by 20 and raises happiness by 10.
func (p *Pet) Feed() {
	p.Hunger = clampStat(p.Hunger - 20)
	p.Happiness = clampStat(p.Happiness + 10)
}

// Play spends 15 energy and raises happiness by 15.
func (p *Pet) Play() {
	p.Energy = clampStat(p.Energy - 15)
	p.Happiness = clampStat(p.Happiness + 15)
}

// Rest restores 25 energy.
func (p *Pet) Rest() {
	p.Energy = clampStat(p.Energy + 25)
}

func clampStat(v int) int {
	if v < MinStat {
		return MinStat
	}
	if v > MaxStat {
		return MaxStat
	}
	return v
}

// Interaction is an action a caller can perform on a pet.
type Interaction string

const (
	InteractionFeed Interaction = "feed"
	InteractionPlay Interaction = "play"
	InteractionRest Interaction = "rest"
)

// ParseInteraction maps a route segment onto an Interaction.
func ParseInteraction(s string) (Interaction, bool) {
	switch i := Interaction(strings.ToLower(s)); i {
	case InteractionFeed, InteractionPlay, InteractionRest:
		return i, true
	}
	return "", false
}

// Apply runs the interaction against p.
func (i Interaction) Apply(p *Pet) {
	switch i {
	case InteractionFeed:
		p.Feed()
	case InteractionPlay:
		p.Play()
	case InteractionRest:
		p.Rest()
	}
}
