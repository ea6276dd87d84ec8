package models

// Kind is the type of a world object.
type Kind uint8

const (
	KindNone Kind = iota
	KindGoomba
	KindKoopa
	KindRedKoopa
	KindGreenKoopa
	KindRedParakoopa
	KindGreenParakoopa
	KindBeetle
	KindLakitu
	KindSpiny
	KindPiranhaPlant
	KindBowser
	KindCheepCheep
	KindBlooper
	KindPodoboo
	KindHammerBro
	KindBulletBill
	KindToad
	KindPeach
	KindRedMushroom
	KindGreenMushroom
	KindStar
	KindFireFlower
	KindPlayer
)

var kindNames = [...]string{
	KindNone:           "none",
	KindGoomba:         "goomba",
	KindKoopa:          "koopa",
	KindRedKoopa:       "red_koopa",
	KindGreenKoopa:     "green_koopa",
	KindRedParakoopa:   "red_parakoopa",
	KindGreenParakoopa: "green_parakoopa",
	KindBeetle:         "beetle",
	KindLakitu:         "lakitu",
	KindSpiny:          "spiny",
	KindPiranhaPlant:   "piranha_plant",
	KindBowser:         "bowser",
	KindCheepCheep:     "cheep_cheep",
	KindBlooper:        "blooper",
	KindPodoboo:        "podoboo",
	KindHammerBro:      "hammer_bro",
	KindBulletBill:     "bullet_bill",
	KindToad:           "toad",
	KindPeach:          "peach",
	KindRedMushroom:    "red_mushroom",
	KindGreenMushroom:  "green_mushroom",
	KindStar:           "star",
	KindFireFlower:     "fire_flower",
	KindPlayer:         "player",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Variant is the collision behaviour shared by a group of kinds. Collision
// rules are looked up by variant, never by kind.
type Variant uint8

const (
	VariantInert Variant = iota
	VariantWalker
	VariantShell
	VariantControllable
)

func (v Variant) String() string {
	switch v {
	case VariantWalker:
		return "walker"
	case VariantShell:
		return "shell"
	case VariantControllable:
		return "controllable"
	default:
		return "inert"
	}
}

// VariantOf returns the collision variant of k. Kinds without collision
// behaviour yet are inert.
func VariantOf(k Kind) Variant {
	switch k {
	case KindGoomba:
		return VariantWalker
	case KindKoopa, KindRedKoopa, KindGreenKoopa, KindRedParakoopa, KindGreenParakoopa:
		return VariantShell
	case KindPlayer:
		return VariantControllable
	default:
		return VariantInert
	}
}
