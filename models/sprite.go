package models

import "github.com/pixelplumber/plumber/render"

const (
	SpriteNone render.SpriteID = iota
	SpriteGround
	SpriteBrick
	SpriteQuestionBlock
	SpriteHardBlock
	SpriteCoin
	SpritePipeTopLeft
	SpritePipeTopRight
	SpritePipeLeft
	SpritePipeRight
	SpriteGoombaLeft
	SpriteGoombaRight
	SpriteKoopaGreen1
	SpriteKoopaGreen2
	SpriteKoopaGreenStomped1
	SpriteKoopaGreenStomped2
	SpriteKoopaRed1
	SpriteKoopaRed2
	SpriteKoopaRedStomped1
	SpriteKoopaRedStomped2
	SpriteParakoopaGreen1
	SpriteParakoopaGreen2
	SpriteParakoopaRed1
	SpriteParakoopaRed2
	SpritePlayerSmall
	SpritePlayerLarge
	SpritePlayerFire
	SpritePlayerInvincible

	SpriteCount
)

var spriteNames = [...]string{
	SpriteNone:               "none",
	SpriteGround:             "ground",
	SpriteBrick:              "brick",
	SpriteQuestionBlock:      "question_block",
	SpriteHardBlock:          "hard_block",
	SpriteCoin:               "coin",
	SpritePipeTopLeft:        "pipe_top_left",
	SpritePipeTopRight:       "pipe_top_right",
	SpritePipeLeft:           "pipe_left",
	SpritePipeRight:          "pipe_right",
	SpriteGoombaLeft:         "goomba_left",
	SpriteGoombaRight:        "goomba_right",
	SpriteKoopaGreen1:        "koopa_green_1",
	SpriteKoopaGreen2:        "koopa_green_2",
	SpriteKoopaGreenStomped1: "koopa_green_stomped_1",
	SpriteKoopaGreenStomped2: "koopa_green_stomped_2",
	SpriteKoopaRed1:          "koopa_red_1",
	SpriteKoopaRed2:          "koopa_red_2",
	SpriteKoopaRedStomped1:   "koopa_red_stomped_1",
	SpriteKoopaRedStomped2:   "koopa_red_stomped_2",
	SpriteParakoopaGreen1:    "parakoopa_green_1",
	SpriteParakoopaGreen2:    "parakoopa_green_2",
	SpriteParakoopaRed1:      "parakoopa_red_1",
	SpriteParakoopaRed2:      "parakoopa_red_2",
	SpritePlayerSmall:        "player_small",
	SpritePlayerLarge:        "player_large",
	SpritePlayerFire:         "player_fire",
	SpritePlayerInvincible:   "player_invincible",
}

// SpriteName returns the name of a sprite, or an empty string when the id
// is not part of the sheet.
func SpriteName(id render.SpriteID) string {
	if id < SpriteCount {
		return spriteNames[id]
	}
	return ""
}
