package bot

import (
	"fmt"
)

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelGood:
		return &GoodBot{}, nil
	case BotLevelSmart:
		return &SmartBot{}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}

// ParseLevel maps an identity difficulty to a bot level. Unknown values play as good bots.
func ParseLevel(difficulty string) BotLevel {
	switch difficulty {
	case "hard", "smart":
		return BotLevelSmart
	default:
		return BotLevelGood
	}
}
