package bot

import (
	"sort"

	"coup/internal/app"
	"coup/internal/domain"
)

// legal reports whether cmd would succeed for self, by running it on a clone.
func legal(match *domain.Match, self *domain.Player, cmd app.Command) bool {
	_, err := app.Apply(match.Clone(), self.Name(), cmd)
	return err == nil
}

// firstLegal returns the first candidate that would succeed.
func firstLegal(match *domain.Match, self *domain.Player, candidates []app.Command) (Move, bool) {
	for _, cmd := range candidates {
		if legal(match, self, cmd) {
			return Move{Command: cmd}, true
		}
	}
	return Move{}, false
}

// opponents returns the alive players other than self, richest first.
func opponents(match *domain.Match, self *domain.Player) []domain.PlayerView {
	var out []domain.PlayerView
	for _, p := range match.Roster() {
		if p.Alive && p.ID != self.ID() {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Coins > out[j].Coins
	})
	return out
}

func targeted(action domain.ActionKind, targets []domain.PlayerView) []app.Command {
	cmds := make([]app.Command, len(targets))
	for i, t := range targets {
		cmds[i] = app.Command{Action: action, Target: t.Name}
	}
	return cmds
}

func plain(actions ...domain.ActionKind) []app.Command {
	cmds := make([]app.Command, len(actions))
	for i, a := range actions {
		cmds[i] = app.Command{Action: a}
	}
	return cmds
}

// reviveSelf lets a General veto a coup against itself.
func reviveSelf(match *domain.Match, self *domain.Player) (Move, bool) {
	if self.Role() != domain.RoleGeneral || self.IsAlive() {
		return Move{}, false
	}
	return firstLegal(match, self, []app.Command{{Action: domain.ActionUndoCoup, Target: self.Name()}})
}
