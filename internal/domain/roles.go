package domain

// Role is the closed set of player variants.
type Role string

const (
	RoleGovernor Role = "Governor"
	RoleSpy      Role = "Spy"
	RoleBaron    Role = "Baron"
	RoleGeneral  Role = "General"
	RoleJudge    Role = "Judge"
	RoleMerchant Role = "Merchant"
)

// Roles lists every role in a stable order.
var Roles = []Role{RoleGovernor, RoleSpy, RoleBaron, RoleGeneral, RoleJudge, RoleMerchant}

// ParseRole converts a role name into a Role.
func ParseRole(name string) (Role, error) {
	for _, r := range Roles {
		if string(r) == name {
			return r, nil
		}
	}
	return "", errInvalidAction("Unknown role: " + name)
}

// taxIncome is what a tax action pays the given role.
func (r Role) taxIncome() int {
	if r == RoleGovernor {
		return GovernorTaxIncome
	}
	return TaxIncome
}

// sanctionCost is what an attacker pays to sanction a player of role r.
func (r Role) sanctionCost() int {
	if r == RoleJudge {
		return SanctionCost + JudgeSanctionFee
	}
	return SanctionCost
}

// arrestMinimum is how many coins a target of role r must hold to be arrested.
func (r Role) arrestMinimum() int {
	if r == RoleMerchant {
		return MerchantArrestFee
	}
	return ArrestTheft
}

// undoTaxAmount is how much an undone tax takes back from a player of role r.
func (r Role) undoTaxAmount() int {
	return r.taxIncome()
}

// arrestOutcome is the coin movement caused by arresting a player of role r,
// including the target's on-arrest passive.
type arrestOutcome struct {
	targetDelta   int
	attackerDelta int
}

func (r Role) onArrest() arrestOutcome {
	switch r {
	case RoleMerchant:
		return arrestOutcome{targetDelta: -MerchantArrestFee}
	case RoleGeneral:
		// refund cancels the theft; the attacker still gains.
		return arrestOutcome{targetDelta: +1 - ArrestTheft, attackerDelta: ArrestTheft}
	default:
		return arrestOutcome{targetDelta: -ArrestTheft, attackerDelta: ArrestTheft}
	}
}

// onSanctionBonus is the compensation a player of role r receives when sanctioned.
func (r Role) onSanctionBonus() int {
	if r == RoleBaron {
		return 1
	}
	return 0
}

// onTurnStartBonus is the passive income a player receives as its turn begins.
func (r Role) onTurnStartBonus(coins int) int {
	if r == RoleMerchant && coins >= MerchantBonusThreshold {
		return 1
	}
	return 0
}
