package domain

// Coin amounts and thresholds of the ruleset.
const (
	ForcedCoupThreshold = 10

	GatherIncome      = 1
	TaxIncome         = 2
	GovernorTaxIncome = 3

	BribeCost         = 4
	SanctionCost      = 3
	JudgeSanctionFee  = 1
	CoupCost          = 7
	ArrestTheft       = 1
	MerchantArrestFee = 2

	InvestMinimum = 3
	InvestPayout  = 3 // net: pay 3, receive 6

	UndoCoupCost = 5

	MerchantBonusThreshold = 3
)

// ActionKind names an action recorded in the match ledger.
type ActionKind string

const (
	ActionGather    ActionKind = "gather"
	ActionTax       ActionKind = "tax"
	ActionBribe     ActionKind = "bribe"
	ActionArrest    ActionKind = "arrest"
	ActionSanction  ActionKind = "sanction"
	ActionCoup      ActionKind = "coup"
	ActionInvest    ActionKind = "invest"
	ActionUndoTax   ActionKind = "undo_tax"
	ActionUndoBribe ActionKind = "undo_bribe"
	ActionUndoCoup  ActionKind = "undo_coup"
	ActionPeek      ActionKind = "peek_and_disable"
)

// Phase is the lifecycle stage of a match.
type Phase string

const (
	// PhaseSetup accepts players; no action has been taken yet.
	PhaseSetup Phase = "setup"
	// PhaseInProgress means at least one action was recorded.
	PhaseInProgress Phase = "in_progress"
	// PhaseOver is terminal.
	PhaseOver Phase = "over"
)
