package safety

// #region veto-type
// VetoType enumerates hard veto categories.
type VetoType string

const (
	VetoBannedContent VetoType = "banned_content"
	VetoBlocklist     VetoType = "blocklist"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType
	Term   string
	Reason string
}

// #endregion veto-signal

// #region decision
// Decision is the outcome of evaluating one candidate text.
type Decision struct {
	Action      string       // "keep" | "drop"
	Reason      string
	Vetoed      bool
	VetoSignals []VetoSignal // non-empty if vetoed
}

// #endregion decision
