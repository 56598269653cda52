package order

// Stage is one of the seven fixed steps in physical garment production.
// Stages are strictly ordered; an order never moves backwards through them.
type Stage string

const (
	StageYarnReceived     Stage = "yarn_received"
	StageKnitting         Stage = "knitting"
	StageLinking          Stage = "linking"
	StageWashingFinishing Stage = "washing_finishing"
	StageFinalQC          Stage = "final_qc"
	StagePacking          Stage = "packing"
	StageReadyToShip      Stage = "ready_to_ship"
)

// stageSequence defines the production order of stages
var stageSequence = [...]Stage{
	StageYarnReceived,
	StageKnitting,
	StageLinking,
	StageWashingFinishing,
	StageFinalQC,
	StagePacking,
	StageReadyToShip,
}

// Stages returns all stages in production order
func Stages() []Stage {
	return stageSequence[:]
}

// Index returns the position of the stage in the production sequence,
// or -1 for an unknown stage
func (s Stage) Index() int {
	for i, stage := range stageSequence {
		if stage == s {
			return i
		}
	}
	return -1
}

// IsValid checks if the stage is a known production stage
func (s Stage) IsValid() bool {
	return s.Index() >= 0
}

// String returns the string representation of Stage
func (s Stage) String() string {
	return string(s)
}

// Before returns true if this stage comes earlier in the sequence
func (s Stage) Before(other Stage) bool {
	return s.Index() < other.Index()
}

// IsFinal returns true for the terminal ready_to_ship stage
func (s Stage) IsFinal() bool {
	return s == StageReadyToShip
}

// StageStatus classifies a stage relative to the order's current position
type StageStatus string

const (
	StageStatusComplete   StageStatus = "complete"
	StageStatusInProgress StageStatus = "in_progress"
	StageStatusPending    StageStatus = "pending"
)

// StageProgress maps each entered stage to its completion percentage (0-100).
// Per-stage values are monotonically non-decreasing once the stage is entered.
type StageProgress map[Stage]int

// Get returns the recorded percentage for a stage, 0 if never entered
func (p StageProgress) Get(stage Stage) int {
	if p == nil {
		return 0
	}
	return p[stage]
}

// Clone returns a copy of the progress map
func (p StageProgress) Clone() StageProgress {
	out := make(StageProgress, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
