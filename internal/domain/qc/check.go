package qc

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/loomline/backend/internal/domain/order"
	"github.com/loomline/backend/internal/domain/shared"
)

// Severity grades a defect found during inspection
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// IsValid checks if the severity is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityMinor, SeverityMajor, SeverityCritical:
		return true
	}
	return false
}

// String returns the string representation of Severity
func (s Severity) String() string {
	return string(s)
}

// Result classifies the overall outcome of an inspection
type Result string

const (
	ResultPass    Result = "pass"
	ResultWarning Result = "warning"
	ResultFail    Result = "fail"
)

// String returns the string representation of Result
func (r Result) String() string {
	return string(r)
}

// Mode controls how a failing inspection affects order completion.
// In strict mode a failed check blocks completion until a later check
// passes; in advisory mode the failure is surfaced but never blocks.
type Mode string

const (
	ModeStrict   Mode = "strict"
	ModeAdvisory Mode = "advisory"
)

// IsValid checks if the mode is valid
func (m Mode) IsValid() bool {
	return m == ModeStrict || m == ModeAdvisory
}

// Pass rate thresholds for classification, in percent.
const (
	passThreshold    = 95
	warningThreshold = 85
)

// Defect is one category of flaw found during an inspection
type Defect struct {
	ID          uuid.UUID
	Severity    Severity
	Count       int
	Description string
	Photo       string
}

// NewDefect creates a defect record
func NewDefect(severity Severity, count int, description, photo string) (Defect, error) {
	if !severity.IsValid() {
		return Defect{}, shared.NewDomainError("INVALID_SEVERITY", fmt.Sprintf("Unknown defect severity %q", severity))
	}
	if count <= 0 {
		return Defect{}, shared.NewDomainError("INVALID_DEFECT_COUNT", "Defect count must be positive")
	}
	if description == "" {
		return Defect{}, shared.NewDomainError("INVALID_DEFECT", "Defect description is required")
	}
	return Defect{
		ID:          uuid.New(),
		Severity:    severity,
		Count:       count,
		Description: description,
		Photo:       photo,
	}, nil
}

// Check is one quality inspection of an order's output at a given
// production stage. Checks are append-only: re-inspection after a failure
// creates a new Check, and the latest check per stage is the one the
// advancement and completion gates consult.
type Check struct {
	shared.BaseAggregateRoot
	OrderID        uuid.UUID
	Stage          order.Stage
	CheckedBy      uuid.UUID
	TotalInspected int
	PassedCount    int
	FailedCount    int
	Defects        []Defect
	Notes          string
	Result         Result
	CheckedAt      time.Time
}

// NewCheck creates a quality inspection record for one production stage.
// The piece counts must reconcile: passed plus failed equals total
// inspected, and the defect piece tally may not exceed the failed count.
func NewCheck(orderID, checkedBy uuid.UUID, stage order.Stage, totalInspected, passedCount, failedCount int, defects []Defect, notes string) (*Check, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if checkedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Inspector cannot be empty")
	}
	if !stage.IsValid() {
		return nil, shared.NewDomainError("INVALID_STAGE", fmt.Sprintf("Unknown production stage %q", stage))
	}
	if totalInspected <= 0 {
		return nil, shared.NewDomainError(shared.ErrCodeCountMismatch, "Total inspected must be positive")
	}
	if passedCount < 0 || failedCount < 0 {
		return nil, shared.NewDomainError(shared.ErrCodeCountMismatch, "Piece counts cannot be negative")
	}
	if passedCount+failedCount != totalInspected {
		return nil, shared.NewDomainError(shared.ErrCodeCountMismatch,
			fmt.Sprintf("Passed (%d) plus failed (%d) must equal total inspected (%d)", passedCount, failedCount, totalInspected))
	}
	defective := 0
	for _, d := range defects {
		if !d.Severity.IsValid() || d.Count <= 0 {
			return nil, shared.NewDomainError("INVALID_DEFECT", "Defects must carry a valid severity and positive count")
		}
		defective += d.Count
	}
	if defective > failedCount {
		return nil, shared.NewDomainError(shared.ErrCodeCountMismatch,
			fmt.Sprintf("Defect piece tally (%d) exceeds failed count (%d)", defective, failedCount))
	}
	if failedCount > 0 && len(defects) == 0 {
		return nil, shared.NewDomainError("INVALID_DEFECT", "Failed pieces require at least one defect record")
	}

	c := &Check{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Stage:             stage,
		CheckedBy:         checkedBy,
		TotalInspected:    totalInspected,
		PassedCount:       passedCount,
		FailedCount:       failedCount,
		Defects:           defects,
		Notes:             notes,
		CheckedAt:         time.Now(),
	}
	c.Result = c.classify()

	c.AddDomainEvent(NewCheckRecordedEvent(c))

	return c, nil
}

// PassRate returns the percentage of inspected pieces that passed,
// rounded half-even to two decimal places.
func (c *Check) PassRate() decimal.Decimal {
	if c.TotalInspected == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(c.PassedCount)).
		Div(decimal.NewFromInt(int64(c.TotalInspected))).
		Mul(decimal.NewFromInt(100)).
		RoundBank(2)
}

// HasCriticalDefect reports whether any recorded defect is critical
func (c *Check) HasCriticalDefect() bool {
	for _, d := range c.Defects {
		if d.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// classify derives the result: any critical defect fails outright,
// otherwise the pass rate decides.
func (c *Check) classify() Result {
	if c.HasCriticalDefect() {
		return ResultFail
	}
	rate := c.PassRate()
	switch {
	case rate.GreaterThanOrEqual(decimal.NewFromInt(passThreshold)):
		return ResultPass
	case rate.GreaterThanOrEqual(decimal.NewFromInt(warningThreshold)):
		return ResultWarning
	default:
		return ResultFail
	}
}

// Blocks reports whether this check holds the order back under the given
// mode: in strict mode a fail-classified check prevents advancing past the
// checked stage and, at final_qc, completing the order.
func (c *Check) Blocks(mode Mode) bool {
	return mode == ModeStrict && c.Result == ResultFail
}
