package marketplacedomain

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
	JobStatusDisputed   JobStatus = "disputed"
)

func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusOpen, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled, JobStatusDisputed:
		return true
	}
	return false
}

// jobTransitions lists the allowed next states of each job state.
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusOpen:       {JobStatusInProgress, JobStatusCancelled},
	JobStatusInProgress: {JobStatusCompleted, JobStatusCancelled, JobStatusDisputed},
	JobStatusDisputed:   {JobStatusInProgress, JobStatusCompleted, JobStatusCancelled},
}

// CanTransition reports whether a job may move from one state to another.
func CanTransition(from, to JobStatus) bool {
	for _, next := range jobTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type BidStatus string

const (
	BidStatusPending  BidStatus = "pending"
	BidStatusAccepted BidStatus = "accepted"
	BidStatusRejected BidStatus = "rejected"
)

type MilestoneStatus string

const (
	MilestoneStatusFunded   MilestoneStatus = "funded"
	MilestoneStatusReleased MilestoneStatus = "released"
)

// DisputeStatus is open until an admin rules on it.
type DisputeStatus string

const (
	DisputeStatusOpen      DisputeStatus = "open"
	DisputeStatusUpheld    DisputeStatus = "upheld"
	DisputeStatusDismissed DisputeStatus = "dismissed"
)

// IsResolution reports whether s is a valid outcome for resolving a dispute.
func (s DisputeStatus) IsResolution() bool {
	return s == DisputeStatusUpheld || s == DisputeStatusDismissed
}

// BadgeType is a kind of identity verification a user has passed.
type BadgeType string

const (
	BadgeEmail        BadgeType = "email"
	BadgeIdentity     BadgeType = "identity"
	BadgePhone        BadgeType = "phone"
	BadgeProfessional BadgeType = "professional"
	BadgeKYC          BadgeType = "kyc"
)

// AllBadgeTypes in display order.
var AllBadgeTypes = []BadgeType{BadgeEmail, BadgeIdentity, BadgePhone, BadgeProfessional, BadgeKYC}

func (b BadgeType) IsValid() bool {
	for _, t := range AllBadgeTypes {
		if t == b {
			return true
		}
	}
	return false
}

const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether r is an allowed star rating.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
