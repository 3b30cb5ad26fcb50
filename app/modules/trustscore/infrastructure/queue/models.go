package trustscorequeue

import "time"

// DecayJob runs a decay sweep over every inactive user. AsOf pins the
// reference time for jobs enqueued on demand; periodic runs leave it zero
// and use the time the job is worked.
type DecayJob struct {
	AsOf        time.Time `json:"as_of,omitempty"`
	RequestedBy string    `json:"requested_by,omitempty"`
}

// Kind returns the job type identifier for River
func (DecayJob) Kind() string { return "trust_score_decay" }

// QueueName is the dedicated River queue for trust score jobs.
const QueueName = "trustscore"
