// Package evaluator decides whether a scraped feed warrants a
// notification.
package evaluator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"renjiwatch/internal/logger"
	"renjiwatch/internal/models"
)

// Outcome is the evaluation result for one run.
type Outcome int

const (
	// OutcomeSkip means no action: the feed is stale or already notified.
	OutcomeSkip Outcome = iota
	// OutcomeNotifyFailure means parsing yielded no usable leading record.
	OutcomeNotifyFailure
	// OutcomeNotifyUpdate means new content should be mailed out.
	OutcomeNotifyUpdate
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeSkip:
		return "SKIP"
	case OutcomeNotifyFailure:
		return "NOTIFY_FAILURE"
	case OutcomeNotifyUpdate:
		return "NOTIFY_UPDATE"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Decision carries the outcome and, when the feed was hashed, the
// digest to persist after a successful notification.
type Decision struct {
	Outcome Outcome
	Digest  string
}

// Evaluator applies the staleness window and checkpoint comparison.
type Evaluator struct {
	window time.Duration
	log    *logger.Logger
	now    func() time.Time
}

// New creates an evaluator with the given staleness window in hours.
func New(intervalHours int, log *logger.Logger) *Evaluator {
	return NewWithClock(intervalHours, log, time.Now)
}

// NewWithClock creates an evaluator with an injected clock.
func NewWithClock(intervalHours int, log *logger.Logger, now func() time.Time) *Evaluator {
	return &Evaluator{
		window: time.Duration(intervalHours) * time.Hour,
		log:    log,
		now:    now,
	}
}

// Evaluate inspects the feed's leading record:
//
//  1. no record or no parsed date: the scrape failed structurally,
//     report it;
//  2. leading date older than now-window: nothing recent, stay silent;
//  3. otherwise compare the feed digest against the last notified one
//     and only propose an update when it differs.
func (e *Evaluator) Evaluate(feed models.Feed, lastDigest string) (Decision, error) {
	if len(feed) == 0 || feed[0].Date == nil {
		e.log.Warn("feed has no dated leading record", "records", len(feed))

		return Decision{Outcome: OutcomeNotifyFailure}, nil
	}

	threshold := e.now().Add(-e.window)
	if feed[0].Date.Before(threshold) {
		e.log.Info("last message too old, skipping",
			"recorded_at", feed[0].Date.Format(models.DateLayout))

		return Decision{Outcome: OutcomeSkip}, nil
	}

	digest, err := Digest(feed)
	if err != nil {
		return Decision{}, err
	}

	if lastDigest != "" && digest == lastDigest {
		e.log.Info("same digest as previous mail, skipping")

		return Decision{Outcome: OutcomeSkip, Digest: digest}, nil
	}

	return Decision{Outcome: OutcomeNotifyUpdate, Digest: digest}, nil
}

// Digest computes the hex SHA-256 of the feed's canonical
// serialization. Identical content yields identical digests across
// process restarts.
func Digest(feed models.Feed) (string, error) {
	canon, err := feed.CanonicalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to serialize feed: %w", err)
	}

	sum := sha256.Sum256(canon)

	return hex.EncodeToString(sum[:]), nil
}
