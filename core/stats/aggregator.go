package stats

import (
	"fmt"
	"math"

	"github.com/upskillway/crm/core"
	"github.com/upskillway/crm/core/college"
	"github.com/upskillway/crm/core/lead"
	"github.com/upskillway/crm/core/trainer"
)

// Sub-count bucket names.
const (
	BucketNew       = "new"
	BucketQualified = "qualified"
	BucketConverted = "converted"
	BucketActive    = "active"
	BucketInactive  = "inactive"
	BucketAvailable = "available"
	BucketBusy      = "busy"
)

// classifiers maps each category to its bucket predicate. A record that
// matches no bucket is counted in the total only.
var classifiers = map[Category]func(Record) string{
	CategoryLeads:    classifyLead,
	CategoryUsers:    classifyActive,
	CategoryColleges: classifyCollege,
	CategoryTrainers: classifyTrainer,
}

// categoryBuckets pins the bucket set emitted per category, so zeroed stats
// keep their shape even when no record matched.
var categoryBuckets = map[Category][]string{
	CategoryLeads:    {BucketNew, BucketQualified, BucketConverted},
	CategoryUsers:    {BucketActive, BucketInactive},
	CategoryColleges: {BucketActive, BucketInactive},
	CategoryTrainers: {BucketAvailable, BucketBusy},
}

// Aggregator computes best-effort dashboard statistics from independently
// paginated category responses. It never fails: a broken category degrades to
// zeroed counts with a warning so the other categories still render.
type Aggregator struct {
	logger core.Logger
}

func NewAggregator(logger core.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate produces one Stat per category.
//
// The one hard invariant: when the response carries an authoritative
// pagination total, that total is emitted, never the sample page length.
// When the page is a strict subset of the population, sub-counts are scaled
// by total/len(page) and rounded; the true distribution is not recoverable
// from a partial sample, so scaled sub-counts are approximate by design.
func (a *Aggregator) Aggregate(responses map[Category]ListResponse) Dashboard {
	dash := make(Dashboard, len(AllCategories))
	for _, cat := range AllCategories {
		dash[cat] = a.aggregateOne(cat, responses[cat])
	}
	return dash
}

func (a *Aggregator) aggregateOne(cat Category, resp ListResponse) Stat {
	stat := Stat{SubCounts: zeroBuckets(cat)}

	if !resp.Success {
		a.logger.Warn(fmt.Sprintf("stats: %s fetch unsuccessful, emitting zeroed counts", cat))
		return stat
	}

	sampleLen := len(resp.Data)
	if resp.HasTotal() {
		stat.Total = resp.AuthoritativeTotal()
	} else {
		stat.Total = sampleLen
		a.logger.Warn(fmt.Sprintf("stats: %s response has no authoritative total, using page length %d (undercounts truncated pages)", cat, sampleLen))
	}
	if stat.Total < 0 {
		stat.Total = 0
	}

	classify := classifiers[cat]
	for _, rec := range resp.Data {
		if bucket := classify(rec); bucket != "" {
			stat.SubCounts[bucket]++
		}
	}

	// scale up when the page is a strict subset of the population
	if stat.Total > sampleLen && sampleLen > 0 {
		ratio := float64(stat.Total) / float64(sampleLen)
		for bucket, n := range stat.SubCounts {
			stat.SubCounts[bucket] = int(math.Round(float64(n) * ratio))
		}
	}

	for bucket, n := range stat.SubCounts {
		if n < 0 {
			stat.SubCounts[bucket] = 0
		}
	}
	return stat
}

func zeroBuckets(cat Category) map[string]int {
	buckets := make(map[string]int, len(categoryBuckets[cat]))
	for _, b := range categoryBuckets[cat] {
		buckets[b] = 0
	}
	return buckets
}

// Bucket predicates

func classifyLead(rec Record) string {
	switch rec.Status {
	case lead.StatusNew, lead.StatusStart:
		return BucketNew
	case lead.StatusQualified, lead.StatusInProgress, lead.StatusInConversation, lead.StatusActive:
		return BucketQualified
	case lead.StatusConverted:
		return BucketConverted
	}
	return ""
}

func classifyActive(rec Record) string {
	if rec.IsActive != nil {
		if *rec.IsActive {
			return BucketActive
		}
		return BucketInactive
	}
	return classifyCollege(rec)
}

func classifyCollege(rec Record) string {
	switch rec.Status {
	case college.StatusActive:
		return BucketActive
	case college.StatusInactive:
		return BucketInactive
	}
	return ""
}

func classifyTrainer(rec Record) string {
	switch rec.Status {
	case trainer.StatusAvailable:
		return BucketAvailable
	case trainer.StatusBusy:
		return BucketBusy
	}
	return ""
}
