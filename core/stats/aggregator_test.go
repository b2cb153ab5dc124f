package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/upskillway/crm/core"
	"github.com/upskillway/crm/core/lead"
	"github.com/upskillway/crm/core/trainer"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

var _ core.Logger = (*nopLogger)(nil)

func leadRecords(statuses ...string) []Record {
	recs := make([]Record, 0, len(statuses))
	for _, s := range statuses {
		recs = append(recs, Record{Status: s})
	}
	return recs
}

func boolPtr(b bool) *bool { return &b }

func TestAggregate_authoritativeTotalPrecedence(t *testing.T) {
	agg := NewAggregator(nopLogger{})

	dash := agg.Aggregate(map[Category]ListResponse{
		CategoryLeads: {
			Success:    true,
			Data:       leadRecords(lead.StatusNew, lead.StatusNew),
			Pagination: &Pagination{Total: float64(50)},
		},
	})

	assert.Equal(t, 50, dash[CategoryLeads].Total, "pagination.total must win over page length")
}

func TestAggregate_fallsBackToPageLength(t *testing.T) {
	agg := NewAggregator(nopLogger{})

	dash := agg.Aggregate(map[Category]ListResponse{
		CategoryLeads: {Success: true, Data: leadRecords(lead.StatusNew, lead.StatusConverted)},
	})

	st := dash[CategoryLeads]
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 1, st.SubCounts[BucketNew])
	assert.Equal(t, 1, st.SubCounts[BucketConverted])
}

func TestAggregate_nullTotalTreatedAsAbsent(t *testing.T) {
	agg := NewAggregator(nopLogger{})

	dash := agg.Aggregate(map[Category]ListResponse{
		CategoryLeads: {
			Success:    true,
			Data:       leadRecords(lead.StatusNew),
			Pagination: &Pagination{Total: nil},
		},
	})

	assert.Equal(t, 1, dash[CategoryLeads].Total)
}

func TestAggregate_coercesJunkTotals(t *testing.T) {
	agg := NewAggregator(nopLogger{})

	tests := []struct {
		name  string
		total interface{}
		want  int
	}{
		{name: "float", total: float64(7), want: 7},
		{name: "numeric string", total: "7", want: 7},
		{name: "junk string", total: "lots", want: 0},
		{name: "negative clamped", total: float64(-3), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dash := agg.Aggregate(map[Category]ListResponse{
				CategoryLeads: {Success: true, Pagination: &Pagination{Total: tt.total}},
			})
			assert.Equal(t, tt.want, dash[CategoryLeads].Total)
		})
	}
}

func TestAggregate_failedCategoryZeroesOnlyItself(t *testing.T) {
	agg := NewAggregator(nopLogger{})

	dash := agg.Aggregate(map[Category]ListResponse{
		CategoryLeads: {Success: false},
		CategoryTrainers: {
			Success: true,
			Data:    []Record{{Status: trainer.StatusAvailable}, {Status: trainer.StatusBusy}},
		},
	})

	leads := dash[CategoryLeads]
	assert.Equal(t, 0, leads.Total)
	for bucket, n := range leads.SubCounts {
		assert.Zerof(t, n, "bucket %s", bucket)
	}

	trainers := dash[CategoryTrainers]
	assert.Equal(t, 2, trainers.Total)
	assert.Equal(t, 1, trainers.SubCounts[BucketAvailable])
	assert.Equal(t, 1, trainers.SubCounts[BucketBusy])

	// absent categories settle as failed too
	assert.Equal(t, 0, dash[CategoryUsers].Total)
	assert.Equal(t, 0, dash[CategoryColleges].Total)
}

// Scaled sub-counts are a deliberate approximation: the true distribution is
// not recoverable from a partial page, so the ratio-extrapolated buckets are
// a statistical estimate, not an exact count.
func TestAggregate_ratioExtrapolation(t *testing.T) {
	agg := NewAggregator(nopLogger{})

	dash := agg.Aggregate(map[Category]ListResponse{
		CategoryLeads: {
			Success: true,
			Data: leadRecords(
				lead.StatusNew, lead.StatusNew,
				lead.StatusQualified, lead.StatusQualified,
				lead.StatusConverted,
			),
			Pagination: &Pagination{Total: float64(10)},
		},
	})

	st := dash[CategoryLeads]
	assert.Equal(t, 10, st.Total)
	// ratio 10/5 = 2x per bucket
	assert.Equal(t, 4, st.SubCounts[BucketNew])
	assert.Equal(t, 4, st.SubCounts[BucketQualified])
	assert.Equal(t, 2, st.SubCounts[BucketConverted])
}

func TestAggregate_noScalingWhenPageCoversPopulation(t *testing.T) {
	agg := NewAggregator(nopLogger{})

	dash := agg.Aggregate(map[Category]ListResponse{
		CategoryLeads: {
			Success:    true,
			Data:       leadRecords(lead.StatusNew, lead.StatusConverted, lead.StatusQualified),
			Pagination: &Pagination{Total: float64(3)},
		},
	})

	st := dash[CategoryLeads]
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.SubCounts[BucketNew])
	assert.Equal(t, 1, st.SubCounts[BucketQualified])
	assert.Equal(t, 1, st.SubCounts[BucketConverted])
}

func TestAggregate_subCountsNeverNegative(t *testing.T) {
	agg := NewAggregator(nopLogger{})

	responses := map[Category]ListResponse{
		CategoryLeads:    {Success: true, Data: leadRecords("GARBAGE", lead.StatusNew), Pagination: &Pagination{Total: "999"}},
		CategoryUsers:    {Success: true, Data: []Record{{IsActive: boolPtr(true)}, {IsActive: boolPtr(false)}, {}}},
		CategoryColleges: {Success: false},
		CategoryTrainers: {Success: true, Pagination: &Pagination{Total: float64(4)}},
	}

	for cat, st := range agg.Aggregate(responses) {
		assert.GreaterOrEqualf(t, st.Total, 0, "category %s", cat)
		for bucket, n := range st.SubCounts {
			assert.GreaterOrEqualf(t, n, 0, "category %s bucket %s", cat, bucket)
		}
	}
}

func TestAggregate_usersClassifiedByIsActive(t *testing.T) {
	agg := NewAggregator(nopLogger{})

	dash := agg.Aggregate(map[Category]ListResponse{
		CategoryUsers: {
			Success: true,
			Data: []Record{
				{IsActive: boolPtr(true)},
				{IsActive: boolPtr(true)},
				{IsActive: boolPtr(false)},
				{Status: "ACTIVE"}, // status fallback when is_active is absent
			},
		},
	})

	st := dash[CategoryUsers]
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 3, st.SubCounts[BucketActive])
	assert.Equal(t, 1, st.SubCounts[BucketInactive])
}
