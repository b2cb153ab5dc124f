package stats

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/upskillway/crm/core/lead"
)

func TestService_Refresh_allSettled(t *testing.T) {
	fetchers := map[Category]Fetcher{
		CategoryLeads: func(context.Context, int, int) (ListResponse, error) {
			return ListResponse{
				Success:    true,
				Data:       leadRecords(lead.StatusNew, lead.StatusConverted),
				Pagination: &Pagination{Total: float64(4)},
			}, nil
		},
		CategoryUsers: func(context.Context, int, int) (ListResponse, error) {
			return ListResponse{}, errors.New("connection refused")
		},
		CategoryColleges: func(context.Context, int, int) (ListResponse, error) {
			return ListResponse{Success: true, Data: []Record{{Status: "ACTIVE"}}}, nil
		},
		CategoryTrainers: func(context.Context, int, int) (ListResponse, error) {
			return ListResponse{Success: true}, nil
		},
	}
	svc := NewService(fetchers, nopLogger{})

	dash := svc.Refresh(context.Background())

	// one rejected fetch must not block the rest
	assert.Equal(t, 0, dash[CategoryUsers].Total)
	assert.Equal(t, 4, dash[CategoryLeads].Total)
	assert.Equal(t, 2, dash[CategoryLeads].SubCounts[BucketNew]) // scaled 2x
	assert.Equal(t, 1, dash[CategoryColleges].Total)
	assert.Equal(t, 1, dash[CategoryColleges].SubCounts[BucketActive])
	assert.Equal(t, 0, dash[CategoryTrainers].Total)
}
