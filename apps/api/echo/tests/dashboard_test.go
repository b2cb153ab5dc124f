package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upskillway/crm/core/college"
	"github.com/upskillway/crm/core/lead"
	"github.com/upskillway/crm/core/stats"
	"github.com/upskillway/crm/core/trainer"
	"github.com/upskillway/crm/core/user"
)

func Test_dashboardApi_stats(t *testing.T) {
	ta := setup(t)

	counselor := createUser(t, ta.usrRepo, "Couns", "couns1", "couns@test.cd", "LePass#123", []string{user.RoleCounselor}, true)
	outsider := createUser(t, ta.usrRepo, "Outsider", "outsider", "out@test.cd", "LePass#123", nil, true)
	counsToken := getToken(t, ta.conf, counselor)

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodGet, path: "/v1/dashboard/stats",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "staff required", method: http.MethodGet, path: "/v1/dashboard/stats",
			token:    getToken(t, ta.conf, outsider),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("empty system still renders every category", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard/stats", counsToken)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)

		var dash stats.Dashboard
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
		for _, cat := range stats.AllCategories {
			require.Contains(t, dash, cat)
		}
		assert.Equal(t, 0, dash[stats.CategoryLeads].Total)
		assert.Equal(t, 0, dash[stats.CategoryColleges].Total)
		// the two fixture users above are already in the system
		assert.Equal(t, 2, dash[stats.CategoryUsers].Total)
	})

	// seed every category
	createUser(t, ta.usrRepo, "Sleeper", "sleeper", "sleeper@test.cd", "LePass#123", nil, false)

	createLead(t, ta.leadRepo, "Jane Doe", lead.StatusNew)
	createLead(t, ta.leadRepo, "John Smith", lead.StatusStart)
	createLead(t, ta.leadRepo, "Mary Major", lead.StatusQualified)
	createLead(t, ta.leadRepo, "Done Deal", lead.StatusConverted)
	createLead(t, ta.leadRepo, "Lost Cause", lead.StatusLost)

	createTrainer(t, ta.trainerRepo, "Max Power", "max@power.cd")
	busy := createTrainer(t, ta.trainerRepo, "Min Power", "min@power.cd")
	_, err := ta.trainerRepo.UpdateTrainer(reqCtx(), trainer.Trainer{ID: busy.ID, Status: trainer.StatusBusy, UpdatedAt: time.Now().UTC()})
	require.NoError(t, err)

	_, err = ta.reconciler.Create(reqCtx(), college.NewCollege{Name: "Springfield Institute"})
	require.NoError(t, err)
	_, err = ta.reconciler.Create(reqCtx(), college.NewCollege{Name: "Shelbyville College", Status: college.StatusInactive})
	require.NoError(t, err)

	t.Run("aggregates every category", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard/stats", counsToken)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)

		var dash stats.Dashboard
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))

		leads := dash[stats.CategoryLeads]
		assert.Equal(t, 5, leads.Total) // LOST counts in the total only
		assert.Equal(t, 2, leads.SubCounts[stats.BucketNew])
		assert.Equal(t, 1, leads.SubCounts[stats.BucketQualified])
		assert.Equal(t, 1, leads.SubCounts[stats.BucketConverted])

		users := dash[stats.CategoryUsers]
		assert.Equal(t, 3, users.Total)
		assert.Equal(t, 2, users.SubCounts[stats.BucketActive])
		assert.Equal(t, 1, users.SubCounts[stats.BucketInactive])

		trainers := dash[stats.CategoryTrainers]
		assert.Equal(t, 2, trainers.Total)
		assert.Equal(t, 1, trainers.SubCounts[stats.BucketAvailable])
		assert.Equal(t, 1, trainers.SubCounts[stats.BucketBusy])

		colleges := dash[stats.CategoryColleges]
		assert.Equal(t, 2, colleges.Total)
		assert.Equal(t, 1, colleges.SubCounts[stats.BucketActive])
		assert.Equal(t, 1, colleges.SubCounts[stats.BucketInactive])
	})
}
