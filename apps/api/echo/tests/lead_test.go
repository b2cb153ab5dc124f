package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upskillway/crm/core/college"
	"github.com/upskillway/crm/core/lead"
	"github.com/upskillway/crm/core/user"
)

func Test_leadApi_create(t *testing.T) {
	ta := setup(t)

	counselor := createUser(t, ta.usrRepo, "Couns", "couns1", "couns@test.cd", "LePass#123", []string{user.RoleCounselor}, true)
	outsider := createUser(t, ta.usrRepo, "Outsider", "outsider", "out@test.cd", "LePass#123", nil, true)

	counsToken := getToken(t, ta.conf, counselor)

	newLead := map[string]interface{}{
		"name":         "Jane Doe",
		"email":        "jane@doe.cd",
		"college_name": "Springfield Institute",
		"source":       "webinar",
	}

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/v1/leads",
			body: marchallObj(t, newLead), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "staff required", method: http.MethodPost, path: "/v1/leads",
			body: marchallObj(t, newLead), token: getToken(t, ta.conf, outsider),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "name required", method: http.MethodPost, path: "/v1/leads",
			body: []byte(`{}`), token: counsToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("counselor captures lead", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/leads", counsToken, marchallObj(t, newLead))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusCreated, rec)

		var created lead.Lead
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, lead.StatusNew, created.Status)
		assert.Equal(t, "Jane Doe", created.Name)
	})
}

func Test_leadApi_query(t *testing.T) {
	ta := setup(t)

	counselor := createUser(t, ta.usrRepo, "Couns", "couns1", "couns@test.cd", "LePass#123", []string{user.RoleCounselor}, true)
	counsToken := getToken(t, ta.conf, counselor)

	l1 := createLead(t, ta.leadRepo, "Jane Doe", lead.StatusNew)
	createLead(t, ta.leadRepo, "John Smith", lead.StatusQualified)
	createLead(t, ta.leadRepo, "Lost Cause", lead.StatusLost)

	assigned, err := ta.leadSvc.Assign(context.Background(), l1.ID, counselor.ID)
	require.NoError(t, err)
	require.Equal(t, counselor.ID, assigned.AssigneeID)

	query := func(t *testing.T, rawQuery string) []lead.Lead {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/v1/leads?"+rawQuery, counsToken)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)

		var leads []lead.Lead
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leads))
		return leads
	}

	assert.Len(t, query(t, ""), 3)
	assert.Len(t, query(t, "search=jane"), 1)
	assert.Len(t, query(t, url.Values{"status": {lead.StatusLost}}.Encode()), 1)
	assert.Len(t, query(t, url.Values{"status": {lead.StatusNew, lead.StatusQualified}}.Encode()), 2)
	assert.Len(t, query(t, "assignee_id="+counselor.ID), 1)
	assert.Len(t, query(t, "assignee_id=lol"), 0)
}

func Test_leadApi_assign(t *testing.T) {
	ta := setup(t)

	manager := createUser(t, ta.usrRepo, "Manager", "manager1", "manager@test.cd", "LePass#123", []string{user.RoleManager}, true)
	counselor := createUser(t, ta.usrRepo, "Couns", "couns1", "couns@test.cd", "LePass#123", []string{user.RoleCounselor}, true)

	l := createLead(t, ta.leadRepo, "Jane Doe", lead.StatusNew)
	body := marchallObj(t, map[string]string{"assignee_id": counselor.ID})

	t.Run("manager required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/leads/"+l.ID+"/assign", getToken(t, ta.conf, counselor), body)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusForbidden, rec)
	})

	t.Run("unknown lead", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/leads/lol/assign", getToken(t, ta.conf, manager), body)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusNotFound, rec)
	})

	t.Run("manager assigns lead", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/leads/"+l.ID+"/assign", getToken(t, ta.conf, manager), body)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)

		var assigned lead.Lead
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assigned))
		assert.Equal(t, counselor.ID, assigned.AssigneeID)
	})
}

func Test_leadApi_convert(t *testing.T) {
	ta := setup(t)

	counselor := createUser(t, ta.usrRepo, "Couns", "couns1", "couns@test.cd", "LePass#123", []string{user.RoleCounselor}, true)
	counsToken := getToken(t, ta.conf, counselor)

	body := marchallObj(t, map[string]string{"name": "Springfield Institute", "type": college.TypeEngineering})

	t.Run("converts against a healthy upstream", func(t *testing.T) {
		l := createLead(t, ta.leadRepo, "Jane Doe", lead.StatusQualified)

		req, rec := newAuthRequest(http.MethodPost, "/v1/leads/"+l.ID+"/convert", counsToken, body)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)

		var resp struct {
			Lead    lead.Lead       `json:"lead"`
			College college.College `json:"college"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, lead.StatusConverted, resp.Lead.Status)
		assert.Equal(t, "1", resp.College.ID)
		assert.Equal(t, l.ID, resp.College.SourceLeadID)

		cached, ok := ta.reconciler.FindByID(resp.College.ID)
		require.True(t, ok)
		assert.Equal(t, "Springfield Institute", cached.Name)
	})

	t.Run("converts when the upstream is down", func(t *testing.T) {
		l := createLead(t, ta.leadRepo, "John Smith", lead.StatusQualified)

		ta.remote.err = errors.New("upstream unreachable")
		defer func() { ta.remote.err = nil }()

		req, rec := newAuthRequest(http.MethodPost, "/v1/leads/"+l.ID+"/convert", counsToken, body)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)

		var resp struct {
			Lead    lead.Lead       `json:"lead"`
			College college.College `json:"college"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, lead.StatusConverted, resp.Lead.Status)
		assert.Len(t, resp.College.ID, 36) // locally minted UUID

		_, ok := ta.reconciler.FindByID(resp.College.ID)
		assert.True(t, ok)
	})

	t.Run("already converted lead", func(t *testing.T) {
		l := createLead(t, ta.leadRepo, "Done Deal", lead.StatusConverted)

		req, rec := newAuthRequest(http.MethodPost, "/v1/leads/"+l.ID+"/convert", counsToken, body)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusBadRequest, rec)

		var resp httpErr
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, lead.ErrAlreadyClosed.Error(), resp.Error)
	})
}

func Test_leadApi_destroyMultiple(t *testing.T) {
	ta := setup(t)

	admin := createUser(t, ta.usrRepo, "Admin", "admin1", "admin@test.cd", "LePass#123", []string{user.RoleAdmin}, true)
	counselor := createUser(t, ta.usrRepo, "Couns", "couns1", "couns@test.cd", "LePass#123", []string{user.RoleCounselor}, true)

	l1 := createLead(t, ta.leadRepo, "Jane Doe", lead.StatusNew)
	l2 := createLead(t, ta.leadRepo, "John Smith", lead.StatusNew)

	t.Run("admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/leads?id="+l1.ID, getToken(t, ta.conf, counselor))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusForbidden, rec)
	})

	t.Run("admin deletes leads", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/leads?id="+l1.ID+"&id="+l2.ID, getToken(t, ta.conf, admin))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusNoContent, rec)

		leads, err := ta.leadSvc.QueryAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, leads)
	})
}
