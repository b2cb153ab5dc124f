package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upskillway/crm/core/content"
	"github.com/upskillway/crm/core/user"
)

func Test_contentApi_create(t *testing.T) {
	ta := setup(t)

	manager := createUser(t, ta.usrRepo, "Manager", "manager1", "manager@test.cd", "LePass#123", []string{user.RoleManager}, true)
	counselor := createUser(t, ta.usrRepo, "Couns", "couns1", "couns@test.cd", "LePass#123", []string{user.RoleCounselor}, true)

	managerToken := getToken(t, ta.conf, manager)

	newItem := map[string]interface{}{
		"kind":      content.KindBlog,
		"title":     "Choosing The Right College",
		"slug":      "choosing_the_right_college",
		"body":      "A practical guide.",
		"author":    "Jane Doe",
		"published": true,
	}

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/v1/content",
			body: marchallObj(t, newItem), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "manager required", method: http.MethodPost, path: "/v1/content",
			body: marchallObj(t, newItem), token: getToken(t, ta.conf, counselor),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "kind and title required", method: http.MethodPost, path: "/v1/content",
			body: []byte(`{}`), token: managerToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"kind": "this field is required", "title": "this field is required"}),
		},
		{
			name: "invalid kind", method: http.MethodPost, path: "/v1/content",
			body:  marchallObj(t, map[string]string{"kind": "LOL", "title": "Lol U"}),
			token: managerToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"kind": "invalid content kind"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("manager publishes an item", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/content", managerToken, marchallObj(t, newItem))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusCreated, rec)

		var created content.Item
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.True(t, created.Published)
	})

	t.Run("duplicate slug rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/content", managerToken, marchallObj(t, newItem))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusBadRequest, rec)

		var fldErrs map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fldErrs))
		assert.Equal(t, content.ErrSlugExists.Error(), fldErrs["slug"])
	})
}

func Test_contentApi_publicReads(t *testing.T) {
	ta := setup(t)

	published, err := ta.contentSvc.Create(reqCtx(), content.NewItem{
		Kind: content.KindFAQ, Title: "How do I apply?", Slug: "how_do_i_apply",
		Answer: "Through the portal.", Published: true,
	})
	require.NoError(t, err)
	_, err = ta.contentSvc.Create(reqCtx(), content.NewItem{
		Kind: content.KindBlog, Title: "Draft Post", Author: "Jane Doe",
	})
	require.NoError(t, err)

	query := func(t *testing.T, rawQuery string) []content.Item {
		t.Helper()
		req, rec := newRequest(http.MethodGet, "/v1/content?"+rawQuery)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)

		var items []content.Item
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		return items
	}

	// no token on any of these
	assert.Len(t, query(t, ""), 2)
	assert.Len(t, query(t, "kind="+content.KindFAQ), 1)
	assert.Len(t, query(t, "published=true"), 1)
	assert.Len(t, query(t, "search=draft"), 1)
	assert.Len(t, query(t, "search=jane"), 1)

	t.Run("retrieve by id", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/content/"+published.ID)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)
	})

	t.Run("retrieve by slug", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/content/slug/how_do_i_apply")
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)

		var it content.Item
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &it))
		assert.Equal(t, published.ID, it.ID)
	})

	t.Run("unknown slug", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/content/slug/lol")
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusNotFound, rec)
	})
}

func Test_contentApi_update_destroy(t *testing.T) {
	ta := setup(t)

	manager := createUser(t, ta.usrRepo, "Manager", "manager1", "manager@test.cd", "LePass#123", []string{user.RoleManager}, true)
	managerToken := getToken(t, ta.conf, manager)

	draft, err := ta.contentSvc.Create(reqCtx(), content.NewItem{
		Kind: content.KindBlog, Title: "Draft Post",
	})
	require.NoError(t, err)

	t.Run("publishes a draft", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"published": true})
		req, rec := newAuthRequest(http.MethodPut, "/v1/content/"+draft.ID, managerToken, body)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)

		var updated content.Item
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.True(t, updated.Published)
		assert.Equal(t, "Draft Post", updated.Title)
	})

	t.Run("unknown item", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"title": "Lol U"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/content/lol", managerToken, body)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusNotFound, rec)
	})

	t.Run("manager deletes items", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/content?id="+draft.ID, managerToken)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusNoContent, rec)

		_, err := ta.contentSvc.GetByID(reqCtx(), draft.ID)
		assert.Equal(t, content.ErrNotFound, err)
	})
}
