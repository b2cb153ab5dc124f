package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upskillway/crm/core/trainer"
	"github.com/upskillway/crm/core/user"
)

func Test_trainerApi_crud(t *testing.T) {
	ta := setup(t)

	admin := createUser(t, ta.usrRepo, "Admin", "admin1", "admin@test.cd", "LePass#123", []string{user.RoleAdmin}, true)
	manager := createUser(t, ta.usrRepo, "Manager", "manager1", "manager@test.cd", "LePass#123", []string{user.RoleManager}, true)
	counselor := createUser(t, ta.usrRepo, "Couns", "couns1", "couns@test.cd", "LePass#123", []string{user.RoleCounselor}, true)

	managerToken := getToken(t, ta.conf, manager)
	counsToken := getToken(t, ta.conf, counselor)

	newTrainer := map[string]interface{}{
		"name":      "Max Power",
		"email":     "max@power.cd",
		"expertise": []string{"golang", "sql"},
	}

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/v1/trainers",
			body: marchallObj(t, newTrainer), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "manager required", method: http.MethodPost, path: "/v1/trainers",
			body: marchallObj(t, newTrainer), token: counsToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "email required", method: http.MethodPost, path: "/v1/trainers",
			body: marchallObj(t, map[string]string{"name": "Max Power"}), token: managerToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"email": "this field is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	var created trainer.Trainer

	t.Run("manager registers trainer", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/trainers", managerToken, marchallObj(t, newTrainer))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusCreated, rec)

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, trainer.StatusAvailable, created.Status)
	})

	t.Run("counselor lists trainers", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/trainers", counsToken)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)

		var trainers []trainer.Trainer
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trainers))
		assert.Len(t, trainers, 1)
	})

	t.Run("manager updates trainer", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"phone": "+2438112233"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/trainers/"+created.ID, managerToken, body)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)

		var updated trainer.Trainer
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "+2438112233", updated.Phone)
		assert.Equal(t, "Max Power", updated.Name)
	})

	t.Run("unknown trainer", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/trainers/lol", counsToken)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusNotFound, rec)
	})

	t.Run("admin deletes trainers", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/trainers?id="+created.ID, getToken(t, ta.conf, admin))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusNoContent, rec)
	})
}

func Test_trainerApi_bookings(t *testing.T) {
	ta := setup(t)

	manager := createUser(t, ta.usrRepo, "Manager", "manager1", "manager@test.cd", "LePass#123", []string{user.RoleManager}, true)
	counselor := createUser(t, ta.usrRepo, "Couns", "couns1", "couns@test.cd", "LePass#123", []string{user.RoleCounselor}, true)

	managerToken := getToken(t, ta.conf, manager)
	counsToken := getToken(t, ta.conf, counselor)

	tr := createTrainer(t, ta.trainerRepo, "Max Power", "max@power.cd")

	slot := func(startHour, endHour int) map[string]interface{} {
		day := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
		return map[string]interface{}{
			"trainer_id": tr.ID,
			"college_id": "1",
			"topic":      "Admissions workflow",
			"starts_at":  day.Add(time.Duration(startHour) * time.Hour),
			"ends_at":    day.Add(time.Duration(endHour) * time.Hour),
		}
	}

	var booked trainer.Booking

	t.Run("counselor books a trainer", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/bookings", counsToken, marchallObj(t, slot(9, 11)))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusCreated, rec)

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booked))
		assert.Equal(t, trainer.BookingPending, booked.Status)
		assert.Equal(t, tr.ID, booked.TrainerID)
	})

	t.Run("overlapping slot rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/bookings", counsToken, marchallObj(t, slot(10, 12)))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusBadRequest, rec)

		var fldErrs map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fldErrs))
		assert.Equal(t, trainer.ErrSlotTaken.Error(), fldErrs["starts_at"])
	})

	t.Run("adjacent slot accepted", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/bookings", counsToken, marchallObj(t, slot(11, 13)))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusCreated, rec)
	})

	t.Run("ends before it starts", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/bookings", counsToken, marchallObj(t, slot(15, 14)))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusBadRequest, rec)
	})

	t.Run("unknown trainer", func(t *testing.T) {
		body := slot(15, 16)
		body["trainer_id"] = "lol"
		req, rec := newAuthRequest(http.MethodPost, "/v1/bookings", counsToken, marchallObj(t, body))
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusNotFound, rec)
	})

	t.Run("confirm requires manager", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/bookings/"+booked.ID+"/confirm", counsToken)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusForbidden, rec)
	})

	t.Run("confirming holds the trainer", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/bookings/"+booked.ID+"/confirm", managerToken)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)

		var b trainer.Booking
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
		assert.Equal(t, trainer.BookingConfirmed, b.Status)

		held, err := ta.trainerSvc.GetByID(reqCtx(), tr.ID)
		require.NoError(t, err)
		assert.Equal(t, trainer.StatusBusy, held.Status)
	})

	t.Run("completing frees the trainer", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/bookings/"+booked.ID+"/complete", counsToken)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)

		var b trainer.Booking
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
		assert.Equal(t, trainer.BookingCompleted, b.Status)

		freed, err := ta.trainerSvc.GetByID(reqCtx(), tr.ID)
		require.NoError(t, err)
		assert.Equal(t, trainer.StatusAvailable, freed.Status)
	})

	t.Run("unknown booking", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/bookings/lol/cancel", counsToken)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusNotFound, rec)
	})

	t.Run("lists bookings by trainer", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/trainers/"+tr.ID+"/bookings", counsToken)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, http.StatusOK, rec)

		var bookings []trainer.Booking
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bookings))
		assert.Len(t, bookings, 2)
	})
}
