//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumibyte/coupon-draw-service/internal/model"
)

func postJSON(t *testing.T, app interface {
	Test(*http.Request, ...int) (*http.Response, error)
}, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealth(t *testing.T) {
	cleanupTables(t)
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestUserLifecycle(t *testing.T) {
	cleanupTables(t)
	app := newTestApp()

	resp := postJSON(t, app, "/user", model.CreateUserRequest{Phone: "+15551230000"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.User
	decodeBody(t, resp, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "+15551230000", created.Phone)

	dupResp := postJSON(t, app, "/user", model.CreateUserRequest{Phone: "+15551230000"})
	assert.Equal(t, http.StatusConflict, dupResp.StatusCode)

	listReq := httptest.NewRequest(http.MethodGet, "/user", nil)
	listResp, err := app.Test(listReq, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
	var users []model.User
	decodeBody(t, listResp, &users)
	assert.Len(t, users, 1)

	delReq := httptest.NewRequest(http.MethodDelete, "/user/999999", nil)
	delResp, err := app.Test(delReq, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, delResp.StatusCode)

	okDelReq := httptest.NewRequest(http.MethodDelete, "/user/"+itoa(created.ID), nil)
	okDelResp, err := app.Test(okDelReq, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, okDelResp.StatusCode)
}

func TestCampaignCreateAndGet(t *testing.T) {
	cleanupTables(t)
	app := newTestApp()

	quota := int32(100)
	createReq := model.CreateCampaignRequest{
		CouponTypes: []model.CouponTypeInput{
			{Description: "10% off", Probability: 0.5, TotalQuota: &quota},
			{Description: "free shipping", Probability: 0.5},
		},
	}
	resp := postJSON(t, app, "/campaign", createReq)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.CreateCampaignResponse
	decodeBody(t, resp, &created)
	assert.NotZero(t, created.ID)

	getReq := httptest.NewRequest(http.MethodGet, "/campaign/"+itoa(created.ID), nil)
	getResp, err := app.Test(getReq, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, getResp.StatusCode)

	var got model.GetCampaignResponse
	decodeBody(t, getResp, &got)
	assert.Len(t, got.CouponTypes, 2)

	missingReq := httptest.NewRequest(http.MethodGet, "/campaign/987654", nil)
	missingResp, err := app.Test(missingReq, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, missingResp.StatusCode)
}

func TestCampaignCreateRejectsExcessiveProbability(t *testing.T) {
	cleanupTables(t)
	app := newTestApp()

	createReq := model.CreateCampaignRequest{
		CouponTypes: []model.CouponTypeInput{
			{Description: "a", Probability: 0.7},
			{Description: "b", Probability: 0.7},
		},
	}
	resp := postJSON(t, app, "/campaign", createReq)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCampaignCreateRejectsEmptyCouponTypes(t *testing.T) {
	cleanupTables(t)
	app := newTestApp()

	resp := postJSON(t, app, "/campaign", model.CreateCampaignRequest{CouponTypes: nil})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDrawFlowEndToEnd(t *testing.T) {
	cleanupTables(t)
	app := newTestApp()

	userResp := postJSON(t, app, "/user", model.CreateUserRequest{Phone: "+15559876543"})
	require.Equal(t, http.StatusCreated, userResp.StatusCode)
	var user model.User
	decodeBody(t, userResp, &user)

	quota := int32(1)
	campaignResp := postJSON(t, app, "/campaign", model.CreateCampaignRequest{
		CouponTypes: []model.CouponTypeInput{
			{Description: "guaranteed coupon", Probability: 1.0, TotalQuota: &quota},
		},
	})
	require.Equal(t, http.StatusCreated, campaignResp.StatusCode)
	var campaign model.CreateCampaignResponse
	decodeBody(t, campaignResp, &campaign)

	drawResp := postJSON(t, app, "/draw", model.DrawRequest{UserID: user.ID, CampaignID: campaign.ID})
	require.Equal(t, http.StatusOK, drawResp.StatusCode)
	var draw model.DrawResponse
	decodeBody(t, drawResp, &draw)
	require.NotNil(t, draw.MaybeCoupon)
	assert.NotEmpty(t, draw.MaybeCoupon.RedeemCode)

	secondDrawResp := postJSON(t, app, "/draw", model.DrawRequest{UserID: user.ID, CampaignID: campaign.ID})
	assert.Equal(t, http.StatusConflict, secondDrawResp.StatusCode)

	redeemResp := postJSON(t, app, "/redeem", model.RedeemRequest{CouponID: draw.MaybeCoupon.ID, UserID: user.ID})
	require.Equal(t, http.StatusOK, redeemResp.StatusCode)
	var redeemed model.Coupon
	decodeBody(t, redeemResp, &redeemed)
	assert.True(t, redeemed.Redeemed)

	secondRedeemResp := postJSON(t, app, "/redeem", model.RedeemRequest{CouponID: draw.MaybeCoupon.ID, UserID: user.ID})
	assert.Equal(t, http.StatusConflict, secondRedeemResp.StatusCode)
}

func TestDrawRejectsUnknownUser(t *testing.T) {
	cleanupTables(t)
	app := newTestApp()

	campaignResp := postJSON(t, app, "/campaign", model.CreateCampaignRequest{
		CouponTypes: []model.CouponTypeInput{{Description: "x", Probability: 1.0}},
	})
	require.Equal(t, http.StatusCreated, campaignResp.StatusCode)
	var campaign model.CreateCampaignResponse
	decodeBody(t, campaignResp, &campaign)

	drawResp := postJSON(t, app, "/draw", model.DrawRequest{UserID: 999999, CampaignID: campaign.ID})
	assert.Equal(t, http.StatusNotFound, drawResp.StatusCode)
}

func itoa(id int32) string {
	return strconv.FormatInt(int64(id), 10)
}
