package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/sportmeetapp/sportmeet/tests/integration/setup"
	"github.com/stretchr/testify/require"
)

// TestGetUserProfile tests the GET /users/me endpoint
func TestGetUserProfile(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	t.Log("=== Starting Test Infrastructure ===")
	infra, err := setup.StartInfra(ctx, t)
	require.NoError(t, err, "infrastructure should start successfully")
	defer func() { _ = infra.Terminate(ctx, t) }()

	t.Log("=== Running Database Migrations ===")
	_ = setup.RunMigration(infra.PgURL, t)

	t.Log("=== Setting Up Test Application ===")
	app, db, _, _ := setup.SetupTestApp(t, infra.PgURL, infra.RedisURL, infra.MinioURL, infra.MailhogSMTP)
	defer db.Close()

	t.Cleanup(func() {
		setup.TruncateAllTables(t, db, ctx)
	})

	t.Log("=== Setup: Creating Test User ===")
	accessToken := createTestUser(t, app, infra.MailhogURL, "profileuser@example.com", "profileuser", "password123")

	// Test 1: Get user profile successfully
	t.Log("=== Test 1: Get User Profile Successfully ===")
	req := setup.CreateAuthRequest(http.MethodGet, "/api/users/me", nil, accessToken)
	resp, err := app.Test(req)
	require.NoError(t, err, "get profile request should complete")
	require.Equal(t, 200, resp.StatusCode, "get profile should return 200")

	result := setup.ParseJSONResponse(t, resp)
	require.Equal(t, "profileuser@example.com", result["email"])
	require.Equal(t, "profileuser", result["username"])
	require.Equal(t, "Test User", result["fullName"])
	require.Nil(t, result["avatarImage"], "fresh user should have no avatar")

	// Test 2: Get user profile without token
	t.Log("=== Test 2: Get User Profile Without Token ===")
	req = setup.CreateJSONRequest(http.MethodGet, "/api/users/me", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 401, resp.StatusCode, "missing token should return 401")
}

// TestUpdateUserProfile tests the PATCH /users/me endpoint
func TestUpdateUserProfile(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	t.Log("=== Starting Test Infrastructure ===")
	infra, err := setup.StartInfra(ctx, t)
	require.NoError(t, err, "infrastructure should start successfully")
	defer func() { _ = infra.Terminate(ctx, t) }()

	t.Log("=== Running Database Migrations ===")
	_ = setup.RunMigration(infra.PgURL, t)

	t.Log("=== Setting Up Test Application ===")
	app, db, _, _ := setup.SetupTestApp(t, infra.PgURL, infra.RedisURL, infra.MinioURL, infra.MailhogSMTP)
	defer db.Close()

	t.Cleanup(func() {
		setup.TruncateAllTables(t, db, ctx)
	})

	t.Log("=== Setup: Creating Test Users ===")
	accessToken := createTestUser(t, app, infra.MailhogURL, "patchuser@example.com", "patchuser", "password123")
	createTestUser(t, app, infra.MailhogURL, "occupied@example.com", "occupied", "password123")

	// Test 1: Patch a subset of fields, others stay untouched
	t.Log("=== Test 1: Patch Subset Of Fields ===")
	reqBody := []byte(`{"fullName":"Patched Name","age":31,"favoriteSports":["football","tennis"]}`)
	req := setup.CreateAuthRequest(http.MethodPatch, "/api/users/me", reqBody, accessToken)
	resp, err := app.Test(req)
	require.NoError(t, err, "patch request should complete")
	require.Equal(t, 200, resp.StatusCode, "patch should return 200")

	req = setup.CreateAuthRequest(http.MethodGet, "/api/users/me", nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	result := setup.ParseJSONResponse(t, resp)
	require.Equal(t, "Patched Name", result["fullName"])
	require.Equal(t, float64(31), result["age"])
	require.Equal(t, "patchuser", result["username"], "unpatched field should be unchanged")
	require.Equal(t, "male", result["gender"], "unpatched field should be unchanged")

	sports, ok := result["favoriteSports"].([]interface{})
	require.True(t, ok)
	require.Len(t, sports, 2)

	// Test 2: Patch to a taken username
	t.Log("=== Test 2: Patch To Taken Username ===")
	reqBody = []byte(`{"username":"occupied"}`)
	req = setup.CreateAuthRequest(http.MethodPatch, "/api/users/me", reqBody, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode, "taken username should return 400")

	// Test 3: Patch with invalid age
	t.Log("=== Test 3: Patch With Invalid Age ===")
	reqBody = []byte(`{"age":121}`)
	req = setup.CreateAuthRequest(http.MethodPatch, "/api/users/me", reqBody, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode, "age out of range should return 400")

	result = setup.ParseJSONResponse(t, resp)
	_, _, param := setup.ParseErrorDetail(t, result)
	require.Equal(t, "age", param)
}

// TestLogout tests that a logged-out token stops working
func TestLogout(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	t.Log("=== Starting Test Infrastructure ===")
	infra, err := setup.StartInfra(ctx, t)
	require.NoError(t, err, "infrastructure should start successfully")
	defer func() { _ = infra.Terminate(ctx, t) }()

	t.Log("=== Running Database Migrations ===")
	_ = setup.RunMigration(infra.PgURL, t)

	t.Log("=== Setting Up Test Application ===")
	app, db, _, _ := setup.SetupTestApp(t, infra.PgURL, infra.RedisURL, infra.MinioURL, infra.MailhogSMTP)
	defer db.Close()

	t.Cleanup(func() {
		setup.TruncateAllTables(t, db, ctx)
	})

	t.Log("=== Setup: Creating Test User ===")
	accessToken := createTestUser(t, app, infra.MailhogURL, "logoutuser@example.com", "logoutuser", "password123")

	// Test 1: Logout succeeds
	t.Log("=== Test 1: Logout ===")
	req := setup.CreateAuthRequest(http.MethodPost, "/api/users/logout", nil, accessToken)
	resp, err := app.Test(req)
	require.NoError(t, err, "logout request should complete")
	require.Equal(t, 200, resp.StatusCode, "logout should return 200")

	// Test 2: The token no longer works
	t.Log("=== Test 2: Token Rejected After Logout ===")
	req = setup.CreateAuthRequest(http.MethodGet, "/api/users/me", nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 401, resp.StatusCode, "logged-out token should return 401")
}
