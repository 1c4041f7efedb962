package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/sportmeetapp/sportmeet/tests/integration/setup"
	"github.com/stretchr/testify/require"
)

// TestJoinEvent tests the POST /events/:eventId/join endpoint
func TestJoinEvent(t *testing.T) {
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

	t.Log("=== Setup: Creating Test Users And Event ===")
	hostToken := createTestUser(t, app, infra.MailhogURL, "joinhost@example.com", "joinhost", "password123")
	memberToken := createTestUser(t, app, infra.MailhogURL, "joinmember@example.com", "joinmember", "password123")

	eventId := createTestEvent(t, app, hostToken, "Join Target", "running", 5)

	// Test 1: Join with consent
	t.Log("=== Test 1: Join With Consent ===")
	reqBody := []byte(`{"shareConsent":true}`)
	req := setup.CreateAuthRequest(http.MethodPost, fmt.Sprintf("/api/events/%s/join", eventId), reqBody, memberToken)
	resp, err := app.Test(req)
	require.NoError(t, err, "join request should complete")
	require.Equal(t, 200, resp.StatusCode, "join should return 200")

	var consent bool
	err = db.QueryRow(ctx,
		"SELECT share_consent FROM event_participants WHERE event_id = $1", eventId).Scan(&consent)
	require.NoError(t, err)
	require.True(t, consent, "consent flag should be stored")

	// Test 2: Participant count reflects the join
	t.Log("=== Test 2: Participant Count Reflects Join ===")
	req = setup.CreateAuthRequest(http.MethodGet, fmt.Sprintf("/api/events/%s", eventId), nil, memberToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	result := setup.ParseJSONResponse(t, resp)
	require.Equal(t, float64(1), result["participantCount"])

	// Test 3: Join again
	t.Log("=== Test 3: Double Join ===")
	req = setup.CreateAuthRequest(http.MethodPost, fmt.Sprintf("/api/events/%s/join", eventId), reqBody, memberToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 409, resp.StatusCode, "double join should return 409")

	result = setup.ParseJSONResponse(t, resp)
	code, _, _ := setup.ParseErrorDetail(t, result)
	require.Equal(t, "ALREADY_JOINED", code)

	// Test 4: Host cannot join their own event
	t.Log("=== Test 4: Host Cannot Join Own Event ===")
	req = setup.CreateAuthRequest(http.MethodPost, fmt.Sprintf("/api/events/%s/join", eventId), reqBody, hostToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 403, resp.StatusCode, "host join should return 403")

	// Test 5: Join without a body defaults to no consent
	t.Log("=== Test 5: Join Without Body ===")
	otherToken := createTestUser(t, app, infra.MailhogURL, "joinsilent@example.com", "joinsilent", "password123")
	req = setup.CreateAuthRequest(http.MethodPost, fmt.Sprintf("/api/events/%s/join", eventId), nil, otherToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode, "join without body should return 200")

	var consentCount int
	err = db.QueryRow(ctx,
		"SELECT COUNT(*) FROM event_participants WHERE event_id = $1 AND share_consent = FALSE", eventId).Scan(&consentCount)
	require.NoError(t, err)
	require.Equal(t, 1, consentCount, "absent body should be stored as no consent")

	// Test 6: Join an unknown event
	t.Log("=== Test 6: Join Unknown Event ===")
	req = setup.CreateAuthRequest(http.MethodPost, "/api/events/3f1f3e46-7a62-4dd0-9a88-02a6f4f9a111/join", reqBody, memberToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 404, resp.StatusCode, "joining an unknown event should return 404")
}

// TestJoinEventCapacity tests the capacity guard on join
func TestJoinEventCapacity(t *testing.T) {
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
	hostToken := createTestUser(t, app, infra.MailhogURL, "caphost@example.com", "caphost", "password123")
	firstToken := createTestUser(t, app, infra.MailhogURL, "capfirst@example.com", "capfirst", "password123")
	secondToken := createTestUser(t, app, infra.MailhogURL, "capsecond@example.com", "capsecond", "password123")

	// Test 1: A full event rejects further joins
	t.Log("=== Test 1: Full Event Rejects Join ===")
	fullId := createTestEvent(t, app, hostToken, "Tiny Event", "tennis", 1)

	req := setup.CreateAuthRequest(http.MethodPost, fmt.Sprintf("/api/events/%s/join", fullId), nil, firstToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode, "first join should fill the event")

	req = setup.CreateAuthRequest(http.MethodPost, fmt.Sprintf("/api/events/%s/join", fullId), nil, secondToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 409, resp.StatusCode, "join on a full event should return 409")

	result := setup.ParseJSONResponse(t, resp)
	code, _, _ := setup.ParseErrorDetail(t, result)
	require.Equal(t, "EVENT_FULL", code)

	// Test 2: An unbounded event keeps accepting joins
	t.Log("=== Test 2: Unbounded Event Accepts Joins ===")
	openId := createTestEvent(t, app, hostToken, "Open Event", "football", 0)

	for _, token := range []string{firstToken, secondToken} {
		req = setup.CreateAuthRequest(http.MethodPost, fmt.Sprintf("/api/events/%s/join", openId), nil, token)
		resp, err = app.Test(req)
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode, "unbounded event should accept every join")
	}
}

// TestLeaveEvent tests the DELETE /events/:eventId/join endpoint
func TestLeaveEvent(t *testing.T) {
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

	t.Log("=== Setup: Creating Test Users And Event ===")
	hostToken := createTestUser(t, app, infra.MailhogURL, "leavehost@example.com", "leavehost", "password123")
	memberToken := createTestUser(t, app, infra.MailhogURL, "leavemember@example.com", "leavemember", "password123")

	eventId := createTestEvent(t, app, hostToken, "Leave Target", "running", 5)

	req := setup.CreateAuthRequest(http.MethodPost, fmt.Sprintf("/api/events/%s/join", eventId), nil, memberToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	// Test 1: Leave the event
	t.Log("=== Test 1: Leave Event ===")
	req = setup.CreateAuthRequest(http.MethodDelete, fmt.Sprintf("/api/events/%s/join", eventId), nil, memberToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "leave request should complete")
	require.Equal(t, 200, resp.StatusCode, "leave should return 200")

	var count int
	err = db.QueryRow(ctx, "SELECT COUNT(*) FROM event_participants WHERE event_id = $1", eventId).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 0, count, "participant row should be removed")

	// Test 2: Leave again
	t.Log("=== Test 2: Leave Without Membership ===")
	req = setup.CreateAuthRequest(http.MethodDelete, fmt.Sprintf("/api/events/%s/join", eventId), nil, memberToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 409, resp.StatusCode, "leave without membership should return 409")

	result := setup.ParseJSONResponse(t, resp)
	code, _, _ := setup.ParseErrorDetail(t, result)
	require.Equal(t, "NOT_JOINED", code)

	// Test 3: Host cannot leave
	t.Log("=== Test 3: Host Cannot Leave ===")
	req = setup.CreateAuthRequest(http.MethodDelete, fmt.Sprintf("/api/events/%s/join", eventId), nil, hostToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 403, resp.StatusCode, "host leave should return 403")

	result = setup.ParseJSONResponse(t, resp)
	code, _, _ = setup.ParseErrorDetail(t, result)
	require.Equal(t, "HOST_CANNOT_LEAVE", code)
}

// TestMembershipWhenStoreDown tests that membership operations surface a
// store outage as 503 STORE_UNAVAILABLE instead of a generic 500.
func TestMembershipWhenStoreDown(t *testing.T) {
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

	t.Log("=== Setup: Creating Test Users And Event ===")
	hostToken := createTestUser(t, app, infra.MailhogURL, "downhost@example.com", "downhost", "password123")
	memberToken := createTestUser(t, app, infra.MailhogURL, "downmember@example.com", "downmember", "password123")

	eventId := createTestEvent(t, app, hostToken, "Doomed Store", "running", 5)

	// Take Postgres away from the app. Auth still works, it only needs Redis.
	t.Log("=== Setup: Closing Database Pool ===")
	db.Close()

	// Test 1: Join surfaces the outage kind
	t.Log("=== Test 1: Join While Store Is Down ===")
	req := setup.CreateAuthRequest(http.MethodPost, fmt.Sprintf("/api/events/%s/join", eventId), nil, memberToken)
	resp, err := app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 503, resp.StatusCode, "join during an outage should return 503")

	result := setup.ParseJSONResponse(t, resp)
	code, _, _ := setup.ParseErrorDetail(t, result)
	require.Equal(t, "STORE_UNAVAILABLE", code)

	// Test 2: Leave surfaces it too
	t.Log("=== Test 2: Leave While Store Is Down ===")
	req = setup.CreateAuthRequest(http.MethodDelete, fmt.Sprintf("/api/events/%s/join", eventId), nil, memberToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 503, resp.StatusCode, "leave during an outage should return 503")

	result = setup.ParseJSONResponse(t, resp)
	code, _, _ = setup.ParseErrorDetail(t, result)
	require.Equal(t, "STORE_UNAVAILABLE", code)

	// Test 3: The joined list cannot be rebuilt without the store
	t.Log("=== Test 3: Joined List While Store Is Down ===")
	req = setup.CreateAuthRequest(http.MethodGet, "/api/events/joined", nil, memberToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 503, resp.StatusCode, "joined list during an outage should return 503")

	result = setup.ParseJSONResponse(t, resp)
	code, _, _ = setup.ParseErrorDetail(t, result)
	require.Equal(t, "STORE_UNAVAILABLE", code)
}

// TestJoinedEventsReflection tests that GET /events/joined tracks joins,
// leaves and event deletion.
func TestJoinedEventsReflection(t *testing.T) {
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
	app, db, redisClient, _ := setup.SetupTestApp(t, infra.PgURL, infra.RedisURL, infra.MinioURL, infra.MailhogSMTP)
	defer db.Close()

	t.Cleanup(func() {
		setup.TruncateAllTables(t, db, ctx)
	})

	t.Log("=== Setup: Creating Test Users And Events ===")
	hostToken := createTestUser(t, app, infra.MailhogURL, "reflecthost@example.com", "reflecthost", "password123")
	memberToken := createTestUser(t, app, infra.MailhogURL, "reflectmember@example.com", "reflectmember", "password123")

	firstId := createTestEvent(t, app, hostToken, "Reflected One", "running", 0)
	secondId := createTestEvent(t, app, hostToken, "Reflected Two", "tennis", 0)

	// Test 1: Joined list is empty before any join
	t.Log("=== Test 1: Joined List Starts Empty ===")
	req := setup.CreateAuthRequest(http.MethodGet, "/api/events/joined", nil, memberToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	events := setup.ParseJSONArrayResponse(t, resp)
	require.Len(t, events, 0)

	// Test 2: Both joins show up
	t.Log("=== Test 2: Joined List After Joins ===")
	for _, id := range []string{firstId, secondId} {
		req = setup.CreateAuthRequest(http.MethodPost, fmt.Sprintf("/api/events/%s/join", id), nil, memberToken)
		resp, err = app.Test(req)
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)
	}

	req = setup.CreateAuthRequest(http.MethodGet, "/api/events/joined", nil, memberToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	events = setup.ParseJSONArrayResponse(t, resp)
	require.Len(t, events, 2, "both joined events should be listed")

	// Test 3: The joined list survives a cold cache
	t.Log("=== Test 3: Joined List After Cache Flush ===")
	err = redisClient.FlushAll(ctx).Err()
	require.NoError(t, err)

	req = setup.CreateAuthRequest(http.MethodGet, "/api/events/joined", nil, memberToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	events = setup.ParseJSONArrayResponse(t, resp)
	require.Len(t, events, 2, "joined list should be rebuilt from the database")

	// Test 4: Leaving removes the event from the list
	t.Log("=== Test 4: Joined List After Leave ===")
	req = setup.CreateAuthRequest(http.MethodDelete, fmt.Sprintf("/api/events/%s/join", firstId), nil, memberToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	req = setup.CreateAuthRequest(http.MethodGet, "/api/events/joined", nil, memberToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	events = setup.ParseJSONArrayResponse(t, resp)
	require.Len(t, events, 1)
	require.Equal(t, secondId, events[0].(map[string]interface{})["id"])

	// Test 5: Deleting the event removes it from participants' lists
	t.Log("=== Test 5: Joined List After Event Deletion ===")
	req = setup.CreateAuthRequest(http.MethodDelete, fmt.Sprintf("/api/events/%s", secondId), nil, hostToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	req = setup.CreateAuthRequest(http.MethodGet, "/api/events/joined", nil, memberToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	events = setup.ParseJSONArrayResponse(t, resp)
	require.Len(t, events, 0, "deleting an event should empty the participant's joined list")
}
