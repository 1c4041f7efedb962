package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/sportmeetapp/sportmeet/tests/integration/setup"
	"github.com/stretchr/testify/require"
)

// TestParticipantsHostOnly tests the access guard on the host roster
func TestParticipantsHostOnly(t *testing.T) {
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
	hostToken := createTestUser(t, app, infra.MailhogURL, "rosterhost@example.com", "rosterhost", "password123")
	memberToken := createTestUser(t, app, infra.MailhogURL, "rostermember@example.com", "rostermember", "password123")

	eventId := createTestEvent(t, app, hostToken, "Roster Event", "running", 5)

	req := setup.CreateAuthRequest(http.MethodPost, fmt.Sprintf("/api/events/%s/join", eventId), nil, memberToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	// Test 1: A participant cannot read the roster
	t.Log("=== Test 1: Participant Cannot Read Roster ===")
	req = setup.CreateAuthRequest(http.MethodGet, fmt.Sprintf("/api/events/%s/participants", eventId), nil, memberToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 403, resp.StatusCode, "non-host roster read should return 403")

	result := setup.ParseJSONResponse(t, resp)
	code, _, _ := setup.ParseErrorDetail(t, result)
	require.Equal(t, "NOT_AUTHORIZED", code)

	// Test 2: The host can
	t.Log("=== Test 2: Host Reads Roster ===")
	req = setup.CreateAuthRequest(http.MethodGet, fmt.Sprintf("/api/events/%s/participants", eventId), nil, hostToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "host roster read should complete")
	require.Equal(t, 200, resp.StatusCode)

	participants := setup.ParseJSONArrayResponse(t, resp)
	require.Len(t, participants, 1)

	// Test 3: Roster of an unknown event
	t.Log("=== Test 3: Roster Of Unknown Event ===")
	req = setup.CreateAuthRequest(http.MethodGet, "/api/events/3f1f3e46-7a62-4dd0-9a88-02a6f4f9a111/participants", nil, hostToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 404, resp.StatusCode, "unknown event should return 404")
}

// TestParticipantsConsentRedaction tests that demographics only appear for
// participants who shared them.
func TestParticipantsConsentRedaction(t *testing.T) {
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
	hostToken := createTestUser(t, app, infra.MailhogURL, "consenthost@example.com", "consenthost", "password123")
	sharerToken := createTestUser(t, app, infra.MailhogURL, "sharer@example.com", "shareruser", "password123")
	refuserToken := createTestUser(t, app, infra.MailhogURL, "refuser@example.com", "refuseruser", "password123")

	eventId := createTestEvent(t, app, hostToken, "Consent Event", "tennis", 10)

	// sharer joins with consent, refuser joins without
	req := setup.CreateAuthRequest(http.MethodPost, fmt.Sprintf("/api/events/%s/join", eventId),
		[]byte(`{"shareConsent":true}`), sharerToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	req = setup.CreateAuthRequest(http.MethodPost, fmt.Sprintf("/api/events/%s/join", eventId),
		[]byte(`{"shareConsent":false}`), refuserToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	t.Log("=== Test 1: Roster Redacts Non-Consenting Participants ===")
	req = setup.CreateAuthRequest(http.MethodGet, fmt.Sprintf("/api/events/%s/participants", eventId), nil, hostToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "roster request should complete")
	require.Equal(t, 200, resp.StatusCode)

	participants := setup.ParseJSONArrayResponse(t, resp)
	require.Len(t, participants, 2)

	// joined_at ascending, so the sharer comes first
	first := participants[0].(map[string]interface{})
	second := participants[1].(map[string]interface{})

	require.Equal(t, "shareruser", first["username"], "roster should be ordered by join time")
	require.Equal(t, "male", first["gender"], "consenting participant should expose gender")
	require.Equal(t, "25-34", first["ageBand"], "consenting participant should expose the age band, not the age")

	require.Equal(t, "refuseruser", second["username"])
	require.Nil(t, second["gender"], "non-consenting participant should have gender redacted")
	require.Nil(t, second["ageBand"], "non-consenting participant should have age band redacted")

	// The exact age never leaves the store, consent or not
	for _, p := range participants {
		_, hasAge := p.(map[string]interface{})["age"]
		require.False(t, hasAge, "roster rows should never carry a raw age")
	}

	t.Log("=== Test 2: Host Is Not On The Roster ===")
	for _, p := range participants {
		require.NotEqual(t, "consenthost", p.(map[string]interface{})["username"],
			"the host should never appear as a participant")
	}
}
