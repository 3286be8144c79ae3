package outboxMcp

import (
	"context"
	"testing"

	"lead-chat/internal/pkg/outbox"
	"lead-chat/internal/pkg/profile"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callRequest(arguments map[string]any) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Arguments = arguments
	return request
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func seededOutbox() *outbox.Outbox {
	box := outbox.New("leads@archtools.example")
	box.NotifyRegistration(profile.UserProfile{Name: "Ana", Company: "Horizon", Project: "Tower", ClientType: profile.ClientTypeNew})
	box.Send(outbox.KindReport, "Final technical report - Ana", "Use HDRI lighting.")
	box.NotifyRegistration(profile.UserProfile{Name: "Rui", Company: "Atlas", Project: "Bridge", ClientType: profile.ClientTypeExisting})
	return box
}

func TestListOutbox(t *testing.T) {
	instance := New(seededOutbox())

	result, err := instance.listOutbox(context.Background(), callRequest(map[string]any{"kind": "lead", "limit": 1}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var entries []outbox.Entry
	require.NoError(t, sonic.UnmarshalString(resultText(t, result), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "RETURNING CLIENT ACCESS: Atlas", entries[0].Subject)
}

func TestListOutboxAll(t *testing.T) {
	instance := New(seededOutbox())

	result, err := instance.listOutbox(context.Background(), callRequest(nil))
	require.NoError(t, err)

	var entries []outbox.Entry
	require.NoError(t, sonic.UnmarshalString(resultText(t, result), &entries))
	assert.Len(t, entries, 3)
}

func TestListOutboxNegativeKind(t *testing.T) {
	instance := New(seededOutbox())

	result, err := instance.listOutbox(context.Background(), callRequest(map[string]any{"kind": "spam"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestLatestReport(t *testing.T) {
	instance := New(seededOutbox())

	result, err := instance.latestReport(context.Background(), callRequest(nil))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Subject: Final technical report - Ana")
	assert.Contains(t, text, "Use HDRI lighting.")
}

func TestLatestReportEmpty(t *testing.T) {
	instance := New(outbox.New(""))

	result, err := instance.latestReport(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, "No technical report has been recorded yet.", resultText(t, result))
}

func TestHandler(t *testing.T) {
	assert.NotNil(t, New(outbox.New("")).Handler())
}
