package discord

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/warden/internal/decision"
	"github.com/hpungsan/warden/internal/roles"
	"github.com/hpungsan/warden/internal/submission"
	"github.com/hpungsan/warden/internal/workflow"
)

func buttons(t *testing.T, components []discordgo.MessageComponent) []discordgo.Button {
	t.Helper()
	require.Len(t, components, 1)
	row, ok := components[0].(discordgo.ActionsRow)
	require.True(t, ok)

	var out []discordgo.Button
	for _, c := range row.Components {
		b, ok := c.(discordgo.Button)
		require.True(t, ok)
		out = append(out, b)
	}
	return out
}

func TestActionFromCustomID(t *testing.T) {
	cases := map[string]workflow.Action{
		customIDApprove: workflow.ActionApprove,
		customIDBan:     workflow.ActionBan,
		customIDKick:    workflow.ActionKick,
	}
	for id, want := range cases {
		got, ok := actionFromCustomID(id)
		assert.True(t, ok, id)
		assert.Equal(t, want, got, id)
	}

	_, ok := actionFromCustomID("resolved_approved")
	assert.False(t, ok)
}

func TestReviewMessage(t *testing.T) {
	msg := reviewMessage(workflow.ReviewCard{
		Fields: []submission.Field{
			{Name: "Discord tag", Value: "alice"},
			{Name: "Diagnosis", Value: ""},
		},
		SubmitterID:  101,
		SubmitterTag: "alice",
	})

	require.Len(t, msg.Embeds, 1)
	embed := msg.Embeds[0]
	assert.Equal(t, "New Form Submission", embed.Title)
	assert.Equal(t, "Gotten UserId 101", embed.Footer.Text)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "alice", embed.Fields[0].Value)
	assert.Equal(t, emptyFieldFallback, embed.Fields[1].Value)

	bs := buttons(t, msg.Components)
	require.Len(t, bs, 3)
	assert.Equal(t, customIDApprove, bs[0].CustomID)
	assert.Equal(t, customIDBan, bs[1].CustomID)
	assert.Equal(t, customIDKick, bs[2].CustomID)
	for _, b := range bs {
		assert.False(t, b.Disabled)
	}
}

func TestReviewMessage_CapsFields(t *testing.T) {
	fields := make([]submission.Field, 40)
	for i := range fields {
		fields[i] = submission.Field{Name: "q", Value: strings.Repeat("x", 2000)}
	}
	msg := reviewMessage(workflow.ReviewCard{Fields: fields, SubmitterID: 1})

	embed := msg.Embeds[0]
	assert.Len(t, embed.Fields, maxEmbedFields)
	assert.Equal(t, maxFieldValueLen, utf8.RuneCountInString(embed.Fields[0].Value))
}

func TestNoticeMessage(t *testing.T) {
	unmatched := noticeMessage(workflow.Notice{Kind: workflow.NoticeUnmatched, Subject: "ghost#0001"})
	assert.Contains(t, unmatched.Embeds[0].Description, "the user ghost#0001 could not be found")
	assert.Empty(t, unmatched.Components)

	malformed := noticeMessage(workflow.Notice{Kind: workflow.NoticeMalformed, Detail: "field 2 unknown"})
	assert.Equal(t, "Malformed Submission", malformed.Embeds[0].Title)
	assert.Contains(t, malformed.Embeds[0].Description, "field 2 unknown")
}

func TestTerminalComponents(t *testing.T) {
	cases := []struct {
		state decision.Status
		label string
	}{
		{decision.StatusApproved, "Approved"},
		{decision.StatusBanned, "Banned"},
		{decision.StatusKicked, "Kicked"},
		{decision.StatusLeft, "Left Server"},
	}
	for _, tc := range cases {
		t.Run(string(tc.state), func(t *testing.T) {
			bs := buttons(t, terminalComponents(tc.state))
			require.Len(t, bs, 1)
			assert.Equal(t, tc.label, bs[0].Label)
			assert.True(t, bs[0].Disabled)
			_, ok := actionFromCustomID(bs[0].CustomID)
			assert.False(t, ok)
		})
	}
}

func TestResultEmbed(t *testing.T) {
	full := resultEmbed(&workflow.ActionResult{Status: decision.StatusApproved})
	assert.Equal(t, "User has been approved", full.Description)

	partial := resultEmbed(&workflow.ActionResult{
		Status:      decision.StatusApproved,
		FailedRoles: []string{"555"},
		Unbound:     []roles.Role{roles.PeerSupport},
	})
	assert.Contains(t, partial.Description, "<@&555>")
	assert.Contains(t, partial.Description, string(roles.PeerSupport))

	assert.Equal(t, "User has been banned", resultEmbed(&workflow.ActionResult{Status: decision.StatusBanned}).Description)
	assert.Equal(t, "User has been kicked", resultEmbed(&workflow.ActionResult{Status: decision.StatusKicked}).Description)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "éé…", truncate("éééé", 3))
}
