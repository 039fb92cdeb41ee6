package discord

import (
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/warden/internal/errors"
	"github.com/hpungsan/warden/internal/submission"
	"github.com/hpungsan/warden/internal/workflow"
)

func TestSubmissionFromMessage(t *testing.T) {
	m := &discordgo.Message{
		ID:        "300",
		ChannelID: "55",
		Author:    &discordgo.User{ID: "900", Bot: true},
		Embeds: []*discordgo.MessageEmbed{{
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Discord tag", Value: "alice"},
				nil,
				{Name: "Diagnosis", Value: "Questioning ASD"},
			},
		}},
	}

	ev, err := submissionFromMessage(m)
	require.NoError(t, err)
	assert.Equal(t, int64(300), ev.MessageID)
	assert.Equal(t, int64(55), ev.ChannelID)
	assert.Equal(t, int64(900), ev.AuthorID)
	assert.Equal(t, [][]submission.Field{{
		{Name: "Discord tag", Value: "alice"},
		{Name: "Diagnosis", Value: "Questioning ASD"},
	}}, ev.Embeds)
}

func TestSubmissionFromMessage_Invalid(t *testing.T) {
	_, err := submissionFromMessage(&discordgo.Message{ID: "300", ChannelID: "55"})
	assert.Error(t, err)

	_, err = submissionFromMessage(&discordgo.Message{ID: "x", ChannelID: "55", Author: &discordgo.User{ID: "1"}})
	assert.Error(t, err)
}

func componentInteraction(customID string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        "1",
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: "55",
		Message:   &discordgo.Message{ID: "4242"},
		Member:    &discordgo.Member{User: &discordgo.User{ID: "77"}},
		Data:      discordgo.MessageComponentInteractionData{CustomID: customID},
	}
}

func TestActionFromInteraction(t *testing.T) {
	ev, err := actionFromInteraction(componentInteraction(customIDKick))
	require.NoError(t, err)
	assert.Equal(t, workflow.ActionEvent{
		CardID:      4242,
		ChannelID:   55,
		ModeratorID: 77,
		Action:      workflow.ActionKick,
	}, ev)
}

func TestActionFromInteraction_DirectUser(t *testing.T) {
	i := componentInteraction(customIDApprove)
	i.Member = nil
	i.User = &discordgo.User{ID: "78"}

	ev, err := actionFromInteraction(i)
	require.NoError(t, err)
	assert.Equal(t, int64(78), ev.ModeratorID)
}

func TestActionFromInteraction_Rejects(t *testing.T) {
	unknown := componentInteraction("resolved_banned")
	_, err := actionFromInteraction(unknown)
	assert.Error(t, err)

	noMessage := componentInteraction(customIDBan)
	noMessage.Message = nil
	_, err = actionFromInteraction(noMessage)
	assert.Error(t, err)

	command := &discordgo.Interaction{ID: "2", Type: discordgo.InteractionApplicationCommand}
	_, err = actionFromInteraction(command)
	assert.Error(t, err)
}

func TestModeratorMessage(t *testing.T) {
	assert.Equal(t, "Could not find message in database",
		moderatorMessage(errors.NewRecordNotFound("card_id", 1)))
	assert.Contains(t, moderatorMessage(fmt.Errorf("wrap: %w", errors.NewAlreadyResolved(1, "approved"))), "already been handled")
	assert.Contains(t, moderatorMessage(errors.NewDirectoryMutationFailed("ban", 1, nil)), "still open")
	assert.Contains(t, moderatorMessage(fmt.Errorf("boom")), "Something went wrong")
}
