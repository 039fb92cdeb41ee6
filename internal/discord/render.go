package discord

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/hpungsan/warden/internal/decision"
	"github.com/hpungsan/warden/internal/workflow"
)

// Button ids. They match the ids on cards published before the status
// column existed, so old cards keep working.
const (
	customIDApprove = "approve_user"
	customIDBan     = "reject_user_and_ban"
	customIDKick    = "reject_user_and_kick"
)

const (
	colorBlurple   = 0x5865F2
	colorDarkRed   = 0x992D22
	colorDarkGreen = 0x1F8B4C
	colorGrey      = 0x95A5A6

	maxEmbedFields     = 25
	maxFieldNameLen    = 256
	maxFieldValueLen   = 1024
	maxDescriptionLen  = 4096
	emptyFieldFallback = "\u200b"
)

// actionFromCustomID decodes a button id into an action.
func actionFromCustomID(id string) (workflow.Action, bool) {
	switch id {
	case customIDApprove:
		return workflow.ActionApprove, true
	case customIDBan:
		return workflow.ActionBan, true
	case customIDKick:
		return workflow.ActionKick, true
	}
	return 0, false
}

func reviewMessage(card workflow.ReviewCard) *discordgo.MessageSend {
	fields := make([]*discordgo.MessageEmbedField, 0, min(len(card.Fields), maxEmbedFields))
	for i, f := range card.Fields {
		if i == maxEmbedFields {
			break
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  truncate(f.Name, maxFieldNameLen),
			Value: truncate(f.Value, maxFieldValueLen),
		})
	}

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "New Form Submission",
			Description: fmt.Sprintf("Matched member <@%d> (%s)", card.SubmitterID, card.SubmitterTag),
			Color:       colorBlurple,
			Fields:      fields,
			Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Gotten UserId %d", card.SubmitterID)},
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Accept", Style: discordgo.SuccessButton, CustomID: customIDApprove},
				discordgo.Button{Label: "Deny & Ban", Style: discordgo.DangerButton, CustomID: customIDBan},
				discordgo.Button{Label: "Deny & Kick", Style: discordgo.DangerButton, CustomID: customIDKick},
			}},
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
}

func noticeMessage(n workflow.Notice) *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{Color: colorDarkRed}
	switch n.Kind {
	case workflow.NoticeUnmatched:
		embed.Title = "New Submission"
		embed.Description = fmt.Sprintf(
			"New Submission - However, the user %s could not be found in the server", n.Subject)
	default:
		embed.Title = "Malformed Submission"
		embed.Description = truncate(
			"The submission above could not be read and was left in place. "+n.Detail, maxDescriptionLen)
	}
	return &discordgo.MessageSend{
		Embeds:          []*discordgo.MessageEmbed{embed},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
}

// terminalComponents replaces the action row with one disabled outcome button.
func terminalComponents(state decision.Status) []discordgo.MessageComponent {
	label, style := "Resolved", discordgo.SecondaryButton
	switch state {
	case decision.StatusApproved:
		label, style = "Approved", discordgo.SuccessButton
	case decision.StatusBanned:
		label, style = "Banned", discordgo.DangerButton
	case decision.StatusKicked:
		label, style = "Kicked", discordgo.DangerButton
	case decision.StatusLeft:
		label = "Left Server"
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: label, Style: style, CustomID: "resolved_" + string(state), Disabled: true},
		}},
	}
}

// resultEmbed is the moderator's private confirmation of a transition.
func resultEmbed(r *workflow.ActionResult) *discordgo.MessageEmbed {
	switch r.Status {
	case decision.StatusApproved:
		e := &discordgo.MessageEmbed{
			Title:       "Approved",
			Description: "User has been approved",
			Color:       colorDarkGreen,
		}
		if r.Partial() {
			var b strings.Builder
			b.WriteString("User has been approved, but not every role was granted.")
			for _, id := range r.FailedRoles {
				fmt.Fprintf(&b, "\nFailed: <@&%s>", id)
			}
			for _, kind := range r.Unbound {
				fmt.Fprintf(&b, "\nNot configured: %s", kind)
			}
			e.Description = truncate(b.String(), maxDescriptionLen)
		}
		return e
	case decision.StatusBanned:
		return &discordgo.MessageEmbed{Title: "Rejected", Description: "User has been banned", Color: colorDarkRed}
	case decision.StatusKicked:
		return &discordgo.MessageEmbed{Title: "Rejected", Description: "User has been kicked", Color: colorDarkRed}
	}
	return &discordgo.MessageEmbed{Title: "Done", Color: colorGrey}
}

func errorEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: truncate(description, maxDescriptionLen),
		Color:       colorDarkRed,
	}
}

// truncate shortens s to at most n runes; empty values become a zero-width space.
func truncate(s string, n int) string {
	if s == "" {
		return emptyFieldFallback
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
