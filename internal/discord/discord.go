// Package discord adapts the workflow ports to a Discord guild over the
// gateway and REST APIs.
package discord

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// Intents are the gateway intents the bot needs: guild messages with content
// for intake, and guild members for departures.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsMessageContent

// NewSession creates an unopened gateway session for a bot token.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.Identify.Intents = Intents
	s.StateEnabled = false
	return s, nil
}

// rest is the subset of the REST API the adapter uses.
type rest interface {
	searchMembers(guildID, query string, limit int) ([]*discordgo.Member, error)
	addRole(guildID, userID, roleID string) error
	ban(guildID, userID, reason string) error
	kick(guildID, userID, reason string) error
	send(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)
	edit(msg *discordgo.MessageEdit) (*discordgo.Message, error)
	deleteMessage(channelID, messageID string) error
}

type sessionREST struct {
	s *discordgo.Session
}

func (r sessionREST) searchMembers(guildID, query string, limit int) ([]*discordgo.Member, error) {
	return r.s.GuildMembersSearch(guildID, query, limit)
}

func (r sessionREST) addRole(guildID, userID, roleID string) error {
	return r.s.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (r sessionREST) ban(guildID, userID, reason string) error {
	return r.s.GuildBanCreateWithReason(guildID, userID, reason, 0)
}

func (r sessionREST) kick(guildID, userID, reason string) error {
	return r.s.GuildMemberDeleteWithReason(guildID, userID, reason)
}

func (r sessionREST) send(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	return r.s.ChannelMessageSendComplex(channelID, msg)
}

func (r sessionREST) edit(msg *discordgo.MessageEdit) (*discordgo.Message, error) {
	return r.s.ChannelMessageEditComplex(msg)
}

func (r sessionREST) deleteMessage(channelID, messageID string) error {
	return r.s.ChannelMessageDelete(channelID, messageID)
}

// transient reports whether a REST failure is worth retrying: rate limits,
// server errors, and failures that never produced a response.
func transient(err error) bool {
	var restErr *discordgo.RESTError
	if stderrors.As(err, &restErr) {
		if restErr.Response == nil {
			return true
		}
		code := restErr.Response.StatusCode
		return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
	}
	return true
}

func snowflake(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseSnowflake(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid snowflake %q", s)
	}
	return id, nil
}

// userTag renders a user the way members search for them: the bare username
// for migrated accounts, username#discriminator otherwise.
func userTag(u *discordgo.User) string {
	if u == nil {
		return ""
	}
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}
