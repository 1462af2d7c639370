// services/notifier.go
package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"player-moderation-system/models"
)

// ModEvent describes a completed moderation mutation, handed to the notifier
// after the mutation committed.
type ModEvent struct {
	LogType      models.LogType
	StaffID      string
	TargetUUID   string
	Role         string
	Code         string
	Key          string
	Note         string
	Report       string
	RolesAdded   []string
	RolesRemoved []string
}

// Notifier receives an event after each successful mutation. Delivery
// failure never affects the mutation's success and never rolls it back.
type Notifier interface {
	Notify(ctx context.Context, event ModEvent) error
}

// LogNotifier is the fallback notifier used when no webhook is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, event ModEvent) error {
	log.Printf("📋 [MODLOG] %s staff=%s target=%s role=%s code=%s",
		event.LogType, event.StaffID, event.TargetUUID, event.Role, event.Code)
	return nil
}

var embedColors = map[models.LogType]int{
	models.LogTypeBan:           0xE74C3C,
	models.LogTypeUnban:         0x2ECC71,
	models.LogTypeRoleGrant:     0x3498DB,
	models.LogTypeRoleRemove:    0xE67E22,
	models.LogTypeRoleEdit:      0x3498DB,
	models.LogTypeCodeRedeem:    0x9B59B6,
	models.LogTypeWatchlistOn:   0xF1C40F,
	models.LogTypeWatchlistOff:  0xF1C40F,
	models.LogTypeReportAdd:     0xE74C3C,
	models.LogTypeReportResolve: 0x2ECC71,
}

// DiscordWebhookNotifier posts a moderation-log embed to a Discord channel
// webhook.
type DiscordWebhookNotifier struct {
	session      *discordgo.Session
	webhookID    string
	webhookToken string
	titler       cases.Caser
}

// NewDiscordWebhookNotifier parses a full webhook URL
// (https://discord.com/api/webhooks/<id>/<token>).
func NewDiscordWebhookNotifier(webhookURL string) (*DiscordWebhookNotifier, error) {
	u, err := url.Parse(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook URL: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return nil, fmt.Errorf("webhook URL %q missing id/token segments", webhookURL)
	}

	// Token is only used for webhook execution; no bot identity needed.
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	return &DiscordWebhookNotifier{
		session:      session,
		webhookID:    parts[len(parts)-2],
		webhookToken: parts[len(parts)-1],
		titler:       cases.Title(language.English),
	}, nil
}

func (n *DiscordWebhookNotifier) Notify(ctx context.Context, event ModEvent) error {
	embed := &discordgo.MessageEmbed{
		Title: n.titler.String(strings.ReplaceAll(string(event.LogType), "_", " ")),
		Color: n.colorFor(event.LogType),
	}

	addField := func(name, value string) {
		if value == "" {
			return
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: name, Value: value, Inline: true,
		})
	}

	addField("Staff", event.StaffID)
	addField("Player", event.TargetUUID)
	addField("Role", n.roleDisplay(event.Role))
	addField("Code", event.Code)
	addField("Key", event.Key)
	addField("Note", event.Note)
	addField("Report", event.Report)
	addField("Added", strings.Join(event.RolesAdded, ", "))
	addField("Removed", strings.Join(event.RolesRemoved, ", "))

	_, err := n.session.WebhookExecute(n.webhookID, n.webhookToken, false,
		&discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("webhook execute failed: %w", err)
	}
	return nil
}

func (n *DiscordWebhookNotifier) colorFor(t models.LogType) int {
	if c, ok := embedColors[t]; ok {
		return c
	}
	return 0x95A5A6
}

// roleDisplay turns a slugged role name into a display label ("vip-plus" →
// "Vip Plus").
func (n *DiscordWebhookNotifier) roleDisplay(role string) string {
	if role == "" {
		return ""
	}
	return n.titler.String(strings.ReplaceAll(role, "-", " "))
}
