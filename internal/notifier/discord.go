package notifier

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/wordstreak-api/internal/models"
	log "github.com/sirupsen/logrus"
)

type Notifier interface {
	NotifyEntry(participant models.Participant, entry models.Entry) error
	NotifyBadges(participant models.Participant, tiers []models.BadgeTier, streak int) error
	NotifyStreakSave(participant models.Participant, savedStreak int) error
}

// Sender is the part of a discordgo session used to post messages.
type Sender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordNotifier struct {
	session   Sender
	channelID string
}

func NewDiscordNotifier(session Sender, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) NotifyEntry(participant models.Participant, entry models.Entry) error {
	label := "Word of the day"
	if entry.Kind == models.EntryKindQuote {
		label = "Quote of the day"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📝 **%s** from %s\n> %s", label, mention(participant), entry.Content)
	if entry.Author != "" {
		fmt.Fprintf(&b, "\n*%s*", entry.Author)
	}
	if entry.Definition != "" {
		fmt.Fprintf(&b, "\n**Definition:** %s", entry.Definition)
	}
	return n.send(b.String())
}

func (n *DiscordNotifier) NotifyBadges(participant models.Participant, tiers []models.BadgeTier, streak int) error {
	if len(tiers) == 0 {
		return nil
	}
	names := make([]string, 0, len(tiers))
	for _, tier := range tiers {
		names = append(names, tier.String())
	}
	message := fmt.Sprintf("🏅 **Badge Earned**\n**Participant:** %s\n**Badges:** %s\n**Streak:** %d days",
		mention(participant),
		strings.Join(names, ", "),
		streak,
	)
	return n.send(message)
}

func (n *DiscordNotifier) NotifyStreakSave(participant models.Participant, savedStreak int) error {
	message := fmt.Sprintf("🛟 **Streak Save Used**\n**Participant:** %s\n**Streak:** %d days",
		mention(participant),
		savedStreak,
	)
	return n.send(message)
}

func (n *DiscordNotifier) send(message string) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.WithError(err).Error("Failed to send discord message")
		return err
	}
	return nil
}

func mention(p models.Participant) string {
	if p.DiscordID != nil && *p.DiscordID != "" {
		return fmt.Sprintf("%s (<@%s>)", p.Name, *p.DiscordID)
	}
	return p.Name
}

// Nop discards every notification.
type Nop struct{}

func (Nop) NotifyEntry(models.Participant, models.Entry) error { return nil }
func (Nop) NotifyBadges(models.Participant, []models.BadgeTier, int) error { return nil }
func (Nop) NotifyStreakSave(models.Participant, int) error { return nil }
