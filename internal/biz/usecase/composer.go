package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/theialabs/theia-relay/internal/biz/domain"
	"github.com/theialabs/theia-relay/internal/biz/repo"
)

// ComposerConfig contains the templates and formatting rules for
// outbound text
type ComposerConfig struct {
	SystemTemplate  string
	FallbackMessage string
	Signature       string

	UrgentTemplate       string
	ForwardTemplate      string
	AutoRespondTemplate  string
	DraftStagedTemplate  string
	DraftPreviewTemplate string

	HeaderGlyph     string
	ReferencePrefix string
	MaxBodyLines    int
}

// DefaultComposerConfig mirrors the compiled-in prompt defaults
var DefaultComposerConfig = ComposerConfig{
	SystemTemplate:       "You are Theia, an AI assistant responding on behalf of a user who is {status}.\n\n{style}\n\nRespond naturally and briefly (1-2 sentences).\n\nContext: {status_message}. {context}",
	FallbackMessage:      "Thanks for your message! The person you're trying to reach is currently unavailable. They'll get back to you soon.",
	Signature:            "— Theia (AI Assistant)",
	UrgentTemplate:       "🚨 URGENT from {sender}:\n\"{text}\"",
	ForwardTemplate:      "📨 From {sender}:\n\"{text}\"\n\nReply with: Reply: [your message]",
	AutoRespondTemplate:  "✅ Auto-responded to {sender}:\n\nTheir message:\n\"{inbound}\"\n\nMy response:\n\"{outbound}\"",
	DraftStagedTemplate:  "📝 Draft staged for {sender}:\n\nTheir message:\n\"{inbound}\"\n\nDraft:\n\"{outbound}\"",
	DraftPreviewTemplate: "Here's a draft reply (expires in {expiry_minutes} min):\n\n{body}\n\nReply \"send\" to approve, \"cancel\" to discard, or \"edit: <your text>\" to replace it.",
	HeaderGlyph:          "▸",
	ReferencePrefix:      "THEIA",
	MaxBodyLines:         6,
}

// ComposerUsecase builds all outbound text: generated reply bodies,
// the deterministic outbound wrapper, and notification templates
type ComposerUsecase struct {
	gen repo.GeneratorRepo // nil when no provider is configured
	cfg ComposerConfig
}

// NewComposerUsecase creates a new composer usecase
func NewComposerUsecase(gen repo.GeneratorRepo, cfg ComposerConfig) *ComposerUsecase {
	if cfg.MaxBodyLines <= 0 {
		cfg.MaxBodyLines = 6
	}
	return &ComposerUsecase{gen: gen, cfg: cfg}
}

// GenerateReply produces an auto-response body for an inbound contact
// message. Provider failures fall back to a fixed apology; the result
// is always emoji-stripped, capped to MaxBodyLines, and signed.
func (uc *ComposerUsecase) GenerateReply(ctx context.Context, directive domain.RelayDirective, profile *domain.StyleProfile, inboundText string) string {
	body := uc.cfg.FallbackMessage

	if uc.gen != nil {
		systemPrompt := uc.buildSystemPrompt(directive, profile)
		text, err := uc.gen.Generate(ctx, systemPrompt, inboundText)
		if err != nil {
			fmt.Printf("[Composer] Generation failed, using fallback: %v\n", err)
		} else if strings.TrimSpace(text) != "" {
			body = strings.TrimSpace(text)
		}
	}

	body = StripEmoji(body)
	body = TruncateLines(body, uc.cfg.MaxBodyLines)

	if !strings.Contains(body, "Theia") {
		body = body + "\n\n" + uc.cfg.Signature
	}
	return body
}

func (uc *ComposerUsecase) buildSystemPrompt(directive domain.RelayDirective, profile *domain.StyleProfile) string {
	if profile == nil {
		profile = domain.DefaultStyleProfile()
	}

	style := fmt.Sprintf("Communication style: %s. Common phrases: %s. Emoji usage: %s.",
		profile.Tone, strings.Join(profile.CommonPhrases, ", "), profile.EmojiUsage)

	contextHint := directive.Context
	if contextHint == "" {
		contextHint = "No additional context."
	}

	r := strings.NewReplacer(
		"{status}", string(directive.Status),
		"{status_message}", domain.StatusMessage(directive.Status),
		"{style}", style,
		"{context}", contextHint,
	)
	return r.Replace(uc.cfg.SystemTemplate)
}

// WrapOutbound wraps an approved or auto-sent reply body with the
// header glyph and an audit footer carrying a UTC timestamp and a
// unique reference token.
func (uc *ComposerUsecase) WrapOutbound(body string, now time.Time) string {
	utc := now.UTC()
	return fmt.Sprintf("%s %s\n\n%s UTC · %s",
		uc.cfg.HeaderGlyph,
		strings.TrimSpace(body),
		utc.Format("2006-01-02 15:04:05"),
		uc.referenceToken(utc),
	)
}

// referenceToken builds <PREFIX>-<YYYYMMDD>-<HHMMSS>-<8 hex chars>.
// The random suffix makes the token unique per message.
func (uc *ComposerUsecase) referenceToken(utc time.Time) string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		// rand.Read on crypto/rand never fails in practice; keep the
		// token shape anyway
		copy(suffix, []byte{0, 0, 0, 0})
	}
	return fmt.Sprintf("%s-%s-%s-%s",
		uc.cfg.ReferencePrefix,
		utc.Format("20060102"),
		utc.Format("150405"),
		hex.EncodeToString(suffix),
	)
}

// UrgentAlert formats the urgent escalation sent to the primary user
func (uc *ComposerUsecase) UrgentAlert(sender, text string) string {
	return replaceAll(uc.cfg.UrgentTemplate, "{sender}", sender, "{text}", text)
}

// ForwardPrompt formats a relayed contact message with reply
// instructions for the primary user
func (uc *ComposerUsecase) ForwardPrompt(sender, text string) string {
	return replaceAll(uc.cfg.ForwardTemplate, "{sender}", sender, "{text}", text)
}

// AutoRespondNotice tells the primary user what was auto-sent
func (uc *ComposerUsecase) AutoRespondNotice(sender, inbound, outbound string) string {
	return replaceAll(uc.cfg.AutoRespondTemplate, "{sender}", sender, "{inbound}", inbound, "{outbound}", outbound)
}

// DraftStagedNotice tells the primary user a draft was staged
func (uc *ComposerUsecase) DraftStagedNotice(sender, inbound, outbound string) string {
	return replaceAll(uc.cfg.DraftStagedTemplate, "{sender}", sender, "{inbound}", inbound, "{outbound}", outbound)
}

// DraftPreview formats the approval prompt sent to the contact
func (uc *ComposerUsecase) DraftPreview(body string, expiry time.Duration) string {
	minutes := fmt.Sprintf("%d", int(expiry.Minutes()))
	return replaceAll(uc.cfg.DraftPreviewTemplate, "{body}", body, "{expiry_minutes}", minutes)
}

func replaceAll(template string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(template)
}

// emojiRanges covers the common pictographic blocks. Best-effort: not
// guaranteed complete.
var emojiRanges = [][2]rune{
	{0x1F000, 0x1F0FF}, // mahjong, dominoes, cards
	{0x1F300, 0x1FAFF}, // pictographs, emoticons, transport, supplemental
	{0x2600, 0x27BF},   // misc symbols, dingbats
	{0xFE00, 0xFE0F},   // variation selectors
	{0x2B00, 0x2BFF},   // misc symbols and arrows
}

// StripEmoji removes pictographic characters from text destined for a
// contact-facing draft
func StripEmoji(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		emoji := false
		for _, rng := range emojiRanges {
			if r >= rng[0] && r <= rng[1] {
				emoji = true
				break
			}
		}
		if !emoji {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// TruncateLines caps text at n lines
func TruncateLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}
