package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/theialabs/theia-relay/internal/biz/domain"
	"github.com/theialabs/theia-relay/internal/biz/repo"
	"github.com/theialabs/theia-relay/internal/biz/usecase"
)

// InboundMessage is a normalized text message handed to the relay
type InboundMessage struct {
	Sender         string
	ConversationID string
	Text           string
	IsFromPrimary  bool
}

// RelayService routes every inbound message: commands and policy toggles
// from the primary user, triage and draft approvals from contacts.
type RelayService struct {
	status   *usecase.StatusUsecase
	draft    *usecase.DraftUsecase
	digest   *usecase.DigestUsecase
	composer *usecase.ComposerUsecase

	prefs    repo.PreferenceRepo
	logs     repo.RelayLogRepo
	messages repo.MessageRepo

	primaryUserID string
	primaryChatID string

	mu      sync.Mutex
	senders map[string]*sync.Mutex
}

// NewRelayService creates a new relay service
func NewRelayService(
	status *usecase.StatusUsecase,
	draft *usecase.DraftUsecase,
	digest *usecase.DigestUsecase,
	composer *usecase.ComposerUsecase,
	prefs repo.PreferenceRepo,
	logs repo.RelayLogRepo,
	messages repo.MessageRepo,
	primaryUserID, primaryChatID string,
) *RelayService {
	return &RelayService{
		status:        status,
		draft:         draft,
		digest:        digest,
		composer:      composer,
		prefs:         prefs,
		logs:          logs,
		messages:      messages,
		primaryUserID: primaryUserID,
		primaryChatID: primaryChatID,
		senders:       make(map[string]*sync.Mutex),
	}
}

// senderLock returns the per-sender mutex, creating it on first use.
// Messages from one sender are processed in order; different senders
// proceed concurrently.
func (s *RelayService) senderLock(sender string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.senders[sender]
	if !ok {
		lock = &sync.Mutex{}
		s.senders[sender] = lock
	}
	return lock
}

// HandleMessage is the single entry point for inbound messages. Failures
// never propagate to the transport; they are logged and reported to the
// primary chat on a best-effort basis.
func (s *RelayService) HandleMessage(ctx context.Context, msg InboundMessage) {
	lock := s.senderLock(msg.Sender)
	lock.Lock()
	defer lock.Unlock()

	var err error
	if msg.IsFromPrimary {
		err = s.handlePrimary(ctx, msg)
	} else {
		err = s.handleContact(ctx, msg)
	}
	if err != nil {
		fmt.Printf("[Relay] Failed to handle message from %s: %v\n", msg.Sender, err)
		diag := fmt.Sprintf("⚠️ Relay error handling a message from %s: %v", msg.Sender, err)
		if sendErr := s.messages.SendText(ctx, s.primaryChatID, diag); sendErr != nil {
			fmt.Printf("[Relay] Failed to report error: %v\n", sendErr)
		}
	}
}

// handlePrimary processes the primary user's own messages: policy
// toggles, slash commands, and outbound send/reply instructions.
func (s *RelayService) handlePrimary(ctx context.Context, msg InboundMessage) error {
	if policy, ok := domain.DetectPolicyToggle(msg.Text); ok {
		if err := s.status.SetSendPolicy(ctx, policy); err != nil {
			return err
		}
		confirmation := "✅ Draft mode on: replies wait for your contact's approval."
		if policy == domain.PolicyYolo {
			confirmation = "✅ YOLO mode on: generated replies send immediately."
		}
		return s.messages.SendText(ctx, s.primaryChatID, confirmation)
	}

	cmd, err := domain.ParseCommand(msg.Text)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return s.messages.SendText(ctx, s.primaryChatID, "❌ "+ve.Message)
		}
		return err
	}

	switch cmd.Type {
	case domain.CommandStatusCheck:
		directive := s.status.Directive(ctx)
		text := fmt.Sprintf("Current status: %s\n%s\nSend policy: %s",
			directive.Status, domain.StatusMessage(directive.Status), directive.SendPolicy)
		if directive.Context != "" {
			text += "\nContext: " + directive.Context
		}
		return s.messages.SendText(ctx, s.primaryChatID, text)

	case domain.CommandStatusSet:
		if err := s.status.SetStatus(ctx, cmd.Status); err != nil {
			return err
		}
		text := fmt.Sprintf("✅ Status set to %s.\n%s", cmd.Status, domain.StatusMessage(cmd.Status))
		return s.messages.SendText(ctx, s.primaryChatID, text)

	case domain.CommandDigest:
		text, err := s.digest.Build(ctx, cmd.HoursBack)
		if err != nil {
			return err
		}
		return s.messages.SendText(ctx, s.primaryChatID, text)

	case domain.CommandContextSet:
		if err := s.status.SetContext(ctx, cmd.Message); err != nil {
			return err
		}
		if cmd.Message == "" {
			return s.messages.SendText(ctx, s.primaryChatID, "✅ Context cleared.")
		}
		return s.messages.SendText(ctx, s.primaryChatID, "✅ Context updated: "+cmd.Message)

	case domain.CommandSend:
		return s.sendToTarget(ctx, cmd.Target, cmd.Message)

	case domain.CommandReply:
		return s.replyToLastSender(ctx, cmd.Message)

	default:
		// Free chatter in the primary's own channel is not relayed
		return nil
	}
}

// sendToTarget relays an explicit "@target send:" message
func (s *RelayService) sendToTarget(ctx context.Context, target, text string) error {
	outbound := s.composer.WrapOutbound(text, time.Now())
	if err := s.messages.SendText(ctx, target, outbound); err != nil {
		return err
	}

	record := &domain.RelayLogRecord{
		ConversationID: uuid.NewString(),
		FromUser:       s.primaryUserID,
		ToUser:         target,
		OriginalText:   text,
		RelayedText:    outbound,
		Method:         domain.RelayMethodManual,
	}
	if err := s.logs.Append(ctx, record); err != nil {
		fmt.Printf("[Relay] Failed to log send: %v\n", err)
	}

	return s.messages.SendText(ctx, s.primaryChatID, fmt.Sprintf("✅ Sent to %s", target))
}

// replyToLastSender threads a "Reply:" message back to whoever last
// messaged the primary user
func (s *RelayService) replyToLastSender(ctx context.Context, text string) error {
	last, err := s.logs.LastRecordTo(ctx, s.primaryUserID)
	if err != nil {
		return err
	}
	if last == nil {
		return s.messages.SendText(ctx, s.primaryChatID, "❌ No recent conversation to reply to.")
	}

	outbound := s.composer.WrapOutbound(text, time.Now())
	if err := s.messages.SendText(ctx, last.ConversationID, outbound); err != nil {
		return err
	}

	record := &domain.RelayLogRecord{
		ConversationID: last.ConversationID,
		FromUser:       s.primaryUserID,
		ToUser:         last.FromUser,
		OriginalText:   text,
		RelayedText:    outbound,
		Method:         domain.RelayMethodManual,
	}
	if err := s.logs.Append(ctx, record); err != nil {
		fmt.Printf("[Relay] Failed to log reply: %v\n", err)
	}

	return s.messages.SendText(ctx, s.primaryChatID, fmt.Sprintf("✅ Sent to %s", last.FromUser))
}

// handleContact processes a contact's message: urgency triage first,
// then draft approval commands, then the auto-respond decision.
func (s *RelayService) handleContact(ctx context.Context, msg InboundMessage) error {
	if domain.IsUrgent(msg.Text) {
		alert := s.composer.UrgentAlert(msg.Sender, msg.Text)
		if err := s.messages.SendText(ctx, s.primaryChatID, alert); err != nil {
			return err
		}
		record := &domain.RelayLogRecord{
			ConversationID: msg.ConversationID,
			FromUser:       msg.Sender,
			ToUser:         s.primaryUserID,
			OriginalText:   msg.Text,
			RelayedText:    alert,
			Method:         domain.RelayMethodUrgent,
			IsUrgent:       true,
		}
		if err := s.logs.Append(ctx, record); err != nil {
			fmt.Printf("[Relay] Failed to log urgent message: %v\n", err)
		}
		return nil
	}

	if action, editBody := domain.ParseDraftCommand(msg.Text); action != domain.DraftActionNone {
		outbound, err := s.draft.HandleApproval(ctx, msg.Sender, msg.ConversationID, action, editBody)
		var nfe *domain.NotFoundError
		if errors.As(err, &nfe) {
			// Stray approval command with no pending draft
			return nil
		}
		if err != nil {
			return err
		}
		if outbound != "" {
			record := &domain.RelayLogRecord{
				ConversationID: msg.ConversationID,
				FromUser:       s.primaryUserID,
				ToUser:         msg.Sender,
				RelayedText:    outbound,
				Method:         domain.RelayMethodAuto,
				AutoResponded:  true,
			}
			if err := s.logs.Append(ctx, record); err != nil {
				fmt.Printf("[Relay] Failed to log approved draft: %v\n", err)
			}
		}
		return nil
	}

	directive := s.status.Directive(ctx)
	allowed, err := s.prefs.AutoRespondAllowed(ctx, msg.Sender)
	if err != nil {
		fmt.Printf("[Relay] Preference read failed for %s, assuming allowed: %v\n", msg.Sender, err)
		allowed = true
	}

	if !domain.ShouldAutoRespond(directive.Status, false, allowed) {
		return s.forwardToPrimary(ctx, msg)
	}

	profile := s.status.Profile(ctx)
	body := s.composer.GenerateReply(ctx, directive, profile, msg.Text)

	if directive.SendPolicy == domain.PolicyYolo {
		return s.autoRespond(ctx, msg, body)
	}
	return s.stageDraft(ctx, msg, body)
}

// autoRespond sends the generated reply immediately and notifies the
// primary user
func (s *RelayService) autoRespond(ctx context.Context, msg InboundMessage, body string) error {
	outbound := s.composer.WrapOutbound(body, time.Now())
	if err := s.messages.SendText(ctx, msg.ConversationID, outbound); err != nil {
		return err
	}

	notice := s.composer.AutoRespondNotice(msg.Sender, msg.Text, body)
	if err := s.messages.SendText(ctx, s.primaryChatID, notice); err != nil {
		fmt.Printf("[Relay] Failed to notify primary of auto-response: %v\n", err)
	}

	record := &domain.RelayLogRecord{
		ConversationID: msg.ConversationID,
		FromUser:       msg.Sender,
		ToUser:         s.primaryUserID,
		OriginalText:   msg.Text,
		RelayedText:    body,
		Method:         domain.RelayMethodAuto,
		AutoResponded:  true,
	}
	if err := s.logs.Append(ctx, record); err != nil {
		fmt.Printf("[Relay] Failed to log auto-response: %v\n", err)
	}
	return nil
}

// stageDraft stages the generated reply for the contact's approval and
// notifies the primary user
func (s *RelayService) stageDraft(ctx context.Context, msg InboundMessage, body string) error {
	if _, err := s.draft.Stage(ctx, msg.Sender, msg.ConversationID, body, msg.Text); err != nil {
		return err
	}

	notice := s.composer.DraftStagedNotice(msg.Sender, msg.Text, body)
	if err := s.messages.SendText(ctx, s.primaryChatID, notice); err != nil {
		fmt.Printf("[Relay] Failed to notify primary of staged draft: %v\n", err)
	}

	record := &domain.RelayLogRecord{
		ConversationID: msg.ConversationID,
		FromUser:       msg.Sender,
		ToUser:         s.primaryUserID,
		OriginalText:   msg.Text,
		RelayedText:    body,
		Method:         domain.RelayMethodAuto,
	}
	if err := s.logs.Append(ctx, record); err != nil {
		fmt.Printf("[Relay] Failed to log staged draft: %v\n", err)
	}
	return nil
}

// forwardToPrimary relays a contact message without responding
func (s *RelayService) forwardToPrimary(ctx context.Context, msg InboundMessage) error {
	prompt := s.composer.ForwardPrompt(msg.Sender, msg.Text)
	if err := s.messages.SendText(ctx, s.primaryChatID, prompt); err != nil {
		return err
	}

	record := &domain.RelayLogRecord{
		ConversationID: msg.ConversationID,
		FromUser:       msg.Sender,
		ToUser:         s.primaryUserID,
		OriginalText:   msg.Text,
		RelayedText:    prompt,
		Method:         domain.RelayMethodManual,
	}
	if err := s.logs.Append(ctx, record); err != nil {
		fmt.Printf("[Relay] Failed to log forwarded message: %v\n", err)
	}
	return nil
}
