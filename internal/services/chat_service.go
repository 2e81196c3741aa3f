// File: internal/services/chat_service.go
package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/minhle/go-chatproxy/internal/domain"
	chatrepo "github.com/minhle/go-chatproxy/internal/repository/chat"
	messagerepo "github.com/minhle/go-chatproxy/internal/repository/message"
	"github.com/minhle/go-chatproxy/internal/services/chat"
	"github.com/minhle/go-chatproxy/internal/services/provider"
)

// ChatSummary is a chat list entry with its message count.
type ChatSummary struct {
	domain.Chat
	MessageCount int64 `json:"message_count"`
}

// SendMessageInput carries one user turn into the conversation.
type SendMessageInput struct {
	ChatID         uint
	Content        string
	ModelID        string
	Provider       string
	AttachmentPath string // local path of an already-saved upload, optional
	FileIDs        []string
}

// SendMessageResult returns both persisted rows so the frontend can render
// the exchange without refetching.
type SendMessageResult struct {
	UserMessage *domain.Message `json:"user_message"`
	AIMessage   *domain.Message `json:"ai_message"`
}

// EditMessageInput updates a user message and optionally regenerates the
// assistant response that followed it.
type EditMessageInput struct {
	ChatID      uint
	MessageID   uint
	Content     string
	AIMessageID uint // 0 means edit in place without regeneration
	ModelID     string
	Provider    string
}

// EditMessageResult mirrors SendMessageResult; AIMessage is nil when no
// regeneration was requested.
type EditMessageResult struct {
	UserMessage *domain.Message `json:"user_message"`
	AIMessage   *domain.Message `json:"ai_message,omitempty"`
}

// ProviderRouter is the slice of the provider router the conversation
// service needs: resolve a provider and dispatch one request.
type ProviderRouter interface {
	Send(ctx context.Context, providerName string, req provider.SendRequest) (provider.SendResult, string, error)
}

// ConversationService owns all chat state transitions. Per-chat operations
// are serialized through a keyed mutex so concurrent sends into one chat
// cannot interleave their read-assemble-write cycles.
type ConversationService struct {
	chats           chatrepo.ChatRepository
	messages        messagerepo.MessageRepository
	router          ProviderRouter
	assembler       *chat.ContextAssembler
	locks           *chat.KeyedMutex
	config          chat.Config
	upstreamTimeout time.Duration
	logger          Logger
}

func NewConversationService(
	chats chatrepo.ChatRepository,
	messages messagerepo.MessageRepository,
	router ProviderRouter,
	config chat.Config,
	upstreamTimeout time.Duration,
	logger Logger,
) (*ConversationService, error) {
	if chats == nil || messages == nil || router == nil {
		return nil, errors.New("conversation service requires repositories and a provider router")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}
	if upstreamTimeout <= 0 {
		upstreamTimeout = 2 * time.Minute
	}

	return &ConversationService{
		chats:           chats,
		messages:        messages,
		router:          router,
		assembler:       chat.NewContextAssembler(config),
		locks:           chat.NewKeyedMutex(),
		config:          config,
		upstreamTimeout: upstreamTimeout,
		logger:          logger,
	}, nil
}

// CreateChat opens a new conversation. Every chat starts with a greeting
// from the assistant so the frontend never renders an empty thread.
func (s *ConversationService) CreateChat(ctx context.Context, title string) (*domain.Chat, *chat.ChatError) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = chat.DefaultTitle
	}

	created, err := s.chats.Create(ctx, &domain.Chat{Title: title})
	if err != nil {
		return nil, chat.NewInternalError("create_chat", "failed to create chat", err)
	}

	welcome := &domain.Message{
		ChatID:  created.ID,
		Content: chat.WelcomeMessage,
		IsUser:  false,
	}
	if _, err := s.messages.Create(ctx, welcome); err != nil {
		s.logger.Warn("failed to store welcome message", "chat_id", created.ID, "error", err)
	} else {
		created.Messages = []domain.Message{*welcome}
	}

	s.logger.Info("chat created", "chat_id", created.ID, "title", created.Title)
	return created, nil
}

// GetChats lists all chats, newest first, with per-chat message counts.
func (s *ConversationService) GetChats(ctx context.Context) ([]ChatSummary, *chat.ChatError) {
	chats, err := s.chats.FindAll(ctx)
	if err != nil {
		return nil, chat.NewInternalError("list_chats", "failed to list chats", err)
	}

	summaries := make([]ChatSummary, 0, len(chats))
	for _, c := range chats {
		count, err := s.messages.CountByChatID(ctx, c.ID)
		if err != nil {
			s.logger.Warn("failed to count messages", "chat_id", c.ID, "error", err)
		}
		summaries = append(summaries, ChatSummary{Chat: c, MessageCount: count})
	}
	return summaries, nil
}

// GetChatByID returns the chat and its messages in conversation order.
func (s *ConversationService) GetChatByID(ctx context.Context, chatID uint) (*domain.Chat, []domain.Message, *chat.ChatError) {
	found, err := s.chats.FindByID(ctx, chatID)
	if errors.Is(err, chatrepo.ErrChatNotFound) {
		return nil, nil, chat.NewNotFoundError("get_chat", "chat not found", chatID)
	}
	if err != nil {
		return nil, nil, chat.NewInternalError("get_chat", "failed to fetch chat", err)
	}

	messages, err := s.messages.FindByChatID(ctx, chatID)
	if err != nil {
		return nil, nil, chat.NewInternalError("get_chat", "failed to fetch messages", err)
	}
	return found, messages, nil
}

// DeleteChat removes the chat and all its messages atomically.
func (s *ConversationService) DeleteChat(ctx context.Context, chatID uint) *chat.ChatError {
	s.locks.Lock(chatID)
	defer s.locks.Unlock(chatID)

	err := s.chats.DeleteWithMessages(ctx, chatID)
	if errors.Is(err, chatrepo.ErrChatNotFound) {
		return chat.NewNotFoundError("delete_chat", "chat not found", chatID)
	}
	if err != nil {
		return chat.NewInternalError("delete_chat", "failed to delete chat", err)
	}

	s.logger.Info("chat deleted", "chat_id", chatID)
	return nil
}

// SendMessage runs one full conversation turn: persist the user message,
// assemble bounded context, dispatch to the resolved provider, persist the
// assistant reply, then run best-effort post-processing (title derivation
// and periodic summarization). The user message survives upstream failure
// so a retry does not lose the user's text.
func (s *ConversationService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, *chat.ChatError) {
	if strings.TrimSpace(input.Content) == "" && input.AttachmentPath == "" && len(input.FileIDs) == 0 {
		return nil, chat.NewValidationError("send_message", "message content is required")
	}
	if strings.TrimSpace(input.ModelID) == "" {
		input.ModelID = chat.DefaultModelID
	}

	s.locks.Lock(input.ChatID)
	defer s.locks.Unlock(input.ChatID)

	if _, err := s.chats.FindByID(ctx, input.ChatID); err != nil {
		if errors.Is(err, chatrepo.ErrChatNotFound) {
			return nil, chat.NewNotFoundError("send_message", "chat not found", input.ChatID)
		}
		return nil, chat.NewInternalError("send_message", "failed to fetch chat", err)
	}

	// History is everything stored before this turn.
	prior, err := s.messages.FindByChatID(ctx, input.ChatID)
	if err != nil {
		return nil, chat.NewInternalError("send_message", "failed to fetch history", err)
	}

	userMsg := &domain.Message{
		ChatID:  input.ChatID,
		Content: input.Content,
		IsUser:  true,
	}
	if input.AttachmentPath != "" {
		userMsg.AttachmentURL = "/uploads/" + filepath.Base(input.AttachmentPath)
	}
	if _, err := s.messages.Create(ctx, userMsg); err != nil {
		return nil, chat.NewInternalError("send_message", "failed to store message", err)
	}

	chatRecord, err := s.chats.FindByID(ctx, input.ChatID)
	if err != nil {
		return nil, chat.NewInternalError("send_message", "failed to fetch chat", err)
	}

	req := provider.SendRequest{
		Prompt:         input.Content,
		ModelID:        input.ModelID,
		AttachmentPath: input.AttachmentPath,
		History:        s.assembler.RecentHistory(prior),
		ContextSummary: chatRecord.ContextSummary,
		FileIDs:        input.FileIDs,
	}

	result, keyUsed, sendErr := s.dispatch(ctx, input.Provider, req)
	if sendErr != nil {
		s.logger.Error("upstream send failed", "chat_id", input.ChatID, "model", input.ModelID, "error", sendErr)
		return nil, chat.FromProviderError("send_message", sendErr)
	}

	aiMsg := &domain.Message{
		ChatID:   input.ChatID,
		Content:  result.Content,
		IsUser:   false,
		ModelID:  result.ModelID,
		Provider: provider.DisplayName(keyUsed),
	}
	if _, err := s.messages.Create(ctx, aiMsg); err != nil {
		return nil, chat.NewInternalError("send_message", "failed to store response", err)
	}

	if err := s.chats.TouchUpdatedAt(ctx, input.ChatID); err != nil {
		s.logger.Warn("failed to touch chat timestamp", "chat_id", input.ChatID, "error", err)
	}

	s.postprocess(ctx, chatRecord, input, keyUsed, len(prior)+2)

	return &SendMessageResult{UserMessage: userMsg, AIMessage: aiMsg}, nil
}

// EditMessage updates a user message's content in place. When an assistant
// message id is supplied, the response is regenerated from a bounded window
// of context preceding the edit and overwrites that assistant message.
func (s *ConversationService) EditMessage(ctx context.Context, input EditMessageInput) (*EditMessageResult, *chat.ChatError) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, chat.NewValidationError("edit_message", "message content is required")
	}
	if strings.TrimSpace(input.ModelID) == "" {
		input.ModelID = chat.DefaultModelID
	}

	// Callers may address the message directly; resolve the owning chat
	// before taking its lock. Ownership is re-verified under the lock.
	if input.ChatID == 0 {
		m, err := s.messages.FindByID(ctx, input.MessageID)
		if errors.Is(err, messagerepo.ErrMessageNotFound) {
			return nil, chat.NewNotFoundError("edit_message", "message not found", 0)
		}
		if err != nil {
			return nil, chat.NewInternalError("edit_message", "failed to fetch message", err)
		}
		input.ChatID = m.ChatID
	}

	s.locks.Lock(input.ChatID)
	defer s.locks.Unlock(input.ChatID)

	userMsg, err := s.messages.FindByID(ctx, input.MessageID)
	if errors.Is(err, messagerepo.ErrMessageNotFound) {
		return nil, chat.NewNotFoundError("edit_message", "message not found", input.ChatID)
	}
	if err != nil {
		return nil, chat.NewInternalError("edit_message", "failed to fetch message", err)
	}
	if userMsg.ChatID != input.ChatID {
		return nil, chat.NewNotFoundError("edit_message", "message does not belong to chat", input.ChatID)
	}
	if !userMsg.IsUser {
		return nil, chat.NewValidationError("edit_message", "only user messages can be edited")
	}

	userMsg.Content = input.Content
	if err := s.messages.Update(ctx, userMsg); err != nil {
		return nil, chat.NewInternalError("edit_message", "failed to update message", err)
	}

	out := &EditMessageResult{UserMessage: userMsg}
	if input.AIMessageID == 0 {
		return out, nil
	}

	aiMsg, err := s.messages.FindByID(ctx, input.AIMessageID)
	if errors.Is(err, messagerepo.ErrMessageNotFound) {
		return nil, chat.NewNotFoundError("edit_message", "assistant message not found", input.ChatID)
	}
	if err != nil {
		return nil, chat.NewInternalError("edit_message", "failed to fetch assistant message", err)
	}
	if aiMsg.ChatID != input.ChatID || aiMsg.IsUser {
		return nil, chat.NewValidationError("edit_message", "target is not an assistant message in this chat")
	}

	all, err := s.messages.FindByChatID(ctx, input.ChatID)
	if err != nil {
		return nil, chat.NewInternalError("edit_message", "failed to fetch history", err)
	}

	chatRecord, err := s.chats.FindByID(ctx, input.ChatID)
	if err != nil {
		return nil, chat.NewInternalError("edit_message", "failed to fetch chat", err)
	}

	req := provider.SendRequest{
		Prompt:         input.Content,
		ModelID:        input.ModelID,
		History:        s.assembler.EditContext(all, input.MessageID),
		ContextSummary: chatRecord.ContextSummary,
	}

	result, keyUsed, sendErr := s.dispatch(ctx, input.Provider, req)
	if sendErr != nil {
		s.logger.Error("regeneration failed", "chat_id", input.ChatID, "message_id", input.MessageID, "error", sendErr)
		return nil, chat.FromProviderError("edit_message", sendErr)
	}

	aiMsg.Content = result.Content
	aiMsg.ModelID = result.ModelID
	aiMsg.Provider = provider.DisplayName(keyUsed)
	if err := s.messages.Update(ctx, aiMsg); err != nil {
		return nil, chat.NewInternalError("edit_message", "failed to update response", err)
	}

	out.AIMessage = aiMsg
	return out, nil
}

// dispatch forwards to the router under the upstream timeout budget. The
// budget covers the whole call including any internal retry.
func (s *ConversationService) dispatch(ctx context.Context, providerName string, req provider.SendRequest) (provider.SendResult, string, error) {
	sendCtx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()
	return s.router.Send(sendCtx, providerName, req)
}

// postprocess derives a title for young chats and refreshes the rolling
// summary at interval checkpoints. Both are best effort; a failure here
// never fails the send that triggered it.
func (s *ConversationService) postprocess(ctx context.Context, chatRecord *domain.Chat, input SendMessageInput, keyUsed string, messageCount int) {
	if chatRecord.Title == chat.DefaultTitle && messageCount <= s.config.TitleMessageThreshold {
		if title := s.assembler.DeriveTitle(input.Content); title != "" {
			if err := s.chats.UpdateTitle(ctx, chatRecord.ID, title); err != nil {
				s.logger.Warn("failed to update chat title", "chat_id", chatRecord.ID, "error", err)
			}
		}
	}

	if !s.assembler.ShouldSummarize(messageCount) {
		return
	}

	all, err := s.messages.FindByChatID(ctx, chatRecord.ID)
	if err != nil {
		s.logger.Warn("failed to load messages for summary", "chat_id", chatRecord.ID, "error", err)
		return
	}

	req := provider.SendRequest{
		Prompt:  s.assembler.SummaryInput(all, chatRecord.ContextSummary),
		ModelID: input.ModelID,
	}
	result, _, err := s.dispatch(ctx, provider.DisplayName(keyUsed), req)
	if err != nil {
		s.logger.Warn("summary generation failed", "chat_id", chatRecord.ID, "error", err)
		return
	}

	if err := s.chats.UpdateContextSummary(ctx, chatRecord.ID, result.Content); err != nil {
		s.logger.Warn("failed to store summary", "chat_id", chatRecord.ID, "error", err)
		return
	}
	s.logger.Info("context summary refreshed", "chat_id", chatRecord.ID, "message_count", messageCount)
}
