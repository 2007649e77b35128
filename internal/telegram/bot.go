package telegram

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"alita-assistant/internal/auth"
	"alita-assistant/internal/engine"
	"alita-assistant/internal/transcript"
)

// Callback-data prefixes. Telegram limits callback data to 64 bytes, so
// actions reference turns by their UUID and nothing more.
const (
	chipPrefix    = "chip:"
	confirmPrefix = "ok:"
	cancelPrefix  = "no:"
	storePrefix   = "store:"
	approvePrefix = "approve:"
	denyPrefix    = "deny:"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type botAPISender struct{ api *tgbotapi.BotAPI }

func (s botAPISender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return s.api.Send(c)
}

// MaintenanceFunc runs the approver-name repair on demand (/fixnames).
type MaintenanceFunc func(ctx context.Context) (string, error)

// Bot hosts conversation sessions over Telegram: it renders engine turns
// as messages and inline keyboards, and feeds messages, chip clicks and
// button presses back as engine events.
type Bot struct {
	api         *tgbotapi.BotAPI
	s           sender
	eng         *engine.Engine
	authSvc     *auth.Service
	adminUserID int64
	pending     map[int64]auth.User
	pendingRepo auth.Repository
	recorder    transcript.Recorder
	fixNames    MaintenanceFunc

	mu    sync.Mutex
	chats map[int64]*chatState
}

// chatState is one Telegram chat: its engine session plus the message IDs
// of turns that can be updated in place (cards and store lists).
type chatState struct {
	sess   *engine.Session
	msgIDs map[string]int
}

func New(
	botToken string,
	eng *engine.Engine,
	authSvc *auth.Service,
	adminUserID int64,
	pendingRepo auth.Repository,
	recorder transcript.Recorder,
	fixNames MaintenanceFunc,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	b := &Bot{
		api:         api,
		s:           botAPISender{api: api},
		eng:         eng,
		authSvc:     authSvc,
		adminUserID: adminUserID,
		pending:     make(map[int64]auth.User),
		pendingRepo: pendingRepo,
		recorder:    recorder,
		fixNames:    fixNames,
		chats:       make(map[int64]*chatState),
	}
	if pendingRepo != nil {
		if users, err := pendingRepo.LoadAll(); err == nil {
			for _, u := range users {
				b.pending[u.ID] = u
			}
		}
	}
	return b, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message != nil {
			b.handleIncomingMessage(ctx, update.Message)
			continue
		}
		if update.CallbackQuery != nil {
			b.handleCallback(ctx, update.CallbackQuery)
			continue
		}
	}
}

// chatFor returns the state for a chat, creating the session on first
// contact. The caller must hold no session lock.
func (b *Bot) chatFor(chatID int64) (*chatState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cs, ok := b.chats[chatID]
	if ok {
		return cs, false
	}
	cs = &chatState{sess: engine.NewSession(), msgIDs: make(map[string]int)}
	b.chats[chatID] = cs
	return cs, true
}

// resetChat drops the session so /start begins a fresh conversation.
func (b *Bot) resetChat(chatID int64) *chatState {
	b.mu.Lock()
	defer b.mu.Unlock()
	cs := &chatState{sess: engine.NewSession(), msgIDs: make(map[string]int)}
	b.chats[chatID] = cs
	return cs
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !b.authSvc.IsAllowed(msg.From.ID) {
		b.handleUnauthorized(msg)
		return
	}
	log.Printf("incoming message from %d (@%s): %q", msg.From.ID, msg.From.UserName, msg.Text)

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	cs, created := b.chatFor(msg.Chat.ID)
	cs.sess.Lock()
	var turns []*engine.Turn
	if created {
		turns = append(turns, b.eng.Greeting(cs.sess))
	}
	b.record(msg.Chat.ID, string(engine.RoleUser), string(engine.KindText), msg.Text)
	turns = append(turns, b.eng.Handle(ctx, cs.sess, engine.TextEvent{Text: msg.Text})...)
	cs.sess.Unlock()

	b.renderTurns(msg.Chat.ID, cs, turns)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		cs := b.resetChat(msg.Chat.ID)
		cs.sess.Lock()
		greeting := b.eng.Greeting(cs.sess)
		cs.sess.Unlock()
		b.renderTurns(msg.Chat.ID, cs, []*engine.Turn{greeting})
		return
	case "fixnames":
		if msg.From.ID != b.adminUserID {
			b.sendMessage(msg.Chat.ID, "Perintah ini hanya untuk admin.")
			return
		}
		if b.fixNames == nil {
			b.sendMessage(msg.Chat.ID, "Perbaikan nama approver tidak dikonfigurasi.")
			return
		}
		summary, err := b.fixNames(ctx)
		if err != nil {
			log.Printf("fixnames failed: %v", err)
			b.sendMessage(msg.Chat.ID, "Perbaikan nama approver gagal. Cek log server.")
			return
		}
		b.sendMessage(msg.Chat.ID, summary)
		return
	}

	if msg.From.ID != b.adminUserID {
		b.sendMessage(msg.Chat.ID, "Perintah ini hanya untuk admin.")
		return
	}
	switch msg.Command() {
	case "allowlist":
		var bld strings.Builder
		bld.WriteString("Allowlist:\n")
		for _, u := range b.authSvc.List() {
			bld.WriteString(fmt.Sprintf("- id=%d, @%s %s %s\n", u.ID, u.Username, u.FirstName, u.LastName))
		}
		b.sendMessage(msg.Chat.ID, bld.String())
	case "pending":
		var bld strings.Builder
		bld.WriteString("Menunggu persetujuan:\n")
		for _, u := range b.pending {
			bld.WriteString(fmt.Sprintf("- id=%d, @%s %s %s\n", u.ID, u.Username, u.FirstName, u.LastName))
		}
		b.sendMessage(msg.Chat.ID, bld.String())
	case "remove":
		uid, err := singleIDArg(msg.CommandArguments())
		if err != nil {
			b.sendMessage(msg.Chat.ID, "Usage: /remove <user_id>")
			return
		}
		if err := b.authSvc.Remove(uid); err != nil {
			b.sendMessage(msg.Chat.ID, fmt.Sprintf("Gagal menghapus: %v", err))
			return
		}
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Pengguna %d dihapus dari allowlist.", uid))
	case "approve":
		uid, err := singleIDArg(msg.CommandArguments())
		if err != nil {
			b.sendMessage(msg.Chat.ID, "Usage: /approve <user_id>")
			return
		}
		b.approveUser(uid)
	case "deny":
		uid, err := singleIDArg(msg.CommandArguments())
		if err != nil {
			b.sendMessage(msg.Chat.ID, "Usage: /deny <user_id>")
			return
		}
		b.denyUser(uid)
	}
}

func singleIDArg(args string) (int64, error) {
	fields := strings.Fields(args)
	if len(fields) != 1 {
		return 0, fmt.Errorf("expected one argument")
	}
	return strconv.ParseInt(fields[0], 10, 64)
}

func (b *Bot) handleUnauthorized(msg *tgbotapi.Message) {
	log.Printf("unauthorized access attempt by user ID: %d, username: @%s", msg.From.ID, msg.From.UserName)
	if _, ok := b.pending[msg.From.ID]; ok {
		b.sendMessage(msg.Chat.ID, "Permintaan akses Anda masih menunggu persetujuan admin.")
		return
	}
	u := auth.User{ID: msg.From.ID, Username: msg.From.UserName, FirstName: msg.From.FirstName, LastName: msg.From.LastName}
	b.pending[msg.From.ID] = u
	if b.pendingRepo != nil {
		_ = b.pendingRepo.Upsert(u)
	}
	b.sendMessage(msg.Chat.ID, "Permintaan akses sudah dikirim ke admin. Saya kabari begitu disetujui.")
	b.notifyAdminRequest(msg.From.ID, msg.From.UserName)
}

func (b *Bot) notifyAdminRequest(userID int64, username string) {
	if b.adminUserID == 0 {
		return
	}
	text := fmt.Sprintf("@%s (id %d) minta akses ke asisten", username, userID)
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Izinkan", approvePrefix+strconv.FormatInt(userID, 10)),
			tgbotapi.NewInlineKeyboardButtonData("Tolak", denyPrefix+strconv.FormatInt(userID, 10)),
		),
	)
	out := tgbotapi.NewMessage(b.adminUserID, text)
	out.ReplyMarkup = kb
	_, _ = b.s.Send(out)
}

func (b *Bot) approveUser(userID int64) {
	u, ok := b.pending[userID]
	if !ok {
		u = auth.User{ID: userID}
	}
	if err := b.authSvc.Upsert(u); err != nil {
		log.Printf("approve %d: %v", userID, err)
	}
	delete(b.pending, userID)
	if b.pendingRepo != nil {
		_ = b.pendingRepo.Remove(userID)
	}
	b.sendMessage(userID, "Akses disetujui. Ketik /start untuk mulai.")
	if b.adminUserID != 0 {
		b.sendMessage(b.adminUserID, fmt.Sprintf("Pengguna %d ditambahkan ke allowlist.", userID))
	}
}

func (b *Bot) denyUser(userID int64) {
	delete(b.pending, userID)
	if b.pendingRepo != nil {
		_ = b.pendingRepo.Remove(userID)
	}
	b.sendMessage(userID, "Maaf, permintaan akses Anda ditolak.")
	if b.adminUserID != 0 {
		b.sendMessage(b.adminUserID, fmt.Sprintf("Permintaan pengguna %d ditolak.", userID))
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	switch {
	case strings.HasPrefix(data, approvePrefix):
		if cb.From.ID != b.adminUserID {
			return
		}
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, approvePrefix), 10, 64)
		b.approveUser(id)
		return
	case strings.HasPrefix(data, denyPrefix):
		if cb.From.ID != b.adminUserID {
			return
		}
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, denyPrefix), 10, 64)
		b.denyUser(id)
		return
	}

	if !b.authSvc.IsAllowed(cb.From.ID) || cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	var ev engine.Event
	switch {
	case strings.HasPrefix(data, chipPrefix):
		label := strings.TrimPrefix(data, chipPrefix)
		b.record(chatID, string(engine.RoleUser), string(engine.KindText), label)
		ev = engine.ChipEvent{Label: label}
	case strings.HasPrefix(data, confirmPrefix):
		ev = engine.ConfirmEvent{TurnID: strings.TrimPrefix(data, confirmPrefix)}
	case strings.HasPrefix(data, cancelPrefix):
		ev = engine.CancelEvent{TurnID: strings.TrimPrefix(data, cancelPrefix)}
	case strings.HasPrefix(data, storePrefix):
		rest := strings.TrimPrefix(data, storePrefix)
		sep := strings.LastIndex(rest, ":")
		if sep < 0 {
			return
		}
		storeID, err := strconv.ParseInt(rest[sep+1:], 10, 64)
		if err != nil {
			return
		}
		ev = engine.StoreSelectEvent{TurnID: rest[:sep], StoreID: storeID}
	default:
		return
	}

	cs, _ := b.chatFor(chatID)
	cs.sess.Lock()
	turns := b.eng.Handle(ctx, cs.sess, ev)
	cs.sess.Unlock()

	b.renderTurns(chatID, cs, turns)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func (b *Bot) record(chatID int64, role, kind, text string) {
	if b.recorder == nil {
		return
	}
	ev := transcript.Event{
		Timestamp: time.Now().UTC(),
		ChatID:    chatID,
		Role:      role,
		Kind:      kind,
		Text:      text,
	}
	if err := b.recorder.Append(ev); err != nil {
		log.Printf("failed to record transcript event: %v", err)
	}
}
