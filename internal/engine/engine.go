package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"alita-assistant/internal/gateway"
)

// Conversation messages, verbatim from the production assistant.
const (
	msgGreeting = "Halo! Saya Alita. Saya bisa bantu cari harga produk, void pesanan, mutasi toko, atau ganti sales. Ada yang bisa saya bantu?"

	msgAskSP        = "Sebutkan nomor SP-nya."
	msgAskSPSales   = "Sebutkan nomor SP yang mau diganti sales-nya."
	msgSPNotFound   = "Nomor SP tidak ditemukan. Mohon cek kembali."
	msgEmailMissing = "Email tidak ditemukan di database user. Coba cek lagi."

	msgGenericError = "Terjadi kesalahan. Silakan coba lagi."
	msgSessionEnded = "Sesi telah berakhir. Silakan login kembali."

	msgVoidConfirm = "Data ditemukan. Konfirmasi pembatalan?"
	msgVoidDone    = "Selesai! Pesanan berhasil di-void."
	msgVoidFailed  = "Gagal membatalkan pesanan. Silakan coba lagi."
	msgVoidSkipped = "Baik, tidak jadi dibatalkan. Ada nomor SP lain yang perlu dibantu?"

	msgMoveFailed   = "Gagal memindah SP. Silakan coba lagi."
	msgMoveCanceled = "Baik, mutasi toko dibatalkan."

	msgSalesConfirm  = "Konfirmasi perpindahan sales:"
	msgSalesFailed   = "Gagal mengganti sales. Silakan coba lagi."
	msgSalesCanceled = "Baik, tidak jadi ganti sales."

	msgDiscarded = "Oke, permintaan sebelumnya saya batalkan dulu."
)

var greetingChips = []string{"Cari Kasur", "Void SP", "Mutasi Toko", "Ganti Sales", "Lihat Katalog"}

// Engine drives conversation sessions: it classifies idle-state input,
// performs at most one gateway call per transition, and emits the turns
// the renderer should display. Transition logic never lets a gateway
// failure escape; every error path either reprompts in place or resets the
// session to idle.
type Engine struct {
	gw gateway.Gateway
	// accessToken authorizes remote void calls. Empty means the operator
	// session has expired; void confirmations then fail locally without a
	// remote call.
	accessToken string
}

func New(gw gateway.Gateway, accessToken string) *Engine {
	return &Engine{gw: gw, accessToken: accessToken}
}

// Greeting opens a session with the assistant's hello turn.
func (e *Engine) Greeting(s *Session) *Turn {
	return s.append(assistantText(msgGreeting, greetingChips...))
}

// Handle processes one input event and returns the assistant turns it
// produced, already appended to the session transcript. A returned turn
// whose ID the renderer has seen before is an in-place card update.
func (e *Engine) Handle(ctx context.Context, s *Session, ev Event) []*Turn {
	switch ev := ev.(type) {
	case TextEvent:
		return e.handleText(ctx, s, ev.Text)
	case ChipEvent:
		return e.handleText(ctx, s, ev.Label)
	case StoreSelectEvent:
		return e.handleStoreSelect(ctx, s, ev)
	case ConfirmEvent:
		return e.handleConfirm(ctx, s, ev)
	case CancelEvent:
		return e.handleCancel(s, ev)
	default:
		return nil
	}
}

func (e *Engine) handleText(ctx context.Context, s *Session, text string) []*Turn {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return nil
	}
	user := newTurn(RoleUser, KindText, raw)
	s.append(user)

	switch s.state {
	case StateAwaitVoidSP:
		return e.lookupVoidOrder(ctx, s, raw)
	case StateAwaitMutasiSP:
		return e.lookupMutasiOrder(ctx, s, raw)
	case StateAwaitStoreName:
		return e.lookupStores(ctx, s, raw)
	case StateAwaitSalesSP:
		return e.lookupCreator(ctx, s, raw)
	case StateAwaitNewEmail:
		return e.lookupNewSales(ctx, s, raw)
	default:
		return e.dispatchIntent(ctx, s, ParseIntent(raw))
	}
}

// dispatchIntent handles idle-state input. Starting a new workflow while a
// previous one still has pending data discards that data with a short
// notice; unresolved confirmation cards stay actionable because they carry
// their own payload.
func (e *Engine) dispatchIntent(ctx context.Context, s *Session, intent Intent) []*Turn {
	var out []*Turn
	if intent.Type != IntentProduct && s.hasPending() {
		s.clearPending()
		out = append(out, s.append(assistantText(msgDiscarded)))
	}

	switch intent.Type {
	case IntentVoid:
		s.state = StateAwaitVoidSP
		return append(out, s.append(assistantText(msgAskSP)))
	case IntentMutasi:
		s.state = StateAwaitMutasiSP
		return append(out, s.append(assistantText(msgAskSP)))
	case IntentGantiSales:
		s.state = StateAwaitSalesSP
		return append(out, s.append(assistantText(msgAskSPSales)))
	default:
		return append(out, e.searchProducts(ctx, s, intent.Keyword)...)
	}
}

func (e *Engine) searchProducts(ctx context.Context, s *Session, keyword string) []*Turn {
	page, err := e.gw.SearchProducts(ctx, keyword, 1)
	if err != nil {
		return e.failInfra(s, "search products", err)
	}
	if len(page.Products) == 0 {
		text := fmt.Sprintf("Saya tidak menemukan produk dengan kata kunci '%s'. Coba kata lain ya.", keyword)
		return []*Turn{s.append(assistantText(text, "Cari Kasur", "Lihat Katalog"))}
	}
	t := newTurn(RoleAssistant, KindProducts, fmt.Sprintf("Ditemukan %d produk:", len(page.Products)))
	t.Products = page.Products
	return []*Turn{s.append(t)}
}

func (e *Engine) lookupVoidOrder(ctx context.Context, s *Session, raw string) []*Turn {
	order, err := e.gw.FindOrder(ctx, raw)
	if errors.Is(err, gateway.ErrNotFound) {
		return []*Turn{s.append(assistantText(msgSPNotFound))}
	}
	if err != nil {
		return e.failInfra(s, "find order", err)
	}
	s.state = StateIdle
	t := newTurn(RoleAssistant, KindVoidCard, msgVoidConfirm)
	t.Order = &order
	return []*Turn{s.append(t)}
}

func (e *Engine) lookupMutasiOrder(ctx context.Context, s *Session, raw string) []*Turn {
	order, err := e.gw.FindOrder(ctx, raw)
	if errors.Is(err, gateway.ErrNotFound) {
		return []*Turn{s.append(assistantText(msgSPNotFound))}
	}
	if err != nil {
		return e.failInfra(s, "find order", err)
	}
	s.pendingMutasiSP = order.NoSP
	s.state = StateAwaitStoreName
	text := fmt.Sprintf("Siap. SP %s mau dipindah ke toko apa? Ketik nama tokonya.", order.NoSP)
	return []*Turn{s.append(assistantText(text))}
}

func (e *Engine) lookupStores(ctx context.Context, s *Session, raw string) []*Turn {
	stores, err := e.gw.SearchStores(ctx, raw)
	if err != nil {
		return e.failInfra(s, "search stores", err)
	}
	if len(stores) == 0 {
		text := fmt.Sprintf("Tidak ada toko ditemukan untuk \"%s\". Coba kata kunci lain.", raw)
		return []*Turn{s.append(assistantText(text))}
	}
	t := newTurn(RoleAssistant, KindStoreList, fmt.Sprintf("Ditemukan %d toko:", len(stores)))
	t.Stores = stores
	t.NoSP = s.pendingMutasiSP
	return []*Turn{s.append(t)}
}

func (e *Engine) lookupCreator(ctx context.Context, s *Session, raw string) []*Turn {
	oc, err := e.gw.GetOrderCreator(ctx, raw)
	if errors.Is(err, gateway.ErrNotFound) {
		return []*Turn{s.append(assistantText(msgSPNotFound))}
	}
	if err != nil {
		return e.failInfra(s, "find order creator", err)
	}
	s.pendingSales = &oc
	s.state = StateAwaitNewEmail
	text := fmt.Sprintf("SP %s saat ini dipegang oleh %s. Masukkan Email Sales Baru penggantinya.", oc.NoSP, oc.CreatorName)
	return []*Turn{s.append(assistantText(text))}
}

func (e *Engine) lookupNewSales(ctx context.Context, s *Session, raw string) []*Turn {
	newUser, err := e.gw.SearchUsers(ctx, raw)
	if errors.Is(err, gateway.ErrNotFound) {
		return []*Turn{s.append(assistantText(msgEmailMissing))}
	}
	if err != nil {
		return e.failInfra(s, "find user", err)
	}
	pending := s.pendingSales
	s.state = StateIdle
	t := newTurn(RoleAssistant, KindCreatorCard, msgSalesConfirm)
	t.NoSP = pending.NoSP
	t.FromCreatorName = pending.CreatorName
	t.NewUser = &newUser
	return []*Turn{s.append(t)}
}

func (e *Engine) handleStoreSelect(ctx context.Context, s *Session, ev StoreSelectEvent) []*Turn {
	t, ok := s.Turn(ev.TurnID)
	if !ok || t.Kind != KindStoreList || t.Resolved {
		return nil
	}
	var store *gateway.Store
	for i := range t.Stores {
		if t.Stores[i].ID == ev.StoreID {
			store = &t.Stores[i]
			break
		}
	}
	if store == nil {
		return nil
	}
	if !s.beginAction(t.ID) {
		return nil
	}
	defer s.endAction(t.ID)

	err := e.gw.MoveOrderStore(ctx, t.NoSP, store.ID)
	if err != nil {
		// Mutation failures keep the selection intact for retry.
		var mErr *gateway.MutationError
		if errors.As(err, &mErr) {
			return []*Turn{s.append(assistantText(mErr.Reason))}
		}
		log.Printf("move order store failed: %v", err)
		return []*Turn{s.append(assistantText(msgMoveFailed))}
	}

	t.Resolved = true
	s.clearPending()
	s.state = StateIdle
	text := fmt.Sprintf("Berhasil! SP %s sudah dipindah ke %s.", t.NoSP, store.Name)
	return []*Turn{t, s.append(outcome(text))}
}

func (e *Engine) handleConfirm(ctx context.Context, s *Session, ev ConfirmEvent) []*Turn {
	t, ok := s.Turn(ev.TurnID)
	if !ok || t.Resolved || t.Canceled {
		return nil
	}
	switch t.Kind {
	case KindVoidCard:
		return e.confirmVoid(ctx, s, t)
	case KindCreatorCard:
		return e.confirmCreator(ctx, s, t)
	default:
		return nil
	}
}

func (e *Engine) confirmVoid(ctx context.Context, s *Session, t *Turn) []*Turn {
	if e.accessToken == "" {
		// Precondition: no remote call without a token.
		t.Err = msgSessionEnded
		return []*Turn{t}
	}
	if !s.beginAction(t.ID) {
		return nil
	}
	defer s.endAction(t.ID)

	err := e.gw.VoidOrder(ctx, t.Order.ID, e.accessToken)
	if err != nil {
		var mErr *gateway.MutationError
		if errors.As(err, &mErr) {
			t.Err = mErr.Reason
		} else {
			log.Printf("void order %d failed: %v", t.Order.ID, err)
			t.Err = msgVoidFailed
		}
		// Card stays actionable for retry.
		return []*Turn{t}
	}

	t.Resolved = true
	t.Err = ""
	return []*Turn{t, s.append(outcome(msgVoidDone))}
}

func (e *Engine) confirmCreator(ctx context.Context, s *Session, t *Turn) []*Turn {
	if !s.beginAction(t.ID) {
		return nil
	}
	defer s.endAction(t.ID)

	err := e.gw.ReassignCreator(ctx, t.NoSP, t.NewUser.ID, t.NewUser.Name)
	if err != nil {
		// Pending data is kept: the second of the two dependent writes may
		// have failed after the first landed, and the user must see that
		// as a failure and be able to retry.
		var mErr *gateway.MutationError
		if errors.As(err, &mErr) {
			return []*Turn{s.append(assistantText(mErr.Reason))}
		}
		log.Printf("reassign creator for SP %s failed: %v", t.NoSP, err)
		return []*Turn{s.append(assistantText(msgSalesFailed))}
	}

	t.Resolved = true
	s.clearPending()
	s.state = StateIdle
	text := fmt.Sprintf("Selesai! SP %s sekarang milik %s.", t.NoSP, t.NewUser.Name)
	return []*Turn{t, s.append(outcome(text))}
}

// handleCancel abandons the workflow behind a card or store list: pending
// data is dropped and the session returns to idle.
func (e *Engine) handleCancel(s *Session, ev CancelEvent) []*Turn {
	t, ok := s.Turn(ev.TurnID)
	if !ok || t.Resolved || t.Canceled {
		return nil
	}
	var text string
	switch t.Kind {
	case KindVoidCard:
		text = msgVoidSkipped
	case KindStoreList:
		text = msgMoveCanceled
	case KindCreatorCard:
		text = msgSalesCanceled
	default:
		return nil
	}
	t.Canceled = true
	s.clearPending()
	s.state = StateIdle
	return []*Turn{t, s.append(assistantText(text))}
}

// failInfra aborts the current workflow: state and pending data are
// cleared and the user gets one generic retry message. The technical
// detail goes to the log only.
func (e *Engine) failInfra(s *Session, op string, err error) []*Turn {
	log.Printf("gateway failure during %s: %v", op, err)
	s.clearPending()
	s.state = StateIdle
	return []*Turn{s.append(assistantText(msgGenericError, "Cari Kasur", "Void SP"))}
}
