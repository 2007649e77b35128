package telegram

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"alita-assistant/internal/engine"
)

// renderTurns displays engine output. A turn whose message was already
// sent (a resolved or errored card) is edited in place; everything else is
// sent as a new message.
func (b *Bot) renderTurns(chatID int64, cs *chatState, turns []*engine.Turn) {
	for _, t := range turns {
		if msgID, ok := cs.msgIDs[t.ID]; ok {
			b.editTurn(chatID, msgID, t)
			continue
		}
		b.sendTurn(chatID, cs, t)
	}
}

func (b *Bot) sendTurn(chatID int64, cs *chatState, t *engine.Turn) {
	text, keyboard := turnMessage(t)
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	sent, err := b.s.Send(msg)
	if err != nil {
		log.Printf("failed to send turn %s: %v", t.ID, err)
		return
	}
	if editable(t.Kind) {
		cs.msgIDs[t.ID] = sent.MessageID
	}
	b.record(chatID, string(t.Role), string(t.Kind), t.Text)
}

func (b *Bot) editTurn(chatID int64, msgID int, t *engine.Turn) {
	text, keyboard := turnMessage(t)
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	if keyboard != nil {
		edit.ReplyMarkup = keyboard
	}
	if _, err := b.s.Send(edit); err != nil {
		log.Printf("failed to update turn %s: %v", t.ID, err)
	}
}

// editable reports whether a turn can be updated after sending and thus
// needs its message ID remembered.
func editable(kind engine.Kind) bool {
	switch kind {
	case engine.KindVoidCard, engine.KindCreatorCard, engine.KindStoreList:
		return true
	}
	return false
}

func turnMessage(t *engine.Turn) (string, *tgbotapi.InlineKeyboardMarkup) {
	switch t.Kind {
	case engine.KindProducts:
		return productListText(t), nil
	case engine.KindVoidCard:
		return voidCardMessage(t)
	case engine.KindStoreList:
		return storeListMessage(t)
	case engine.KindCreatorCard:
		return creatorCardMessage(t)
	default:
		return t.Text, chipKeyboard(t.Chips)
	}
}

func chipKeyboard(chips []string) *tgbotapi.InlineKeyboardMarkup {
	if len(chips) == 0 {
		return nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, chip := range chips {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(chip, chipPrefix+chip),
		))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func productListText(t *engine.Turn) string {
	var bld strings.Builder
	bld.WriteString(t.Text)
	for _, p := range t.Products {
		bld.WriteString("\n\n")
		brand := p.Brand
		if brand == "" {
			brand = "—"
		}
		bld.WriteString(fmt.Sprintf("%s %s (%s)\n", strings.ToUpper(brand), p.Tipe, p.Ukuran))
		if p.Pricelist > 0 && p.Pricelist > p.EndUserPrice {
			pct := (p.Pricelist - p.EndUserPrice) * 100 / p.Pricelist
			bld.WriteString(fmt.Sprintf("%s (-%d%% dari %s)", formatIDR(p.EndUserPrice), pct, formatIDR(p.Pricelist)))
		} else {
			bld.WriteString(formatIDR(p.EndUserPrice))
		}
	}
	return bld.String()
}

func voidCardMessage(t *engine.Turn) (string, *tgbotapi.InlineKeyboardMarkup) {
	o := t.Order
	if t.Resolved {
		return "✅ Transaksi Selesai\nPesanan berhasil di-void.", nil
	}
	var bld strings.Builder
	bld.WriteString(t.Text)
	bld.WriteString("\n\nKonfirmasi Pembatalan")
	bld.WriteString(fmt.Sprintf("\nCustomer: %s", o.CustomerName))
	bld.WriteString(fmt.Sprintf("\nNo SP: %s", o.NoSP))
	bld.WriteString(fmt.Sprintf("\nTotal: %s", formatIDR(o.ExtendedAmount)))
	bld.WriteString(fmt.Sprintf("\nStatus: %s", o.Status))
	if t.Canceled {
		bld.WriteString("\n\nDibatalkan.")
		return bld.String(), nil
	}
	if t.Err != "" {
		bld.WriteString(fmt.Sprintf("\n\n⚠️ %s", t.Err))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Batalkan Pesanan", confirmPrefix+t.ID),
			tgbotapi.NewInlineKeyboardButtonData("Jangan", cancelPrefix+t.ID),
		),
	)
	return bld.String(), &kb
}

func storeListMessage(t *engine.Turn) (string, *tgbotapi.InlineKeyboardMarkup) {
	text := fmt.Sprintf("%s\nPilih toko tujuan untuk SP %s:", t.Text, t.NoSP)
	if t.Resolved || t.Canceled {
		return text, nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, store := range t.Stores {
		label := fmt.Sprintf("[%s] %s", store.Category, store.Name)
		data := storePrefix + t.ID + ":" + strconv.FormatInt(store.ID, 10)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, data),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Batal", cancelPrefix+t.ID),
	))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return text, &kb
}

func creatorCardMessage(t *engine.Turn) (string, *tgbotapi.InlineKeyboardMarkup) {
	if t.Resolved {
		return fmt.Sprintf("✅ Berhasil diganti oleh %s", t.NewUser.Name), nil
	}
	var bld strings.Builder
	bld.WriteString(t.Text)
	bld.WriteString("\n\nKonfirmasi Ganti Sales")
	bld.WriteString(fmt.Sprintf("\nSP: %s", t.NoSP))
	bld.WriteString(fmt.Sprintf("\nFrom: %s", t.FromCreatorName))
	bld.WriteString(fmt.Sprintf("\nTo: %s (%s)", t.NewUser.Name, t.NewUser.Email))
	if t.Canceled {
		bld.WriteString("\n\nDibatalkan.")
		return bld.String(), nil
	}
	if t.Err != "" {
		bld.WriteString(fmt.Sprintf("\n\n⚠️ %s", t.Err))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("YA, GANTI", confirmPrefix+t.ID),
			tgbotapi.NewInlineKeyboardButtonData("Jangan", cancelPrefix+t.ID),
		),
	)
	return bld.String(), &kb
}

// formatIDR renders an amount the Indonesian way: "Rp 1.000.000".
func formatIDR(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	return "Rp " + sign + strings.Join(groups, ".")
}
