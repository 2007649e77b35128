package telegram

import (
	"strings"
	"testing"

	"alita-assistant/internal/engine"
	"alita-assistant/internal/gateway"
)

func TestFormatIDR(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "Rp 0"},
		{500, "Rp 500"},
		{1000, "Rp 1.000"},
		{1000000, "Rp 1.000.000"},
		{123456789, "Rp 123.456.789"},
		{-2500, "Rp -2.500"},
	}
	for _, tc := range cases {
		if got := formatIDR(tc.in); got != tc.want {
			t.Errorf("formatIDR(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestChipKeyboard(t *testing.T) {
	kb := chipKeyboard([]string{"Cari Kasur", "Void SP"})
	if kb == nil || len(kb.InlineKeyboard) != 2 {
		t.Fatalf("keyboard = %+v", kb)
	}
	btn := kb.InlineKeyboard[0][0]
	if btn.Text != "Cari Kasur" || *btn.CallbackData != "chip:Cari Kasur" {
		t.Fatalf("button = %+v", btn)
	}
	if chipKeyboard(nil) != nil {
		t.Fatal("empty chip list should have no keyboard")
	}
}

func TestVoidCardMessage(t *testing.T) {
	card := &engine.Turn{
		ID:   "t1",
		Kind: engine.KindVoidCard,
		Text: "Data ditemukan. Konfirmasi pembatalan?",
		Order: &gateway.Order{
			ID: 1, NoSP: "SP12345", CustomerName: "Budi", ExtendedAmount: 1000000, Status: "open",
		},
	}

	text, kb := voidCardMessage(card)
	for _, want := range []string{"Customer: Budi", "No SP: SP12345", "Total: Rp 1.000.000", "Status: open"} {
		if !strings.Contains(text, want) {
			t.Fatalf("card text %q missing %q", text, want)
		}
	}
	if kb == nil || len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 2 {
		t.Fatalf("keyboard = %+v", kb)
	}
	if *kb.InlineKeyboard[0][0].CallbackData != "ok:t1" || *kb.InlineKeyboard[0][1].CallbackData != "no:t1" {
		t.Fatalf("callback data = %+v", kb.InlineKeyboard[0])
	}

	card.Err = "Order sudah final."
	text, kb = voidCardMessage(card)
	if !strings.Contains(text, "⚠️ Order sudah final.") {
		t.Fatalf("error missing from card: %q", text)
	}
	if kb == nil {
		t.Fatal("errored card must keep its buttons")
	}

	card.Err = ""
	card.Resolved = true
	text, kb = voidCardMessage(card)
	if !strings.Contains(text, "berhasil di-void") || kb != nil {
		t.Fatalf("resolved card: text=%q kb=%+v", text, kb)
	}

	card.Resolved = false
	card.Canceled = true
	text, kb = voidCardMessage(card)
	if !strings.Contains(text, "Dibatalkan.") || kb != nil {
		t.Fatalf("canceled card: text=%q kb=%+v", text, kb)
	}
}

func TestStoreListMessage(t *testing.T) {
	list := &engine.Turn{
		ID:   "t2",
		Kind: engine.KindStoreList,
		Text: "Ditemukan 2 toko:",
		NoSP: "SP999",
		Stores: []gateway.Store{
			{ID: 7, Name: "Toko Jakarta", Category: "SO"},
			{ID: 8, Name: "Toko Bandung", Category: "DS"},
		},
	}

	text, kb := storeListMessage(list)
	if !strings.Contains(text, "SP999") {
		t.Fatalf("reference missing: %q", text)
	}
	if kb == nil || len(kb.InlineKeyboard) != 3 {
		t.Fatalf("keyboard = %+v", kb)
	}
	if kb.InlineKeyboard[0][0].Text != "[SO] Toko Jakarta" {
		t.Fatalf("label = %q", kb.InlineKeyboard[0][0].Text)
	}
	if *kb.InlineKeyboard[0][0].CallbackData != "store:t2:7" {
		t.Fatalf("callback data = %q", *kb.InlineKeyboard[0][0].CallbackData)
	}
	if *kb.InlineKeyboard[2][0].CallbackData != "no:t2" {
		t.Fatalf("cancel row = %+v", kb.InlineKeyboard[2])
	}

	list.Resolved = true
	if _, kb = storeListMessage(list); kb != nil {
		t.Fatal("resolved list must drop its buttons")
	}
}

func TestCreatorCardMessage(t *testing.T) {
	card := &engine.Turn{
		ID:              "t3",
		Kind:            engine.KindCreatorCard,
		Text:            "Konfirmasi perpindahan sales:",
		NoSP:            "SP55",
		FromCreatorName: "Siti",
		NewUser:         &gateway.User{ID: 20, Name: "Andi", Email: "andi@massindo.com"},
	}

	text, kb := creatorCardMessage(card)
	for _, want := range []string{"SP: SP55", "From: Siti", "To: Andi (andi@massindo.com)"} {
		if !strings.Contains(text, want) {
			t.Fatalf("card text %q missing %q", text, want)
		}
	}
	if *kb.InlineKeyboard[0][0].CallbackData != "ok:t3" {
		t.Fatalf("confirm data = %q", *kb.InlineKeyboard[0][0].CallbackData)
	}

	card.Resolved = true
	text, kb = creatorCardMessage(card)
	if text != "✅ Berhasil diganti oleh Andi" || kb != nil {
		t.Fatalf("resolved card: text=%q kb=%+v", text, kb)
	}
}

func TestProductListText(t *testing.T) {
	turn := &engine.Turn{
		Kind: engine.KindProducts,
		Text: "Ditemukan 2 produk:",
		Products: []gateway.Product{
			{Brand: "Comforta", Tipe: "Luxury Dream", Ukuran: "160x200", Pricelist: 10000000, EndUserPrice: 7500000},
			{Brand: "", Tipe: "Polos", Ukuran: "90x200", EndUserPrice: 500000},
		},
	}
	got := productListText(turn)
	if !strings.Contains(got, "COMFORTA Luxury Dream (160x200)") {
		t.Fatalf("brand line missing: %q", got)
	}
	if !strings.Contains(got, "Rp 7.500.000 (-25% dari Rp 10.000.000)") {
		t.Fatalf("discount line missing: %q", got)
	}
	if !strings.Contains(got, "— Polos (90x200)") {
		t.Fatalf("placeholder brand missing: %q", got)
	}
}

func TestEditable(t *testing.T) {
	for _, kind := range []engine.Kind{engine.KindVoidCard, engine.KindCreatorCard, engine.KindStoreList} {
		if !editable(kind) {
			t.Errorf("editable(%s) = false", kind)
		}
	}
	for _, kind := range []engine.Kind{engine.KindText, engine.KindProducts, engine.KindOutcome} {
		if editable(kind) {
			t.Errorf("editable(%s) = true", kind)
		}
	}
}
