package engine

import "testing"

func TestParseIntent_Vocabulary(t *testing.T) {
	cases := []struct {
		in   string
		want IntentType
	}{
		{"void SP12345", IntentVoid},
		{"tolong batalkan pesanan", IntentVoid},
		{"CANCEL", IntentVoid},
		{"hapus sp kemarin", IntentVoid},
		{"mutasi toko", IntentMutasi},
		{"mau pindah toko", IntentMutasi},
		{"ganti cabang dong", IntentMutasi},
		{"ganti toko", IntentMutasi},
		{"ganti sales", IntentGantiSales},
		{"ubah sales SP123", IntentGantiSales},
		{"revisi user", IntentGantiSales},
		{"kasur busa", IntentProduct},
	}
	for _, c := range cases {
		got := ParseIntent(c.in)
		if got.Type != c.want {
			t.Errorf("ParseIntent(%q).Type = %v, want %v", c.in, got.Type, c.want)
		}
	}
}

func TestParseIntent_KeywordStripping(t *testing.T) {
	got := ParseIntent("tolong carikan kasur busa")
	if got.Type != IntentProduct || got.Keyword != "kasur busa" {
		t.Fatalf("expected product query 'kasur busa', got %+v", got)
	}
}

func TestParseIntent_StrippingFallsBackToOriginal(t *testing.T) {
	// "cari" alone is entirely filler; the keyword falls back to the
	// original utterance instead of going empty.
	got := ParseIntent("cari")
	if got.Type != IntentProduct || got.Keyword != "cari" {
		t.Fatalf("expected fallback keyword 'cari', got %+v", got)
	}
}

func TestParseIntent_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		got := ParseIntent(in)
		if got.Type != IntentProduct || got.Keyword != "" {
			t.Errorf("ParseIntent(%q) = %+v, want empty product query", in, got)
		}
	}
}

func TestParseIntent_Deterministic(t *testing.T) {
	for _, in := range []string{"void SP1", "mutasi", "ganti sales", "kasur", ""} {
		first := ParseIntent(in)
		for i := 0; i < 3; i++ {
			if got := ParseIntent(in); got != first {
				t.Fatalf("ParseIntent(%q) not deterministic: %+v vs %+v", in, got, first)
			}
		}
	}
}

func TestParseIntent_VoidWinsOverProduct(t *testing.T) {
	// "batal" inside a longer sentence still starts the void workflow;
	// first match wins over the product fallback.
	got := ParseIntent("harga kasur batal")
	if got.Type != IntentVoid {
		t.Fatalf("expected IntentVoid, got %+v", got)
	}
}
