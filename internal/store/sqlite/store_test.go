package sqlite

import (
	"path/filepath"
	"testing"

	"cryptotracker/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{DBPath: filepath.Join(t.TempDir(), "coins.db")})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testCoins = []model.Coin{
	{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", Rank: 1, Source: "coingecko"},
	{ID: "ethereum", Symbol: "eth", Name: "Ethereum", Rank: 2, Source: "coingecko"},
	{ID: "wrapped-bitcoin", Symbol: "wbtc", Name: "Wrapped Bitcoin", Rank: 15, Source: "coingecko"},
	{ID: "obscure", Symbol: "obs", Name: "Obscure", Rank: 999999, Source: "coingecko"},
}

func TestStore_SaveAndList(t *testing.T) {
	s := openTestStore(t)

	empty, err := s.IsEmpty()
	if err != nil || !empty {
		t.Fatalf("fresh store: empty=%v err=%v", empty, err)
	}

	// Reverse order on insert; ListAll sorts by rank.
	rev := []model.Coin{testCoins[3], testCoins[2], testCoins[1], testCoins[0]}
	if err := s.SaveCoins(rev); err != nil {
		t.Fatalf("SaveCoins: %v", err)
	}
	all, err := s.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 4 || all[0].ID != "bitcoin" || all[3].ID != "obscure" {
		t.Fatalf("ListAll = %+v", all)
	}

	// Upsert replaces.
	updated := testCoins[1]
	updated.Name = "Ether"
	if err := s.SaveCoins([]model.Coin{updated}); err != nil {
		t.Fatalf("SaveCoins update: %v", err)
	}
	all, _ = s.ListAll()
	if len(all) != 4 || all[1].Name != "Ether" {
		t.Fatalf("after upsert = %+v", all)
	}

	empty, _ = s.IsEmpty()
	if empty {
		t.Fatal("store should not be empty")
	}
}

func TestStore_Search(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveCoins(testCoins); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"btc", []string{"bitcoin", "wrapped-bitcoin"}},
		{"BITCOIN", []string{"bitcoin", "wrapped-bitcoin"}},
		{"eth", []string{"ethereum"}},
		{"zzz", nil},
		{"  ", nil},
	}
	for _, tc := range tests {
		got, err := s.Search(tc.query)
		if err != nil {
			t.Fatalf("Search(%q): %v", tc.query, err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("Search(%q) = %+v, want ids %v", tc.query, got, tc.want)
		}
		for i := range got {
			if got[i].ID != tc.want[i] {
				t.Errorf("Search(%q)[%d] = %s, want %s", tc.query, i, got[i].ID, tc.want[i])
			}
		}
	}
}

func TestStore_SearchLimit(t *testing.T) {
	s := openTestStore(t)
	var many []model.Coin
	for i := 0; i < 70; i++ {
		id := "coin" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		many = append(many, model.Coin{ID: id, Symbol: id, Name: "Coin", Rank: i})
	}
	if err := s.SaveCoins(many); err != nil {
		t.Fatal(err)
	}
	got, err := s.Search("coin")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != searchLimit {
		t.Fatalf("got %d results, want %d", len(got), searchLimit)
	}
	if got[0].Rank != 0 {
		t.Errorf("first result rank = %d, want 0", got[0].Rank)
	}
}

func TestStore_Favorites(t *testing.T) {
	s := openTestStore(t)

	if err := s.AddFavorite("bitcoin"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddFavorite("solana"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddFavorite("bitcoin"); err != nil {
		t.Fatalf("duplicate add should be ignored: %v", err)
	}

	ids, err := s.ListFavorites()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "bitcoin" || ids[1] != "solana" {
		t.Fatalf("favorites = %v", ids)
	}

	fav, _ := s.IsFavorite("solana")
	if !fav {
		t.Error("solana should be a favorite")
	}

	if err := s.RemoveFavorite("solana"); err != nil {
		t.Fatal(err)
	}
	fav, _ = s.IsFavorite("solana")
	if fav {
		t.Error("solana should no longer be a favorite")
	}
	if err := s.RemoveFavorite("never-added"); err != nil {
		t.Errorf("removing unknown id: %v", err)
	}
}

var _ model.CoinStore = (*Store)(nil)
