package domain

import "testing"

func TestBookBestBidAsk(t *testing.T) {
	b := Book{
		Bids: []BookLevel{{Price: 0.51, Size: 100}, {Price: 0.48, Size: 50}},
		Asks: []BookLevel{{Price: 0.55, Size: 20}, {Price: 0.53, Size: 10}},
	}

	bid := b.BestBid()
	if bid == nil || *bid != 0.51 {
		t.Errorf("expected best bid 0.51, got %v", bid)
	}

	ask := b.BestAsk()
	if ask == nil || *ask != 0.53 {
		t.Errorf("expected best ask 0.53, got %v", ask)
	}
}

func TestBookBestBidAsk_EmptySide(t *testing.T) {
	b := Book{
		Asks: []BookLevel{{Price: 0.55, Size: 20}},
	}

	if bid := b.BestBid(); bid != nil {
		t.Errorf("expected nil bid for empty side, got %v", *bid)
	}
	if ask := b.BestAsk(); ask == nil || *ask != 0.55 {
		t.Errorf("expected best ask 0.55, got %v", ask)
	}

	empty := Book{}
	if ask := empty.BestAsk(); ask != nil {
		t.Errorf("expected nil ask for empty book, got %v", *ask)
	}
}

func TestMarketTradable(t *testing.T) {
	cases := []struct {
		name   string
		market Market
		want   bool
	}{
		{"open and accepting", Market{Active: true, AcceptingOrders: true}, true},
		{"closed", Market{Active: true, Closed: true, AcceptingOrders: true}, false},
		{"inactive", Market{AcceptingOrders: true}, false},
		{"not accepting", Market{Active: true}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.market.Tradable(); got != tc.want {
				t.Errorf("Tradable() = %v, want %v", got, tc.want)
			}
		})
	}
}
