package llm

import "testing"

func TestMovedTo(t *testing.T) {
	for symbol := range moved {
		path, ok := MovedTo(symbol)
		if !ok {
			t.Fatalf("symbol %s missing from relocation table", symbol)
		}
		if path != llmsPath {
			t.Fatalf("symbol %s relocated to unexpected path %s", symbol, path)
		}
	}
	if _, ok := MovedTo("NoSuchSymbol"); ok {
		t.Fatalf("unknown symbol reported as relocated")
	}
}
