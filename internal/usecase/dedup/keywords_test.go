package dedup

import "testing"

func TestExtract(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"обычный заголовок", "Acme buys Globex for $2B", []string{"acme", "buys", "globex"}},
		{"регистр и дубликаты", "Tesla TESLA tesla shares", []string{"tesla", "shares"}},
		{"короткие токены отбрасываются", "US Fed ups key rate", []string{"rate"}},
		{"цифробуквенные токены", "iPhone17 sales hit 10000000 units", []string{"iphone17", "sales", "10000000", "units"}},
		{"только пунктуация", "?!, -- ...", nil},
		{"пустая строка", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(tc.text)
			if len(got) != len(tc.want) {
				t.Fatalf("ожидали %d ключевых слов, получили %d: %v", len(tc.want), len(got), got)
			}
			for _, word := range tc.want {
				if _, ok := got[word]; !ok {
					t.Fatalf("не нашли ключевое слово %q в %v", word, got)
				}
			}
		})
	}
}

func TestExtractPureOnRepeatedCalls(t *testing.T) {
	first := Extract("Markets rally after earnings surprise")
	second := Extract("Markets rally after earnings surprise")
	if len(first) != len(second) {
		t.Fatalf("повторный вызов дал другой результат: %v и %v", first, second)
	}
}
