package repl

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{"", nil, false},
		{"  login  ", []string{"login"}, false},
		{`order "hello world" en uk`, []string{"order", "hello world", "en", "uk"}, false},
		{`order 'it''s' en`, []string{"order", "its", "en"}, false},
		{`say "a \"quoted\" word"`, []string{"say", `a "quoted" word`}, false},
		{`path a\ b`, []string{"path", "a b"}, false},
		{`empty ""`, []string{"empty", ""}, false},
		{`open "quote`, nil, true},
		{`trailing\`, nil, true},
	}
	for _, tt := range tests {
		got, err := Split(tt.line)
		if (err != nil) != tt.wantErr {
			t.Errorf("Split(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Split(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}
