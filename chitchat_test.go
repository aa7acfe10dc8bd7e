package lectern

import "testing"

func TestIsChitchat(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"hi", true},
		{"Hello!", true},
		{"hey there", true},
		{"good morning", true},
		{"thanks", true},
		{"thank you", true},
		{"bye", true},
		{"how are you?", true},
		{"what's up", true},
		{"", true},
		{"   ", true},
		{"aaaaaaaaaa", true},
		{"hahahaha", true},
		{"?!?!?!", true},
		{"!!!", true},

		{"what is functional programming?", false},
		{"how does type inference work in miniscala?", false},
		{"when is assignment 3 due", false},
		{"explain beta reduction", false},
		{"hi, can you explain lambda calculus in detail please", false},
		{"why are Vector operations efficient?", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := IsChitchat(tt.query); got != tt.want {
				t.Errorf("IsChitchat(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
