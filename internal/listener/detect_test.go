package listener

import "testing"

func TestIsMenuEmail(t *testing.T) {
	tests := []struct {
		name        string
		subject     string
		body        string
		attachments []string
		want        bool
	}{
		{
			name:    "subject keyword",
			subject: "Our new MENU for summer",
			want:    true,
		},
		{
			name:        "body keyword plus attachment",
			subject:     "For the new site",
			body:        "Hi, please load this price list for us.",
			attachments: []string{"list.pdf"},
			want:        true,
		},
		{
			name:        "attachment alone is not enough",
			subject:     "Invoice March",
			body:        "See attached.",
			attachments: []string{"scan.pdf"},
			want:        false,
		},
		{
			name:    "body keyword alone is not enough",
			subject: "Re: meeting",
			body:    "We should put the wine list on the agenda.",
			want:    false,
		},
		{
			name: "plain conversation",
			body: "See you on Thursday.",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMenuEmail(tt.subject, tt.body, tt.attachments); got != tt.want {
				t.Fatalf("score %v: got %v want %v",
					ScoreMenuEmail(tt.subject, tt.body, tt.attachments), got, tt.want)
			}
		})
	}
}

func TestIsMenuAttachment(t *testing.T) {
	yes := []string{"menu.pdf", "photo.JPG", "scan.jpeg", "page.png", "pic.webp"}
	no := []string{"data.xlsx", "notes.txt", "archive.zip", ""}

	for _, name := range yes {
		if !isMenuAttachment(name) {
			t.Fatalf("%q should count", name)
		}
	}
	for _, name := range no {
		if isMenuAttachment(name) {
			t.Fatalf("%q should not count", name)
		}
	}
}
