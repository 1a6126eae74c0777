package validation

import "testing"

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		email   string
		want    string
		wantErr bool
	}{
		{
			name:  "lowercases the whole address",
			email: "Alex@Email.COM",
			want:  "alex@email.com",
		},
		{
			name:  "strips periods before the at sign",
			email: "first.last@example.com",
			want:  "firstlast@example.com",
		},
		{
			name:  "keeps periods in the domain",
			email: "user@mail.example.com",
			want:  "user@mail.example.com",
		},
		{
			name:  "trims surrounding whitespace",
			email: "  user@example.com ",
			want:  "user@example.com",
		},
		{
			name:    "rejects quote characters",
			email:   `"odd"@example.com`,
			wantErr: true,
		},
		{
			name:    "rejects missing at sign",
			email:   "not-an-email",
			wantErr: true,
		},
		{
			name:    "rejects empty local part",
			email:   "@example.com",
			wantErr: true,
		},
		{
			name:    "rejects local part of only periods",
			email:   "...@example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeEmail(tt.email)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NormalizeEmail(%q) = %q, want error", tt.email, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeEmail(%q) failed: %v", tt.email, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}
