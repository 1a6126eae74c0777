package vision

import (
	"testing"
)

func TestParseAnalysisResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		content      string
		wantErr      bool
		wantName     string
		wantCalories float64
		wantCount    int
	}{
		{
			name:         "clean json",
			content:      `{"name": "Margherita Pizza", "calories": 850, "ingredients": [{"name": "Dough", "calories": 400, "percentage": 47}, {"name": "Cheese", "calories": 300, "percentage": 35}]}`,
			wantName:     "Margherita Pizza",
			wantCalories: 850,
			wantCount:    2,
		},
		{
			name:         "json wrapped in prose",
			content:      "Here is the analysis:\n{\"name\": \"Caesar Salad\", \"calories\": 320, \"ingredients\": []}\nLet me know if you need more.",
			wantName:     "Caesar Salad",
			wantCalories: 320,
			wantCount:    0,
		},
		{
			name:         "missing ingredients field",
			content:      `{"name": "Apple", "calories": 95}`,
			wantName:     "Apple",
			wantCalories: 95,
			wantCount:    0,
		},
		{
			name:    "no json at all",
			content: "I cannot analyze this image.",
			wantErr: true,
		},
		{
			name:    "missing name",
			content: `{"calories": 100, "ingredients": []}`,
			wantErr: true,
		},
		{
			name:    "empty content",
			content: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			analysis, err := parseAnalysisResponse(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAnalysisResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if analysis.Name != tt.wantName {
				t.Errorf("Expected name %q, got %q", tt.wantName, analysis.Name)
			}
			if analysis.Calories != tt.wantCalories {
				t.Errorf("Expected calories %v, got %v", tt.wantCalories, analysis.Calories)
			}
			if len(analysis.Ingredients) != tt.wantCount {
				t.Errorf("Expected %d ingredients, got %d", tt.wantCount, len(analysis.Ingredients))
			}
		})
	}
}

func TestToDataURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "raw base64",
			input: "aGVsbG8=",
			want:  "data:image/jpeg;base64,aGVsbG8=",
		},
		{
			name:  "existing data url passes through",
			input: "data:image/png;base64,aGVsbG8=",
			want:  "data:image/png;base64,aGVsbG8=",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := toDataURL(tt.input); got != tt.want {
				t.Errorf("toDataURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
