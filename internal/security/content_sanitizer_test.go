package security

import (
	"strings"
	"testing"
)

// TestSanitize_AllowedTags は許可タグが正しく通過することを検証する。
func TestSanitize_AllowedTags(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name         string
		input        string
		wantContains []string
	}{
		{
			name:         "pタグが許可される",
			input:        "<p>Cerchiamo un backend engineer</p>",
			wantContains: []string{"<p>Cerchiamo un backend engineer</p>"},
		},
		{
			name:         "リストが許可される",
			input:        "<ul><li>Go</li><li>PostgreSQL</li></ul>",
			wantContains: []string{"<ul>", "<li>Go</li>", "<li>PostgreSQL</li>", "</ul>"},
		},
		{
			name:         "強調タグが許可される",
			input:        "<strong>Full remote</strong> <em>possibile</em>",
			wantContains: []string{"<strong>Full remote</strong>", "<em>possibile</em>"},
		},
		{
			name:         "httpsリンクにrelが付与される",
			input:        `<a href="https://acme.example.com/careers">careers</a>`,
			wantContains: []string{`href="https://acme.example.com/careers"`, "nofollow", "noopener", "noreferrer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Sanitize(%q) = %q, want to contain %q", tt.input, got, want)
				}
			}
		})
	}
}

// TestSanitize_RemovesDangerousContent は危険なタグ・属性が除去されることを検証する。
func TestSanitize_RemovesDangerousContent(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name       string
		input      string
		wantAbsent []string
	}{
		{name: "scriptタグ", input: `<p>ok</p><script>alert(1)</script>`, wantAbsent: []string{"<script", "alert(1)"}},
		{name: "iframeタグ", input: `<iframe src="https://evil.example.com"></iframe>`, wantAbsent: []string{"<iframe"}},
		{name: "onclick属性", input: `<p onclick="steal()">x</p>`, wantAbsent: []string{"onclick", "steal"}},
		{name: "javascriptスキーム", input: `<a href="javascript:alert(1)">x</a>`, wantAbsent: []string{"javascript:"}},
		{name: "imgタグ", input: `<img src="https://example.com/a.png">`, wantAbsent: []string{"<img"}},
		{name: "styleタグ", input: `<style>body{display:none}</style>text`, wantAbsent: []string{"<style", "display:none"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("Sanitize(%q) = %q, must not contain %q", tt.input, got, absent)
				}
			}
		})
	}
}

// TestSanitize_Idempotent は同一入力に対して同一出力を返し、再サニタイズしても変化しないことを検証する。
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewContentSanitizer()
	input := `<p>Descrizione <a href="https://example.com">link</a></p><script>x</script>`

	first := sanitizer.Sanitize(input)
	second := sanitizer.Sanitize(first)
	if first != second {
		t.Errorf("サニタイズが冪等でない:\n first=%q\nsecond=%q", first, second)
	}
}

func TestStripTags(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		input string
		want  string
	}{
		{input: "Backend Engineer", want: "Backend Engineer"},
		{input: "  Rome  ", want: "Rome"},
		{input: "<b>Acme</b>", want: "Acme"},
		{input: "<script>alert(1)</script>Milan", want: "Milan"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		if got := sanitizer.StripTags(tt.input); got != tt.want {
			t.Errorf("StripTags(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
