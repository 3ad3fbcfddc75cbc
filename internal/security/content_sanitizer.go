// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は求人説明文や応募メッセージなどユーザー入力のHTMLを
// サニタイズし、他のユーザーの画面でのXSSを防ぐ。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 安全なタグと属性のみを通過させる。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はユーザー入力テキストのサニタイズ機能のインターフェースを定義する。
// 求人・応募の保存前に使用される。
type ContentSanitizerService interface {
	// Sanitize は書式付きテキスト（求人説明、応募メッセージ）をサニタイズする。
	// 許可タグ（p, br, a, ul, ol, li, strong, em, b, i）のみを通過させ、
	// script, iframe, style, imgタグおよびon*イベント属性を除去する。
	// aタグのhrefはhttp/https/mailtoのみ許可され、rel="nofollow noopener noreferrer"が付与される。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(rawHTML string) string

	// StripTags は単一行の項目（タイトル、企業名、勤務地）から全てのタグを除去し、前後の空白を取り除く。
	StripTags(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type contentSanitizer struct {
	rich   *bluemonday.Policy
	strict *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	// script, iframe, style等は許可リストに含めないことで自動的に除去される
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em", "b", "i",
	)

	// 相対URLはフロントエンドのルーティングと衝突するため許可しない
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(false)
	p.RequireNoFollowOnLinks(true)
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &contentSanitizer{
		rich:   p,
		strict: bluemonday.StrictPolicy(),
	}
}

// Sanitize は書式付きテキストをサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return strings.TrimSpace(s.rich.Sanitize(rawHTML))
}

// StripTags は全てのタグを除去したテキストを返す。
func (s *contentSanitizer) StripTags(raw string) string {
	return strings.TrimSpace(s.strict.Sanitize(raw))
}

// compile-time interface check
var _ ContentSanitizerService = (*contentSanitizer)(nil)
