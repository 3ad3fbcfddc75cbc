// Package logger はプロセス共通のJSON構造化ログを構成する。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ServiceName はすべてのログ行に付く service 属性の値。
const ServiceName = "jobboard"

const redacted = "[REDACTED]"

// level はプロセス全体のログレベル。SetLevelで実行中に変更できる。
var level = new(slog.LevelVar)

// sensitiveKeys に一致する属性は値を伏せて出力する。
// パスワード・セッションID・OAuthの認可コードやトークンが誤ってログに渡された場合に備える。
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"password_hash": {},
	"session_id":    {},
	"pending_id":    {},
	"code":          {},
	"access_token":  {},
	"token":         {},
	"secret":        {},
}

// New はwへJSONを書き出すロガーを返す。
func New(w io.Writer) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactSensitive,
	})
	return slog.New(h).With(slog.String("service", ServiceName))
}

// SetupDefault はNewで作ったロガーをslogのデフォルトにする。wがnilならos.Stdout。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	slog.SetDefault(New(w))
}

func redactSensitive(groups []string, a slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, redacted)
	}
	return a
}

// SetLevel はLOG_LEVELの値（debug, info, warn, error）からログレベルを設定する。
// 未知の値の場合はinfoに設定し、falseを返す。
func SetLevel(name string) bool {
	lv, ok := parseLevel(name)
	level.Set(lv)
	return ok
}

func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
