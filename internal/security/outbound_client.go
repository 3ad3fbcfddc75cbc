package security

import (
	"net/http"
	"time"

	"github.com/doyensec/safeurl"
)

// NewOutboundClient は外部IdP（トークン・ユーザー情報エンドポイント）向けのHTTPクライアントを生成する。
// safeurlにより以下がブロックされる:
//   - https以外のスキーム、443以外のポート
//   - プライベートIPアドレス、ループバック、リンクローカル（メタデータIPを含む）
//
// safeurlはnet.DialerのControlフックでDNS解決後のIPアドレスを検証するため、
// DNS再バインディング攻撃にも対応している。
func NewOutboundClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("https").
		SetAllowedPorts(443).
		Build()

	return safeurl.Client(config).Client
}
