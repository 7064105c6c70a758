// internal/application/mint/helpers.go
package mint

import "strings"

// maskShort はログ用にアドレス / シグネチャを短縮します。
func maskShort(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return ""
	}
	if len(t) <= 10 {
		return t
	}
	return t[:4] + "***" + t[len(t)-4:]
}
