// redact маскирует чувствительные значения перед записью в лог.
package redact

import "strings"

// Email оставляет два первых символа локальной части и домен.
func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "***"
	}

	local, domain := parts[0], parts[1]
	if len(local) > 2 {
		local = local[:2] + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Token никогда не раскрывает значение, только факт его наличия.
func Token(tok string) string {
	if tok == "" {
		return ""
	}

	return "[REDACTED_TOKEN]"
}

// Authorization маскирует значение заголовка, сохраняя схему (Bearer/Basic).
func Authorization(v string) string {
	if v == "" {
		return ""
	}

	if scheme, _, ok := strings.Cut(v, " "); ok {
		return scheme + " " + Token("x")
	}

	return Token(v)
}
