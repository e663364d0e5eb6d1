// Package resolver приводит многократно percent-кодированный URL к исходному виду.
package resolver

import (
	"net/url"
	"strings"
)

// MaxDecodePasses ограничивает число проходов декодирования.
const MaxDecodePasses = 10

// Resolve декодирует строку, пока она меняется и содержит '%'.
// Ошибка декодирования не считается фатальной: возвращается последнее
// успешно декодированное значение. Знак '+' не превращается в пробел.
func Resolve(raw string) string {
	decoded, _ := ResolveWithPasses(raw)
	return decoded
}

// ResolveWithPasses работает как Resolve и дополнительно сообщает число
// выполненных проходов, изменивших строку.
func ResolveWithPasses(raw string) (string, int) {
	decoded := raw
	passes := 0
	for passes < MaxDecodePasses && strings.Contains(decoded, "%") {
		next, err := url.PathUnescape(decoded)
		if err != nil || next == decoded {
			break
		}
		decoded = next
		passes++
	}
	return decoded, passes
}
