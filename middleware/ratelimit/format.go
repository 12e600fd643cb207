// utilitário pequeno para formatar números em headers sem puxar fmt.
// FormatFloat com 'f' evita notação científica em valores comuns.

package ratelimit

import "strconv"

func formatInt(v int) string { return strconv.Itoa(v) }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
