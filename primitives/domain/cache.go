package domain

// Cache é um mapa chave→valor de capacidade fixa.
//
// Get também é uma escrita: promove a entrada para a posição mais recente.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Put(key K, value V)
	Len() int
}
