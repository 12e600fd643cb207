package infra

import (
	"sync"

	"primitives-gateway/primitives/domain"
)

const noSlot = -1

// slot é uma entrada da arena. prev/next são índices de outros slots,
// head é o MRU e tail o LRU.
type slot[K comparable, V any] struct {
	key   K
	value V
	prev  int
	next  int
}

// BoundedCache é um LRU de capacidade fixa.
//
// O índice (key -> slot) e a lista de recência vivem sob o mesmo lock, então
// nunca ficam inconsistentes. Get e Put são O(1): a promoção e a evicção
// só religam índices, sem varrer a lista.
type BoundedCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	index    map[K]int
	slots    []slot[K, V]
	free     []int
	head     int
	tail     int
	onEvict  func(key K, value V)
}

type CacheOption[K comparable, V any] func(*BoundedCache[K, V])

// WithEvictCallback registra uma função chamada para cada entrada despejada
// por capacidade. Roda fora do lock do cache.
func WithEvictCallback[K comparable, V any](fn func(key K, value V)) CacheOption[K, V] {
	return func(c *BoundedCache[K, V]) { c.onEvict = fn }
}

var _ domain.Cache[string, int] = (*BoundedCache[string, int])(nil)

func NewBoundedCache[K comparable, V any](capacity int, opts ...CacheOption[K, V]) (*BoundedCache[K, V], error) {
	if capacity <= 0 {
		return nil, domain.InvalidConfigf("cache capacity must be >= 1, got %d", capacity)
	}
	c := &BoundedCache[K, V]{
		capacity: capacity,
		index:    make(map[K]int, min(capacity, 1024)),
		slots:    make([]slot[K, V], 0, min(capacity, 1024)),
		head:     noSlot,
		tail:     noSlot,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *BoundedCache[K, V]) Capacity() int { return c.capacity }

func (c *BoundedCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// Get retorna o valor e promove a chave para a posição mais recente.
func (c *BoundedCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(i)
	return c.slots[i].value, true
}

// Peek retorna o valor sem mexer na recência.
func (c *BoundedCache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.index[key]; ok {
		return c.slots[i].value, true
	}
	var zero V
	return zero, false
}

// Put insere ou atualiza. Uma chave nova com o cache cheio despeja antes o LRU.
func (c *BoundedCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	evictedKey, evictedValue, evicted := c.put(key, value)
	onEvict := c.onEvict
	c.mu.Unlock()

	if evicted && onEvict != nil {
		onEvict(evictedKey, evictedValue)
	}
}

func (c *BoundedCache[K, V]) put(key K, value V) (evictedKey K, evictedValue V, evicted bool) {
	if i, ok := c.index[key]; ok {
		c.slots[i].value = value
		c.moveToFront(i)
		return evictedKey, evictedValue, false
	}

	var i int
	if len(c.index) >= c.capacity {
		// reaproveita o slot do LRU
		i = c.tail
		evictedKey, evictedValue, evicted = c.slots[i].key, c.slots[i].value, true
		c.unlink(i)
		delete(c.index, evictedKey)
	} else {
		i = c.alloc()
	}

	c.slots[i].key = key
	c.slots[i].value = value
	c.pushFront(i)
	c.index[key] = i
	return evictedKey, evictedValue, evicted
}

// Remove apaga a chave, se existir. Não dispara o callback de evicção.
func (c *BoundedCache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[key]
	if !ok {
		return false
	}
	c.unlink(i)
	delete(c.index, key)
	c.release(i)
	return true
}

// Keys retorna as chaves do mais recente para o menos recente.
func (c *BoundedCache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.index))
	for i := c.head; i != noSlot; i = c.slots[i].next {
		keys = append(keys, c.slots[i].key)
	}
	return keys
}

func (c *BoundedCache[K, V]) alloc() int {
	if n := len(c.free); n > 0 {
		i := c.free[n-1]
		c.free = c.free[:n-1]
		return i
	}
	c.slots = append(c.slots, slot[K, V]{prev: noSlot, next: noSlot})
	return len(c.slots) - 1
}

// release zera o slot para não segurar referências e o devolve à free list.
func (c *BoundedCache[K, V]) release(i int) {
	c.slots[i] = slot[K, V]{prev: noSlot, next: noSlot}
	c.free = append(c.free, i)
}

func (c *BoundedCache[K, V]) unlink(i int) {
	s := &c.slots[i]
	if s.prev != noSlot {
		c.slots[s.prev].next = s.next
	} else {
		c.head = s.next
	}
	if s.next != noSlot {
		c.slots[s.next].prev = s.prev
	} else {
		c.tail = s.prev
	}
	s.prev, s.next = noSlot, noSlot
}

func (c *BoundedCache[K, V]) pushFront(i int) {
	s := &c.slots[i]
	s.prev = noSlot
	s.next = c.head
	if c.head != noSlot {
		c.slots[c.head].prev = i
	}
	c.head = i
	if c.tail == noSlot {
		c.tail = i
	}
}

func (c *BoundedCache[K, V]) moveToFront(i int) {
	if c.head == i {
		return
	}
	c.unlink(i)
	c.pushFront(i)
}
