package infra

import (
	"cmp"
	"sort"
	"strconv"
	"sync"

	"primitives-gateway/primitives/domain"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/slices"
)

// DefaultVirtualNodes é o número de posições por nó quando o chamador não tem preferência.
const DefaultVirtualNodes = 100

// vnode é uma posição no anel e o nó dono dela.
type vnode struct {
	pos  uint64
	node string
}

// HashRing implementa hash consistente com nós virtuais.
//
// As posições são xxhash64 de "<nodeID>:<réplica>" e ficam num slice ordenado;
// Route faz busca binária pela primeira posição >= hash(key), voltando ao início
// do slice quando passa da última (o anel é circular).
//
// Colisão entre pares (nó, réplica) distintos sobrescreve a posição em silêncio.
// Com 64 bits isso é raro o bastante para ser aceito como aproximação.
type HashRing struct {
	virtualNodes int

	mu      sync.RWMutex
	ring    []vnode
	members map[string]struct{}
}

var _ domain.Router = (*HashRing)(nil)

func NewHashRing(virtualNodes int) (*HashRing, error) {
	if virtualNodes <= 0 {
		return nil, domain.InvalidConfigf("virtual nodes per node must be > 0, got %d", virtualNodes)
	}
	return &HashRing{
		virtualNodes: virtualNodes,
		members:      make(map[string]struct{}),
	}, nil
}

func (r *HashRing) VirtualNodes() int { return r.virtualNodes }

func hashKey(s string) uint64 { return xxhash.Sum64String(s) }

func replicaKey(nodeID string, replica int) string {
	return nodeID + ":" + strconv.Itoa(replica)
}

func comparePos(v vnode, pos uint64) int { return cmp.Compare(v.pos, pos) }

// AddNode insere as posições do nó. Adicionar de novo um nó que já é membro não muda
// nada, nem retoma posições que outro nó sobrescreveu.
func (r *HashRing) AddNode(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[id]; ok {
		return
	}
	for i := 0; i < r.virtualNodes; i++ {
		pos := hashKey(replicaKey(id, i))
		idx, found := slices.BinarySearchFunc(r.ring, pos, comparePos)
		if found {
			r.ring[idx].node = id
			continue
		}
		r.ring = slices.Insert(r.ring, idx, vnode{pos: pos, node: id})
	}
	r.members[id] = struct{}{}
}

// RemoveNode recalcula as posições do nó e remove só as que ainda são dele;
// posições de outros nós ficam intactas.
func (r *HashRing) RemoveNode(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[id]; !ok {
		return
	}
	for i := 0; i < r.virtualNodes; i++ {
		pos := hashKey(replicaKey(id, i))
		idx, found := slices.BinarySearchFunc(r.ring, pos, comparePos)
		if found && r.ring[idx].node == id {
			r.ring = slices.Delete(r.ring, idx, idx+1)
		}
	}
	delete(r.members, id)
}

// Route retorna o nó dono da chave. found=false só com o anel vazio.
func (r *HashRing) Route(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.ring) == 0 {
		return "", false
	}
	idx, _ := slices.BinarySearchFunc(r.ring, hashKey(key), comparePos)
	if idx == len(r.ring) {
		idx = 0
	}
	return r.ring[idx].node, true
}

// Nodes retorna os nós membros em ordem alfabética.
func (r *HashRing) Nodes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.members))
	for id := range r.members {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len retorna o número de posições ocupadas no anel.
func (r *HashRing) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ring)
}
