package domain

// Router mapeia chaves arbitrárias para um conjunto dinâmico de nós nomeados.
//
// Route retorna found=false apenas quando não há nós.
type Router interface {
	AddNode(id string)
	RemoveNode(id string)
	Route(key string) (nodeID string, found bool)
}
