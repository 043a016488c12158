package client

// List mantém uma lista local de registros entre um fetch e o próximo.
//
// A disciplina é mutate-then-reconcile: a tela dispara a transição, espera a
// resposta confirmada e só então aplica RemoveByID/UpdateByID. Se a transição
// falha de forma ambígua (timeout, conflito), marca NeedsReload e o próximo
// fetch substitui tudo.
type List[T any] struct {
	Items       []T
	NeedsReload bool

	idOf func(T) int64
}

func NewList[T any](idOf func(T) int64) *List[T] {
	return &List[T]{idOf: idOf}
}

// Replace troca o conteúdo inteiro (resultado de um fetch) e limpa a flag.
func (l *List[T]) Replace(items []T) {
	l.Items = items
	l.NeedsReload = false
}

// RemoveByID tira o registro da lista local após uma transição confirmada.
func (l *List[T]) RemoveByID(id int64) bool {
	for i, item := range l.Items {
		if l.idOf(item) == id {
			l.Items = append(l.Items[:i], l.Items[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateByID substitui o registro em posição após uma transição confirmada.
func (l *List[T]) UpdateByID(id int64, updated T) bool {
	for i, item := range l.Items {
		if l.idOf(item) == id {
			l.Items[i] = updated
			return true
		}
	}
	return false
}

// MarkStale sinaliza que o estado local pode divergir do servidor.
func (l *List[T]) MarkStale() {
	l.NeedsReload = true
}
