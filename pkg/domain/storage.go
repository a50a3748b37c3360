package domain

// Store is the contract the persistence layer writes raw documents through
type Store interface {
	Insert(collName string, doc Document) error
	GetById(collName, docId string) (Document, error)
	Update(collName, docId string, update *Update) error
	DeleteById(collName, docId string) error
}
