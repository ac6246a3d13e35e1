package index

// DocumentIndex defines the interface for document indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type DocumentIndex interface {
	UpsertDocument(d DocumentRow) error
	DeleteDocument(path string) error
	GetChecksum(path string) (string, error)
	GetByPath(path string) (*DocumentRow, error)
	GetByRoute(locale, route string) (*DocumentRow, error)
	ListDocuments(q ListQuery) ([]DocumentRow, int, error)
	Search(q SearchQuery) ([]SearchResult, error)
	Routes(locale string, includeDrafts bool) ([]RouteEntry, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies DocumentIndex at compile time.
var _ DocumentIndex = (*DB)(nil)

// Mapper turns a raw content file into an index row. The service layer owns
// the mapping (front matter parsing, schema validation, route and locale
// derivation); the index only stores what it is given.
type Mapper func(path string, data []byte) (DocumentRow, error)
