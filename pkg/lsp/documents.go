package lsp

import (
	"container/list"
	"sync"

	"github.com/charmbracelet/log"
)

// DefaultMaxDocuments bounds the document cache of one client
const DefaultMaxDocuments = 100

type documentEntry struct {
	uri      string
	language string
	content  string
}

// documentStore is an LRU cache of open documents keyed by URI
type documentStore struct {
	max       int
	documents map[string]*list.Element
	lruList   *list.List
	mu        sync.RWMutex
}

func newDocumentStore(limit int) *documentStore {
	if limit <= 0 {
		limit = DefaultMaxDocuments
	}
	return &documentStore{
		max:       limit,
		documents: make(map[string]*list.Element),
		lruList:   list.New(),
	}
}

// put stores content for uri, evicting the least recently used document
// when the cache is full. An empty language keeps the previous one.
func (s *documentStore) put(uri, language, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, exists := s.documents[uri]; exists {
		s.lruList.MoveToFront(elem)
		entry := elem.Value.(*documentEntry)
		entry.content = content
		if language != "" {
			entry.language = language
		}
		return
	}

	if len(s.documents) >= s.max {
		if oldest := s.lruList.Back(); oldest != nil {
			evicted := oldest.Value.(*documentEntry)
			s.lruList.Remove(oldest)
			delete(s.documents, evicted.uri)
			log.Debug("Document cache full, evicted oldest", "evicted", evicted.uri, "new", uri)
		}
	}

	elem := s.lruList.PushFront(&documentEntry{uri: uri, language: language, content: content})
	s.documents[uri] = elem
}

// get returns a copy of the document and marks it recently used
func (s *documentStore) get(uri string) (documentEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, exists := s.documents[uri]
	if !exists {
		return documentEntry{}, false
	}
	s.lruList.MoveToFront(elem)
	return *elem.Value.(*documentEntry), true
}

func (s *documentStore) remove(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, exists := s.documents[uri]; exists {
		s.lruList.Remove(elem)
		delete(s.documents, uri)
	}
}

func (s *documentStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}
