package memstore

import (
	"context"
	"errors"
	"sync"

	"taskhub/services"
)

var ErrInjected = errors.New("injected failure")

// ObjectStore keeps uploaded bytes in memory and records every delete call.
type ObjectStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
	deletes []DeleteCall

	// FailUploadAfter, when positive, makes the upload with that ordinal
	// (1-based, counted across the store's lifetime) and every later one
	// fail.
	FailUploadAfter int
	FailDeletes     bool
	uploads         int
}

type DeleteCall struct {
	PublicID string
	Kind     services.AttachmentKind
}

func NewObjectStore(baseURL string) *ObjectStore {
	return &ObjectStore{
		baseURL: baseURL,
		objects: make(map[string][]byte),
	}
}

func (s *ObjectStore) Upload(ctx context.Context, key, _ string, data []byte) (*services.StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.uploads++
	if s.FailUploadAfter > 0 && s.uploads >= s.FailUploadAfter {
		return nil, ErrInjected
	}
	s.objects[key] = append([]byte(nil), data...)
	return &services.StoredObject{URL: s.baseURL + "/" + key, PublicID: key}, nil
}

func (s *ObjectStore) Delete(_ context.Context, publicID string, kind services.AttachmentKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deletes = append(s.deletes, DeleteCall{PublicID: publicID, Kind: kind})
	if s.FailDeletes {
		return ErrInjected
	}
	delete(s.objects, publicID)
	return nil
}

func (s *ObjectStore) Has(publicID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[publicID]
	return ok
}

func (s *ObjectStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *ObjectStore) Deletes() []DeleteCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DeleteCall(nil), s.deletes...)
}

// Mailer records messages instead of sending them.
type Mailer struct {
	mu       sync.Mutex
	messages []Message
	Fail     bool
}

type Message struct {
	To      string
	Subject string
	Body    string
}

func NewMailer() *Mailer {
	return &Mailer{}
}

func (m *Mailer) Send(_ context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return ErrInjected
	}
	m.messages = append(m.messages, Message{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (m *Mailer) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}
